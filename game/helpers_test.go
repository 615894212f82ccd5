package game

import (
	"fmt"
	"math"
	"strings"
	"sync"
)

// recordSurface 记录绘制调用，用于断言渲染顺序
type recordSurface struct {
	ops       []string
	textAt    map[string]Coordinate
	figureAt  map[Figure]Coordinate
	figureDim map[Figure]Dimensions
}

func (r *recordSurface) Size() Dimensions { return Dimensions{Width: 900, Height: 900} }
func (r *recordSurface) Clear() {
	r.ops = r.ops[:0]
	r.textAt = nil
	r.figureAt = nil
	r.figureDim = nil
}
func (r *recordSurface) StrokePath(points []Coordinate, closed bool, width float64, color string) {
	r.ops = append(r.ops, fmt.Sprintf("path:%d:%s", len(points), color))
}
func (r *recordSurface) FillRect(pos Coordinate, size Dimensions, color string) {
	r.ops = append(r.ops, "fill:"+color)
}
func (r *recordSurface) StrokeRect(pos Coordinate, size Dimensions, width float64, color string) {
	r.ops = append(r.ops, "rect:"+color)
}
func (r *recordSurface) DrawFigure(f Figure, frame int, pos Coordinate, size Dimensions, flipX bool, tint string) {
	r.ops = append(r.ops, fmt.Sprintf("figure:%s:%s", f, tint))
	if r.figureAt == nil {
		r.figureAt = make(map[Figure]Coordinate)
		r.figureDim = make(map[Figure]Dimensions)
	}
	r.figureAt[f] = pos
	r.figureDim[f] = size
}
func (r *recordSurface) Text(s string, pos Coordinate, fontSize float64, align Align, color string) {
	r.ops = append(r.ops, "text:"+s)
	if r.textAt == nil {
		r.textAt = make(map[string]Coordinate)
	}
	r.textAt[s] = pos
}

// MeasureText 每个字符按半个字号宽计算
func (r *recordSurface) MeasureText(s string, fontSize float64) float64 {
	return float64(len(s)) * fontSize / 2
}

// figures 只保留位图与路径调用
func (r *recordSurface) figures() []string {
	var out []string
	for _, op := range r.ops {
		if strings.HasPrefix(op, "figure:") || strings.HasPrefix(op, "path:") {
			out = append(out, op)
		}
	}
	return out
}

// recordTransport 记录每次发送的批次
type recordTransport struct {
	mu      sync.Mutex
	batches [][]EntityState
	ids     []string
	err     error
}

func (t *recordTransport) SendStates(playerID string, states []EntityState) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := make([]EntityState, len(states))
	copy(cp, states)
	t.batches = append(t.batches, cp)
	t.ids = append(t.ids, playerID)
	return t.err
}

func (t *recordTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.batches)
}

// blocker 以谓词定义的静态障碍
type blocker func(Coordinate) bool

func (b blocker) BlocksPoint(p Coordinate) bool { return b(p) }
func (b blocker) Render(Surface) {}
func (b blocker) ZIndex() (int, bool) { return 0, false }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func testDescriptor(id, name string, x, y float64) Descriptor {
	return Descriptor{
		ID:       id,
		Name:     name,
		Color:    "red",
		RoomName: "room-1",
		Size:     Dimensions{Width: 40, Height: 50},
		InitialState: EntityState{
			Position: Coordinate{X: x, Y: y},
		},
	}
}
