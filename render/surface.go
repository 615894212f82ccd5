package render

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	text "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"octoarena/game"
)

var palette = map[string]color.RGBA{
	"teal":      {0x00, 0x80, 0x80, 0xff},
	"red":       {0xe0, 0x20, 0x20, 0xff},
	"blue":      {0x20, 0x40, 0xe0, 0xff},
	"purple":    {0x80, 0x20, 0xa0, 0xff},
	"brown":     {0x8b, 0x45, 0x13, 0xff},
	"black":     {0x00, 0x00, 0x00, 0xff},
	"pink":      {0xff, 0x80, 0xc0, 0xff},
	"white":     {0xff, 0xff, 0xff, 0xff},
	"grey":      {0x80, 0x80, 0x80, 0xff},
	"lightgrey": {0xd3, 0xd3, 0xd3, 0xff},
	"green":     {0x20, 0xa0, 0x20, 0xff},
	"yellow":    {0xf0, 0xc0, 0x20, 0xff},
}

func colorOf(name string) color.RGBA {
	if c, ok := palette[name]; ok {
		return c
	}
	return palette["black"]
}

// Surface 基于 ebiten.Image 的绘制表面；每帧通过 Bind 切换目标图像
type Surface struct {
	dst    *ebiten.Image
	source *text.GoTextFaceSource
	faces  map[float64]*text.GoTextFace
}

var _ game.Surface = (*Surface)(nil)

// NewSurface 加载内置字体；图像在第一次 Draw 时绑定
func NewSurface() (*Surface, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	return &Surface{source: src, faces: make(map[float64]*text.GoTextFace)}, nil
}

// Bind 设置本帧的目标图像
func (s *Surface) Bind(dst *ebiten.Image) { s.dst = dst }

func (s *Surface) Size() game.Dimensions {
	if s.dst == nil {
		return game.Dimensions{}
	}
	b := s.dst.Bounds()
	return game.Dimensions{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

func (s *Surface) Clear() {
	if s.dst != nil {
		s.dst.Fill(color.White)
	}
}

func (s *Surface) StrokePath(points []game.Coordinate, closed bool, width float64, clr string) {
	if s.dst == nil || len(points) < 2 {
		return
	}
	c := colorOf(clr)
	line := func(a, b game.Coordinate) {
		vector.StrokeLine(s.dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), float32(width), c, true)
	}
	for i := 1; i < len(points); i++ {
		line(points[i-1], points[i])
	}
	if closed {
		line(points[len(points)-1], points[0])
	}
}

func (s *Surface) FillRect(pos game.Coordinate, size game.Dimensions, clr string) {
	if s.dst == nil {
		return
	}
	vector.DrawFilledRect(s.dst, float32(pos.X), float32(pos.Y), float32(size.Width), float32(size.Height), colorOf(clr), false)
}

func (s *Surface) StrokeRect(pos game.Coordinate, size game.Dimensions, width float64, clr string) {
	if s.dst == nil {
		return
	}
	vector.StrokeRect(s.dst, float32(pos.X), float32(pos.Y), float32(size.Width), float32(size.Height), float32(width), colorOf(clr), false)
}

// DrawFigure 没有位图资源，用几何图形代替
func (s *Surface) DrawFigure(f game.Figure, frame int, pos game.Coordinate, size game.Dimensions, flipX bool, tint string) {
	if s.dst == nil {
		return
	}
	switch f {
	case game.FigurePlayer:
		s.drawPlayer(frame, pos, size, flipX, tint)
	case game.FigureFuelPump:
		s.FillRect(pos, size, "grey")
		s.FillRect(game.Coordinate{X: pos.X + 4, Y: pos.Y + 6}, game.Dimensions{Width: size.Width - 8, Height: 10}, "white")
	case game.FigureUpthumb:
		s.FillRect(pos, size, "yellow")
	case game.FigureMegaparty:
		s.drawParty(frame, pos, size)
	case game.FigureVictory:
		s.FillRect(pos, size, "green")
		s.Text("liftoff", game.Coordinate{X: pos.X + size.Width/2, Y: pos.Y + size.Height/2}, 96, game.AlignCenter, "white")
	}
}

// drawParty 同心方块，颜色随帧轮换
func (s *Surface) drawParty(frame int, pos game.Coordinate, size game.Dimensions) {
	const rings = 6
	for i := 0; i < rings; i++ {
		inset := float64(i) * size.Width / (2 * rings)
		c := game.Colors[(frame/4+i)%len(game.Colors)]
		s.FillRect(
			game.Coordinate{X: pos.X + inset, Y: pos.Y + inset},
			game.Dimensions{Width: size.Width - 2*inset, Height: size.Height - 2*inset},
			c,
		)
	}
}

// drawPlayer 身体 + 朝向一侧的面罩 + 随帧交替的双腿
func (s *Surface) drawPlayer(frame int, pos game.Coordinate, size game.Dimensions, flipX bool, tint string) {
	legH := size.Height * 0.25
	body := game.Dimensions{Width: size.Width, Height: size.Height - legH}
	s.FillRect(pos, body, tint)

	visor := game.Dimensions{Width: size.Width * 0.45, Height: body.Height * 0.3}
	vx := pos.X + size.Width - visor.Width - 3
	if flipX {
		vx = pos.X + 3
	}
	s.FillRect(game.Coordinate{X: vx, Y: pos.Y + body.Height*0.2}, visor, "lightgrey")

	stride := []float64{0, 3, 0, -3}[frame%4]
	leg := game.Dimensions{Width: size.Width * 0.3, Height: legH}
	legY := pos.Y + body.Height
	s.FillRect(game.Coordinate{X: pos.X + 2 + stride, Y: legY}, leg, tint)
	s.FillRect(game.Coordinate{X: pos.X + size.Width - leg.Width - 2 - stride, Y: legY}, leg, tint)
}

func (s *Surface) face(size float64) *text.GoTextFace {
	f, ok := s.faces[size]
	if !ok {
		f = &text.GoTextFace{Source: s.source, Size: size}
		s.faces[size] = f
	}
	return f
}

// MeasureText 不依赖目标图像，未绑定时也可用
func (s *Surface) MeasureText(str string, fontSize float64) float64 {
	w, _ := text.Measure(str, s.face(fontSize), 0)
	return w
}

// Text 坐标为基线位置，与画布 fillText 一致
func (s *Surface) Text(str string, pos game.Coordinate, fontSize float64, align game.Align, clr string) {
	if s.dst == nil || str == "" {
		return
	}
	face := s.face(fontSize)
	op := &text.DrawOptions{}
	switch align {
	case game.AlignCenter:
		op.PrimaryAlign = text.AlignCenter
	case game.AlignRight:
		op.PrimaryAlign = text.AlignEnd
	default:
		op.PrimaryAlign = text.AlignStart
	}
	op.GeoM.Translate(pos.X, pos.Y-face.Metrics().HAscent)
	op.ColorScale.ScaleWithColor(colorOf(clr))
	text.Draw(s.dst, str, face, op)
}
