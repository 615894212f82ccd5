package game

import "math"

// Coordinate 画布坐标（原点左上，x 向右，y 向下）
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dimensions 宽高
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Add 向量相加
func (c Coordinate) Add(o Coordinate) Coordinate {
	return Coordinate{X: c.X + o.X, Y: c.Y + o.Y}
}

// Sub 向量相减
func (c Coordinate) Sub(o Coordinate) Coordinate {
	return Coordinate{X: c.X - o.X, Y: c.Y - o.Y}
}

// Scale 数乘
func (c Coordinate) Scale(s float64) Coordinate {
	return Coordinate{X: c.X * s, Y: c.Y * s}
}

// Dot 点积
func (c Coordinate) Dot(o Coordinate) float64 {
	return c.X*o.X + c.Y*o.Y
}

// Length 向量长度
func (c Coordinate) Length() float64 {
	return math.Hypot(c.X, c.Y)
}

// Corners 返回矩形四个角，顺序固定：左上、右上、右下、左下
func Corners(topLeft Coordinate, size Dimensions) [4]Coordinate {
	return [4]Coordinate{
		{X: topLeft.X, Y: topLeft.Y},
		{X: topLeft.X + size.Width, Y: topLeft.Y},
		{X: topLeft.X + size.Width, Y: topLeft.Y + size.Height},
		{X: topLeft.X, Y: topLeft.Y + size.Height},
	}
}

// RectangleContains 严格内部包含：边界上的点不算（接触不算重叠）
func RectangleContains(topLeft Coordinate, size Dimensions, p Coordinate) bool {
	return p.X > topLeft.X &&
		p.X < topLeft.X+size.Width &&
		p.Y > topLeft.Y &&
		p.Y < topLeft.Y+size.Height
}

// RectanglesOverlap 任一矩形的角落在另一矩形内部即视为重叠
func RectanglesOverlap(aPos Coordinate, aSize Dimensions, bPos Coordinate, bSize Dimensions) bool {
	for _, c := range Corners(aPos, aSize) {
		if RectangleContains(bPos, bSize, c) {
			return true
		}
	}
	for _, c := range Corners(bPos, bSize) {
		if RectangleContains(aPos, aSize, c) {
			return true
		}
	}
	return false
}

// PointBlocked 任一静态障碍阻挡该点即返回 true
func PointBlocked(obstacles []StaticObject, p Coordinate) bool {
	for _, o := range obstacles {
		if o.BlocksPoint(p) {
			return true
		}
	}
	return false
}

// segmentDistance 点 p 到线段 ab 的最短距离
func segmentDistance(p, a, b Coordinate) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Sub(a).Length()
	}
	t := p.Sub(a).Dot(ab) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Sub(a.Add(ab.Scale(t))).Length()
}
