package game

import "math"

// OctagonalWall 居中的正八边形围墙，构造后不可变
// 碰撞只针对描边线条，不针对多边形内部
type OctagonalWall struct {
	octagonSize  float64
	strokeWidth  float64
	sideLength   float64
	cornerLength float64
	vertices     [8]Coordinate

	// 包围盒（已含半个描边宽度），用于快速排除
	min Coordinate
	max Coordinate
}

// NewOctagonalWall 根据外接正方形边长与画布尺寸生成八边形顶点
func NewOctagonalWall(octagonSize float64, canvas Dimensions, strokeWidth float64) *OctagonalWall {
	side := math.Sqrt2 * octagonSize / (math.Sqrt2 + 2)
	corner := side / math.Sqrt2
	w := &OctagonalWall{
		octagonSize:  octagonSize,
		strokeWidth:  strokeWidth,
		sideLength:   side,
		cornerLength: corner,
	}

	topLeft := Coordinate{
		X: (canvas.Width - octagonSize) / 2,
		Y: (canvas.Height - octagonSize) / 2,
	}
	// 从左边上端开始顺时针：斜角与直边交替
	steps := [7]Coordinate{
		{X: corner, Y: -corner},
		{X: side, Y: 0},
		{X: corner, Y: corner},
		{X: 0, Y: side},
		{X: -corner, Y: corner},
		{X: -side, Y: 0},
		{X: -corner, Y: -corner},
	}
	w.vertices[0] = Coordinate{X: topLeft.X, Y: topLeft.Y + corner}
	for i, d := range steps {
		w.vertices[i+1] = w.vertices[i].Add(d)
	}

	half := strokeWidth / 2
	w.min = Coordinate{X: topLeft.X - half, Y: topLeft.Y - half}
	w.max = Coordinate{X: topLeft.X + octagonSize + half, Y: topLeft.Y + octagonSize + half}
	return w
}

// Vertices 返回 8 个顶点（闭合路径，最后一点连回第一点）
func (w *OctagonalWall) Vertices() [8]Coordinate { return w.vertices }

// SideLength 直边长度
func (w *OctagonalWall) SideLength() float64 { return w.sideLength }

// CornerLength 斜角在坐标轴上的投影长度
func (w *OctagonalWall) CornerLength() float64 { return w.cornerLength }

// BlocksPoint 点是否落在描边上（到任一边的距离不超过半个描边宽度）
func (w *OctagonalWall) BlocksPoint(p Coordinate) bool {
	if p.X < w.min.X || p.X > w.max.X || p.Y < w.min.Y || p.Y > w.max.Y {
		return false
	}
	half := w.strokeWidth / 2
	for i := range w.vertices {
		a := w.vertices[i]
		b := w.vertices[(i+1)%len(w.vertices)]
		if segmentDistance(p, a, b) <= half {
			return true
		}
	}
	return false
}

// Render 描边闭合路径
func (w *OctagonalWall) Render(s Surface) {
	s.StrokePath(w.vertices[:], true, w.strokeWidth, "blue")
}

// ZIndex 静态墙没有层级，最先绘制
func (w *OctagonalWall) ZIndex() (int, bool) { return 0, false }
