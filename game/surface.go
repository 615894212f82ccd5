package game

// Align 文本水平对齐
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Figure 可绘制的位图种类（具体图片由渲染端决定）
type Figure string

const (
	FigurePlayer    Figure = "player"
	FigureFuelPump  Figure = "fuel_pump"
	FigureUpthumb   Figure = "upthumb"
	FigureMegaparty Figure = "megaparty"
	FigureVictory   Figure = "victory"
)

// Surface 注入的渲染能力：场景只通过它绘制，不做全局查找
type Surface interface {
	// Size 画布尺寸，弹窗与覆盖层据此居中
	Size() Dimensions
	Clear()
	// StrokePath 按顺序连接各点描边；closed 为 true 时首尾闭合
	StrokePath(points []Coordinate, closed bool, width float64, color string)
	FillRect(pos Coordinate, size Dimensions, color string)
	StrokeRect(pos Coordinate, size Dimensions, width float64, color string)
	// DrawFigure 绘制位图；frame 为动画帧，flipX 为水平镜像
	DrawFigure(f Figure, frame int, pos Coordinate, size Dimensions, flipX bool, tint string)
	Text(s string, pos Coordinate, fontSize float64, align Align, color string)
	// MeasureText 文本在给定字号下的宽度
	MeasureText(s string, fontSize float64) float64
}

// Transport 出站传输：一次调用发送一整批状态，是否可靠由传输层负责
type Transport interface {
	SendStates(playerID string, states []EntityState) error
}
