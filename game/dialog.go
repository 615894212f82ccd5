package game

const (
	fuelPerPress     = 5.0
	fuelDecayPerTick = 0.5
	hintSwitchTicks  = 150
	successFontSize  = 42
	successGap       = 15
	successBottom    = 90
)

// FuelDialog 加油弹窗：按 f 加油（边沿触发），不按时缓慢回落；点击任意处关闭
type FuelDialog struct {
	dialogSize     Dimensions
	meterSize      Dimensions
	onClose        func()
	onFullyFueled  func()
	percentFull    float64
	fuelPressed    bool
	ticksSinceOpen int
}

// NewFuelDialog 创建弹窗；initial 为初始油量百分比
func NewFuelDialog(initial float64, onClose, onFullyFueled func()) *FuelDialog {
	return &FuelDialog{
		dialogSize:    Dimensions{Width: 500, Height: 800},
		meterSize:     Dimensions{Width: 15, Height: 400},
		onClose:       onClose,
		onFullyFueled: onFullyFueled,
		percentFull:   initial,
	}
}

// PercentFull 当前油量
func (d *FuelDialog) PercentFull() float64 { return d.percentFull }

// ZIndex 弹窗总在最上层
func (d *FuelDialog) ZIndex() (int, bool) { return zDialog, true }

// UpdateState 处理关闭、加油与回落
func (d *FuelDialog) UpdateState(sc *Scene) {
	d.ticksSinceOpen++
	amb := sc.Ambient()

	if amb.Mouse.Pressed {
		sc.RemoveSprite(d)
		if d.onClose != nil {
			d.onClose()
		}
		return
	}

	switch {
	case d.percentFull < 100 && !d.fuelPressed && amb.Keyboard.F:
		d.percentFull = min(100, d.percentFull+fuelPerPress)
		if d.percentFull == 100 && d.onFullyFueled != nil {
			d.onFullyFueled()
		}
		d.fuelPressed = true
	case d.percentFull < 100:
		d.percentFull = max(0, d.percentFull-fuelDecayPerTick)
	}

	if !amb.Keyboard.F {
		d.fuelPressed = false
	}
}

func (d *FuelDialog) hint() string {
	if d.ticksSinceOpen < hintSwitchTicks {
		return "press f to fuel"
	}
	return "press f (rapidly) to fuel"
}

// Render 以弹窗左上角为原点绘制，弹窗在表面中居中
func (d *FuelDialog) Render(s Surface) {
	canvas := s.Size()
	origin := Coordinate{
		X: (canvas.Width - d.dialogSize.Width) / 2,
		Y: (canvas.Height - d.dialogSize.Height) / 2,
	}
	at := func(x, y float64) Coordinate { return Coordinate{X: origin.X + x, Y: origin.Y + y} }

	s.FillRect(origin, d.dialogSize, "grey")

	// 标题栏
	s.Text("fueling station", at(10, 16), 12, AlignLeft, "black")
	s.Text("x", at(d.dialogSize.Width-2, 12), 12, AlignRight, "black")
	s.StrokePath([]Coordinate{at(0, 21), at(d.dialogSize.Width, 21)}, false, 1, "black")

	s.Text(d.hint(), at(d.dialogSize.Width/2, 95), 15, AlignCenter, "white")

	// 油量表
	meter := at((d.dialogSize.Width-d.meterSize.Width)/2, (d.dialogSize.Height-d.meterSize.Height)/2)
	s.FillRect(meter, d.meterSize, "lightgrey")
	h := d.meterSize.Height * d.percentFull / 100
	s.FillRect(Coordinate{X: meter.X, Y: meter.Y + d.meterSize.Height - h}, Dimensions{Width: d.meterSize.Width, Height: h}, "green")

	if d.percentFull >= 100 {
		d.renderSuccess(s, at)
	}
}

// renderSuccess 文字与大拇指作为整体水平居中
func (d *FuelDialog) renderSuccess(s Surface, at func(x, y float64) Coordinate) {
	const msg = "good job"
	thumb := Dimensions{Width: 162 * 36 / 154.0, Height: 36}
	textWidth := s.MeasureText(msg, successFontSize)
	left := (d.dialogSize.Width - (textWidth + successGap + thumb.Width)) / 2
	baseline := d.dialogSize.Height - successBottom

	s.Text(msg, at(left, baseline), successFontSize, AlignLeft, "white")
	s.DrawFigure(FigureUpthumb, 0, at(left+textWidth+successGap, baseline-thumb.Height+3), thumb, false, "")
}
