package game

// FuelingStation 属于某个玩家的加油站；只对本地玩家自己的加油站生效
type FuelingStation struct {
	desc StationDescriptor
	size Dimensions

	canBeActivated bool
	dialogOpen     bool
	fullyFueled    bool
}

// NewFuelingStation 创建加油站
func NewFuelingStation(d StationDescriptor) *FuelingStation {
	return &FuelingStation{desc: d, size: Dimensions{Width: 22, Height: 50}}
}

// Descriptor 布局信息
func (f *FuelingStation) Descriptor() StationDescriptor { return f.desc }

// CanBeActivated 本地玩家是否与加油站重叠
func (f *FuelingStation) CanBeActivated() bool { return f.canBeActivated }

// DialogOpen 加油弹窗是否打开
func (f *FuelingStation) DialogOpen() bool { return f.dialogOpen }

// FullyFueled 是否已加满
func (f *FuelingStation) FullyFueled() bool { return f.fullyFueled }

// ZIndex 加油站在玩家之下
func (f *FuelingStation) ZIndex() (int, bool) { return zStation, true }

// UpdateState 检测重叠；可激活且按下空格时打开加油弹窗
func (f *FuelingStation) UpdateState(sc *Scene) {
	cur := sc.CurrentPlayer()
	if cur == nil || cur.desc.ID != f.desc.PlayerID {
		return
	}

	f.canBeActivated = RectanglesOverlap(f.desc.Position, f.size, cur.state.Position, cur.desc.Size)

	if sc.Ambient().Keyboard.Space && f.canBeActivated && !f.dialogOpen {
		f.dialogOpen = true
		initial := 0.0
		if f.fullyFueled {
			initial = 100
		}
		sc.AddSprite(NewFuelDialog(initial,
			func() { f.dialogOpen = false },
			func() { f.fullyFueled = true },
		))
	}
}

// Render 绘制油泵；可激活时加红框
func (f *FuelingStation) Render(s Surface) {
	s.DrawFigure(FigureFuelPump, 0, f.desc.Position, f.size, false, "")
	if f.canBeActivated {
		s.StrokeRect(
			Coordinate{X: f.desc.Position.X - 5, Y: f.desc.Position.Y - 5},
			Dimensions{Width: f.size.Width + 10, Height: f.size.Height + 10},
			2, "red",
		)
	}
}
