package game

// InputKind 输入事件类型
type InputKind int

const (
	PointerMove InputKind = iota
	PointerDown
	PointerUp
	KeyDown
	KeyUp
)

// Key 场景关心的按键
type Key int

const (
	KeyNone Key = iota
	KeySpace
	KeyF
)

// InputEvent 帧间到达的输入事件；指针坐标已换算为画布坐标
type InputEvent struct {
	Kind InputKind
	X    float64
	Y    float64
	Key  Key
}

// OnInput 入站输入（不立即改变状态），等下一次 Tick 开始时应用
func (s *Scene) OnInput(ev InputEvent) {
	select {
	case s.inputChan <- ev:
	default:
		// 丢弃：避免输入回调阻塞
	}
}

// applyInput 输入事件是环境状态的唯一写入者
func (s *Scene) applyInput(ev InputEvent) {
	switch ev.Kind {
	case PointerMove:
		s.ambient.Mouse.X = ev.X
		s.ambient.Mouse.Y = ev.Y
	case PointerDown:
		s.ambient.Mouse.Pressed = true
	case PointerUp:
		s.ambient.Mouse.Pressed = false
	case KeyDown, KeyUp:
		down := ev.Kind == KeyDown
		switch ev.Key {
		case KeySpace:
			s.ambient.Keyboard.Space = down
		case KeyF:
			s.ambient.Keyboard.F = down
		}
	}
}
