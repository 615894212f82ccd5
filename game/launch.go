package game

import (
	"fmt"
	"time"
)

const (
	partyMinHeight      = 400.0
	partyMaxHeight      = 800.0
	partyPeriodTicks    = 60
	victoryAfterTicks   = 150
	victoryNativeWidth  = 1027.0
	victoryNativeHeight = 570.0
)

// LaunchSequence 开始游戏后的覆盖层：先倒计时，结束后播放庆祝动画，随后叠加胜利图
type LaunchSequence struct {
	tick           time.Duration
	countdown      time.Duration
	countdownTicks int
	ticks          int
}

// NewLaunchSequence 倒计时按 Tick 计数，不另起定时器
func NewLaunchSequence(cfg Config) *LaunchSequence {
	cfg = cfg.withDefaults()
	return &LaunchSequence{
		tick:           cfg.TickInterval,
		countdown:      cfg.LaunchCountdown,
		countdownTicks: int((cfg.LaunchCountdown + cfg.TickInterval - 1) / cfg.TickInterval),
	}
}

// ZIndex 与弹窗同层，位于所有玩家之上
func (l *LaunchSequence) ZIndex() (int, bool) { return zDialog, true }

// UpdateState 只推进内部计数
func (l *LaunchSequence) UpdateState(*Scene) { l.ticks++ }

// Remaining 倒计时剩余秒数（向上取整）；0 表示已进入庆祝阶段
func (l *LaunchSequence) Remaining() int {
	if l.ticks >= l.countdownTicks {
		return 0
	}
	left := l.countdown - time.Duration(l.ticks)*l.tick
	return max(1, int((left+time.Second-1)/time.Second))
}

func (l *LaunchSequence) partyTicks() int { return max(0, l.ticks-l.countdownTicks) }

// partyHeight 庆祝图高度在最小与最大之间往返
func (l *LaunchSequence) partyHeight() float64 {
	t := l.partyTicks() % partyPeriodTicks
	half := float64(partyPeriodTicks) / 2
	if float64(t) < half {
		return float64(t)*(partyMaxHeight-partyMinHeight)/half + partyMinHeight
	}
	return float64(partyPeriodTicks-t)*(partyMaxHeight-partyMinHeight)/half + partyMinHeight
}

// Render 以表面中心为基准绘制
func (l *LaunchSequence) Render(s Surface) {
	canvas := s.Size()
	if n := l.Remaining(); n > 0 {
		s.Text(fmt.Sprintf("launching in %d", n), Coordinate{X: canvas.Width / 2, Y: canvas.Height / 2}, 120, AlignCenter, "blue")
		return
	}

	h := l.partyHeight()
	s.DrawFigure(FigureMegaparty, l.partyTicks(), Coordinate{X: (canvas.Width - h) / 2, Y: (canvas.Height - h) / 2}, Dimensions{Width: h, Height: h}, false, "")

	if l.partyTicks() >= victoryAfterTicks {
		w := canvas.Width - 100
		vh := w / victoryNativeWidth * victoryNativeHeight
		s.DrawFigure(FigureVictory, 0, Coordinate{X: (canvas.Width - w) / 2, Y: (canvas.Height - vh) / 2}, Dimensions{Width: w, Height: vh}, false, "")
	}
}
