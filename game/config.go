package game

import "time"

// Config 场景与控制器的可调参数
type Config struct {
	TickInterval  time.Duration // 更新+渲染周期（约 30Hz）
	FlushInterval time.Duration // 本地出站队列发送周期，与 Tick 相互独立

	MaxSpeed   float64    // 每 Tick 最大位移
	PlayerSize Dimensions // 玩家包围盒
	CanvasSize Dimensions

	OctagonSize     float64 // 八边形墙外接正方形边长
	WallStrokeWidth float64

	// RemoteBacklogLimit 远端入站队列上限，超过时丢弃最旧快照；0 表示不限
	RemoteBacklogLimit int

	// LaunchCountdown 开始游戏后倒计时时长
	LaunchCountdown time.Duration
}

// DefaultConfig 默认参数
func DefaultConfig() Config {
	return Config{
		TickInterval:       33 * time.Millisecond,
		FlushInterval:      100 * time.Millisecond,
		MaxSpeed:           5,
		PlayerSize:         Dimensions{Width: 40, Height: 50},
		CanvasSize:         Dimensions{Width: 900, Height: 900},
		OctagonSize:        800,
		WallStrokeWidth:    6,
		RemoteBacklogLimit: 0,
		LaunchCountdown:    3 * time.Second,
	}
}

// withDefaults 用默认值补齐零值字段
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TickInterval <= 0 {
		c.TickInterval = d.TickInterval
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = d.FlushInterval
	}
	if c.MaxSpeed <= 0 {
		c.MaxSpeed = d.MaxSpeed
	}
	if c.PlayerSize == (Dimensions{}) {
		c.PlayerSize = d.PlayerSize
	}
	if c.CanvasSize == (Dimensions{}) {
		c.CanvasSize = d.CanvasSize
	}
	if c.OctagonSize <= 0 {
		c.OctagonSize = d.OctagonSize
	}
	if c.WallStrokeWidth <= 0 {
		c.WallStrokeWidth = d.WallStrokeWidth
	}
	if c.LaunchCountdown <= 0 {
		c.LaunchCountdown = d.LaunchCountdown
	}
	if c.RemoteBacklogLimit < 0 {
		c.RemoteBacklogLimit = 0
	}
	return c
}
