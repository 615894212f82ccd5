package game

import (
	"context"
	"time"

	"octoarena/logging"
)

// Run 启动场景的 Tick 循环（单协程推进：输入 → 更新 → 渲染），直到 ctx 取消
func (s *Scene) Run(ctx context.Context) error {
	if s.tickerStarted {
		return nil
	}
	s.tickerStarted = true
	defer func() { s.tickerStarted = false }()

	s.Start(ctx)
	defer s.Close()

	logging.Log.Infow("scene running", "tick", s.cfg.TickInterval, "flush", s.cfg.FlushInterval)
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logging.Log.Infow("scene stopped", "ticks", s.ambient.Ticks)
			return ctx.Err()
		case <-ticker.C:
			s.Tick()
		}
	}
}
