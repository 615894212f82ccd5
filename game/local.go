package game

import (
	"context"
	"sync"
	"time"

	"octoarena/logging"
)

// LocalController 由本客户端输入驱动的玩家
// 状态机：Idle ⇄ Moving，由本 Tick 是否产生位移隐式决定
type LocalController struct {
	player

	maxSpeed  float64
	interval  time.Duration
	transport Transport

	mu          sync.Mutex
	updateQueue []EntityState // 出站队列，每次发送后整体清空

	stopMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLocalController 创建本地控制器；transport 不可为空
func NewLocalController(d Descriptor, cfg Config, transport Transport) (*LocalController, error) {
	if transport == nil {
		return nil, ErrNoTransport
	}
	cfg = cfg.withDefaults()
	return &LocalController{
		player:    newPlayer(d, cfg.PlayerSize, zLocalPlayer),
		maxSpeed:  cfg.MaxSpeed,
		interval:  cfg.FlushInterval,
		transport: transport,
	}, nil
}

// UpdateState 根据指针目标计算下一状态，按“全量→仅水平→仅垂直→原地”顺序解决碰撞
func (c *LocalController) UpdateState(sc *Scene) {
	c.step(sc.Ambient(), sc.StaticObjects())
}

func (c *LocalController) step(amb AmbientState, obstacles []StaticObject) {
	cur := c.state
	center := c.center()
	vec := Coordinate{X: amb.Mouse.X - center.X, Y: amb.Mouse.Y - center.Y}
	mag := vec.Length()

	next := cur
	next.WalkingTicks = cur.WalkingTicks + 1
	if mag > c.maxSpeed && amb.Mouse.Pressed {
		next.Position = cur.Position.Add(vec.Scale(c.maxSpeed / mag))
		if vec.X < 0 {
			next.FacingLeft = true
		} else if vec.X > 0 {
			next.FacingLeft = false
		}
	} else {
		next.WalkingTicks = 0
	}

	c.commit(c.resolve(cur, next, obstacles))
}

// resolve 轴向受限滑动：依次尝试对角、仅水平、仅垂直，均受阻则原地不动
func (c *LocalController) resolve(cur, next EntityState, obstacles []StaticObject) EntityState {
	if !c.hasCollision(next.Position, obstacles) {
		return next
	}

	horizontal := next
	horizontal.Position.Y = cur.Position.Y
	if !c.hasCollision(horizontal.Position, obstacles) {
		return horizontal
	}

	vertical := next
	vertical.Position.X = cur.Position.X
	if !c.hasCollision(vertical.Position, obstacles) {
		return vertical
	}

	stay := next
	stay.Position = cur.Position
	return stay
}

// hasCollision 只检测包围盒四个角
func (c *LocalController) hasCollision(pos Coordinate, obstacles []StaticObject) bool {
	for _, corner := range Corners(pos, c.desc.Size) {
		if PointBlocked(obstacles, corner) {
			return true
		}
	}
	return false
}

// commit 状态有变化时替换当前状态并入队
func (c *LocalController) commit(next EntityState) {
	if next == c.state {
		return
	}
	c.state = next
	c.mu.Lock()
	c.updateQueue = append(c.updateQueue, next)
	c.mu.Unlock()
}

// Pending 出站队列长度
func (c *LocalController) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.updateQueue)
}

// Flush 取出整个出站队列交给传输层；队列为空则什么也不做
// 交出后立即清空，不等待确认、不重试
func (c *LocalController) Flush() int {
	c.mu.Lock()
	batch := c.updateQueue
	c.updateQueue = nil
	c.mu.Unlock()

	if len(batch) == 0 {
		return 0
	}
	if err := c.transport.SendStates(c.desc.ID, batch); err != nil {
		logging.Log.Warnw("flush dropped", "player", c.desc.ID, "states", len(batch), "err", err)
	}
	return len(batch)
}

// Start 启动定时发送，生命周期绑定 ctx；重复调用无效
func (c *LocalController) Start(ctx context.Context) {
	c.stopMu.Lock()
	defer c.stopMu.Unlock()
	if c.cancel != nil {
		return
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go c.flushLoop(ctx, c.done)
}

func (c *LocalController) flushLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Flush()
		}
	}
}

// Stop 停止定时发送并等待协程退出
func (c *LocalController) Stop() {
	c.stopMu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.stopMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
