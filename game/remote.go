package game

import (
	"sync"

	"octoarena/logging"
)

// RemoteController 由远端快照队列驱动的玩家
// 每个本地 Tick 取出一个快照直接作为当前状态；队列为空则保持原状态
type RemoteController struct {
	player

	limit int

	mu          sync.Mutex
	updateQueue []EntityState
	dropped     int
}

// NewRemoteController 创建远端控制器；limit 为 0 表示队列不设上限
func NewRemoteController(d Descriptor, cfg Config) *RemoteController {
	cfg = cfg.withDefaults()
	return &RemoteController{
		player: newPlayer(d, cfg.PlayerSize, zRemotePlayer),
		limit:  cfg.RemoteBacklogLimit,
	}
}

// Enqueue 追加一批快照（来自传输回调，可在任意协程调用）
func (c *RemoteController) Enqueue(states []EntityState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range states {
		if !finite(s.Position) {
			continue
		}
		c.updateQueue = append(c.updateQueue, s)
	}
	if c.limit > 0 && len(c.updateQueue) > c.limit {
		n := len(c.updateQueue) - c.limit
		c.dropped += n
		c.updateQueue = append(c.updateQueue[:0], c.updateQueue[n:]...)
		logging.Log.Debugw("remote backlog trimmed", "player", c.desc.ID, "dropped", n)
	}
}

// UpdateState 弹出一个快照；不插值、不重算
func (c *RemoteController) UpdateState(*Scene) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.updateQueue) == 0 {
		return
	}
	c.state = c.updateQueue[0]
	c.updateQueue = c.updateQueue[1:]
}

// Backlog 待回放的快照数
func (c *RemoteController) Backlog() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.updateQueue)
}

// Dropped 因超过上限被丢弃的快照总数
func (c *RemoteController) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}
