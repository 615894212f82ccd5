package server

import "sync"

// Room 在线房间：只负责房间内广播，不维护游戏状态（服务端盲转发）
type Room struct {
	Name string

	mu      sync.RWMutex
	clients map[*ClientConn]struct{}

	metrics *RelayMetrics
}

// NewRoom 创建房间，初始化数据结构
func NewRoom(name string, metrics *RelayMetrics) *Room {
	return &Room{
		Name:    name,
		clients: make(map[*ClientConn]struct{}),
		metrics: metrics,
	}
}

// Join 将连接加入房间（重复加入无副作用）
func (r *Room) Join(c *ClientConn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c] = struct{}{}
}

// Leave 将连接移出房间
func (r *Room) Leave(c *ClientConn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, c)
}

// Size 在线连接数
func (r *Room) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Broadcast 将消息发给房间内所有连接（包括发送者）
func (r *Room) Broadcast(b []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for c := range r.clients {
		if !c.Enqueue(b) && r.metrics != nil {
			r.metrics.IncSendDropped()
		}
	}
	if r.metrics != nil {
		r.metrics.AddBytes(int64(len(b) * len(r.clients)))
	}
}
