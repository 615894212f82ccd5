package server

import (
	"errors"
	"sync"

	"golang.org/x/time/rate"

	"octoarena/logging"
	"octoarena/protocol"
)

// RoomManager 管理在线房间，并把请求交给登记表处理
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	registry *Registry
	metrics  *RelayMetrics

	// 每个连接的入站限流
	rateLimit rate.Limit
	burst     int
}

// NewRoomManager 创建房间管理器；limit 为每秒允许的入站消息数
func NewRoomManager(reg *Registry, limit float64, burst int) *RoomManager {
	if limit <= 0 {
		limit = 50
	}
	if burst <= 0 {
		burst = 100
	}
	return &RoomManager{
		rooms:     make(map[string]*Room),
		registry:  reg,
		metrics:   &RelayMetrics{},
		rateLimit: rate.Limit(limit),
		burst:     burst,
	}
}

// Metrics 转发指标
func (m *RoomManager) Metrics() *RelayMetrics { return m.metrics }

// GetOrCreateRoom 获取或创建在线房间
func (m *RoomManager) GetOrCreateRoom(name string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[name]
	if !ok {
		r = NewRoom(name, m.metrics)
		m.rooms[name] = r
	}
	return r
}

// lookupRoom 只查询，不创建
func (m *RoomManager) lookupRoom(name string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[name]
	return r, ok
}

// handle 处理一条已解码的请求
func (m *RoomManager) handle(c *ClientConn, msg any) {
	switch req := msg.(type) {
	case *protocol.RegisterUserParams:
		m.handleRegister(c, req)
	case *protocol.StartGameParams:
		m.handleStartGame(c, req)
	case *protocol.UpdateStateParams:
		m.handleUpdateState(c, req)
	}
}

// handleRegister 登记玩家，连接加入房间，并向全房间广播注册结果
func (m *RoomManager) handleRegister(c *ClientConn, req *protocol.RegisterUserParams) {
	desc, all, phase, err := m.registry.Register(req.RoomName, req.UserName, req.Color)
	if err != nil {
		logging.Log.Warnw("register rejected", "room", req.RoomName, "user", req.UserName, "err", err)
		c.sendError(err)
		return
	}
	m.metrics.IncRegistrations()

	room := m.GetOrCreateRoom(req.RoomName)
	if prev := c.Room(); prev != "" && prev != req.RoomName {
		if old, ok := m.lookupRoom(prev); ok {
			old.Leave(c)
		}
	}
	c.setRoom(req.RoomName)
	room.Join(c)

	b, err := protocol.Encode(&protocol.RegisterUserResponse{
		RegisteredPlayer: desc,
		AllPlayers:       all,
		GamePhase:        phase,
	})
	if err != nil {
		logging.Log.Errorw("encode register response", "err", err)
		return
	}
	room.Broadcast(b)
}

// handleStartGame 房间进入游戏阶段并广播
func (m *RoomManager) handleStartGame(c *ClientConn, req *protocol.StartGameParams) {
	all, err := m.registry.StartGame(req.RoomName)
	if err != nil {
		logging.Log.Warnw("start game rejected", "room", req.RoomName, "err", err)
		c.sendError(err)
		return
	}
	b, err := protocol.Encode(&protocol.StartGameResponse{AllPlayers: all})
	if err != nil {
		logging.Log.Errorw("encode start game response", "err", err)
		return
	}
	logging.Log.Infow("game started", "room", req.RoomName, "players", len(all))
	m.GetOrCreateRoom(req.RoomName).Broadcast(b)
}

// handleUpdateState 不做任何校验，原样转发到玩家所在房间
func (m *RoomManager) handleUpdateState(c *ClientConn, req *protocol.UpdateStateParams) {
	roomName, err := m.registry.RoomOf(req.PlayerID)
	if err != nil {
		if errors.Is(err, ErrUnknownPlayer) {
			logging.Log.Debugw("update for unknown player", "player", req.PlayerID)
		}
		return
	}
	room, ok := m.lookupRoom(roomName)
	if !ok {
		return
	}
	b, err := protocol.Encode(req)
	if err != nil {
		return
	}
	m.metrics.IncRelayed(len(req.UpdateQueue))
	room.Broadcast(b)
}

// leave 连接断开时移出房间
func (m *RoomManager) leave(c *ClientConn) {
	if name := c.Room(); name != "" {
		if r, ok := m.lookupRoom(name); ok {
			r.Leave(c)
		}
	}
	m.metrics.DecConnections()
}
