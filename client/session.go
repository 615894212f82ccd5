package client

import (
	"errors"
	"sync"

	"octoarena/game"
	"octoarena/logging"
	"octoarena/protocol"
)

// Phase 客户端阶段
type Phase string

const (
	PhaseJoinGame        Phase = "join_game"
	PhaseJoinGamePending Phase = "join_game_pending"
	PhaseLobby           Phase = "lobby"
	PhaseRunGame         Phase = "run_game"
)

// ErrNotAdmin 只有管理员可以开始游戏
var ErrNotAdmin = errors.New("client: only the room admin can start the game")

// Session 把服务端广播接入场景：注册 → 创建实体，状态 → 远端队列，开始 → 切换阶段
type Session struct {
	conn  *Conn
	scene *game.Scene

	room  string
	name  string
	color string

	mu      sync.Mutex
	phase   Phase
	isAdmin bool
	lastErr string
}

var _ Handler = (*Session)(nil)

// NewSession 创建会话并告知场景本地玩家名
func NewSession(conn *Conn, scene *game.Scene, room, name, color string) *Session {
	scene.SetLocalName(name)
	return &Session{conn: conn, scene: scene, room: room, name: name, color: color, phase: PhaseJoinGame}
}

// Join 发送注册请求
func (s *Session) Join() error {
	s.setPhase(PhaseJoinGamePending)
	if err := s.conn.Register(s.room, s.name, s.color); err != nil {
		s.setPhase(PhaseJoinGame)
		return err
	}
	return nil
}

// StartGame 管理员请求开始游戏
func (s *Session) StartGame() error {
	s.mu.Lock()
	admin := s.isAdmin
	s.mu.Unlock()
	if !admin {
		return ErrNotAdmin
	}
	return s.conn.StartGame(s.room)
}

// Phase 当前阶段
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// IsAdmin 本地玩家是否为管理员
func (s *Session) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isAdmin
}

// LastError 最近一次服务端错误
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) setPhase(p Phase) {
	s.mu.Lock()
	prev := s.phase
	s.phase = p
	s.mu.Unlock()
	if prev != p {
		logging.Log.Infow("client phase", "from", prev, "to", p)
	}
}

// OnRegister 房间内有人注册：交给场景在下一次 Tick 创建实体
func (s *Session) OnRegister(m *protocol.RegisterUserResponse) {
	s.scene.RequestEntities(m.AllPlayers)
	if m.RegisteredPlayer.Name != s.name {
		return
	}
	s.mu.Lock()
	s.isAdmin = m.RegisteredPlayer.IsAdmin
	s.mu.Unlock()
	if m.GamePhase == game.PhaseRunGame {
		s.scene.StartGame()
		s.setPhase(PhaseRunGame)
		return
	}
	if s.Phase() == PhaseJoinGamePending {
		s.setPhase(PhaseLobby)
	}
}

// OnStartGame 游戏开始
func (s *Session) OnStartGame(m *protocol.StartGameResponse) {
	s.scene.RequestEntities(m.AllPlayers)
	s.scene.StartGame()
	if s.Phase() == PhaseLobby {
		s.setPhase(PhaseRunGame)
	}
}

// OnUpdateState 远端状态进入对应玩家的入站队列
func (s *Session) OnUpdateState(m *protocol.UpdateStateResponse) {
	s.scene.DeliverUpdate(m.PlayerID, m.UpdateQueue)
}

// OnError 记录服务端拒绝；注册被拒时回到初始阶段
func (s *Session) OnError(m *protocol.ErrorResponse) {
	s.mu.Lock()
	if s.phase == PhaseJoinGamePending {
		s.phase = PhaseJoinGame
	}
	s.lastErr = m.Message
	s.mu.Unlock()
	logging.Log.Warnw("server error", "message", m.Message)
}
