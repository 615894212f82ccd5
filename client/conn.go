package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"octoarena/game"
	"octoarena/logging"
	"octoarena/protocol"
)

// ErrClosed 连接已关闭
var ErrClosed = errors.New("client: connection closed")

// Handler 接收服务端广播；回调在读协程中执行
type Handler interface {
	OnRegister(*protocol.RegisterUserResponse)
	OnStartGame(*protocol.StartGameResponse)
	OnUpdateState(*protocol.UpdateStateResponse)
	OnError(*protocol.ErrorResponse)
}

// Conn 客户端 WebSocket 连接，实现 game.Transport
type Conn struct {
	ws   *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

var _ game.Transport = (*Conn)(nil)

// Dial 连接转发服务，如 ws://localhost:8080/ws
func Dial(ctx context.Context, url string) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Conn{ws: ws, send: make(chan []byte, 64)}, nil
}

// SendStates 发送一批本地状态（入队即返回，不等待确认）
func (c *Conn) SendStates(playerID string, states []game.EntityState) error {
	return c.write(&protocol.UpdateStateParams{PlayerID: playerID, UpdateQueue: states})
}

// Register 请求加入房间
func (c *Conn) Register(room, name, color string) error {
	return c.write(&protocol.RegisterUserParams{RoomName: room, UserName: name, Color: color})
}

// StartGame 请求开始游戏
func (c *Conn) StartGame(room string) error {
	return c.write(&protocol.StartGameParams{RoomName: room})
}

func (c *Conn) write(msg any) error {
	b, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- b:
		return nil
	default:
		return errors.New("client: send queue full")
	}
}

// Close 关闭发送队列与底层连接
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Run 启动写协程并在当前协程读取，直到连接断开或 ctx 取消
func (c *Conn) Run(ctx context.Context, h Handler) error {
	go c.writePump()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
			_ = c.ws.Close()
		case <-done:
		}
	}()
	err := c.readPump(h)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// writePump 独立协程，负责从 send 队列写出到 WS
func (c *Conn) writePump() {
	for msg := range c.send {
		c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			logging.Log.Warnw("write failed", "err", err)
			_ = c.ws.Close()
			return
		}
	}
	_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump 解码广播并分发给 Handler
func (c *Conn) readPump(h Handler) error {
	defer c.Close()
	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		msg, err := protocol.DecodeResponse(payload)
		if err != nil {
			logging.Log.Debugw("bad message", "err", err)
			continue
		}
		switch m := msg.(type) {
		case *protocol.RegisterUserResponse:
			h.OnRegister(m)
		case *protocol.StartGameResponse:
			h.OnStartGame(m)
		case *protocol.UpdateStateResponse:
			h.OnUpdateState(m)
		case *protocol.ErrorResponse:
			h.OnError(m)
		}
	}
}
