package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"octoarena/logging"
	"octoarena/protocol"
)

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	ws      *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter

	mu     sync.Mutex
	room   string
	closed bool
}

func NewClientConn(ws *websocket.Conn, limiter *rate.Limiter) *ClientConn {
	return &ClientConn{
		ws:      ws,
		send:    make(chan []byte, 256),
		limiter: limiter,
	}
}

// Room 连接当前所在房间
func (c *ClientConn) Room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

func (c *ClientConn) setRoom(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = name
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）
func (c *ClientConn) Enqueue(b []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		// 丢弃：慢连接不能拖住整个房间
		return false
	}
}

// Close 关闭发送队列，写协程随之退出
func (c *ClientConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *ClientConn) sendError(err error) {
	b, encErr := protocol.Encode(&protocol.ErrorResponse{Message: err.Error()})
	if encErr != nil {
		return
	}
	c.Enqueue(b)
}

// writePump 独立协程，负责从 send 队列写出到 WS
func (c *ClientConn) writePump() {
	ping := time.NewTicker(30 * time.Second)
	defer func() {
		ping.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端请求，解码后交给房间管理器
func (c *ClientConn) readPump(m *RoomManager) {
	defer c.ws.Close()
	// 读泵退出时，移出房间并结束写协程
	defer c.Close()
	defer m.leave(c)
	c.ws.SetReadLimit(1 << 20) // 1MB
	c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error { c.ws.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Log.Debugw("read error", "room", c.Room(), "err", err)
			}
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		if !c.limiter.Allow() {
			m.metrics.IncRateLimited()
			continue
		}
		msg, err := protocol.DecodeRequest(payload)
		if err != nil {
			m.metrics.IncDecodeErrors()
			logging.Log.Debugw("bad request", "err", err)
			continue
		}
		m.handle(c, msg)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// HandleWS WebSocket 接入；房间由 register_user 消息决定
func (m *RoomManager) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Log.Warnw("upgrade error", "err", err)
		return
	}

	client := NewClientConn(ws, rate.NewLimiter(m.rateLimit, m.burst))
	m.metrics.IncConnections()
	logging.Log.Debugw("client connected", "remote", r.RemoteAddr)

	go client.writePump()
	go client.readPump(m)
}
