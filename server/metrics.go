package server

import (
	"sync/atomic"

	"github.com/dustin/go-humanize"
)

// RelayMetrics 记录转发服务运行期的关键指标（用于监控与调试）
type RelayMetrics struct {
	Connections   int64 // 当前连接数
	Registrations int64 // 注册请求数
	Batches       int64 // 转发的状态批次
	States        int64 // 转发的状态快照总数
	RateLimited   int64 // 因限流被丢弃的入站消息
	DecodeErrors  int64 // 无法解析的入站消息
	SendDropped   int64 // 因发送队列满被丢弃的出站消息
	BytesOut      int64 // 出站字节累计
}

func (m *RelayMetrics) IncConnections() { atomic.AddInt64(&m.Connections, 1) }
func (m *RelayMetrics) DecConnections() { atomic.AddInt64(&m.Connections, -1) }
func (m *RelayMetrics) IncRegistrations() { atomic.AddInt64(&m.Registrations, 1) }
func (m *RelayMetrics) IncRateLimited() { atomic.AddInt64(&m.RateLimited, 1) }
func (m *RelayMetrics) IncDecodeErrors() { atomic.AddInt64(&m.DecodeErrors, 1) }
func (m *RelayMetrics) IncSendDropped() { atomic.AddInt64(&m.SendDropped, 1) }
func (m *RelayMetrics) AddBytes(n int64) { atomic.AddInt64(&m.BytesOut, n) }
func (m *RelayMetrics) IncRelayed(states int) {
	atomic.AddInt64(&m.Batches, 1)
	atomic.AddInt64(&m.States, int64(states))
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RelayMetrics) Snapshot() map[string]any {
	bytesOut := atomic.LoadInt64(&m.BytesOut)
	return map[string]any{
		"connections":     atomic.LoadInt64(&m.Connections),
		"registrations":   atomic.LoadInt64(&m.Registrations),
		"batches_relayed": atomic.LoadInt64(&m.Batches),
		"states_relayed":  atomic.LoadInt64(&m.States),
		"rate_limited":    atomic.LoadInt64(&m.RateLimited),
		"decode_errors":   atomic.LoadInt64(&m.DecodeErrors),
		"send_dropped":    atomic.LoadInt64(&m.SendDropped),
		"bytes_out":       bytesOut,
		"bytes_out_human": humanize.Bytes(uint64(bytesOut)),
	}
}
