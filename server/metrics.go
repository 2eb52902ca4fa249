package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

// Metrics 记录注册表运行期的关键指标（用于监控与调试）
type Metrics struct {
	Joins        int64 // 成功加入数
	Leaves       int64 // 离开/断连数
	Moves        int64 // 已应用的移动事件数
	OrphanMoves  int64 // 因找不到归属空间被丢弃的移动数
	Chats        int64 // 已广播的聊天消息数
	OrphanChats  int64 // 因未加入被丢弃的聊天数
	Snapshots    int64 // 已广播的全量快照数
	SendDrops    int64 // 因发送队列满被丢弃的消息数
	ActiveSpaces int64 // 当前存活空间数（gauge）
}

func (m *Metrics) IncJoins()       { atomic.AddInt64(&m.Joins, 1) }
func (m *Metrics) IncLeaves()      { atomic.AddInt64(&m.Leaves, 1) }
func (m *Metrics) IncMoves()       { atomic.AddInt64(&m.Moves, 1) }
func (m *Metrics) IncOrphanMoves() { atomic.AddInt64(&m.OrphanMoves, 1) }
func (m *Metrics) IncChats()       { atomic.AddInt64(&m.Chats, 1) }
func (m *Metrics) IncOrphanChats() { atomic.AddInt64(&m.OrphanChats, 1) }
func (m *Metrics) IncSnapshots()   { atomic.AddInt64(&m.Snapshots, 1) }
func (m *Metrics) IncSendDrops()   { atomic.AddInt64(&m.SendDrops, 1) }

func (m *Metrics) SetSpaces(n int64) { atomic.StoreInt64(&m.ActiveSpaces, n) }

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	return map[string]any{
		"joins":         atomic.LoadInt64(&m.Joins),
		"leaves":        atomic.LoadInt64(&m.Leaves),
		"moves":         atomic.LoadInt64(&m.Moves),
		"orphan_moves":  atomic.LoadInt64(&m.OrphanMoves),
		"chats":         atomic.LoadInt64(&m.Chats),
		"orphan_chats":  atomic.LoadInt64(&m.OrphanChats),
		"snapshots":     atomic.LoadInt64(&m.Snapshots),
		"send_drops":    atomic.LoadInt64(&m.SendDrops),
		"active_spaces": atomic.LoadInt64(&m.ActiveSpaces),
	}
}

// HandleMetrics 输出运行指标
// GET /metrics
func HandleMetrics(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reg.Metrics().Snapshot())
	}
}
