package server

import (
	"sync/atomic"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	TickCount         int64 // 统计的 Tick 次数
	TotalTickNs       int64 // Tick 累计耗时（纳秒）
	InputsAccepted    int64 // 被接受的输入数
	ChanFullDiscarded int64 // 因通道满被丢弃的输入数
	ViewRefreshes     int64 // 完整视野重算次数
	EntitiesAdded     int64 // 新进入视野的实体数
	EntitiesRemoved   int64 // 下发移除的实体数
	EntitiesPruned    int64 // 已失效而被清理的 id 数
	RemovalsQueued    int64 // 外部排入移除队列的次数
	FoodEaten         int64
}

func (m *RoomMetrics) IncAccepted()          { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *RoomMetrics) IncChanFullDiscarded() { atomic.AddInt64(&m.ChanFullDiscarded, 1) }
func (m *RoomMetrics) IncRemovalsQueued()    { atomic.AddInt64(&m.RemovalsQueued, 1) }
func (m *RoomMetrics) IncFoodEaten()         { atomic.AddInt64(&m.FoodEaten, 1) }
func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// AddDelta 累计一次 UpdateNodes 的结果
func (m *RoomMetrics) AddDelta(d Delta) {
	if d.Refreshed {
		atomic.AddInt64(&m.ViewRefreshes, 1)
	}
	atomic.AddInt64(&m.EntitiesAdded, int64(d.Added))
	atomic.AddInt64(&m.EntitiesRemoved, int64(len(d.Removed)))
	atomic.AddInt64(&m.EntitiesPruned, int64(d.Pruned))
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":          tick,
		"avg_tick_ms":         avgMs,
		"inputs_accepted":     atomic.LoadInt64(&m.InputsAccepted),
		"chan_full_discarded": atomic.LoadInt64(&m.ChanFullDiscarded),
		"view_refreshes":      atomic.LoadInt64(&m.ViewRefreshes),
		"entities_added":      atomic.LoadInt64(&m.EntitiesAdded),
		"entities_removed":    atomic.LoadInt64(&m.EntitiesRemoved),
		"entities_pruned":     atomic.LoadInt64(&m.EntitiesPruned),
		"removals_queued":     atomic.LoadInt64(&m.RemovalsQueued),
		"food_eaten":          atomic.LoadInt64(&m.FoodEaten),
	}
}
