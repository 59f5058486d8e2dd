package server

import (
	"cmp"
	"slices"
	"sync"
)

// DefaultViewRefreshTicks 两次完整视野重算之间的最小 Tick 间隔
const DefaultViewRefreshTicks = 5

// EntitySource 视野追踪所需的世界只读能力（World 实现该接口，测试可替换为假世界）
type EntitySource interface {
	Entities() []*Entity
	Entity(id EntityID) (*Entity, bool)
	Tick() uint64
	View() ViewBase
}

// SnakeSource 提供玩家当前的蛇列表
type SnakeSource interface {
	Snakes() []*Entity
}

// Delta 单个 Tick 的视野增量，交给封包层序列化
type Delta struct {
	Tick      uint64
	Refreshed bool       // 本 Tick 是否做了完整视野重算
	Removed   []*Entity  // 需要从客户端移除的实体，按 id 升序且唯一
	Updated   []EntityID // 需要（重新）下发的实体 id，按升序且唯一
	Added     int        // 本次重算新进入视野的数量
	Pruned    int        // 已从世界消失而被清理的 id 数量
}

func (d Delta) Empty() bool {
	return len(d.Removed) == 0 && len(d.Updated) == 0
}

// PlayerTracker 每个连接玩家一个，负责视野计算与增量生成。
//
// mu 保护全部可变状态：移除队列、可见集合与视野。
// Remove 可在任意协程调用；UpdateNodes 由 Tick 协程逐个调用，持锁运行到结束。
type PlayerTracker struct {
	player       SnakeSource
	world        EntitySource
	refreshTicks uint64

	mu           sync.RWMutex
	removalQueue []*Entity
	queued       map[EntityID]struct{}
	visible      map[EntityID]struct{}

	view               Viewport
	lastViewUpdateTick uint64
	forceRefresh       bool
}

// NewPlayerTracker refreshTicks <= 0 时使用 DefaultViewRefreshTicks
func NewPlayerTracker(player SnakeSource, world EntitySource, refreshTicks int) *PlayerTracker {
	if refreshTicks <= 0 {
		refreshTicks = DefaultViewRefreshTicks
	}
	return &PlayerTracker{
		player:       player,
		world:        world,
		refreshTicks: uint64(refreshTicks),
		queued:       make(map[EntityID]struct{}),
		visible:      make(map[EntityID]struct{}),
	}
}

// Remove 将实体加入强制移除队列；下次 UpdateNodes 前重复入队只保留一次
func (t *PlayerTracker) Remove(e *Entity) {
	if e == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, dup := t.queued[e.ID()]; dup {
		return
	}
	t.queued[e.ID()] = struct{}{}
	t.removalQueue = append(t.removalQueue, e)
}

// ForceRefresh 让下一次 UpdateNodes 忽略节流直接重算视野（例如玩家刚加入）
func (t *PlayerTracker) ForceRefresh() {
	t.mu.Lock()
	t.forceRefresh = true
	t.mu.Unlock()
}

// SetRefreshTicks 热更新重算间隔
func (t *PlayerTracker) SetRefreshTicks(n int) {
	if n <= 0 {
		return
	}
	t.mu.Lock()
	t.refreshTicks = uint64(n)
	t.mu.Unlock()
}

// VisibleEntities 当前可见实体 id 的只读快照（升序）
func (t *PlayerTracker) VisibleEntities() []EntityID {
	t.mu.RLock()
	out := make([]EntityID, 0, len(t.visible))
	for id := range t.visible {
		out = append(out, id)
	}
	t.mu.RUnlock()
	slices.Sort(out)
	return out
}

// Sees 该 id 当前是否在可见集合中
func (t *PlayerTracker) Sees(id EntityID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.visible[id]
	return ok
}

// Viewport 最近一次计算出的视野
func (t *PlayerTracker) Viewport() Viewport {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.view
}

// LastViewUpdateTick 最近一次视野重算时的世界 Tick
func (t *PlayerTracker) LastViewUpdateTick() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastViewUpdateTick
}

// UpdateNodes 推进一个 Tick：排空移除队列，按节流重算视野并与旧集合做差，
// 清理已失效的 id，并收集脏实体。自身不做任何网络 I/O。
func (t *PlayerTracker) UpdateNodes() Delta {
	removals := make(map[EntityID]*Entity)
	updates := make(map[EntityID]struct{})

	t.mu.Lock()
	defer t.mu.Unlock()

	// 排空移除队列；可见集合不动，已从世界消失的 id 由下面的清理步骤移除。
	// 同一批次里被强制移除的 id 不会再出现在更新中。
	forced := make(map[EntityID]struct{}, len(t.removalQueue))
	for _, e := range t.removalQueue {
		removals[e.ID()] = e
		forced[e.ID()] = struct{}{}
	}
	t.removalQueue = nil
	clear(t.queued)

	tick := t.world.Tick()
	d := Delta{Tick: tick}

	if t.forceRefresh || t.refreshDue(tick) {
		t.forceRefresh = false
		t.updateView(tick)
		inView := t.calculateEntitiesInView()

		next := make(map[EntityID]struct{}, len(inView))
		for id := range t.visible {
			if _, still := inView[id]; still {
				next[id] = struct{}{}
				continue
			}
			// 离开视野；已不在世界中的直接丢弃
			if e, ok := t.world.Entity(id); ok {
				removals[id] = e
			}
		}
		for id := range inView {
			_, known := t.visible[id]
			_, skip := forced[id]
			if !known && !skip {
				updates[id] = struct{}{}
				d.Added++
			}
			next[id] = struct{}{}
		}
		t.visible = next
		d.Refreshed = true
	}

	// 清理失效 id，并收集状态有变化的可见实体
	next := make(map[EntityID]struct{}, len(t.visible))
	for id := range t.visible {
		e, ok := t.world.Entity(id)
		if !ok {
			d.Pruned++
			delete(updates, id)
			continue
		}
		next[id] = struct{}{}
		if _, skip := forced[id]; !skip && e.ShouldUpdate() {
			updates[id] = struct{}{}
		}
	}
	t.visible = next

	d.Removed = make([]*Entity, 0, len(removals))
	for _, e := range removals {
		d.Removed = append(d.Removed, e)
	}
	slices.SortFunc(d.Removed, func(a, b *Entity) int { return cmp.Compare(a.ID(), b.ID()) })

	d.Updated = make([]EntityID, 0, len(updates))
	for id := range updates {
		d.Updated = append(d.Updated, id)
	}
	slices.Sort(d.Updated)

	if d.Refreshed {
		Log.Debugw("view refreshed",
			"tick", tick, "visible", len(t.visible),
			"added", d.Added, "removed", len(d.Removed), "pruned", d.Pruned)
	}
	return d
}

func (t *PlayerTracker) refreshDue(tick uint64) bool {
	return tick >= t.lastViewUpdateTick && tick-t.lastViewUpdateTick >= t.refreshTicks
}

func (t *PlayerTracker) updateView(tick uint64) {
	t.view = ComputeViewport(t.player.Snakes(), t.world.View(), t.view)
	t.lastViewUpdateTick = tick
}

// calculateEntitiesInView 对世界快照做只读扫描
func (t *PlayerTracker) calculateEntitiesInView() map[EntityID]struct{} {
	in := make(map[EntityID]struct{})
	for _, e := range t.world.Entities() {
		if t.view.Contains(e.Position()) {
			in[e.ID()] = struct{}{}
		}
	}
	return in
}
