package server

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"
)

// ViewBase 世界配置的基础视野半宽/半高（未缩放时）
type ViewBase struct {
	BaseX float64
	BaseY float64
}

// World 持有全部实体的权威集合与单调递增的 Tick 计数。
// 实体的增删在 Tick 协程中进行，但查找与枚举可在任意协程中安全调用。
type World struct {
	mu       sync.RWMutex
	entities map[EntityID]*Entity
	nextID   EntityID

	tick atomic.Uint64

	width  float64
	height float64
	view   ViewBase
}

func NewWorld(width, height float64, view ViewBase) *World {
	return &World{
		entities: make(map[EntityID]*Entity),
		width:    width,
		height:   height,
		view:     view,
	}
}

func (w *World) Width() float64  { return w.width }
func (w *World) Height() float64 { return w.height }
func (w *World) View() ViewBase  { return w.view }

// Tick 当前世界 Tick
func (w *World) Tick() uint64 { return w.tick.Load() }

// Advance 推进一个 Tick，返回新的 Tick 值
func (w *World) Advance() uint64 { return w.tick.Add(1) }

// Spawn 创建实体并加入世界；新实体默认带脏标记
func (w *World) Spawn(kind EntityKind, pos Vec2, size float64) *Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextID++
	e := &Entity{id: w.nextID, kind: kind, pos: pos, size: size, dirty: true}
	w.entities[e.id] = e
	return e
}

// Despawn 从世界移除实体；不存在时返回 false
func (w *World) Despawn(id EntityID) (*Entity, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entities[id]
	if ok {
		delete(w.entities, id)
	}
	return e, ok
}

// Entity 按 id 查找；找不到是正常的瞬时情况，不是错误
func (w *World) Entity(id EntityID) (*Entity, bool) {
	w.mu.RLock()
	e, ok := w.entities[id]
	w.mu.RUnlock()
	return e, ok
}

// Entities 返回实体集合的快照副本（按 id 升序），调用方可随意遍历
func (w *World) Entities() []*Entity {
	w.mu.RLock()
	out := make([]*Entity, 0, len(w.entities))
	for _, e := range w.entities {
		out = append(out, e)
	}
	w.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Entity) int { return cmp.Compare(a.id, b.id) })
	return out
}

// Count 当前实体数
func (w *World) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entities)
}

// CountKind 指定类别的实体数
func (w *World) CountKind(kind EntityKind) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	n := 0
	for _, e := range w.entities {
		if e.kind == kind {
			n++
		}
	}
	return n
}

// ClearDirty 广播完成后清除所有脏标记
func (w *World) ClearDirty() {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, e := range w.entities {
		e.dirty = false
	}
}

// Clamp 将坐标裁剪到世界边界内
func (w *World) Clamp(p Vec2) Vec2 {
	if p.X < 0 {
		p.X = 0
	}
	if p.Y < 0 {
		p.Y = 0
	}
	if p.X > w.width {
		p.X = w.width
	}
	if p.Y > w.height {
		p.Y = w.height
	}
	return p
}
