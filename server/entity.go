package server

// EntityID 世界实体唯一标识，在实体生命周期内稳定
type EntityID int32

// EntityKind 实体类别
type EntityKind int

const (
	KindFood EntityKind = iota
	KindSnake
)

func (k EntityKind) String() string {
	switch k {
	case KindFood:
		return "food"
	case KindSnake:
		return "snake"
	default:
		return "unknown"
	}
}

// Vec2 世界坐标
type Vec2 struct {
	X float64
	Y float64
}

// Entity 世界中的可定位对象。由 World 持有，仅在 Tick 协程中修改。
type Entity struct {
	id    EntityID
	kind  EntityKind
	pos   Vec2
	size  float64
	owner PlayerID // 仅蛇实体有效
	dirty bool     // 自上次广播以来状态是否变化
}

func (e *Entity) ID() EntityID          { return e.id }
func (e *Entity) Kind() EntityKind      { return e.kind }
func (e *Entity) Position() Vec2        { return e.pos }
func (e *Entity) PhysicalSize() float64 { return e.size }
func (e *Entity) Owner() PlayerID       { return e.owner }

// ShouldUpdate 是否需要重新下发给已可见该实体的客户端
func (e *Entity) ShouldUpdate() bool { return e.dirty }

// MoveTo 移动实体并标记为脏
func (e *Entity) MoveTo(p Vec2) {
	if e.pos == p {
		return
	}
	e.pos = p
	e.dirty = true
}

// Grow 增加物理尺寸并标记为脏
func (e *Entity) Grow(delta float64) {
	if delta == 0 {
		return
	}
	e.size += delta
	e.dirty = true
}

func (e *Entity) MarkDirty() { e.dirty = true }

// EntityState 为下发给客户端的实体快照
type EntityState struct {
	ID    EntityID `json:"id"`
	Kind  string   `json:"kind"`
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Size  float64  `json:"size"`
	Owner PlayerID `json:"owner,omitempty"`
}

func (e *Entity) State() EntityState {
	return EntityState{ID: e.id, Kind: e.kind.String(), X: e.pos.X, Y: e.pos.Y, Size: e.size, Owner: e.Owner()}
}
