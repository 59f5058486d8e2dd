package server

// PlayerID 表示玩家唯一标识
type PlayerID string

// Direction 移动方向（服务端权威解释客户端“意图”）
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

// Player 房间内的玩家（服务端权威状态）。
// 玩家拥有零到多条蛇，每条蛇同时是世界中的一个实体。
type Player struct {
	ID  PlayerID
	Dir Direction // 当前朝向，每个 Tick 沿该方向前进

	snakes []*Entity

	Conn    *ClientConn // 网络连接的发送端（写协程），对视野追踪不透明
	Tracker *PlayerTracker
}

func NewPlayer(id PlayerID, conn *ClientConn) *Player {
	return &Player{ID: id, Conn: conn}
}

// Snakes 返回当前蛇列表的副本
func (p *Player) Snakes() []*Entity {
	out := make([]*Entity, len(p.snakes))
	copy(out, p.snakes)
	return out
}

// AddSnake 将一条蛇实体归属到该玩家
func (p *Player) AddSnake(e *Entity) {
	e.owner = p.ID
	p.snakes = append(p.snakes, e)
}

// RemoveSnake 解除归属；不存在时返回 false
func (p *Player) RemoveSnake(id EntityID) bool {
	for i, s := range p.snakes {
		if s.ID() == id {
			p.snakes = append(p.snakes[:i], p.snakes[i+1:]...)
			return true
		}
	}
	return false
}
