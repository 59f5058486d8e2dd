package server

import "encoding/json"

// welcomeMessage 加入成功后下发，告知客户端自己的蛇 id
type welcomeMessage struct {
	Type   string   `json:"type"`
	Player string   `json:"player"`
	Snake  EntityID `json:"snake"`
}

// nodesMessage 视野增量（文本 JSON）。客户端应先处理 removed 再处理 updated。
// 示例：{"type":"nodes","tick":42,"removed":[3],"updated":[{"id":7,"kind":"food","x":1,"y":2,"size":1}]}
type nodesMessage struct {
	Type    string        `json:"type"`
	Tick    uint64        `json:"tick"`
	Removed []EntityID    `json:"removed"`
	Updated []EntityState `json:"updated"`
}

// EncodeNodes 将增量序列化；更新 id 在编码时已不存在的直接跳过
func EncodeNodes(d Delta, world EntitySource) ([]byte, error) {
	msg := nodesMessage{
		Type:    "nodes",
		Tick:    d.Tick,
		Removed: make([]EntityID, 0, len(d.Removed)),
		Updated: make([]EntityState, 0, len(d.Updated)),
	}
	for _, e := range d.Removed {
		msg.Removed = append(msg.Removed, e.ID())
	}
	for _, id := range d.Updated {
		if e, ok := world.Entity(id); ok {
			msg.Updated = append(msg.Updated, e.State())
		}
	}
	return json.Marshal(msg)
}
