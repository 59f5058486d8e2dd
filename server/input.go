package server

import "strings"

// Input 客户端输入（意图），由服务端在 Tick 中解释并驱动蛇的朝向
type Input struct {
	PlayerID PlayerID
	Command  Direction
	Seq      int64 // 客户端本地序列号
}

// 入站输入的简单 JSON 结构（WebSocket 文本消息）
// 示例：{"type":"move","command":"up"}
type InputMessage struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Seq     int64  `json:"seq,omitempty"`
}

// ParseDirection 未知命令返回 DirNone（原地不动）
func ParseDirection(cmd string) Direction {
	switch strings.ToLower(cmd) {
	case "up":
		return DirUp
	case "down":
		return DirDown
	case "left":
		return DirLeft
	case "right":
		return DirRight
	default:
		return DirNone
	}
}
