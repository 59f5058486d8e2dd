package server

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func roomParam(r *http.Request) string {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		roomID = "room-1"
	}
	return roomID
}

// lookupRoom 房间不存在时写 404 并返回 nil
func (m *RoomManager) lookupRoom(w http.ResponseWriter, r *http.Request) *Room {
	room, err := m.Room(roomParam(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil
	}
	return room
}

// HandleAdminConfig 提供房间规则的读取与更新（热更新）
// GET /admin/config?room=room-1  返回当前配置
// POST /admin/config?room=room-1 以 JSON 载荷更新部分字段
func (m *RoomManager) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	room := m.lookupRoom(w, r)
	if room == nil {
		return
	}

	type cfg struct {
		Step             *float64 `json:"step,omitempty"`
		ViewRefreshTicks *int     `json:"viewRefreshTicks,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		step, refresh := room.Settings()
		writeJSON(w, http.StatusOK, cfg{Step: &step, ViewRefreshTicks: &refresh})
	case http.MethodPost:
		var body cfg
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		room.UpdateSettings(body.Step, body.ViewRefreshTicks)
		step, refresh := room.Settings()
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		Log.Infow("config updated", "room", room.ID, "step", step, "viewRefreshTicks", refresh)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleVisible 输出某玩家当前可见的实体 id 与视野
// GET /admin/visible?room=room-1&player=alice
func (m *RoomManager) HandleVisible(w http.ResponseWriter, r *http.Request) {
	room := m.lookupRoom(w, r)
	if room == nil {
		return
	}
	p, err := room.Player(PlayerID(r.URL.Query().Get("player")))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room":     room.ID,
		"player":   p.ID,
		"tick":     room.World().Tick(),
		"lastView": p.Tracker.LastViewUpdateTick(),
		"viewport": p.Tracker.Viewport(),
		"visible":  p.Tracker.VisibleEntities(),
	})
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?room=room-1
func (m *RoomManager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	room := m.lookupRoom(w, r)
	if room == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room":     room.ID,
		"tick":     room.World().Tick(),
		"players":  room.PlayerCount(),
		"entities": room.World().Count(),
		"metrics":  room.Metrics().Snapshot(),
	})
}
