package server

import (
	"sort"
	"sync"
)

// RoomManager 管理多个房间的生命周期
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	cfg   *Config
	spawn *SpawnTable // 可选，新房间创建时按表生成食物
}

var (
	defaultManager *RoomManager
	once           sync.Once
)

func NewRoomManager(cfg *Config, spawn *SpawnTable) *RoomManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &RoomManager{rooms: make(map[string]*Room), cfg: cfg, spawn: spawn}
}

// InitRoomManager 用给定配置初始化单例；只有第一次调用生效
func InitRoomManager(cfg *Config, spawn *SpawnTable) *RoomManager {
	once.Do(func() {
		defaultManager = NewRoomManager(cfg, spawn)
	})
	return defaultManager
}

// GetRoomManager 单例房间管理器，未初始化时使用默认配置
func GetRoomManager() *RoomManager {
	return InitRoomManager(DefaultConfig(), nil)
}

// GetOrCreateRoom 获取或创建房间，并确保开始 Tick
func (m *RoomManager) GetOrCreateRoom(id string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		r = m.newRoom(id)
		m.rooms[id] = r
		r.StartTicker(m.cfg.Tick.Rate)
	}
	return r
}

func (m *RoomManager) newRoom(id string) *Room {
	r := NewRoom(id, m.cfg)
	if m.spawn != nil {
		n := r.Seed(m.spawn)
		Log.Infow("room seeded", "room", id, "food", n)
	}
	return r
}

// AddRoom 登记一个已创建的房间（不启动 Tick）
func (m *RoomManager) AddRoom(r *Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[r.ID] = r
}

// Room 按 id 查找，不会创建
func (m *RoomManager) Room(id string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// RoomIDs 已有房间 id（排序）
func (m *RoomManager) RoomIDs() []string {
	m.mu.RLock()
	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// StopAll 停止所有房间的 Tick 循环
func (m *RoomManager) StopAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rooms {
		r.Stop()
	}
}
