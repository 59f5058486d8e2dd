package server

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"sync"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrPlayerNotFound = errors.New("player not found")
)

// Room 房间世界：权威状态维护在内存，单线程 Tick 推进。
// mu 串行化 Tick 与加入/管理接口对玩家表和世界的修改。
type Room struct {
	ID string

	mu        sync.RWMutex
	Players   map[PlayerID]*Player
	world     *World
	inputChan chan Input
	leaveChan chan leaveRequest

	// 可热更新的规则
	step         float64
	refreshTicks int

	foodTarget int
	foodSize   float64
	eatFactor  float64
	startSize  float64

	metrics *RoomMetrics

	tickerStarted bool
	stop          chan struct{}
	stopOnce      sync.Once
}

// NewRoom 创建房间，初始化数据结构
func NewRoom(id string, cfg *Config) *Room {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	view := ViewBase{BaseX: cfg.World.ViewBaseX, BaseY: cfg.World.ViewBaseY}
	return &Room{
		ID:           id,
		Players:      make(map[PlayerID]*Player),
		world:        NewWorld(cfg.World.Width, cfg.World.Height, view),
		inputChan:    make(chan Input, 256), // 足够缓冲，避免网络读阻塞影响 Tick
		leaveChan:    make(chan leaveRequest, 64),
		step:         cfg.Tick.SnakeStep,
		refreshTicks: cfg.Tick.ViewRefreshTicks,
		foodTarget:   cfg.World.FoodTarget,
		foodSize:     cfg.World.FoodSize,
		eatFactor:    cfg.Tick.EatRadiusFactor,
		startSize:    cfg.Tick.SnakeStartSize,
		metrics:      &RoomMetrics{},
		stop:         make(chan struct{}),
	}
}

func (r *Room) World() *World         { return r.world }
func (r *Room) Metrics() *RoomMetrics { return r.metrics }

// JoinPlayer 将玩家加入房间，生成一条初始蛇并立即刷新其视野
func (r *Room) JoinPlayer(id PlayerID, conn *ClientConn) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.Players[id]; ok {
		r.removePlayerLocked(old)
	}

	p := NewPlayer(id, conn)
	pos := Vec2{X: rand.Float64() * r.world.Width(), Y: rand.Float64() * r.world.Height()}
	snake := r.world.Spawn(KindSnake, pos, r.startSize)
	p.AddSnake(snake)
	p.Tracker = NewPlayerTracker(p, r.world, r.refreshTicks)
	p.Tracker.ForceRefresh()
	r.Players[id] = p

	if conn != nil {
		b, _ := json.Marshal(welcomeMessage{Type: "welcome", Player: string(id), Snake: snake.ID()})
		conn.Enqueue(b)
	}
	Log.Infow("player joined", "room", r.ID, "player", id, "snake", snake.ID())
	return p
}

// LeavePlayer 将玩家移出房间
func (r *Room) LeavePlayer(id PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leavePlayerLocked(id)
}

func (r *Room) leavePlayerLocked(id PlayerID) {
	if p, ok := r.Players[id]; ok {
		r.removePlayerLocked(p)
		Log.Infow("player left", "room", r.ID, "player", id)
	}
}

// removePlayerLocked 移除玩家的全部蛇，并通知看得到它们的其他玩家
func (r *Room) removePlayerLocked(p *Player) {
	for _, s := range p.Snakes() {
		r.despawnLocked(s.ID())
		p.RemoveSnake(s.ID())
	}
	if p.Conn != nil {
		p.Conn.Close()
	}
	delete(r.Players, p.ID)
}

// despawnLocked 从世界移除实体并把它排入所有可见该实体的追踪器的移除队列
func (r *Room) despawnLocked(id EntityID) {
	e, ok := r.world.Despawn(id)
	if !ok {
		return
	}
	for _, p := range r.Players {
		if p.Tracker != nil && p.Tracker.Sees(id) {
			p.Tracker.Remove(e)
			r.metrics.IncRemovalsQueued()
		}
	}
}

// Seed 按静态食物表生成食物
func (r *Room) Seed(t *SpawnTable) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return t.Apply(r.world, r.foodSize)
}

// Player 按 id 查找玩家
func (r *Room) Player(id PlayerID) (*Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.Players[id]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return p, nil
}

// PlayerCount 当前玩家数
func (r *Room) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Players)
}

// OnInput 入站输入（不立即改变位置），仅记录意图，等下一次 Tick 处理
func (r *Room) OnInput(in Input) {
	// 不阻塞：输入拥塞时丢弃（由通道容量控制），保证 Tick 准时
	select {
	case r.inputChan <- in:
	default:
		r.metrics.IncChanFullDiscarded()
	}
}

// leaveRequest 带上连接，避免旧连接的退出把同名重连的新玩家踢掉
type leaveRequest struct {
	id   PlayerID
	conn *ClientConn
}

// RequestLeave 请求在 Tick 线程中移除玩家，避免并发改动房间状态
func (r *Room) RequestLeave(pid PlayerID, conn *ClientConn) {
	// 为保证移除一定生效，这里采用阻塞式写入（通道有容量，避免死锁）
	select {
	case r.leaveChan <- leaveRequest{id: pid, conn: conn}:
	case <-r.stop:
	}
}

// Step 推进一个完整 Tick：处理输入 → 更新世界 → 广播视野增量
func (r *Room) Step() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.world.Advance()
	r.processInputsLocked()
	r.updateWorldLocked()
	r.broadcastDeltaLocked()
}

// processInputsLocked 处理当前帧的所有输入意图（非阻塞 drain）
func (r *Room) processInputsLocked() {
	for {
		select {
		case req := <-r.leaveChan:
			if p, ok := r.Players[req.id]; ok && (req.conn == nil || p.Conn == req.conn) {
				r.leavePlayerLocked(req.id)
			}
		case in := <-r.inputChan:
			if p, ok := r.Players[in.PlayerID]; ok {
				p.Dir = in.Command
				r.metrics.IncAccepted()
			}
		default:
			return
		}
	}
}

// updateWorldLocked 移动蛇、吞食食物并补充食物
func (r *Room) updateWorldLocked() {
	for _, p := range r.Players {
		for _, s := range p.Snakes() {
			r.moveSnake(s, p.Dir)
		}
	}

	var food []*Entity
	for _, e := range r.world.Entities() {
		if e.Kind() == KindFood {
			food = append(food, e)
		}
	}
	eaten := make(map[EntityID]struct{})
	for _, p := range r.Players {
		for _, s := range p.Snakes() {
			radius := r.eatFactor * s.PhysicalSize()
			sp := s.Position()
			for _, f := range food {
				if _, gone := eaten[f.ID()]; gone {
					continue
				}
				fp := f.Position()
				if math.Hypot(fp.X-sp.X, fp.Y-sp.Y) <= radius {
					eaten[f.ID()] = struct{}{}
					s.Grow(f.PhysicalSize())
					r.despawnLocked(f.ID())
					r.metrics.IncFoodEaten()
				}
			}
		}
	}

	for n := len(food) - len(eaten); n < r.foodTarget; n++ {
		pos := Vec2{X: rand.Float64() * r.world.Width(), Y: rand.Float64() * r.world.Height()}
		r.world.Spawn(KindFood, pos, r.foodSize)
	}
}

// moveSnake 沿方向前进一步并进行越界裁剪
func (r *Room) moveSnake(s *Entity, dir Direction) {
	p := s.Position()
	switch dir {
	case DirUp:
		p.Y -= r.step
	case DirDown:
		p.Y += r.step
	case DirLeft:
		p.X -= r.step
	case DirRight:
		p.X += r.step
	default:
		return
	}
	s.MoveTo(r.world.Clamp(p))
}

// broadcastDeltaLocked 为每个玩家计算视野增量并发送，最后清除脏标记
func (r *Room) broadcastDeltaLocked() {
	for _, p := range r.Players {
		if p.Tracker == nil {
			continue
		}
		d := p.Tracker.UpdateNodes()
		r.metrics.AddDelta(d)
		if d.Empty() || p.Conn == nil {
			continue
		}
		b, err := EncodeNodes(d, r.world)
		if err != nil {
			Log.Warnw("encode nodes", "room", r.ID, "player", p.ID, "err", err)
			continue
		}
		p.Conn.Enqueue(b)
	}
	r.world.ClearDirty()
}

// Settings 当前可热更新的规则
func (r *Room) Settings() (step float64, refreshTicks int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.step, r.refreshTicks
}

// UpdateSettings 热更新规则；nil 表示不修改
func (r *Room) UpdateSettings(step *float64, refreshTicks *int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if step != nil && *step >= 0 {
		r.step = *step
	}
	if refreshTicks != nil && *refreshTicks >= 1 {
		r.refreshTicks = *refreshTicks
		for _, p := range r.Players {
			p.Tracker.SetRefreshTicks(*refreshTicks)
		}
	}
}

// Stop 结束 Tick 循环
func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}
