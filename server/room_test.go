package server

import (
	"math"
	"slices"
	"testing"
)

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.World.FoodTarget = 0
	return cfg
}

func snakeOf(t *testing.T, p *Player) *Entity {
	t.Helper()
	snakes := p.Snakes()
	if len(snakes) != 1 {
		t.Fatalf("player %s has %d snakes", p.ID, len(snakes))
	}
	return snakes[0]
}

func TestRoomJoinRefreshesImmediately(t *testing.T) {
	r := NewRoom("t", testConfig())
	p := r.JoinPlayer("alice", nil)
	s := snakeOf(t, p)

	r.Step()
	if !p.Tracker.Sees(s.ID()) {
		t.Fatalf("own snake not visible after first tick, visible=%v", p.Tracker.VisibleEntities())
	}
	if r.PlayerCount() != 1 {
		t.Fatalf("players = %d", r.PlayerCount())
	}
	if s.ShouldUpdate() {
		t.Error("dirty flags not cleared after broadcast")
	}
}

func TestRoomEatingQueuesRemoval(t *testing.T) {
	r := NewRoom("t", testConfig())
	p := r.JoinPlayer("alice", nil)
	s := snakeOf(t, p)

	off := 20.0
	if s.Position().X > r.World().Width()/2 {
		off = -20
	}
	food := r.World().Spawn(KindFood, Vec2{s.Position().X + off, s.Position().Y}, 1)
	r.Step()
	if !p.Tracker.Sees(food.ID()) {
		t.Fatal("food next to the snake should be visible")
	}

	food.MoveTo(s.Position())
	r.Step()
	if _, ok := r.World().Entity(food.ID()); ok {
		t.Fatal("food was not eaten")
	}
	if p.Tracker.Sees(food.ID()) {
		t.Error("eaten food still tracked")
	}
	if s.PhysicalSize() != 11 {
		t.Errorf("snake size = %v, want 11", s.PhysicalSize())
	}
	snap := r.Metrics().Snapshot()
	if snap["food_eaten"].(int64) != 1 || snap["removals_queued"].(int64) != 1 {
		t.Errorf("metrics = %v", snap)
	}
}

func TestRoomLeaveNotifiesObservers(t *testing.T) {
	r := NewRoom("t", testConfig())
	alice := r.JoinPlayer("alice", nil)
	bob := r.JoinPlayer("bob", nil)
	bobSnake := snakeOf(t, bob)
	bobSnake.MoveTo(snakeOf(t, alice).Position())

	r.Step()
	if !alice.Tracker.Sees(bobSnake.ID()) {
		t.Fatal("alice should see bob")
	}

	r.RequestLeave("bob", nil)
	r.Step()
	if _, err := r.Player("bob"); err != ErrPlayerNotFound {
		t.Fatalf("bob still in room: %v", err)
	}
	if alice.Tracker.Sees(bobSnake.ID()) {
		t.Error("alice still sees bob's snake")
	}
	if _, ok := r.World().Entity(bobSnake.ID()); ok {
		t.Error("bob's snake still in world")
	}
}

func TestRoomStaleLeaveIgnored(t *testing.T) {
	r := NewRoom("t", testConfig())
	r.JoinPlayer("alice", nil)
	r.RequestLeave("alice", &ClientConn{})
	r.Step()
	if r.PlayerCount() != 1 {
		t.Fatal("leave from a stale connection removed the player")
	}
}

func TestRoomInputMovesSnake(t *testing.T) {
	r := NewRoom("t", testConfig())
	p := r.JoinPlayer("alice", nil)
	s := snakeOf(t, p)
	x0 := s.Position().X

	r.OnInput(Input{PlayerID: "alice", Command: ParseDirection("RIGHT")})
	r.OnInput(Input{PlayerID: "ghost", Command: DirUp})
	r.Step()

	step, _ := r.Settings()
	want := math.Min(x0+step, r.World().Width())
	if got := s.Position().X; got != want {
		t.Errorf("x = %v, want %v", got, want)
	}
	if n := r.Metrics().Snapshot()["inputs_accepted"].(int64); n != 1 {
		t.Errorf("inputs_accepted = %d, want 1", n)
	}
}

func TestRoomFoodTopUp(t *testing.T) {
	cfg := testConfig()
	cfg.World.FoodTarget = 25
	r := NewRoom("t", cfg)
	r.Step()
	r.Step()
	if n := r.World().CountKind(KindFood); n != 25 {
		t.Fatalf("food = %d, want 25", n)
	}
}

func TestRoomUpdateSettings(t *testing.T) {
	r := NewRoom("t", testConfig())
	p := r.JoinPlayer("alice", nil)
	step, refresh := 4.5, 2
	r.UpdateSettings(&step, &refresh)
	gotStep, gotRefresh := r.Settings()
	if gotStep != 4.5 || gotRefresh != 2 {
		t.Fatalf("settings = %v, %v", gotStep, gotRefresh)
	}

	r.Step() // 加入后的强制刷新
	r.Step()
	last := p.Tracker.LastViewUpdateTick()
	r.Step()
	if p.Tracker.LastViewUpdateTick() != last+2 {
		t.Errorf("refresh interval not applied: last=%d now=%d", last, p.Tracker.LastViewUpdateTick())
	}
	if !slices.Contains(p.Tracker.VisibleEntities(), snakeOf(t, p).ID()) {
		t.Error("own snake missing")
	}
}
