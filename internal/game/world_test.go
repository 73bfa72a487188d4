package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"

	"github.com/dreyloch/ashfell/internal/storage"
)

type mockSpawnStore struct {
	records map[storage.Identifier]*NpcSpec
}

func (m *mockSpawnStore) Get(id storage.Identifier) *NpcSpec {
	return m.records[id]
}

func (m *mockSpawnStore) GetAll() map[storage.Identifier]*NpcSpec {
	return m.records
}

func testOptions() Options {
	return Options{
		Width:        100,
		Height:       100,
		ViewDistance: 15,
		MoveCap:      2,
		SpawnX:       52,
		SpawnY:       55,
	}
}

func testWorld(t *testing.T, spawns map[storage.Identifier]*NpcSpec) *World {
	t.Helper()
	if spawns == nil {
		spawns = map[storage.Identifier]*NpcSpec{}
	}
	return NewWorld(testOptions(), &mockSpawnStore{records: spawns})
}

func goblinSpec(x, y, hp int) *NpcSpec {
	return &NpcSpec{Kind: "goblin", KindCode: 2, X: x, Y: y, HP: hp, Level: 3}
}

func TestWorld_SpawnPlayer(t *testing.T) {
	w := testWorld(t, nil)

	p, err := w.SpawnPlayer("sess-1", "Hero")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "hp", p.HP, 100)
	testutil.AssertEqual(t, "level", p.Level, 1)

	// Spawn offset stays near the configured point.
	if p.X < 50 || p.X > 54 || p.Y < 53 || p.Y > 57 {
		t.Errorf("spawn position (%d,%d) outside expected offset range", p.X, p.Y)
	}

	// A second spawn under the same session id must be rejected, and the
	// original player must be untouched.
	_, err = w.SpawnPlayer("sess-1", "Impostor")
	if !errors.Is(err, ErrPlayerExists) {
		t.Fatalf("expected ErrPlayerExists, got %v", err)
	}
	v, ok := w.PlayerView("sess-1")
	if !ok {
		t.Fatal("player missing after rejected respawn")
	}
	testutil.AssertEqual(t, "username unchanged", v.Username, "Hero")
}

func TestWorld_RemovePlayerIdempotent(t *testing.T) {
	w := testWorld(t, nil)
	_, err := w.SpawnPlayer("sess-1", "Hero")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := w.RemovePlayer("sess-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := w.PlayerView("sess-1"); ok {
		t.Error("player still indexed after removal")
	}

	// Second removal reports not-found; disconnect paths treat it as a no-op.
	err = w.RemovePlayer("sess-1")
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestWorld_MovePlayer(t *testing.T) {
	tests := map[string]struct {
		dx, dy int
		expErr error
	}{
		"step of one":       {dx: 1, dy: 0},
		"diagonal step":     {dx: 1, dy: 1},
		"two straight":      {dx: 0, dy: 2},
		"too far straight":  {dx: 0, dy: 3, expErr: ErrMoveTooFar},
		"teleport":          {dx: 40, dy: 40, expErr: ErrMoveTooFar},
		"diagonal over cap": {dx: 2, dy: 2, expErr: ErrMoveTooFar},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := testWorld(t, nil)
			p, err := w.SpawnPlayer("sess-1", "Hero")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			startX, startY := p.X, p.Y

			moved, err := w.MovePlayer("sess-1", startX+tt.dx, startY+tt.dy)

			if tt.expErr != nil {
				if !errors.Is(err, tt.expErr) {
					t.Fatalf("expected %v, got %v", tt.expErr, err)
				}
				// Rejected updates leave the position unchanged.
				v, _ := w.PlayerView("sess-1")
				testutil.AssertEqual(t, "x unchanged", v.X, startX)
				testutil.AssertEqual(t, "y unchanged", v.Y, startY)
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "x", moved.X, startX+tt.dx)
			testutil.AssertEqual(t, "y", moved.Y, startY+tt.dy)
		})
	}
}

func TestWorld_MovePlayerClampsToBounds(t *testing.T) {
	w := testWorld(t, nil)
	p, err := w.SpawnPlayer("sess-1", "Hero")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Walk the player to the east edge one capped step at a time.
	for i := 0; i < 60; i++ {
		p, _ = w.MovePlayer("sess-1", p.X+2, p.Y)
	}

	testutil.AssertEqual(t, "clamped to east edge", p.X, 99)
}

func TestWorld_NpcWanderStaysInBounds(t *testing.T) {
	spawns := map[storage.Identifier]*NpcSpec{
		"corner-goblin": goblinSpec(0, 0, 50),
		"edge-goblin":   goblinSpec(99, 99, 50),
		"mid-goblin":    goblinSpec(50, 50, 50),
	}
	w := testWorld(t, spawns)

	for i := 0; i < 500; i++ {
		if err := w.Tick(context.Background()); err != nil {
			t.Fatalf("tick %d: unexpected error: %v", i, err)
		}
	}

	for _, n := range w.Npcs() {
		if n.X < 0 || n.X > 99 || n.Y < 0 || n.Y > 99 {
			t.Errorf("npc %s wandered out of bounds to (%d,%d)", n.Id, n.X, n.Y)
		}
	}
}

func TestWorld_ApplyAttack(t *testing.T) {
	spawns := map[storage.Identifier]*NpcSpec{
		"goblin-1": goblinSpec(50, 50, 30),
	}
	w := testWorld(t, spawns)
	if _, err := w.SpawnPlayer("sess-1", "Hero"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := w.ApplyAttack("sess-1", "goblin-1", 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "damage", res.Damage, 12)
	testutil.AssertEqual(t, "target hp", res.TargetHP, 18)
	testutil.AssertEqual(t, "xp equals damage", res.XP, 12)
	testutil.AssertEqual(t, "killed", res.Killed, false)
}

func TestWorld_ApplyAttackTargetChecks(t *testing.T) {
	spawns := map[storage.Identifier]*NpcSpec{
		"goblin-1": goblinSpec(50, 50, 10),
	}
	w := testWorld(t, spawns)
	if _, err := w.SpawnPlayer("sess-1", "Hero"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := map[string]struct {
		target string
		expErr error
	}{
		"missing npc": {target: "npc-nope", expErr: ErrTargetUnavailable},
		"alive npc":   {target: "goblin-1"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := w.ApplyAttack("sess-1", tt.target, 1)
			if tt.expErr != nil {
				if !errors.Is(err, tt.expErr) {
					t.Fatalf("expected %v, got %v", tt.expErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestWorld_KillAndRespawnCycle(t *testing.T) {
	spec := goblinSpec(50, 50, 10)
	spec.RespawnDelayMs = 50
	spec.Loot = []LootEntry{{
		Item:   storage.NewSmartIdentifier[*ItemSpec]("bones"),
		Chance: 100,
		Qty:    1,
	}}
	w := testWorld(t, map[storage.Identifier]*NpcSpec{"goblin-1": spec})
	if _, err := w.SpawnPlayer("sess-1", "Hero"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := w.ApplyAttack("sess-1", "goblin-1", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "killed", res.Killed, true)
	// Overkill damage is capped at remaining hp, and xp follows.
	testutil.AssertEqual(t, "damage capped", res.Damage, 10)
	testutil.AssertEqual(t, "xp capped", res.XP, 10)
	testutil.AssertEqual(t, "guaranteed drop", len(res.Drops), 1)
	testutil.AssertEqual(t, "drop position x", res.Drops[0].X, 50)
	testutil.AssertEqual(t, "dropped by", res.Drops[0].DroppedBy, "sess-1")

	// Dead NPC is untargetable.
	_, err = w.ApplyAttack("sess-1", "goblin-1", 5)
	if !errors.Is(err, ErrTargetUnavailable) {
		t.Fatalf("expected ErrTargetUnavailable, got %v", err)
	}

	// Ticking before the respawn timer elapses must not revive it.
	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = w.ApplyAttack("sess-1", "goblin-1", 5)
	if !errors.Is(err, ErrTargetUnavailable) {
		t.Fatalf("expected ErrTargetUnavailable before respawn, got %v", err)
	}

	time.Sleep(60 * time.Millisecond)
	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err = w.ApplyAttack("sess-1", "goblin-1", 3)
	if err != nil {
		t.Fatalf("expected respawned npc to be targetable: %v", err)
	}
	testutil.AssertEqual(t, "hp restored before hit", res.TargetHP, 7)
}

func TestWorld_ProximityQueries(t *testing.T) {
	spawns := map[storage.Identifier]*NpcSpec{
		"near-goblin": goblinSpec(52, 55, 10),
		"far-goblin":  goblinSpec(5, 5, 10),
	}
	w := testWorld(t, spawns)

	near := w.NpcsNear(50, 50)
	testutil.AssertEqual(t, "npcs in view", len(near), 1)
	testutil.AssertEqual(t, "near npc", near[0].Id, "near-goblin")

	// Boundary: distance exactly equal to the view radius is in view.
	edge := w.NpcsNear(52, 70)
	testutil.AssertEqual(t, "npc at radius edge", len(edge), 1)
	out := w.NpcsNear(52, 71)
	testutil.AssertEqual(t, "npc past radius", len(out), 0)
}

func TestWorld_StatsCounts(t *testing.T) {
	spawns := map[storage.Identifier]*NpcSpec{
		"goblin-1": goblinSpec(50, 50, 5),
		"goblin-2": goblinSpec(51, 50, 5),
	}
	w := testWorld(t, spawns)
	if _, err := w.SpawnPlayer("sess-1", "Hero"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := w.ApplyAttack("sess-1", "goblin-1", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := w.Stats()
	testutil.AssertEqual(t, "players", s.Players, 1)
	testutil.AssertEqual(t, "alive", s.NpcsAlive, 1)
	testutil.AssertEqual(t, "dead", s.NpcsDead, 1)
}

// Readers receive value copies, so field access stays safe while other
// goroutines move players, attack npcs, and run ticks. Run under -race.
func TestWorld_ConcurrentReadersAndWriters(t *testing.T) {
	spawns := map[storage.Identifier]*NpcSpec{
		"goblin-1": goblinSpec(52, 55, 1000),
	}
	w := testWorld(t, spawns)
	p, err := w.SpawnPlayer("sess-1", "Hero")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if v, ok := w.PlayerView("sess-1"); ok {
					_ = v.X + v.Y + v.HP + v.XP
				}
				for _, n := range w.NpcsNear(52, 55) {
					_ = n.X + n.Y + n.HP
				}
				w.ForEachPlayer(func(v PlayerView) {
					_ = v.Username
				})
				_ = w.Stats()
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		x, y := p.X, p.Y
		for i := 0; i < 200; i++ {
			v, err := w.MovePlayer("sess-1", x+1-2*(i%2), y)
			if err == nil {
				x, y = v.X, v.Y
			}
			w.ApplyAttack("sess-1", "goblin-1", 1)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if err := w.Tick(context.Background()); err != nil {
				t.Errorf("tick: unexpected error: %v", err)
				return
			}
		}
	}()

	wg.Wait()
}

func TestLevelForXP(t *testing.T) {
	tests := map[string]struct {
		xp       int
		expLevel int
	}{
		"fresh":          {xp: 0, expLevel: 1},
		"just below two": {xp: 49, expLevel: 1},
		"exactly two":    {xp: 50, expLevel: 2},
		"mid curve":      {xp: 2600, expLevel: 11},
		"beyond table":   {xp: 999999, expLevel: MaxLevel},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "level", LevelForXP(tt.xp), tt.expLevel)
		})
	}
}
