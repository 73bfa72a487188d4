package game

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dreyloch/ashfell/internal/storage"
)

// Options fixes the world geometry and the two protocol-visible distances.
type Options struct {
	Width        int
	Height       int
	ViewDistance float64 // radius within which entities see each other
	MoveCap      float64 // max Euclidean distance per PlayerUpdate
	SpawnX       int
	SpawnY       int
}

// World is the single source of truth for all mutable game state: the NPC
// table, ground items, and the player index. Mutation happens from packet
// handlers and from the tick driver, so everything is behind one lock and
// nothing outside this package ever holds a live entity pointer.
type World struct {
	opts Options

	mu      sync.RWMutex
	players map[string]*Player
	npcs    map[string]*NPC
	items   map[string]*GroundItem
}

// NewWorld instantiates the fixed NPC population from the spawn store.
// The population never changes afterwards; death just cycles entities
// dead<->alive.
func NewWorld(opts Options, spawns storage.Storer[*NpcSpec]) *World {
	w := &World{
		opts:    opts,
		players: make(map[string]*Player),
		npcs:    make(map[string]*NPC),
		items:   make(map[string]*GroundItem),
	}

	if spawns == nil {
		return w
	}

	for id, spec := range spawns.GetAll() {
		w.npcs[id.String()] = &NPC{
			Id:    id.String(),
			Spec:  spec,
			X:     w.clampX(spec.X),
			Y:     w.clampY(spec.Y),
			HP:    spec.HP,
			MaxHP: spec.HP,
		}
	}

	return w
}

func (w *World) Options() Options {
	return w.opts
}

// PlayerView is a copy of one player's state taken under the world lock.
// Accessors hand out views rather than live pointers so readers on other
// goroutines never observe a field mid-update.
type PlayerView struct {
	Id       string
	Username string
	X, Y     int
	HP       int
	MaxHP    int
	Level    int
	XP       int
}

// NpcView is a copy of one NPC's state taken under the world lock.
type NpcView struct {
	Id        string
	Kind      string
	KindCode  uint8
	X, Y      int
	HP        int
	MaxHP     int
	Level     int
	Alive     bool
	RespawnAt time.Time
}

// playerView copies p. Caller holds the lock.
func playerView(p *Player) PlayerView {
	return PlayerView{
		Id:       p.Id,
		Username: p.Username,
		X:        p.X,
		Y:        p.Y,
		HP:       p.HP,
		MaxHP:    p.MaxHP,
		Level:    p.Level,
		XP:       p.XP,
	}
}

// npcView copies n. Caller holds the lock.
func npcView(n *NPC) NpcView {
	return NpcView{
		Id:        n.Id,
		Kind:      n.Spec.Kind,
		KindCode:  n.Spec.KindCode,
		X:         n.X,
		Y:         n.Y,
		HP:        n.HP,
		MaxHP:     n.MaxHP,
		Level:     n.Spec.Level,
		Alive:     n.Alive(),
		RespawnAt: n.RespawnAt,
	}
}

// SpawnPlayer creates and indexes a player at the spawn point plus a small
// random offset. Duplicate ids are rejected so a second login on the same
// session cannot create a second player.
func (w *World) SpawnPlayer(id, username string) (PlayerView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.players[id]; exists {
		return PlayerView{}, ErrPlayerExists
	}

	p := &Player{
		Id:        id,
		Username:  username,
		X:         w.clampX(w.opts.SpawnX + rand.IntN(5) - 2),
		Y:         w.clampY(w.opts.SpawnY + rand.IntN(5) - 2),
		HP:        100,
		MaxHP:     100,
		Level:     1,
		Equipment: make(map[string]ItemRef),
	}
	w.players[id] = p

	return playerView(p), nil
}

// RemovePlayer drops a player from the index. Removing an absent id returns
// ErrPlayerNotFound; callers on the disconnect path treat that as a no-op so
// teardown stays idempotent.
func (w *World) RemovePlayer(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.players[id]; !exists {
		return ErrPlayerNotFound
	}
	delete(w.players, id)
	return nil
}

// PlayerView returns a copy of the player's current state and whether the
// player is indexed.
func (w *World) PlayerView(id string) (PlayerView, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	p, exists := w.players[id]
	if !exists {
		return PlayerView{}, false
	}
	return playerView(p), true
}

// MovePlayer validates a requested position against the per-update movement
// cap and, if accepted, clamps it to world bounds and commits it. A request
// beyond the cap returns ErrMoveTooFar and leaves the position unchanged.
func (w *World) MovePlayer(id string, x, y int) (PlayerView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, exists := w.players[id]
	if !exists {
		return PlayerView{}, ErrPlayerNotFound
	}

	x = w.clampX(x)
	y = w.clampY(y)

	if dist(p.X, p.Y, x, y) > w.opts.MoveCap {
		return PlayerView{}, ErrMoveTooFar
	}

	p.X = x
	p.Y = y
	return playerView(p), nil
}

// PlayersNear returns players within view distance of (x, y).
func (w *World) PlayersNear(x, y int) []PlayerView {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var out []PlayerView
	for _, p := range w.players {
		if dist(p.X, p.Y, x, y) <= w.opts.ViewDistance {
			out = append(out, playerView(p))
		}
	}
	return out
}

// NpcsNear returns the alive NPCs within view distance of (x, y). Dead NPCs
// are invisible until they respawn.
func (w *World) NpcsNear(x, y int) []NpcView {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var out []NpcView
	for _, n := range w.npcs {
		if n.Alive() && dist(n.X, n.Y, x, y) <= w.opts.ViewDistance {
			out = append(out, npcView(n))
		}
	}
	return out
}

// AttackResult reports one resolved hit.
type AttackResult struct {
	Damage     int
	TargetHP   int
	XP         int // attacker's new cumulative XP
	Killed     bool
	TargetKind string
	Drops      []*GroundItem
}

// ApplyAttack applies pre-rolled damage from a player to an NPC, grants the
// attacker experience equal to damage dealt, and on a kill rolls the loot
// table and starts the respawn timer. Attacks against missing or dead
// targets return ErrTargetUnavailable; callers reply with silence.
func (w *World) ApplyAttack(playerId, npcId string, damage int) (*AttackResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, exists := w.players[playerId]
	if !exists {
		return nil, ErrPlayerNotFound
	}

	n, exists := w.npcs[npcId]
	if !exists || !n.Alive() {
		return nil, ErrTargetUnavailable
	}

	if damage > n.HP {
		damage = n.HP
	}
	n.HP -= damage
	p.GainXP(damage)

	res := &AttackResult{
		Damage:     damage,
		TargetHP:   n.HP,
		XP:         p.XP,
		TargetKind: n.Spec.Kind,
	}

	if n.HP <= 0 {
		res.Killed = true
		res.Drops = w.dropLoot(n, playerId)
		n.RespawnAt = time.Now().Add(n.Spec.RespawnDelay())
	}

	return res, nil
}

// dropLoot rolls each loot entry and places winners on the ground at the
// NPC's position. Caller holds the write lock.
func (w *World) dropLoot(n *NPC, killerId string) []*GroundItem {
	var drops []*GroundItem
	for _, entry := range n.Spec.Loot {
		if rand.IntN(100) >= entry.Chance {
			continue
		}
		gi := &GroundItem{
			InstanceId: uuid.New().String(),
			Item:       entry.Item.Id(),
			X:          n.X,
			Y:          n.Y,
			Qty:        entry.Qty,
			DroppedBy:  killerId,
		}
		w.items[gi.InstanceId] = gi
		drops = append(drops, gi)
	}
	return drops
}

// GroundItems returns a snapshot of all ground drops.
func (w *World) GroundItems() []*GroundItem {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]*GroundItem, 0, len(w.items))
	for _, gi := range w.items {
		out = append(out, gi)
	}
	return out
}

// ForEachPlayer calls fn with a copy of each indexed player.
func (w *World) ForEachPlayer(fn func(PlayerView)) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, p := range w.players {
		fn(playerView(p))
	}
}

// wanderChance is the per-tick probability (out of wanderDie) that an alive
// NPC takes a random step.
const (
	wanderDie    = 5
	wanderChance = 1
)

// Tick advances NPC state: a wander pass over alive NPCs, then a respawn
// pass over dead ones. Pass order is fixed so an NPC respawning this tick is
// visible in this tick's broadcasts (the broadcast manager runs after the
// world in the driver's manager list).
func (w *World) Tick(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()

	for _, n := range w.npcs {
		if !n.Alive() {
			continue
		}
		if rand.IntN(wanderDie) >= wanderChance {
			continue
		}
		n.X = w.clampX(n.X + rand.IntN(3) - 1)
		n.Y = w.clampY(n.Y + rand.IntN(3) - 1)
	}

	for _, n := range w.npcs {
		if n.Alive() || now.Before(n.RespawnAt) {
			continue
		}
		n.HP = n.MaxHP
		n.RespawnAt = time.Time{}
	}

	return nil
}

// Stats summarizes the world for the admin console and snapshot bus.
type Stats struct {
	Players     int `json:"players"`
	NpcsAlive   int `json:"npcs_alive"`
	NpcsDead    int `json:"npcs_dead"`
	GroundItems int `json:"ground_items"`
}

func (w *World) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()

	s := Stats{
		Players:     len(w.players),
		GroundItems: len(w.items),
	}
	for _, n := range w.npcs {
		if n.Alive() {
			s.NpcsAlive++
		} else {
			s.NpcsDead++
		}
	}
	return s
}

// Npcs returns a snapshot of all NPCs, alive and dead.
func (w *World) Npcs() []NpcView {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]NpcView, 0, len(w.npcs))
	for _, n := range w.npcs {
		out = append(out, npcView(n))
	}
	return out
}

func (w *World) clampX(x int) int {
	return clamp(x, 0, w.opts.Width-1)
}

func (w *World) clampY(y int) int {
	return clamp(y, 0, w.opts.Height-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func dist(x1, y1, x2, y2 int) float64 {
	dx := float64(x1 - x2)
	dy := float64(y1 - y2)
	return math.Sqrt(dx*dx + dy*dy)
}
