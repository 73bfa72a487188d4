package game

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"

	"github.com/dreyloch/ashfell/internal/storage"
)

// DefaultRespawnDelay applies to spawns that don't override it.
const DefaultRespawnDelay = 30 * time.Second

// NpcSpec is an on-disk spawn definition: one spec file per NPC placed in the
// world. Kind is a small wire-friendly code; the id doubles as the entity id
// clients target.
type NpcSpec struct {
	Kind           string      `json:"kind"`
	KindCode       uint8       `json:"kind_code"`
	X              int         `json:"x"`
	Y              int         `json:"y"`
	HP             int         `json:"hp"`
	Level          int         `json:"level"`
	RespawnDelayMs int         `json:"respawn_delay_ms,omitempty"`
	Loot           []LootEntry `json:"loot,omitempty"`
}

func (s *NpcSpec) Validate() error {
	el := errors.NewErrorList()

	if s.Kind == "" {
		el.Add(fmt.Errorf("kind is required"))
	}
	if s.HP <= 0 {
		el.Add(fmt.Errorf("hp must be positive"))
	}
	if s.Level < 1 {
		el.Add(fmt.Errorf("level must be at least 1"))
	}
	if s.X < 0 || s.Y < 0 {
		el.Add(fmt.Errorf("spawn position must be non-negative"))
	}
	if s.RespawnDelayMs < 0 {
		el.Add(fmt.Errorf("respawn_delay_ms must be non-negative"))
	}

	for i, l := range s.Loot {
		el.Add(l.validate(i))
	}

	return el.Err()
}

// RespawnDelay returns the spawn's respawn delay, falling back to the default.
func (s *NpcSpec) RespawnDelay() time.Duration {
	if s.RespawnDelayMs > 0 {
		return time.Duration(s.RespawnDelayMs) * time.Millisecond
	}
	return DefaultRespawnDelay
}

// LootEntry is one possible drop when the NPC dies. Chance is a percentage
// in (0,100]; the item reference is resolved against the item store at
// startup.
type LootEntry struct {
	Item   storage.SmartIdentifier[*ItemSpec] `json:"item"`
	Chance int                                `json:"chance"`
	Qty    int                                `json:"qty"`
}

func (l *LootEntry) validate(i int) error {
	el := errors.NewErrorList()

	el.Add(l.Item.Validate())
	if l.Chance < 1 || l.Chance > 100 {
		el.Add(fmt.Errorf("loot %d: chance must be in 1..100", i))
	}
	if l.Qty < 1 {
		el.Add(fmt.Errorf("loot %d: qty must be at least 1", i))
	}

	return el.Err()
}

// NPC is a live world entity instantiated from a spec. NPCs are created at
// world initialization and never destroyed; death only parks them until
// RespawnAt elapses.
type NPC struct {
	Id    string
	Spec  *NpcSpec
	X, Y  int
	HP    int
	MaxHP int

	// RespawnAt is zero while alive; while dead it holds the time at which
	// the tick loop resets HP and the NPC becomes targetable again.
	RespawnAt time.Time
}

func (n *NPC) Alive() bool {
	return n.HP > 0
}
