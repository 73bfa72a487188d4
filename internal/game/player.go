package game

import "github.com/dreyloch/ashfell/internal/storage"

// Equipment slot names. Slots are fixed; what fills them is asset-driven.
const (
	SlotWeapon = "weapon"
	SlotShield = "shield"
	SlotBody   = "body"
	SlotHelm   = "helm"
)

// ItemRef is one stack of an item held by a player.
type ItemRef struct {
	Item storage.Identifier
	Qty  int
}

// Player is the authoritative character state for one session, keyed by the
// session id in the World's player index. All access goes through World
// methods while the world lock is held; code outside the world sees only
// PlayerView copies.
type Player struct {
	Id       string // session id
	Username string
	X, Y     int
	HP       int
	MaxHP    int
	Level    int
	XP       int

	Inventory []ItemRef
	Equipment map[string]ItemRef
}

// GainXP adds xp and recomputes level from the cumulative table.
func (p *Player) GainXP(amount int) {
	p.XP += amount
	p.Level = LevelForXP(p.XP)
}

// AddItem merges a stack into the inventory, stacking onto an existing entry
// of the same item when present.
func (p *Player) AddItem(item storage.Identifier, qty int) {
	for i := range p.Inventory {
		if p.Inventory[i].Item == item {
			p.Inventory[i].Qty += qty
			return
		}
	}
	p.Inventory = append(p.Inventory, ItemRef{Item: item, Qty: qty})
}
