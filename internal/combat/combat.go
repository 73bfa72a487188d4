// Package combat holds the damage policy. Rolls are plain bounded random
// values: this is game balance, not security, and the server is authoritative
// either way.
package combat

import (
	"fmt"
	"math/rand/v2"

	"github.com/dreyloch/ashfell/internal/game"
	"github.com/dreyloch/ashfell/internal/storage"
)

// MaxMeleeDamage bounds a basic attack roll.
const MaxMeleeDamage = 20

// RollMelee returns damage in [1, MaxMeleeDamage].
func RollMelee() int {
	return rand.IntN(MaxMeleeDamage) + 1
}

// RollSpell returns damage in [spec.MinDamage, spec.MaxDamage].
func RollSpell(spec *game.SpellSpec) int {
	span := spec.MaxDamage - spec.MinDamage
	if span <= 0 {
		return spec.MinDamage
	}
	return spec.MinDamage + rand.IntN(span+1)
}

// SpellBook indexes spell definitions by their one-byte wire code.
type SpellBook struct {
	byCode map[uint8]*game.SpellSpec
}

// NewSpellBook builds the code index from the spell store. Two spells
// claiming the same wire code is a content error caught at startup.
func NewSpellBook(spells storage.Storer[*game.SpellSpec]) (*SpellBook, error) {
	sb := &SpellBook{byCode: make(map[uint8]*game.SpellSpec)}

	for id, spec := range spells.GetAll() {
		if existing, ok := sb.byCode[spec.Code]; ok {
			return nil, fmt.Errorf("spell %q reuses wire code %d (already %q)", id, spec.Code, existing.Name)
		}
		sb.byCode[spec.Code] = spec
	}

	return sb, nil
}

// Lookup returns the spell registered under code, or nil.
func (sb *SpellBook) Lookup(code uint8) *game.SpellSpec {
	return sb.byCode[code]
}
