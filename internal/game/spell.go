package game

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// SpellSpec is an on-disk spell definition. Code is the wire id carried in
// SpellCast packets; damage is rolled uniformly in [MinDamage, MaxDamage].
type SpellSpec struct {
	Name      string `json:"name"`
	Code      uint8  `json:"code"`
	MinDamage int    `json:"min_damage"`
	MaxDamage int    `json:"max_damage"`
}

func (s *SpellSpec) Validate() error {
	el := errors.NewErrorList()

	if s.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	if s.MinDamage < 1 {
		el.Add(fmt.Errorf("min_damage must be at least 1"))
	}
	if s.MaxDamage < s.MinDamage {
		el.Add(fmt.Errorf("max_damage must be >= min_damage"))
	}

	return el.Err()
}
