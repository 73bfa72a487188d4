package game

import (
	"fmt"

	"github.com/pixil98/go-errors"

	"github.com/dreyloch/ashfell/internal/storage"
)

// ItemSpec is an on-disk item definition.
type ItemSpec struct {
	Name      string `json:"name"`
	Stackable bool   `json:"stackable,omitempty"`
	Slot      string `json:"slot,omitempty"` // equipment slot, empty if not equippable
}

func (s *ItemSpec) Validate() error {
	el := errors.NewErrorList()

	if s.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}

	switch s.Slot {
	case "", SlotWeapon, SlotShield, SlotBody, SlotHelm:
	default:
		el.Add(fmt.Errorf("unknown equipment slot %q", s.Slot))
	}

	return el.Err()
}

// GroundItem is a transient world drop. DroppedBy is a weak reference to the
// player id that caused the drop; it confers no ownership and may outlive the
// session it names. Ground items never decay; the population only grows.
type GroundItem struct {
	InstanceId string
	Item       storage.Identifier
	X, Y       int
	Qty        int
	DroppedBy  string
}
