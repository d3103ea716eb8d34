package equipment

import (
	"errors"
	"fmt"

	"github.com/gravitas-games/buildplanner/internal/inventory"
	"github.com/gravitas-games/buildplanner/internal/item"
)

// ErrUnknownSlot is returned when a record names a slot outside the layout.
var ErrUnknownSlot = errors.New("equipment: unknown slot")

// SlotRecord is the saved form of the bound item.
type SlotRecord struct {
	Item *item.ItemRecord `json:"item"`
}

// Record is the saved form of an equipment slot.
type Record struct {
	Slot     SlotRecord        `json:"slot"`
	SlotName string            `json:"slotName"`
	Policy   *inventory.Policy `json:"policy,omitempty"`
}

// Record captures the slot name, the equipped item and the active policy.
func (s *Slot) Record() Record {
	p := s.policy
	rec := Record{SlotName: s.name, Policy: &p}
	if it := s.slot.Item; it != nil {
		ir := item.EncodeItem(it)
		rec.Slot.Item = &ir
	}
	return rec
}

// Decode rebuilds a slot from its record. A record without a policy gets the
// layout default.
func Decode(rec Record, lookup item.SocketableLookup) (*Slot, error) {
	def, ok := Lookup(rec.SlotName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSlot, rec.SlotName)
	}
	policy := def.Policy
	if rec.Policy != nil {
		policy = *rec.Policy
	}
	s := NewSlot(def.Name, policy)
	if rec.Slot.Item != nil {
		it, err := item.DecodeItem(*rec.Slot.Item, lookup)
		if err != nil {
			return nil, fmt.Errorf("slot %s: %w", rec.SlotName, err)
		}
		s.Set(it)
	}
	return s, nil
}
