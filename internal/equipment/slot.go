// Package equipment holds the fixed-purpose equipment slots of a character
// and the restriction policy each of them enforces.
package equipment

import (
	"github.com/gravitas-games/buildplanner/internal/inventory"
	"github.com/gravitas-games/buildplanner/internal/item"
)

// Slot is one named equipment slot. It holds at most one item and refuses
// items its policy restricts.
type Slot struct {
	name   string
	slot   inventory.Slot
	policy inventory.Policy
}

// NewSlot creates an empty slot.
func NewSlot(name string, policy inventory.Policy) *Slot {
	return &Slot{name: name, policy: policy}
}

// Name returns the fixed slot name.
func (s *Slot) Name() string { return s.name }

// Item returns the equipped item or nil.
func (s *Slot) Item() *item.Item { return s.slot.Item }

// Empty reports whether nothing is equipped.
func (s *Slot) Empty() bool { return s.slot.Empty() }

// Policy returns the active restriction policy.
func (s *Slot) Policy() inventory.Policy { return s.policy }

// IsRestricted reports whether the slot refuses the given type or subtype.
func (s *Slot) IsRestricted(t item.Type, subtype string) bool {
	return s.policy.IsRestricted(t, subtype)
}

// Accepts reports whether it may be equipped here.
func (s *Slot) Accepts(it *item.Item) bool {
	return it != nil && !s.policy.Restricts(it)
}

// Put equips it and returns whatever was equipped before. It fails if the
// policy refuses the item.
func (s *Slot) Put(it *item.Item) (previous *item.Item, ok bool) {
	if !s.Accepts(it) {
		return nil, false
	}
	previous = s.slot.Item
	s.slot.Item = it
	return previous, true
}

// Set equips it without a policy check and returns the previous item. It is
// used when restoring saved state and when an evicted item has nowhere else
// to go.
func (s *Slot) Set(it *item.Item) (previous *item.Item) {
	previous = s.slot.Item
	s.slot.Item = it
	return previous
}

// Remove unequips and returns the item.
func (s *Slot) Remove() *item.Item {
	it := s.slot.Item
	s.slot.Item = nil
	return it
}

// Holds reports whether it is equipped here, by identity.
func (s *Slot) Holds(it *item.Item) bool { return s.slot.Item.Same(it) }

// SetRestrictions replaces the policy. An equipped item the new policy
// refuses is unequipped and returned so the caller can re-home it.
func (s *Slot) SetRestrictions(p inventory.Policy) (evicted *item.Item) {
	s.policy = p
	if it := s.slot.Item; it != nil && p.Restricts(it) {
		return s.Remove()
	}
	return nil
}
