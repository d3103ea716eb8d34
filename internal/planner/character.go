package planner

import (
	"errors"
	"fmt"
	"log"

	"github.com/gravitas-games/buildplanner/internal/equipment"
	"github.com/gravitas-games/buildplanner/internal/inventory"
	"github.com/gravitas-games/buildplanner/internal/item"
)

// Class is a playable character class and the weapon subtypes it may wield.
type Class struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description"`
	Image       string   `json:"image,omitempty" yaml:"image"`
	Weapons     []string `json:"restrictions" yaml:"weapons"`
}

// CanEquip reports whether the class may wield subtype.
func (c Class) CanEquip(subtype string) bool {
	for _, w := range c.Weapons {
		if w == subtype {
			return true
		}
	}
	return false
}

// SelectClass switches the build to c. The weapon and offhand slots are
// restricted to the class weapons; an item they no longer accept is moved
// to the main inventory, or to the cursor if it is free. If neither has
// room the item stays equipped.
func (e *Editor) SelectClass(c Class) {
	cls := c
	e.class = &cls
	e.applyClassRestrictions()
}

// ClearClass removes the class selection and restores the default slot
// policies.
func (e *Editor) ClearClass() {
	e.class = nil
	for _, name := range equipment.WeaponSlots {
		def, _ := equipment.Lookup(name)
		e.rehome(name, e.slots[name].SetRestrictions(def.Policy))
	}
}

func (e *Editor) applyClassRestrictions() {
	for _, name := range equipment.WeaponSlots {
		names := append([]string(nil), e.class.Weapons...)
		if name == equipment.Offhand {
			names = append(names, string(item.TypeOffhand))
		}
		e.rehome(name, e.slots[name].SetRestrictions(inventory.Whitelist(names...)))
	}
}

func (e *Editor) rehome(slot string, evicted *item.Item) {
	if evicted == nil {
		return
	}
	switch {
	case e.Main().AddItem(evicted):
		log.Printf("Moved %s from %s to the main inventory", evicted.Data.Name, slot)
	case e.cursor.Hold(evicted):
		e.from = origin{slot: slot}
		log.Printf("Moved %s from %s to the cursor", evicted.Data.Name, slot)
	default:
		e.slots[slot].Set(evicted)
		log.Printf("No room for %s evicted from %s; kept equipped", evicted.Data.Name, slot)
	}
}

// AttributeBudget is the number of attribute points a build starts with.
const AttributeBudget = 400

// ErrNoPoints is returned when an increase exceeds the remaining points.
var ErrNoPoints = errors.New("planner: not enough attribute points")

// ErrUnknownAttribute is returned for an attribute name outside the set.
var ErrUnknownAttribute = errors.New("planner: unknown attribute")

// Attributes is the point allocation of a build.
type Attributes struct {
	Points       int `json:"attributePoints"`
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Intelligence int `json:"intelligence"`
	Energy       int `json:"energy"`
	Armor        int `json:"armor"`
	Vitality     int `json:"vitality"`
}

// NewAttributes returns an empty allocation with the full budget.
func NewAttributes() Attributes { return Attributes{Points: AttributeBudget} }

func (a *Attributes) field(name string) (*int, bool) {
	switch name {
	case "strength":
		return &a.Strength, true
	case "dexterity":
		return &a.Dexterity, true
	case "intelligence":
		return &a.Intelligence, true
	case "energy":
		return &a.Energy, true
	case "armor":
		return &a.Armor, true
	case "vitality":
		return &a.Vitality, true
	}
	return nil, false
}

// Increase spends amount points on the named attribute.
func (a *Attributes) Increase(name string, amount int) error {
	f, ok := a.field(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
	}
	if amount <= 0 {
		return fmt.Errorf("planner: attribute amount must be positive, got %d", amount)
	}
	if a.Points < amount {
		return fmt.Errorf("%w: %d left, %d requested", ErrNoPoints, a.Points, amount)
	}
	*f += amount
	a.Points -= amount
	return nil
}

// Reset refunds every point.
func (a *Attributes) Reset() { *a = NewAttributes() }

// Spent returns the number of allocated points.
func (a Attributes) Spent() int {
	return a.Strength + a.Dexterity + a.Intelligence + a.Energy + a.Armor + a.Vitality
}

// valid reports whether the allocation adds up to the budget.
func (a Attributes) valid() bool {
	for _, v := range []int{a.Points, a.Strength, a.Dexterity, a.Intelligence, a.Energy, a.Armor, a.Vitality} {
		if v < 0 {
			return false
		}
	}
	return a.Points+a.Spent() == AttributeBudget
}

// IncreaseAttribute spends points on the editor's allocation.
func (e *Editor) IncreaseAttribute(name string, amount int) error {
	return e.attributes.Increase(name, amount)
}

// ResetAttributes refunds every attribute point.
func (e *Editor) ResetAttributes() { e.attributes.Reset() }
