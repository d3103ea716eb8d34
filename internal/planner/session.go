package planner

import (
	"encoding/json"
	"fmt"

	"github.com/gravitas-games/buildplanner/internal/equipment"
	"github.com/gravitas-games/buildplanner/internal/inventory"
	"github.com/gravitas-games/buildplanner/internal/item"
)

// Record is the saved form of a build. The cursor is never saved.
type Record struct {
	Inventories    map[string]inventory.Record `json:"inventories"`
	EquipmentSlots map[string]equipment.Record `json:"equipmentSlots"`
	Class          *Class                      `json:"selectedCharacter"`
	Attributes     Attributes                  `json:"attributes"`
}

// Record captures the current build.
func (e *Editor) Record() Record {
	rec := Record{
		Inventories:    make(map[string]inventory.Record, len(e.inventories)),
		EquipmentSlots: make(map[string]equipment.Record, len(e.slots)),
		Attributes:     e.attributes,
	}
	for name, inv := range e.inventories {
		rec.Inventories[name] = inv.Record()
	}
	for name, sl := range e.slots {
		rec.EquipmentSlots[name] = sl.Record()
	}
	if e.class != nil {
		c := *e.class
		rec.Class = &c
	}
	return rec
}

// Serialize encodes the build to JSON.
func (e *Editor) Serialize() ([]byte, error) {
	return json.Marshal(e.Record())
}

// Deserialize replaces the build with data from JSON.
func (e *Editor) Deserialize(b []byte) error {
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}
	return e.Restore(rec)
}

// Restore replaces the build with rec. Catalog socketables are resolved
// through the editor's catalog, which must already be loaded. Any error
// leaves the editor unchanged: an unknown container name, a slot record
// filed under another slot's name, or an item identity that appears twice
// abort the whole restore.
func (e *Editor) Restore(rec Record) error {
	var lookup item.SocketableLookup
	if e.catalog != nil {
		lookup = e.catalog
	}
	if !rec.Attributes.valid() {
		return fmt.Errorf("%w: attribute points do not add up to %d", ErrInconsistent, AttributeBudget)
	}

	inventories, invOrder := e.newInventories()
	for name, ir := range rec.Inventories {
		inv, ok := inventories[name]
		if !ok {
			return fmt.Errorf("%w: unknown inventory %q", ErrInconsistent, name)
		}
		if err := inv.Restore(ir, lookup); err != nil {
			return err
		}
	}

	slots, slotOrder := newSlots()
	for name, sr := range rec.EquipmentSlots {
		if sr.SlotName != name {
			return fmt.Errorf("%w: slot record %q stored under %q", ErrInconsistent, sr.SlotName, name)
		}
		if _, ok := slots[name]; !ok {
			return fmt.Errorf("%w: unknown slot %q", ErrInconsistent, name)
		}
		sl, err := equipment.Decode(sr, lookup)
		if err != nil {
			return err
		}
		slots[name] = sl
	}

	seen := make(map[string]string)
	claim := func(it *item.Item, where string) error {
		if it == nil {
			return nil
		}
		if prev, dup := seen[it.UUID]; dup {
			return fmt.Errorf("%w: item %s in both %s and %s", ErrInconsistent, it.UUID, prev, where)
		}
		seen[it.UUID] = where
		return nil
	}
	for _, name := range slotOrder {
		if err := claim(slots[name].Item(), name); err != nil {
			return err
		}
	}
	for _, name := range invOrder {
		for _, it := range inventories[name].Items() {
			if err := claim(it, name); err != nil {
				return err
			}
		}
	}

	e.cursor.Clear()
	e.from = origin{}
	e.inventories, e.invOrder = inventories, invOrder
	e.slots, e.slotOrder = slots, slotOrder
	e.class = nil
	if rec.Class != nil {
		c := *rec.Class
		e.class = &c
	}
	e.attributes = rec.Attributes
	return nil
}
