package planner

import (
	"context"
	"fmt"
	"log"

	"github.com/gravitas-games/buildplanner/internal/inventory"
	"github.com/gravitas-games/buildplanner/internal/item"
	"github.com/gravitas-games/buildplanner/pkg/geom"
)

// IsItemOnCursor reports whether an item is in flight.
func (e *Editor) IsItemOnCursor() bool { return e.cursor.Holding() }

// CursorItem returns the item in flight or nil.
func (e *Editor) CursorItem() *item.Item { return e.cursor.Item() }

// PickupSlotOnCursor puts a copy of the slot's item on the cursor, then
// detaches the original from the first equipment slot or inventory that
// holds it. Items that no container holds, such as fresh catalog picks,
// are simply put on the cursor.
func (e *Editor) PickupSlotOnCursor(s *inventory.Slot) error {
	if e.cursor.Holding() {
		return ErrCursorBusy
	}
	if s.Empty() {
		return ErrCursorEmpty
	}
	held := s.Item.Clone()
	e.from = e.detach(s.Item)
	e.cursor.Hold(held)
	return nil
}

func (e *Editor) detach(it *item.Item) origin {
	for _, name := range e.slotOrder {
		if sl := e.slots[name]; sl.Holds(it) {
			sl.Remove()
			return origin{slot: name}
		}
	}
	for _, name := range e.invOrder {
		if inv := e.inventories[name]; inv.Contains(it) {
			inv.RemoveItem(it)
			return origin{inventory: name}
		}
	}
	return origin{}
}

// PickupFromInventory lifts the item covering p in the named inventory.
func (e *Editor) PickupFromInventory(name string, p geom.Point) error {
	inv, err := e.inventory(name)
	if err != nil {
		return err
	}
	it := inv.GetItemInCell(p)
	if it == nil {
		return fmt.Errorf("%w: no item at %v in %s", ErrCursorEmpty, p, name)
	}
	return e.PickupSlotOnCursor(&inventory.Slot{Item: it})
}

// PickupFromSlot lifts the item equipped in the named slot.
func (e *Editor) PickupFromSlot(name string) error {
	sl, err := e.slot(name)
	if err != nil {
		return err
	}
	if sl.Empty() {
		return fmt.Errorf("%w: slot %s is empty", ErrCursorEmpty, name)
	}
	return e.PickupSlotOnCursor(&inventory.Slot{Item: sl.Item()})
}

// PickupFromCatalog puts a fresh instance of a catalog item on the cursor.
func (e *Editor) PickupFromCatalog(name string) error {
	if e.catalog == nil {
		return fmt.Errorf("%w: no catalog", ErrUnknownContainer)
	}
	d, ok := e.catalog.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: catalog item %q", ErrUnknownContainer, name)
	}
	return e.PickupSlotOnCursor(&inventory.Slot{Item: item.New(d.Clone())})
}

// RemoveSlotFromCursor clears the cursor.
func (e *Editor) RemoveSlotFromCursor() {
	e.cursor.Clear()
	e.from = origin{}
}

// PutItemInEquipmentSlot equips a copy of it, which must be the item on the
// cursor. A previously equipped item goes to the main inventory, or back
// onto the cursor if the main inventory has no room. It returns false when
// the slot refuses the item.
func (e *Editor) PutItemInEquipmentSlot(name string, it *item.Item) (bool, error) {
	sl, err := e.slot(name)
	if err != nil {
		return false, err
	}
	if !e.cursor.Holds(it) {
		return false, ErrNotOnCursor
	}
	prev, ok := sl.Put(it.Clone())
	if !ok {
		return false, nil
	}
	e.RemoveSlotFromCursor()
	if prev != nil && !e.Main().AddItem(prev) {
		e.cursor.Hold(prev)
		e.from = origin{slot: name}
	}
	return true, nil
}

// EquipCursor equips the cursor item into the named slot.
func (e *Editor) EquipCursor(name string) (bool, error) {
	it := e.cursor.Item()
	if it == nil {
		return false, ErrCursorEmpty
	}
	return e.PutItemInEquipmentSlot(name, it)
}

// DropOnInventory drops the cursor item at p in the named inventory.
func (e *Editor) DropOnInventory(name string, p geom.Point) (inventory.Transfer, error) {
	inv, err := e.inventory(name)
	if err != nil {
		return inventory.Transfer{}, err
	}
	if !e.cursor.Holding() {
		return inventory.Transfer{}, ErrCursorEmpty
	}
	tr := inv.PlaceItemOnCursor(p)
	switch tr.Outcome {
	case inventory.Moved, inventory.Socketed:
		e.from = origin{}
	case inventory.Swapped:
		e.from = origin{inventory: name}
	}
	return tr, nil
}

// ReturnCursor puts the cursor item back where it was lifted from: its old
// slot, or its old position in its old inventory, or anywhere in the main
// inventory. It reports whether the item was placed.
func (e *Editor) ReturnCursor() bool {
	it := e.cursor.Item()
	if it == nil {
		return true
	}
	if sl, ok := e.slots[e.from.slot]; ok && sl.Empty() && sl.Accepts(it) {
		sl.Set(e.cursor.Take())
		e.from = origin{}
		return true
	}
	if inv, ok := e.inventories[e.from.inventory]; ok {
		if inv.DoesItemFitWithType(it.Footprint(), it.Start(), false, it.Subtype()) == inventory.ValidPlacement {
			e.cursor.Take()
			inv.SetItem(it, it.Start())
			e.from = origin{}
			return true
		}
	}
	e.cursor.Take()
	if e.Main().AddItem(it) {
		e.from = origin{}
		return true
	}
	e.cursor.Hold(it)
	return false
}

// AddToInventory places a fresh instance of data in the first free space.
func (e *Editor) AddToInventory(name string, data *item.Data) (*item.Item, error) {
	inv, err := e.inventory(name)
	if err != nil {
		return nil, err
	}
	it := item.New(data)
	if !inv.AddItem(it) {
		return nil, nil
	}
	return it, nil
}

// RemoveFromInventory deletes the item covering p.
func (e *Editor) RemoveFromInventory(name string, p geom.Point) (bool, error) {
	inv, err := e.inventory(name)
	if err != nil {
		return false, err
	}
	it := inv.GetItemInCell(p)
	if it == nil {
		return false, nil
	}
	return inv.RemoveItem(it), nil
}

// Unequip moves the item of the named slot to the main inventory.
func (e *Editor) Unequip(name string) (bool, error) {
	sl, err := e.slot(name)
	if err != nil {
		return false, err
	}
	it := sl.Item()
	if it == nil {
		return false, nil
	}
	if !e.Main().AddItem(it) {
		return false, nil
	}
	sl.Remove()
	return true, nil
}

// SetCellUnlocked locks or unlocks a cell. An item evicted by locking is
// moved to the main inventory when it has room and dropped otherwise.
func (e *Editor) SetCellUnlocked(name string, p geom.Point, unlocked bool) (bool, error) {
	inv, err := e.inventory(name)
	if err != nil {
		return false, err
	}
	evicted, ok := inv.SetIsUnlockedCell(p, unlocked)
	if evicted != nil && !e.Main().AddItem(evicted) {
		log.Printf("Dropped %s evicted from locked cell %v of %s", evicted.Data.Name, p, name)
	}
	return ok, nil
}

// ApplyRuneword turns the cursor item into the named runeword. Runes are
// resolved before anything is mutated; on failure the cursor is unchanged.
func (e *Editor) ApplyRuneword(ctx context.Context, name string) (*item.Item, error) {
	base := e.cursor.Item()
	if base == nil {
		return nil, ErrCursorEmpty
	}
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: no catalog", ErrUnknownContainer)
	}
	d, err := e.catalog.MakeRuneword(ctx, name, base.Data)
	if err != nil {
		return nil, err
	}
	out := item.NewSized(d, base.Size())
	out.SetStart(base.Start())
	e.cursor.Take()
	e.cursor.Hold(out)
	return out, nil
}
