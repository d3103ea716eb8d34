package inventory

import "github.com/gravitas-games/buildplanner/internal/item"

// Cursor is the single in-flight item shared by every container of a
// session. It is owned by the session coordinator and handed to each
// container at construction.
type Cursor struct {
	slot Slot
}

// NewCursor returns an empty cursor.
func NewCursor() *Cursor {
	return &Cursor{slot: Slot{OnCursor: true}}
}

// Slot returns the transient cursor slot.
func (c *Cursor) Slot() *Slot {
	if c == nil {
		return nil
	}
	return &c.slot
}

// Item returns the held item or nil.
func (c *Cursor) Item() *item.Item {
	if c == nil {
		return nil
	}
	return c.slot.Item
}

// Holding reports whether an item is in flight.
func (c *Cursor) Holding() bool { return c.Item() != nil }

// Holds reports whether it is the item in flight, by identity.
func (c *Cursor) Holds(it *item.Item) bool { return c.Item().Same(it) }

// Hold puts it on the cursor. It fails if another item is already held.
func (c *Cursor) Hold(it *item.Item) bool {
	if c == nil || it == nil || c.Holding() {
		return false
	}
	c.slot.Item = it
	return true
}

// Take clears the cursor and returns what it held.
func (c *Cursor) Take() *item.Item {
	if c == nil {
		return nil
	}
	it := c.slot.Item
	c.slot.Item = nil
	return it
}

// Clear drops the held item.
func (c *Cursor) Clear() { c.Take() }
