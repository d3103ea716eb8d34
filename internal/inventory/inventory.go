package inventory

import (
	"encoding/json"

	"github.com/gravitas-games/buildplanner/internal/item"
	"github.com/gravitas-games/buildplanner/pkg/geom"
)

// Option configures inventory construction.
type Option func(*Inventory)

// WithCursor attaches the session cursor used for drag operations.
func WithCursor(c *Cursor) Option {
	return func(inv *Inventory) { inv.cursor = c }
}

// WithPolicy sets the subtype restriction policy.
func WithPolicy(p Policy) Option {
	return func(inv *Inventory) { inv.policy = p }
}

// WithPersistSlots controls whether Serialize writes the placed items.
// Grids that are rebuilt from other state on load turn this off.
func WithPersistSlots(persist bool) Option {
	return func(inv *Inventory) { inv.persistSlots = persist }
}

// WithStyle stores an opaque presentation blob that is saved verbatim.
func WithStyle(style json.RawMessage) Option {
	return func(inv *Inventory) { inv.style = style }
}

// WithEventBus routes update notifications to bus. A nil bus is ignored.
func WithEventBus(bus EventBus) Option {
	return func(inv *Inventory) {
		if bus != nil {
			inv.bus = bus
		}
	}
}

// Inventory is a rectangular grid of cells plus the slots of the items
// placed on it.
type Inventory struct {
	name string
	size geom.Point

	// cells are stored row-major, index y*width+x
	cells []Cell
	slots []*Slot

	policy       Policy
	cursor       *Cursor
	persistSlots bool
	style        json.RawMessage
	bus          EventBus
}

// New creates an empty inventory of the given grid size.
func New(name string, size geom.Point, opts ...Option) *Inventory {
	inv := &Inventory{
		name:         name,
		persistSlots: true,
		bus:          NullEventBus{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(inv)
		}
	}
	inv.resize(size)
	return inv
}

func (inv *Inventory) resize(size geom.Point) {
	if size.X < 0 {
		size.X = 0
	}
	if size.Y < 0 {
		size.Y = 0
	}
	inv.size = size
	inv.cells = make([]Cell, size.X*size.Y)
	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			inv.cells[y*size.X+x] = Cell{Coordinates: geom.Pt(x, y), Highlight: NoPlacement}
		}
	}
	inv.slots = nil
}

// Name returns the inventory name.
func (inv *Inventory) Name() string { return inv.name }

// Size returns the grid width and height.
func (inv *Inventory) Size() geom.Point { return inv.size }

// Policy returns the active restriction policy.
func (inv *Inventory) Policy() Policy { return inv.policy }

// SetPolicy replaces the restriction policy. Placed items are kept.
func (inv *Inventory) SetPolicy(p Policy) { inv.policy = p }

// Cursor returns the attached cursor, which may be nil.
func (inv *Inventory) Cursor() *Cursor { return inv.cursor }

// SetCursor attaches the session cursor.
func (inv *Inventory) SetCursor(c *Cursor) { inv.cursor = c }

// PersistSlots reports whether Serialize writes the placed items.
func (inv *Inventory) PersistSlots() bool { return inv.persistSlots }

// Style returns the opaque presentation blob.
func (inv *Inventory) Style() json.RawMessage { return inv.style }

// Bus returns the update bus.
func (inv *Inventory) Bus() EventBus { return inv.bus }

func (inv *Inventory) publish(t EventType, it *item.Item) {
	inv.bus.Publish(Event{Type: t, Inventory: inv.name, Item: it})
}

func (inv *Inventory) index(p geom.Point) int { return p.Y*inv.size.X + p.X }

// IsWithinBoundaries reports whether p is a cell of the grid.
func (inv *Inventory) IsWithinBoundaries(p geom.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < inv.size.X && p.Y < inv.size.Y
}

// Cell returns a copy of the cell at p.
func (inv *Inventory) Cell(p geom.Point) (Cell, bool) {
	if !inv.IsWithinBoundaries(p) {
		return Cell{}, false
	}
	return inv.cells[inv.index(p)], true
}

// Cells returns a row-major copy of every cell.
func (inv *Inventory) Cells() []Cell {
	return append([]Cell(nil), inv.cells...)
}

// IsFree reports whether p is inside the grid, unoccupied and unlocked.
func (inv *Inventory) IsFree(p geom.Point) bool {
	c, ok := inv.Cell(p)
	return ok && c.Occupancy == Free && !c.Locked
}

// Items returns the placed items in slot order.
func (inv *Inventory) Items() []*item.Item {
	out := make([]*item.Item, 0, len(inv.slots))
	for _, s := range inv.slots {
		out = append(out, s.Item)
	}
	return out
}

// Len returns the number of placed items.
func (inv *Inventory) Len() int { return len(inv.slots) }

// Contains reports whether it is placed here, by identity.
func (inv *Inventory) Contains(it *item.Item) bool { return inv.slotIndex(it) >= 0 }

func (inv *Inventory) slotIndex(it *item.Item) int {
	for i, s := range inv.slots {
		if s.Item.Same(it) {
			return i
		}
	}
	return -1
}

// GetItemInCell returns the item whose footprint covers p, or nil.
func (inv *Inventory) GetItemInCell(p geom.Point) *item.Item {
	if s := inv.slotAt(p); s != nil {
		return s.Item
	}
	return nil
}

func (inv *Inventory) slotAt(p geom.Point) *Slot {
	for _, s := range inv.slots {
		if s.Item.Footprint().Covers(s.Item.Start(), p) {
			return s
		}
	}
	return nil
}

// conflicts returns the distinct slots covering the footprint anchored at
// dest. ok is false when any covered cell is out of bounds or locked.
func (inv *Inventory) conflicts(fp geom.Footprint, dest geom.Point) (hits []*Slot, ok bool) {
	seen := make(map[*Slot]bool)
	for _, p := range fp.At(dest) {
		c, in := inv.Cell(p)
		if !in || c.Locked {
			return nil, false
		}
		if s := inv.slotAt(p); s != nil && !seen[s] {
			seen[s] = true
			hits = append(hits, s)
		}
	}
	return hits, true
}

// DoesItemFit probes the footprint anchored at dest. No conflict is a valid
// placement and two or more conflicts are invalid. A single conflict is a
// Replacement, unless swapProbe is set, in which case it is invalid.
func (inv *Inventory) DoesItemFit(fp geom.Footprint, dest geom.Point, swapProbe bool) Placement {
	hits, ok := inv.conflicts(fp, dest)
	switch {
	case !ok:
		return InvalidPlacement
	case len(hits) == 0:
		return ValidPlacement
	case len(hits) == 1 && !swapProbe:
		return Replacement
	default:
		return InvalidPlacement
	}
}

// DoesItemFitWithType is DoesItemFit that also refuses subtypes restricted
// by the inventory policy.
func (inv *Inventory) DoesItemFitWithType(fp geom.Footprint, dest geom.Point, swapProbe bool, subtype string) Placement {
	fit := inv.DoesItemFit(fp, dest, swapProbe)
	if fit != InvalidPlacement && inv.policy.IsRestricted("", subtype) {
		return InvalidPlacement
	}
	return fit
}

// FindFreeSpaceForItem scans the grid column by column, top to bottom, and
// returns the first origin where the footprint fits, or geom.Invalid.
func (inv *Inventory) FindFreeSpaceForItem(fp geom.Footprint) geom.Point {
	for x := 0; x < inv.size.X; x++ {
		for y := 0; y < inv.size.Y; y++ {
			p := geom.Pt(x, y)
			switch inv.DoesItemFit(fp, p, true) {
			case ValidPlacement, Replacement:
				return p
			}
		}
	}
	return geom.Invalid
}

// AddItem auto-places it in the first free space. It returns false if the
// subtype is restricted or no space is left.
func (inv *Inventory) AddItem(it *item.Item) bool {
	if it == nil || inv.policy.Restricts(it) || inv.Contains(it) {
		return false
	}
	p := inv.FindFreeSpaceForItem(it.Footprint())
	if !p.IsValid() {
		return false
	}
	it.SetStart(p)
	inv.slots = append(inv.slots, &Slot{Item: it})
	inv.markOccupied(it)
	inv.publish(EventItemAdded, it)
	return true
}

// SetItem places it at dest without conflict or restriction checks. The
// footprint must still lie inside the grid. An earlier slot of the same
// item is replaced.
func (inv *Inventory) SetItem(it *item.Item, dest geom.Point) bool {
	if it == nil || !inv.inBounds(it.Footprint(), dest) {
		return false
	}
	if i := inv.slotIndex(it); i >= 0 {
		inv.spliceSlot(i)
	}
	it.SetStart(dest)
	inv.slots = append(inv.slots, &Slot{Item: it})
	inv.recomputeOccupancy()
	inv.publish(EventItemAdded, it)
	return true
}

// MoveItem moves the item of s to dest. A cursor slot is re-registered as a
// normal slot and the cursor is cleared.
func (inv *Inventory) MoveItem(s *Slot, dest geom.Point) bool {
	if s.Empty() || !inv.inBounds(s.Item.Footprint(), dest) {
		return false
	}
	it := s.Item
	if s.OnCursor {
		if inv.cursor == nil || !inv.cursor.Holds(it) {
			return false
		}
		inv.cursor.Clear()
		if i := inv.slotIndex(it); i >= 0 {
			inv.spliceSlot(i)
		}
		inv.slots = append(inv.slots, &Slot{Item: it})
	} else if inv.slotIndex(it) < 0 {
		return false
	}
	it.SetStart(dest)
	inv.recomputeOccupancy()
	inv.publish(EventItemMoved, it)
	return true
}

// RemoveItem detaches it from the grid and from the cursor.
func (inv *Inventory) RemoveItem(it *item.Item) bool {
	i := inv.slotIndex(it)
	if i < 0 {
		return false
	}
	if inv.cursor.Holds(it) {
		inv.cursor.Clear()
	}
	removed := inv.slots[i].Item
	inv.spliceSlot(i)
	inv.recomputeOccupancy()
	inv.publish(EventItemRemoved, removed)
	return true
}

// RemoveItemBySlot removes the item held by s.
func (inv *Inventory) RemoveItemBySlot(s *Slot) bool {
	if s.Empty() {
		return false
	}
	return inv.RemoveItem(s.Item)
}

// PickupItem lifts a placed item onto the cursor. Its start coordinates
// are kept so it can be returned.
func (inv *Inventory) PickupItem(it *item.Item) bool {
	i := inv.slotIndex(it)
	if i < 0 || inv.cursor == nil || inv.cursor.Holding() {
		return false
	}
	held := inv.slots[i].Item
	inv.spliceSlot(i)
	inv.recomputeOccupancy()
	inv.cursor.Hold(held)
	inv.publish(EventItemRemoved, held)
	return true
}

// Outcome is the result kind of a cursor drop.
type Outcome int

const (
	Rejected Outcome = iota
	Moved
	Swapped
	Socketed
)

func (o Outcome) String() string {
	switch o {
	case Moved:
		return "moved"
	case Swapped:
		return "swapped"
	case Socketed:
		return "socketed"
	default:
		return "rejected"
	}
}

// Transfer reports what a cursor drop did. Displaced is the item picked up
// onto the cursor by a swap.
type Transfer struct {
	Outcome   Outcome
	Item      *item.Item
	Displaced *item.Item
}

// OK reports whether the drop changed any state.
func (t Transfer) OK() bool { return t.Outcome != Rejected }

// PlaceItemOnCursor drops the cursor item at dest. With no conflict the item
// is moved there. With exactly one conflict the item is first offered to the
// conflicting item's sockets, and otherwise swapped with it. Anything else,
// including a restricted subtype, is rejected and leaves the cursor as is.
func (inv *Inventory) PlaceItemOnCursor(dest geom.Point) Transfer {
	cur := inv.cursor.Item()
	if cur == nil {
		return Transfer{}
	}
	if inv.DoesItemFit(cur.Footprint(), dest, false) == InvalidPlacement {
		return Transfer{Item: cur}
	}
	hits, _ := inv.conflicts(cur.Footprint(), dest)
	if len(hits) == 1 && inv.TryInsertSocketable(hits[0].Item) {
		return Transfer{Outcome: Socketed, Item: cur}
	}
	if inv.policy.Restricts(cur) {
		return Transfer{Item: cur}
	}
	switch len(hits) {
	case 0:
		if inv.MoveItem(inv.cursor.Slot(), dest) {
			return Transfer{Outcome: Moved, Item: cur}
		}
	case 1:
		displaced := hits[0].Item
		if inv.SwapItem(displaced, dest) {
			return Transfer{Outcome: Swapped, Item: cur, Displaced: displaced}
		}
	}
	return Transfer{Item: cur}
}

// TryInsertSocketable inserts the cursor item into target's first free
// socket. It succeeds only for a socketable on the cursor and equipment with
// a free socket; the cursor item is consumed.
func (inv *Inventory) TryInsertSocketable(target *item.Item) bool {
	cur := inv.cursor.Item()
	if cur == nil || target == nil || !cur.Data.IsSocketable() {
		return false
	}
	if !target.Data.IsEquipment() || !target.Data.Sockets.HasFree() {
		return false
	}
	if !target.Data.InsertSocketable(cur.Data) {
		return false
	}
	inv.cursor.Clear()
	inv.publish(EventSocketed, target)
	return true
}

// SwapItem places the cursor item at dest and picks target up onto the
// cursor. target keeps its start coordinates.
func (inv *Inventory) SwapItem(target *item.Item, dest geom.Point) bool {
	cur := inv.cursor.Item()
	i := inv.slotIndex(target)
	if cur == nil || i < 0 || !inv.inBounds(cur.Footprint(), dest) {
		return false
	}
	inv.cursor.Take()
	if !inv.PickupItem(inv.slots[i].Item) {
		inv.cursor.Hold(cur)
		return false
	}
	cur.SetStart(dest)
	inv.slots = append(inv.slots, &Slot{Item: cur})
	inv.recomputeOccupancy()
	inv.publish(EventItemAdded, cur)
	return true
}

// SetIsUnlockedCell locks or unlocks the cell at p. Locking an occupied cell
// evicts the covering item first; the evicted item is returned.
func (inv *Inventory) SetIsUnlockedCell(p geom.Point, unlocked bool) (evicted *item.Item, ok bool) {
	if !inv.IsWithinBoundaries(p) {
		return nil, false
	}
	if s := inv.slotAt(p); s != nil {
		evicted = s.Item
		inv.RemoveItem(evicted)
	}
	inv.cells[inv.index(p)].Locked = !unlocked
	inv.publish(EventCellLock, evicted)
	return evicted, true
}

// LockedCells returns the coordinates of every locked cell, row-major.
func (inv *Inventory) LockedCells() []geom.Point {
	var out []geom.Point
	for _, c := range inv.cells {
		if c.Locked {
			out = append(out, c.Coordinates)
		}
	}
	return out
}

// Clear removes every item and highlight. Lock state is kept.
func (inv *Inventory) Clear() {
	inv.slots = nil
	for i := range inv.cells {
		inv.cells[i].Occupancy = Free
		inv.cells[i].Highlight = NoPlacement
	}
	inv.publish(EventCleared, nil)
}

// HighlightPlacement marks the in-bounds cells covered by the footprint at
// dest with the fit result for an item of the given subtype.
func (inv *Inventory) HighlightPlacement(fp geom.Footprint, dest geom.Point, subtype string) Placement {
	fit := inv.DoesItemFitWithType(fp, dest, false, subtype)
	for _, p := range fp.At(dest) {
		if inv.IsWithinBoundaries(p) {
			inv.cells[inv.index(p)].Highlight = fit
		}
	}
	return fit
}

// ClearHighlights resets every cell highlight.
func (inv *Inventory) ClearHighlights() {
	for i := range inv.cells {
		inv.cells[i].Highlight = NoPlacement
	}
}

func (inv *Inventory) inBounds(fp geom.Footprint, dest geom.Point) bool {
	for _, p := range fp.At(dest) {
		if !inv.IsWithinBoundaries(p) {
			return false
		}
	}
	return true
}

func (inv *Inventory) spliceSlot(i int) {
	inv.slots = append(inv.slots[:i], inv.slots[i+1:]...)
}

func (inv *Inventory) markOccupied(it *item.Item) {
	for _, p := range it.Footprint().At(it.Start()) {
		if inv.IsWithinBoundaries(p) {
			inv.cells[inv.index(p)].Occupancy = Occupied
		}
	}
}

// recomputeOccupancy rebuilds cell occupancy from the placed slots, so a
// cell only reverts to Free when no remaining item covers it.
func (inv *Inventory) recomputeOccupancy() {
	for i := range inv.cells {
		inv.cells[i].Occupancy = Free
	}
	for _, s := range inv.slots {
		inv.markOccupied(s.Item)
	}
}
