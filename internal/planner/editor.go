// Package planner coordinates one character build: the session cursor, the
// inventories and equipment slots it moves items between, the selected
// class and the attribute points.
package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/gravitas-games/buildplanner/internal/equipment"
	"github.com/gravitas-games/buildplanner/internal/inventory"
	"github.com/gravitas-games/buildplanner/internal/item"
	"github.com/gravitas-games/buildplanner/pkg/geom"
)

// Inventory names.
const (
	MainInventory  = "main"
	CharmInventory = "charm"
)

var (
	// ErrCursorBusy is returned when an item is picked up while another one
	// is still on the cursor.
	ErrCursorBusy = errors.New("planner: cursor already holds an item")
	// ErrNotOnCursor is returned when a drop names an item that is not the
	// one on the cursor.
	ErrNotOnCursor = errors.New("planner: item is not on the cursor")
	// ErrCursorEmpty is returned when a drop is attempted with nothing held.
	ErrCursorEmpty = errors.New("planner: cursor is empty")
	// ErrUnknownContainer is returned for an unknown inventory or slot name.
	ErrUnknownContainer = errors.New("planner: unknown container")
	// ErrInconsistent is returned when saved data contradicts itself.
	ErrInconsistent = errors.New("planner: inconsistent save data")
)

// Catalog is what the editor needs from the item catalog.
type Catalog interface {
	item.SocketableLookup
	Lookup(name string) (*item.Data, bool)
	MakeRuneword(ctx context.Context, name string, base *item.Data) (*item.Data, error)
}

// Config sizes the editor's grids.
type Config struct {
	MainSize  geom.Point
	CharmSize geom.Point
}

// DefaultConfig matches the in-game stash layout.
var DefaultConfig = Config{MainSize: geom.Pt(10, 10), CharmSize: geom.Pt(10, 3)}

// origin remembers where the cursor item was lifted from.
type origin struct {
	inventory string
	slot      string
}

// Editor is the single mutator of a build. It owns the cursor and hands it
// to every container, so at most one item is ever in flight. An Editor is
// not safe for concurrent use.
type Editor struct {
	cfg     Config
	catalog Catalog
	bus     inventory.EventBus

	cursor *inventory.Cursor
	from   origin

	inventories map[string]*inventory.Inventory
	invOrder    []string
	slots       map[string]*equipment.Slot
	slotOrder   []string

	class      *Class
	attributes Attributes
}

// New creates an editor with empty main and charm inventories and the full
// equipment layout.
func New(cfg Config, catalog Catalog, bus inventory.EventBus) *Editor {
	if bus == nil {
		bus = inventory.NullEventBus{}
	}
	e := &Editor{
		cfg:        cfg,
		catalog:    catalog,
		bus:        bus,
		cursor:     inventory.NewCursor(),
		attributes: NewAttributes(),
	}
	e.inventories, e.invOrder = e.newInventories()
	e.slots, e.slotOrder = newSlots()
	return e
}

func (e *Editor) newInventories() (map[string]*inventory.Inventory, []string) {
	main := inventory.New(MainInventory, e.cfg.MainSize,
		inventory.WithCursor(e.cursor), inventory.WithEventBus(e.bus))
	charm := inventory.New(CharmInventory, e.cfg.CharmSize,
		inventory.WithCursor(e.cursor), inventory.WithEventBus(e.bus),
		inventory.WithPolicy(inventory.Whitelist("Charm")))
	return map[string]*inventory.Inventory{MainInventory: main, CharmInventory: charm},
		[]string{MainInventory, CharmInventory}
}

func newSlots() (map[string]*equipment.Slot, []string) {
	layout := equipment.NewLayout()
	slots := make(map[string]*equipment.Slot, len(layout))
	order := make([]string, 0, len(layout))
	for _, s := range layout {
		slots[s.Name()] = s
		order = append(order, s.Name())
	}
	return slots, order
}

// Catalog returns the injected catalog.
func (e *Editor) Catalog() Catalog { return e.catalog }

// Cursor returns the session cursor.
func (e *Editor) Cursor() *inventory.Cursor { return e.cursor }

// Inventory returns a named inventory.
func (e *Editor) Inventory(name string) (*inventory.Inventory, bool) {
	inv, ok := e.inventories[name]
	return inv, ok
}

// Main returns the main inventory.
func (e *Editor) Main() *inventory.Inventory { return e.inventories[MainInventory] }

// InventoryNames returns the inventory names in scan order.
func (e *Editor) InventoryNames() []string { return append([]string(nil), e.invOrder...) }

// Slot returns a named equipment slot.
func (e *Editor) Slot(name string) (*equipment.Slot, bool) {
	s, ok := e.slots[name]
	return s, ok
}

// SlotNames returns the equipment slot names in layout order.
func (e *Editor) SlotNames() []string { return append([]string(nil), e.slotOrder...) }

// Class returns the selected class or nil.
func (e *Editor) Class() *Class { return e.class }

// Attributes returns a copy of the attribute allocation.
func (e *Editor) Attributes() Attributes { return e.attributes }

func (e *Editor) inventory(name string) (*inventory.Inventory, error) {
	inv, ok := e.inventories[name]
	if !ok {
		return nil, fmt.Errorf("%w: inventory %q", ErrUnknownContainer, name)
	}
	return inv, nil
}

func (e *Editor) slot(name string) (*equipment.Slot, error) {
	s, ok := e.slots[name]
	if !ok {
		return nil, fmt.Errorf("%w: slot %q", ErrUnknownContainer, name)
	}
	return s, nil
}

// Reset empties every container, the cursor and the class selection.
func (e *Editor) Reset() {
	e.cursor.Clear()
	e.from = origin{}
	for _, name := range e.invOrder {
		e.inventories[name].Clear()
	}
	e.slots, e.slotOrder = newSlots()
	e.class = nil
	e.attributes = NewAttributes()
}
