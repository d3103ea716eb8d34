package inventory

import (
	"sync"

	"github.com/gravitas-games/buildplanner/internal/item"
)

// EventType represents the kind of inventory change.
type EventType int

const (
	// EventItemAdded is emitted when an item gets a slot.
	EventItemAdded EventType = iota
	// EventItemMoved is emitted when a placed item changes origin.
	EventItemMoved
	// EventItemRemoved is emitted when an item leaves the grid.
	EventItemRemoved
	// EventSocketed is emitted when the cursor item is inserted into a socket.
	EventSocketed
	// EventCellLock is emitted when a cell is locked or unlocked.
	EventCellLock
	// EventCleared is emitted when the grid is emptied or rebuilt.
	EventCleared
)

// String returns a human-readable representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventItemAdded:
		return "ItemAdded"
	case EventItemMoved:
		return "ItemMoved"
	case EventItemRemoved:
		return "ItemRemoved"
	case EventSocketed:
		return "Socketed"
	case EventCellLock:
		return "CellLock"
	case EventCleared:
		return "Cleared"
	default:
		return "Unknown"
	}
}

// Event describes one inventory update.
type Event struct {
	Type      EventType
	Inventory string
	Item      *item.Item
}

// EventBus delivers inventory updates to named listeners.
type EventBus interface {
	// Subscribe registers a handler under a listener name.
	Subscribe(name string, handler func(Event))

	// Unsubscribe removes the handler for a listener name.
	Unsubscribe(name string)

	// Publish sends an event to every subscribed handler.
	Publish(event Event)
}

// SimpleEventBus is an in-memory bus. Handlers run synchronously in the
// publishing goroutine, so a listener observes each mutation before the
// mutating call returns.
type SimpleEventBus struct {
	mu       sync.RWMutex
	handlers map[string]func(Event)
}

// NewSimpleEventBus creates an empty bus.
func NewSimpleEventBus() *SimpleEventBus {
	return &SimpleEventBus{handlers: make(map[string]func(Event))}
}

// Subscribe registers a handler under a listener name, replacing any
// previous handler with that name.
func (bus *SimpleEventBus) Subscribe(name string, handler func(Event)) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[name] = handler
}

// Unsubscribe removes the handler for a listener name.
func (bus *SimpleEventBus) Unsubscribe(name string) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.handlers, name)
}

// Publish calls every handler with the event.
func (bus *SimpleEventBus) Publish(event Event) {
	bus.mu.RLock()
	handlers := make([]func(Event), 0, len(bus.handlers))
	for _, h := range bus.handlers {
		handlers = append(handlers, h)
	}
	bus.mu.RUnlock()
	for _, h := range handlers {
		h(event)
	}
}

// NullEventBus is an event bus that does nothing.
type NullEventBus struct{}

// Subscribe does nothing.
func (NullEventBus) Subscribe(string, func(Event)) {}

// Unsubscribe does nothing.
func (NullEventBus) Unsubscribe(string) {}

// Publish does nothing.
func (NullEventBus) Publish(Event) {}
