// Package catalog is the item catalog injected into the planner: parsed
// wiki items indexed by name and type, socketables by name, and runeword
// definitions. Items are fetched lazily per type from a Source.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/gravitas-games/buildplanner/internal/item"
)

// ErrNotFound is returned when a name is not in the catalog.
var ErrNotFound = errors.New("catalog: not found")

// Option configures catalog construction.
type Option func(*Catalog)

// WithSource attaches the source items are fetched from.
func WithSource(src Source) Option {
	return func(c *Catalog) { c.source = src }
}

// WithFallbackImage sets the image used when an item icon cannot be loaded.
func WithFallbackImage(url string) Option {
	return func(c *Catalog) { c.fallbackImage = url }
}

// WithFetchLimit bounds the number of concurrent item fetches.
func WithFetchLimit(n int) Option {
	return func(c *Catalog) { c.fetchLimit = n }
}

// Catalog stores item variants keyed by name. It is safe for concurrent use.
type Catalog struct {
	mu          sync.RWMutex
	items       map[string]*item.Data
	byType      map[item.Type][]*item.Data
	socketables map[string]*item.Data
	runewords   map[string]item.Runeword

	// paths groups source paths by their subtype directory
	paths  map[string][]string
	loaded map[item.Type]bool
	flight singleflight.Group

	source        Source
	fallbackImage string
	fetchLimit    int
}

// New constructs an empty catalog and optionally seeds it with items.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		items:         make(map[string]*item.Data),
		byType:        make(map[item.Type][]*item.Data),
		socketables:   make(map[string]*item.Data),
		runewords:     make(map[string]item.Runeword),
		paths:         make(map[string][]string),
		loaded:        make(map[item.Type]bool),
		fallbackImage: DefaultFallbackImage,
		fetchLimit:    8,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Register inserts or replaces an item by name.
func (c *Catalog) Register(d *item.Data) error {
	if d == nil || d.Name == "" {
		return errors.New("catalog: item missing name")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registerLocked(d)
	return nil
}

func (c *Catalog) registerLocked(d *item.Data) {
	if old, ok := c.items[d.Name]; ok {
		list := c.byType[old.Type]
		for i, x := range list {
			if x == old {
				c.byType[old.Type] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
	c.items[d.Name] = d
	c.byType[d.Type] = append(c.byType[d.Type], d)
	if d.IsSocketable() {
		c.socketables[d.Name] = d
	}
}

// Lookup returns the item with the given name.
func (c *Catalog) Lookup(name string) (*item.Data, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.items[name]
	return d, ok
}

// Items returns the registered items of a type sorted by name.
func (c *Catalog) Items(t item.Type) []*item.Data {
	c.mu.RLock()
	out := append([]*item.Data(nil), c.byType[t]...)
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered items.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// LookupSocketable returns a registered socketable by name.
func (c *Catalog) LookupSocketable(name string) (*item.Data, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.socketables[name]
	return d, ok
}

// ResolveSocketable returns a socketable by name, loading the socketable
// type from the source first if it has not been loaded yet.
func (c *Catalog) ResolveSocketable(ctx context.Context, name string) (*item.Data, error) {
	if d, ok := c.LookupSocketable(name); ok {
		return d, nil
	}
	if c.source != nil {
		if _, err := c.LoadType(ctx, item.TypeSocketable); err != nil {
			return nil, err
		}
		if d, ok := c.LookupSocketable(name); ok {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: socketable %q", ErrNotFound, name)
}

// RegisterRuneword inserts or replaces a runeword definition.
func (c *Catalog) RegisterRuneword(rw item.Runeword) error {
	if rw.Name == "" || len(rw.Runes) == 0 {
		return errors.New("catalog: runeword needs a name and runes")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runewords[rw.Name] = rw
	return nil
}

// Runeword returns a runeword definition by name.
func (c *Catalog) Runeword(name string) (item.Runeword, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rw, ok := c.runewords[name]
	return rw, ok
}

// Runewords returns every runeword definition sorted by name.
func (c *Catalog) Runewords() []item.Runeword {
	c.mu.RLock()
	out := make([]item.Runeword, 0, len(c.runewords))
	for _, rw := range c.runewords {
		out = append(out, rw)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MakeRuneword applies the named runeword to base.
func (c *Catalog) MakeRuneword(ctx context.Context, name string, base *item.Data) (*item.Data, error) {
	rw, ok := c.Runeword(name)
	if !ok {
		return nil, fmt.Errorf("%w: runeword %q", ErrNotFound, name)
	}
	return rw.Apply(ctx, base, c)
}
