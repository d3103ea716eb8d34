package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gravitas-games/buildplanner/internal/item"
)

// ErrNoSource is returned when a load is requested without a source.
var ErrNoSource = errors.New("catalog: no source configured")

// Initialize fetches the source index and groups its paths by subtype
// directory. It then loads socketables so saved sessions can be restored.
func (c *Catalog) Initialize(ctx context.Context) error {
	if c.source == nil {
		return ErrNoSource
	}
	paths, err := c.source.Index(ctx)
	if err != nil {
		return fmt.Errorf("catalog index: %w", err)
	}
	grouped := make(map[string][]string)
	for _, p := range paths {
		dir := dirOf(p)
		if dir == "" {
			continue
		}
		grouped[dir] = append(grouped[dir], p)
	}
	c.mu.Lock()
	c.paths = grouped
	c.loaded = make(map[item.Type]bool)
	c.mu.Unlock()

	if _, err := c.LoadType(ctx, item.TypeSocketable); err != nil {
		return err
	}
	log.Printf("Catalog indexed %d paths in %d directories", len(paths), len(grouped))
	return nil
}

// LoadType fetches every item of type t concurrently and caches the result.
// Items that fail to fetch or parse are logged and skipped. Concurrent calls
// for the same type share one fetch.
func (c *Catalog) LoadType(ctx context.Context, t item.Type) ([]*item.Data, error) {
	c.mu.RLock()
	done := c.loaded[t]
	c.mu.RUnlock()
	if done {
		return c.Items(t), nil
	}
	if c.source == nil {
		return nil, ErrNoSource
	}
	if _, err, _ := c.flight.Do(string(t), func() (interface{}, error) {
		return nil, c.loadType(ctx, t)
	}); err != nil {
		return nil, err
	}
	return c.Items(t), nil
}

func (c *Catalog) loadType(ctx context.Context, t item.Type) error {
	c.mu.RLock()
	done := c.loaded[t]
	var paths []string
	for dir, ps := range c.paths {
		if dt, ok := TypeForDir(dir); ok && dt == t {
			paths = append(paths, ps...)
		}
	}
	c.mu.RUnlock()
	if done {
		return nil
	}
	sort.Strings(paths)

	results := make([]*item.Data, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	if c.fetchLimit > 0 {
		g.SetLimit(c.fetchLimit)
	}
	for i, p := range paths {
		g.Go(func() error {
			d, err := c.fetchItem(gctx, p)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("Error loading item from %s: %v", p, err)
				return nil
			}
			results[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	c.mu.Lock()
	for _, d := range results {
		if d != nil {
			c.registerLocked(d)
		}
	}
	c.loaded[t] = true
	c.mu.Unlock()
	return nil
}

func (c *Catalog) fetchItem(ctx context.Context, path string) (*item.Data, error) {
	raw, err := c.source.Item(ctx, path)
	if err != nil {
		return nil, err
	}
	d, err := ParseWikiItem(raw)
	if err != nil {
		return nil, err
	}
	d.Image = c.resolveImage(ctx, strings.TrimRight(path, "/")+"/icon.png")
	return d, nil
}

// resolveImage returns url when it is an allowed, loadable image and the
// fallback image otherwise.
func (c *Catalog) resolveImage(ctx context.Context, url string) string {
	if !ValidImageURL(url) || !c.source.ImageExists(ctx, url) {
		log.Printf("Image load failed: %s", url)
		return c.fallbackImage
	}
	return url
}
