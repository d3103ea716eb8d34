package item

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrNotEquipment is returned when a transform needs a socketed base.
	ErrNotEquipment = errors.New("item: base is not equipment")
	// ErrTooManyRunes is returned when a runeword needs more sockets than allowed.
	ErrTooManyRunes = errors.New("item: runeword exceeds socket cap")
)

// SocketableResolver resolves a socketable by catalog name.
type SocketableResolver interface {
	ResolveSocketable(ctx context.Context, name string) (*Data, error)
}

// Runeword is a named, ordered list of runes inserted into a base item.
type Runeword struct {
	Name  string   `json:"name" yaml:"name"`
	Runes []string `json:"runes" yaml:"runes"`
}

// Apply clones base into a runeword item: renamed, retagged with the Runeword
// rarity, with exactly len(Runes) sockets filled in order. Runes are resolved
// concurrently; if any of them fails the whole transform fails and base is
// left untouched.
func (rw Runeword) Apply(ctx context.Context, base *Data, resolver SocketableResolver) (*Data, error) {
	if !base.IsEquipment() {
		return nil, ErrNotEquipment
	}
	if len(rw.Runes) > MaxSockets {
		return nil, fmt.Errorf("%w: %s needs %d", ErrTooManyRunes, rw.Name, len(rw.Runes))
	}

	runes := make([]*Data, len(rw.Runes))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range rw.Runes {
		g.Go(func() error {
			d, err := resolver.ResolveSocketable(gctx, name)
			if err != nil {
				return fmt.Errorf("resolve rune %q: %w", name, err)
			}
			if !d.IsSocketable() {
				return fmt.Errorf("resolve rune %q: not a socketable", name)
			}
			runes[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("runeword %s: %w", rw.Name, err)
	}

	out := base.Clone()
	out.Name = rw.Name
	out.Rarity = RarityRuneword
	out.Sockets.SetAmount(len(runes))
	out.ClearSocketables()
	for _, r := range runes {
		out.InsertSocketable(r.Clone())
	}
	return out, nil
}
