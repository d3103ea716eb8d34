package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gravitas-games/buildplanner/internal/item"
	"github.com/gravitas-games/buildplanner/pkg/geom"
)

// ErrInvalidRecord is returned when a saved grid cannot be restored.
var ErrInvalidRecord = errors.New("inventory: invalid record")

// MaxGridSide bounds each dimension of a restored grid.
const MaxGridSide = 256

// CellsData is the compact lock state of a grid. UFalse lists the locked
// coordinates as "x,y;x,y". Mask is the full row-major bit string, '1' for
// unlocked, consulted for coordinates absent from UFalse.
type CellsData struct {
	UFalse string `json:"uFalse"`
	Mask   string `json:"mask"`
}

// Record is the saved form of an inventory.
type Record struct {
	GridSize  [2]int            `json:"gridSize"`
	CellsData CellsData         `json:"cellsData"`
	Slots     []item.ItemRecord `json:"slots"`
	Style     json.RawMessage   `json:"style,omitempty"`
}

// Record captures the grid size, lock state, placed items and style.
// Items are omitted when slot persistence is off.
func (inv *Inventory) Record() Record {
	locked := make([]string, 0)
	mask := make([]byte, len(inv.cells))
	for i, c := range inv.cells {
		mask[i] = '1'
		if c.Locked {
			mask[i] = '0'
			locked = append(locked, c.Coordinates.String())
		}
	}
	rec := Record{
		GridSize:  [2]int{inv.size.X, inv.size.Y},
		CellsData: CellsData{UFalse: strings.Join(locked, ";"), Mask: string(mask)},
		Slots:     make([]item.ItemRecord, 0, len(inv.slots)),
		Style:     inv.style,
	}
	if inv.persistSlots {
		for _, s := range inv.slots {
			rec.Slots = append(rec.Slots, item.EncodeItem(s.Item))
		}
	}
	return rec
}

// Serialize encodes the inventory to JSON.
func (inv *Inventory) Serialize() ([]byte, error) {
	return json.Marshal(inv.Record())
}

// Deserialize replaces the inventory with data from JSON. Catalog
// socketables are resolved through lookup.
func (inv *Inventory) Deserialize(b []byte, lookup item.SocketableLookup) error {
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}
	return inv.Restore(rec, lookup)
}

// Restore replaces the grid, lock state, items and style from rec. On error
// the inventory is left unchanged.
func (inv *Inventory) Restore(rec Record, lookup item.SocketableLookup) error {
	size := geom.Pt(rec.GridSize[0], rec.GridSize[1])
	if size.X < 0 || size.Y < 0 || size.X > MaxGridSide || size.Y > MaxGridSide {
		return fmt.Errorf("%w: grid size %v", ErrInvalidRecord, rec.GridSize)
	}
	locked, err := parseLocked(rec.CellsData.UFalse)
	if err != nil {
		return err
	}

	next := &Inventory{name: inv.name, policy: inv.policy, cursor: inv.cursor, persistSlots: inv.persistSlots, bus: NullEventBus{}}
	next.resize(size)
	for i := range next.cells {
		c := &next.cells[i]
		unlocked := i >= len(rec.CellsData.Mask) || rec.CellsData.Mask[i] != '0'
		c.Locked = locked[c.Coordinates] || !unlocked
	}
	for _, ir := range rec.Slots {
		it, err := item.DecodeItem(ir, lookup)
		if err != nil {
			return fmt.Errorf("inventory %s: %w", inv.name, err)
		}
		hits, ok := next.conflicts(it.Footprint(), it.Start())
		if !ok || len(hits) > 0 {
			return fmt.Errorf("%w: item %s at %v does not fit %s", ErrInvalidRecord, it.UUID, it.Start(), inv.name)
		}
		next.slots = append(next.slots, &Slot{Item: it})
		next.markOccupied(it)
	}

	inv.size = next.size
	inv.cells = next.cells
	inv.slots = next.slots
	inv.style = rec.Style
	inv.publish(EventCleared, nil)
	return nil
}

func parseLocked(s string) (map[geom.Point]bool, error) {
	out := make(map[geom.Point]bool)
	if s == "" {
		return out, nil
	}
	for _, pair := range strings.Split(s, ";") {
		xs, ys, found := strings.Cut(pair, ",")
		if !found {
			return nil, fmt.Errorf("%w: locked cell %q", ErrInvalidRecord, pair)
		}
		x, errX := strconv.Atoi(xs)
		y, errY := strconv.Atoi(ys)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("%w: locked cell %q", ErrInvalidRecord, pair)
		}
		out[geom.Pt(x, y)] = true
	}
	return out, nil
}
