package item

import (
	"github.com/google/uuid"

	"github.com/gravitas-games/buildplanner/pkg/geom"
)

// Item is a placed instance of a catalog variant. UUID is the instance
// identity used by every container and the cursor.
type Item struct {
	UUID string
	Data *Data

	size      geom.Point
	footprint geom.Footprint
	start     geom.Point
}

// New creates a fresh instance of data with a new identity. The size is
// taken from the variant.
func New(data *Data) *Item {
	return newWithID(uuid.NewString(), data, data.Size)
}

// NewSized creates a fresh instance with an explicit size. Socketables are
// always 1x1 regardless of the requested size.
func NewSized(data *Data, size geom.Point) *Item {
	return newWithID(uuid.NewString(), data, size)
}

func newWithID(id string, data *Data, size geom.Point) *Item {
	if data.IsSocketable() {
		size = geom.Pt(1, 1)
	}
	it := &Item{UUID: id, Data: data}
	it.setSize(size)
	return it
}

func (it *Item) setSize(size geom.Point) {
	it.footprint = geom.Rect(size)
	if size.X <= 0 {
		size.X = 1
	}
	if size.Y <= 0 {
		size.Y = 1
	}
	it.size = size
}

// Size returns the item's width and height in cells.
func (it *Item) Size() geom.Point { return it.size }

// Footprint returns the cell offsets the item covers.
func (it *Item) Footprint() geom.Footprint { return it.footprint }

// Start returns the origin cell of the item's footprint.
func (it *Item) Start() geom.Point { return it.start }

// SetStart moves the origin of the item's footprint.
func (it *Item) SetStart(p geom.Point) { it.start = p }

// Subtype is shorthand for it.Data.Subtype.
func (it *Item) Subtype() string {
	if it == nil || it.Data == nil {
		return ""
	}
	return it.Data.Subtype
}

// Same reports whether both items are the same instance.
func (it *Item) Same(other *Item) bool {
	return it != nil && other != nil && it.UUID == other.UUID
}

// Clone returns a deep copy that keeps the instance identity.
func (it *Item) Clone() *Item {
	if it == nil {
		return nil
	}
	out := newWithID(it.UUID, it.Data.Clone(), it.size)
	out.start = it.start
	return out
}

// Duplicate returns a deep copy with a new identity.
func (it *Item) Duplicate() *Item {
	out := it.Clone()
	out.UUID = uuid.NewString()
	return out
}
