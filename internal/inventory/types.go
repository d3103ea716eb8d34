// Package inventory implements the grid placement engine: cells, slots,
// collision and conflict resolution, socket insertion, restriction
// policies and the compact save format of a single grid.
package inventory

import (
	"github.com/gravitas-games/buildplanner/internal/item"
	"github.com/gravitas-games/buildplanner/pkg/geom"
)

// Occupancy is the fill state of a cell.
type Occupancy int

const (
	Free Occupancy = iota
	Occupied
)

func (o Occupancy) String() string {
	if o == Occupied {
		return "Occupied"
	}
	return "Free"
}

// Placement is the result of a fit probe. It doubles as the transient
// highlight state of a cell.
type Placement string

const (
	ValidPlacement   Placement = "ValidPlacement"
	InvalidPlacement Placement = "InvalidPlacement"
	Replacement      Placement = "Replacement"
	NoPlacement      Placement = "None"
)

// Cell is one grid cell. Highlight is presentation state and never saved.
type Cell struct {
	Coordinates geom.Point `json:"coordinates"`
	Occupancy   Occupancy  `json:"occupancy"`
	Locked      bool       `json:"locked"`
	Highlight   Placement  `json:"highlight"`
}

// Slot binds at most one item. OnCursor marks the transient slot held by a
// cursor while an item is being dragged.
type Slot struct {
	Item     *item.Item
	OnCursor bool
}

// Empty reports whether the slot holds no item.
func (s *Slot) Empty() bool { return s == nil || s.Item == nil }
