// Package geom holds the integer grid geometry shared by inventories and items.
package geom

import "fmt"

// Point is an immutable integer coordinate with origin at the top-left.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Invalid is the sentinel returned by searches that found nothing.
var Invalid = Point{X: -1, Y: -1}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point { return Point{X: x, Y: y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Equals reports whether both coordinates match.
func (p Point) Equals(q Point) bool { return p.X == q.X && p.Y == q.Y }

// IsValid reports whether both coordinates are non-negative.
func (p Point) IsValid() bool { return p.X >= 0 && p.Y >= 0 }

func (p Point) String() string { return fmt.Sprintf("%d,%d", p.X, p.Y) }

// Footprint is the set of cell offsets, relative to an origin, an item covers.
type Footprint []Point

// Rect returns the footprint of a w x h rectangle. Non-positive sides are
// treated as 1 so every item covers at least one cell.
func Rect(size Point) Footprint {
	w, h := size.X, size.Y
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	out := make(Footprint, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out = append(out, Point{X: x, Y: y})
		}
	}
	return out
}

// At returns the absolute coordinates of the footprint anchored at origin.
func (f Footprint) At(origin Point) []Point {
	out := make([]Point, len(f))
	for i, off := range f {
		out[i] = origin.Add(off)
	}
	return out
}

// Covers reports whether the footprint anchored at origin includes p.
func (f Footprint) Covers(origin, p Point) bool {
	for _, off := range f {
		if origin.Add(off).Equals(p) {
			return true
		}
	}
	return false
}
