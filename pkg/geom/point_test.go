package geom

import "testing"

func TestPointArithmetic(t *testing.T) {
	p := Pt(2, 3)
	if got := p.Add(Pt(1, -1)); got != Pt(3, 2) {
		t.Fatalf("add: got %v", got)
	}
	if got := p.Sub(Pt(2, 3)); got != Pt(0, 0) {
		t.Fatalf("sub: got %v", got)
	}
	if !p.Equals(Pt(2, 3)) || p.Equals(Pt(3, 2)) {
		t.Fatalf("equals mismatch")
	}
	if Invalid.IsValid() || !Pt(0, 0).IsValid() {
		t.Fatalf("validity mismatch")
	}
}

func TestRectFootprint(t *testing.T) {
	f := Rect(Pt(2, 3))
	if len(f) != 6 {
		t.Fatalf("expected 6 offsets, got %d", len(f))
	}
	if !f.Covers(Pt(4, 4), Pt(5, 6)) {
		t.Fatalf("expected (5,6) to be covered from origin (4,4)")
	}
	if f.Covers(Pt(4, 4), Pt(6, 4)) {
		t.Fatalf("did not expect (6,4) to be covered")
	}
	if got := Rect(Pt(0, -2)); len(got) != 1 {
		t.Fatalf("degenerate size should cover one cell, got %d", len(got))
	}
}
