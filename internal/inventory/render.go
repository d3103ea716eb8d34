package inventory

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	renderCellWidth = 2
	renderNameWidth = 24
)

func highlightGlyph(p Placement) string {
	switch p {
	case ValidPlacement:
		return "+"
	case Replacement:
		return "~"
	case InvalidPlacement:
		return "x"
	default:
		return ""
	}
}

func slotKey(i int) string {
	const keys = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	if i < len(keys) {
		return keys[i : i+1]
	}
	return "?"
}

// Render draws the grid as fixed-width text followed by a legend of the
// placed items. Locked cells are '#', free cells '.', and highlighted cells
// show the probe result.
func (inv *Inventory) Render() string {
	keyOf := make(map[*Slot]string, len(inv.slots))
	for i, s := range inv.slots {
		keyOf[s] = slotKey(i)
	}

	var b strings.Builder
	for y := 0; y < inv.size.Y; y++ {
		for x := 0; x < inv.size.X; x++ {
			c := inv.cells[y*inv.size.X+x]
			glyph := "."
			switch {
			case c.Locked:
				glyph = "#"
			case highlightGlyph(c.Highlight) != "":
				glyph = highlightGlyph(c.Highlight)
			default:
				if s := inv.slotAt(c.Coordinates); s != nil {
					glyph = keyOf[s]
				}
			}
			b.WriteString(runewidth.FillRight(glyph, renderCellWidth))
		}
		b.WriteString("\n")
	}
	for i, s := range inv.slots {
		name := runewidth.Truncate(s.Item.Data.Name, renderNameWidth, "…")
		fmt.Fprintf(&b, "%s %s %dx%d @%s\n",
			slotKey(i),
			runewidth.FillRight(name, renderNameWidth),
			s.Item.Size().X, s.Item.Size().Y,
			s.Item.Start(),
		)
	}
	return b.String()
}
