package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/gravitas-games/buildplanner/internal/item"
	"github.com/gravitas-games/buildplanner/pkg/geom"
)

// ErrMalformed is returned for wiki JSON that cannot be parsed into an item.
var ErrMalformed = errors.New("catalog: malformed wiki item")

var (
	sizeRe      = regexp.MustCompile(`(\d+)x?(\d*)`)
	socketRe    = regexp.MustCompile(`Socketed \((\d+)-?(\d*)\)`)
	prismaticRe = regexp.MustCompile(`Socketed \{(\d+)-?(\d*)\}`)
)

// ParseWikiItem builds a variant from one wiki data.json document. The type
// is derived from the subtype, falling back to Special, so unknown subtypes
// fail with item.ErrInvalidSubtype. Socket counts come
// from a "Socketed (n-m)" stat for normal and "Socketed {n-m}" for prismatic
// sockets; the upper bound of each range is used.
func ParseWikiItem(raw []byte) (*item.Data, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	doc := gjson.ParseBytes(raw)
	name := doc.Get("Item").String()
	if name == "" {
		return nil, fmt.Errorf("%w: missing Item", ErrMalformed)
	}
	subtype := doc.Get("Type").String()
	t, ok := item.TypeOf(subtype)
	if !ok {
		t = item.TypeSpecial
	}

	core := item.Core{
		Name:    name,
		Image:   doc.Get("Image").String(),
		Size:    parseSize(doc.Get("Size").String()),
		Type:    t,
		Subtype: subtype,
		Rarity:  item.Rarity(doc.Get("Rarity").String()),
		Tier:    item.Tier(doc.Get("Tier").String()),
		Level:   doc.Get("Level").String(),
	}

	var socketLines []string
	for _, st := range doc.Get("Stats").Array() {
		line := st.Get("stat").String()
		if strings.Contains(line, "Socketed") {
			socketLines = append(socketLines, line)
		}
		special := st.Get("class").String() == "stat-spell"
		core.Stats = append(core.Stats, item.ParseStat(item.RangeToValue(line), special))
	}
	sockets := parseSockets(strings.Join(socketLines, "\n"))

	switch {
	case t == item.TypeSocketable:
		return item.NewSocketable(core)
	case t == item.TypeArmor:
		return item.NewArmor(core, sockets, item.ArmorFacet{Defense: orZero(doc.Get("defense").String())})
	case t == item.TypeWeapon:
		return item.NewWeapon(core, sockets, item.WeaponFacet{
			APS:    orZero(doc.Get("APS").String()),
			Damage: orZero(doc.Get("Damage").String()),
		})
	case subtype == "Charm":
		return item.NewCharm(core, sockets)
	default:
		return item.NewEquipment(core, sockets)
	}
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func parseSize(s string) geom.Point {
	size := geom.Pt(1, 1)
	m := sizeRe.FindStringSubmatch(s)
	if m == nil {
		return size
	}
	if w, err := strconv.Atoi(m[1]); err == nil && w > 0 {
		size.X = w
	}
	if h, err := strconv.Atoi(m[2]); err == nil && h > 0 {
		size.Y = h
	}
	return size
}

func socketMax(re *regexp.Regexp, line string) int {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return 0
	}
	lo, _ := strconv.Atoi(m[1])
	if m[2] == "" {
		return lo
	}
	hi, _ := strconv.Atoi(m[2])
	return hi
}

func parseSockets(line string) item.Sockets {
	normal := socketMax(socketRe, line)
	prismatic := socketMax(prismaticRe, line)
	total := normal + prismatic
	s := item.Sockets{Amount: total, Min: total, Max: total}
	for i := 0; i < normal; i++ {
		s.List = append(s.List, item.Socket{})
	}
	for i := 0; i < prismatic; i++ {
		s.List = append(s.List, item.Socket{Prismatic: true})
	}
	return s
}
