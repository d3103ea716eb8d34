package item

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/gravitas-games/buildplanner/pkg/geom"
)

func mustSocketable(t *testing.T, name string) *Data {
	t.Helper()
	d, err := NewSocketable(Core{Name: name, Subtype: "Rune"})
	if err != nil {
		t.Fatalf("new socketable %s: %v", name, err)
	}
	return d
}

func mustSword(t *testing.T, sockets int) *Data {
	t.Helper()
	d, err := NewWeapon(
		Core{Name: "Crystal Sword", Type: TypeWeapon, Subtype: "Sword", Size: geom.Pt(2, 3), Rarity: RarityCommon},
		Sockets{Amount: sockets, Min: 0, Max: sockets},
		WeaponFacet{APS: "1.2", Damage: "10-20"},
	)
	if err != nil {
		t.Fatalf("new sword: %v", err)
	}
	return d
}

func TestConstructionRejectsInvalidSubtype(t *testing.T) {
	_, err := NewArmor(Core{Name: "Bad", Type: TypeArmor, Subtype: "Sword"}, Sockets{}, ArmorFacet{})
	if !errors.Is(err, ErrInvalidSubtype) {
		t.Fatalf("expected ErrInvalidSubtype, got %v", err)
	}
	if _, err := NewCharm(Core{Name: "Glyph", Type: TypeSpecial, Subtype: "Glyph"}, Sockets{}); !errors.Is(err, ErrInvalidSubtype) {
		t.Fatalf("charm with non-charm subtype should fail, got %v", err)
	}
}

func TestSocketableIsAlwaysOneByOne(t *testing.T) {
	d, err := NewSocketable(Core{Name: "El", Subtype: "Rune", Size: geom.Pt(3, 3)})
	if err != nil {
		t.Fatalf("new socketable: %v", err)
	}
	if d.Size != geom.Pt(1, 1) {
		t.Fatalf("expected 1x1 data size, got %v", d.Size)
	}
	if got := NewSized(d, geom.Pt(2, 2)).Size(); got != geom.Pt(1, 1) {
		t.Fatalf("expected 1x1 instance size, got %v", got)
	}
}

func TestSocketsAreClampedToCap(t *testing.T) {
	d, err := NewEquipment(
		Core{Name: "Heavy Belt", Type: TypeAccessory, Subtype: "Belt"},
		Sockets{Amount: 12, Min: -3, Max: 40},
	)
	if err != nil {
		t.Fatalf("new equipment: %v", err)
	}
	s := d.Sockets
	if s.Max != MaxSockets || s.Amount != MaxSockets || s.Min != 0 || len(s.List) != MaxSockets {
		t.Fatalf("unexpected clamp result: %+v", *s)
	}
}

func TestInsertAndClearSocketables(t *testing.T) {
	sword := mustSword(t, 2)
	el := mustSocketable(t, "El")
	if !sword.InsertSocketable(el) || !sword.InsertSocketable(el) {
		t.Fatalf("expected two insertions to succeed")
	}
	if sword.InsertSocketable(el) {
		t.Fatalf("expected insertion into full sockets to fail")
	}
	if sword.Sockets.HasFree() {
		t.Fatalf("expected no free sockets")
	}
	sword.ClearSocketables()
	if sword.Sockets.Filled() != 0 {
		t.Fatalf("expected sockets cleared, got %d filled", sword.Sockets.Filled())
	}
	if el.InsertSocketable(el) {
		t.Fatalf("socketables have no sockets")
	}
}

func TestCloneKeepsIdentity(t *testing.T) {
	it := New(mustSword(t, 1))
	it.SetStart(geom.Pt(3, 4))
	c := it.Clone()
	if !c.Same(it) || c.Start() != it.Start() {
		t.Fatalf("clone should keep identity and position")
	}
	c.Data.Name = "Changed"
	if it.Data.Name == "Changed" {
		t.Fatalf("clone must not share variant data")
	}
	if it.Duplicate().Same(it) {
		t.Fatalf("duplicate must get a new identity")
	}
}

type mapResolver map[string]*Data

func (m mapResolver) ResolveSocketable(_ context.Context, name string) (*Data, error) {
	d, ok := m[name]
	if !ok {
		return nil, ErrUnknownSocketable
	}
	return d, nil
}

func (m mapResolver) LookupSocketable(name string) (*Data, bool) {
	d, ok := m[name]
	return d, ok
}

func TestRunewordTransform(t *testing.T) {
	resolver := mapResolver{
		"Tir": mustSocketable(t, "Tir"),
		"El":  mustSocketable(t, "El"),
	}
	base := mustSword(t, 1)
	rw := Runeword{Name: "Steel", Runes: []string{"Tir", "El"}}

	out, err := rw.Apply(context.Background(), base, resolver)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out.Name != "Steel" || out.Rarity != RarityRuneword {
		t.Fatalf("unexpected runeword header: %s %s", out.Name, out.Rarity)
	}
	if out.Sockets.Amount != 2 || out.Sockets.Filled() != 2 {
		t.Fatalf("expected 2 filled sockets, got %+v", *out.Sockets)
	}
	if out.Sockets.List[0].Socketable.Name != "Tir" || out.Sockets.List[1].Socketable.Name != "El" {
		t.Fatalf("runes inserted out of order")
	}
	if base.Name != "Crystal Sword" || base.Sockets.Amount != 1 {
		t.Fatalf("base must be left untouched")
	}

	bad := Runeword{Name: "Broken", Runes: []string{"Tir", "Zod"}}
	if _, err := bad.Apply(context.Background(), base, resolver); !errors.Is(err, ErrUnknownSocketable) {
		t.Fatalf("expected unresolved rune to fail the transform, got %v", err)
	}
	if _, err := rw.Apply(context.Background(), resolver["El"], resolver); !errors.Is(err, ErrNotEquipment) {
		t.Fatalf("expected ErrNotEquipment, got %v", err)
	}
}

func TestCodecResolvesCatalogSocketablesByName(t *testing.T) {
	catalogEl := mustSocketable(t, "El")
	custom, err := NewSocketable(Core{Name: "Homebrew", Subtype: "Jewel", Custom: true, Stats: []Stat{ParseStat("+5 Strength", false)}})
	if err != nil {
		t.Fatalf("custom socketable: %v", err)
	}
	sword := mustSword(t, 3)
	sword.InsertSocketable(catalogEl)
	sword.InsertSocketable(custom)

	it := New(sword)
	it.SetStart(geom.Pt(1, 2))
	raw, err := json.Marshal(EncodeItem(it))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var rec ItemRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.Data.Sockets.List[0].Socketable.Custom != nil {
		t.Fatalf("catalog socketable must serialize by name only")
	}
	if rec.Data.Sockets.List[1].Socketable.Custom == nil {
		t.Fatalf("custom socketable must embed its fields")
	}

	back, err := DecodeItem(rec, mapResolver{"El": catalogEl})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.UUID != it.UUID || back.Start() != geom.Pt(1, 2) || back.Size() != geom.Pt(2, 3) {
		t.Fatalf("placement mismatch after decode")
	}
	if back.Data.Kind != KindWeapon || back.Data.Weapon.Damage != "10-20" {
		t.Fatalf("variant mismatch after decode: %+v", back.Data)
	}
	if got := back.Data.Sockets.List[1].Socketable; got == nil || got.Name != "Homebrew" || got.Stats[0].Value != 5 {
		t.Fatalf("custom socketable not restored: %+v", got)
	}

	if _, err := DecodeItem(rec, mapResolver{}); !errors.Is(err, ErrUnknownSocketable) {
		t.Fatalf("expected missing catalog socketable to fail, got %v", err)
	}
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	_, err := Decode(Record{Kind: "Trinket"}, nil)
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestParseStat(t *testing.T) {
	tests := []struct {
		line  string
		value int
		typ   StatType
		from  int
		to    int
	}{
		{"+15 to Strength", 15, StatFlat, 0, 0},
		{"+20% Attack Speed [10-25]", 20, StatPercent, 10, 25},
		{"-5 to Mana Cost", -5, StatFlat, 0, 0},
	}
	for _, tc := range tests {
		st := ParseStat(tc.line, false)
		if st.Value != tc.value || st.Type != tc.typ || st.Range.From != tc.from || st.Range.To != tc.to {
			t.Errorf("ParseStat(%q) = %+v", tc.line, st)
		}
	}
	if got := RangeToValue("+[10-20] Strength"); got != "+10 Strength[10-20]" {
		t.Fatalf("RangeToValue: got %q", got)
	}
	if st := ParseStat(string(make([]byte, 200)), false); st.Raw != "" {
		t.Fatalf("overlong lines should be dropped")
	}
}
