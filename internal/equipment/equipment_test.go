package equipment

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/gravitas-games/buildplanner/internal/inventory"
	"github.com/gravitas-games/buildplanner/internal/item"
	"github.com/gravitas-games/buildplanner/pkg/geom"
)

func newItem(t *testing.T, typ item.Type, subtype string) *item.Item {
	t.Helper()
	d, err := item.NewEquipment(item.Core{Name: subtype, Type: typ, Subtype: subtype, Size: geom.Pt(1, 2)}, item.Sockets{})
	if err != nil {
		t.Fatalf("new item: %v", err)
	}
	return item.New(d)
}

func TestLayoutHasEverySlot(t *testing.T) {
	slots := NewLayout()
	if len(slots) != 19 {
		t.Fatalf("expected 19 slots, got %d", len(slots))
	}
	seen := make(map[string]bool)
	for _, s := range slots {
		if seen[s.Name()] {
			t.Fatalf("duplicate slot %s", s.Name())
		}
		seen[s.Name()] = true
	}
	if _, ok := Lookup("tail"); ok {
		t.Fatalf("unexpected slot definition")
	}
}

func TestPutRespectsPolicy(t *testing.T) {
	def, _ := Lookup(Helm)
	helm := NewSlot(def.Name, def.Policy)
	if _, ok := helm.Put(newItem(t, item.TypeArmor, "Boots")); ok {
		t.Fatalf("helm slot must refuse boots")
	}
	cap1 := newItem(t, item.TypeArmor, "Helmet")
	if prev, ok := helm.Put(cap1); !ok || prev != nil {
		t.Fatalf("expected helmet to be equipped into an empty slot")
	}
	cap2 := newItem(t, item.TypeArmor, "Helmet")
	prev, ok := helm.Put(cap2)
	if !ok || !prev.Same(cap1) || !helm.Holds(cap2) {
		t.Fatalf("expected the first helmet to be returned")
	}
	if got := helm.Remove(); !got.Same(cap2) || !helm.Empty() {
		t.Fatalf("remove must return the helmet and empty the slot")
	}
}

func TestSlotRestrictionPolarity(t *testing.T) {
	s := NewSlot(Weapon, inventory.Whitelist("Sword"))
	if s.IsRestricted("", "Sword") || !s.IsRestricted("", "Axe") {
		t.Fatalf("whitelist polarity wrong")
	}
	s.SetRestrictions(inventory.Blacklist("Sword"))
	if !s.IsRestricted("", "Sword") || s.IsRestricted("", "Axe") {
		t.Fatalf("blacklist polarity wrong")
	}
	if s.IsRestricted(item.TypeWeapon, "") {
		t.Fatalf("type-only query without a match must follow blacklist default-allow")
	}
}

func TestSetRestrictionsEvictsRefusedItem(t *testing.T) {
	s := NewSlot(Weapon, inventory.Whitelist(string(item.TypeWeapon)))
	axe := newItem(t, item.TypeWeapon, "Axe")
	s.Put(axe)
	if ev := s.SetRestrictions(inventory.Whitelist("Axe", "Sword")); ev != nil {
		t.Fatalf("axe is still allowed and must stay equipped")
	}
	ev := s.SetRestrictions(inventory.Whitelist("Bow"))
	if !ev.Same(axe) || !s.Empty() {
		t.Fatalf("expected the axe to be evicted")
	}
}

func TestRecordRoundTrip(t *testing.T) {
	s := NewSlot(RingLeft, inventory.Whitelist("Ring"))
	ring := newItem(t, item.TypeAccessory, "Ring")
	s.Put(ring)
	raw, err := json.Marshal(s.Record())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	back, err := Decode(rec, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Name() != RingLeft || !back.Holds(ring) {
		t.Fatalf("slot not restored")
	}
	if back.IsRestricted("", "Ring") || !back.IsRestricted("", "Belt") {
		t.Fatalf("policy not restored")
	}

	if _, err := Decode(Record{SlotName: "tail"}, nil); !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("expected ErrUnknownSlot, got %v", err)
	}
	empty, err := Decode(Record{SlotName: Belt}, nil)
	if err != nil || !empty.Empty() || empty.IsRestricted("", "Belt") {
		t.Fatalf("empty record must decode with the default policy")
	}
}
