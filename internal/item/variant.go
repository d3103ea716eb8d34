package item

import (
	"fmt"

	"github.com/gravitas-games/buildplanner/pkg/geom"
)

// Kind tags the concrete variant carried by Data.
type Kind string

const (
	KindBase       Kind = "BaseItem"
	KindEquipment  Kind = "Equipment"
	KindWeapon     Kind = "WeaponEquipment"
	KindArmor      Kind = "ArmorEquipment"
	KindCharm      Kind = "CharmEquipment"
	KindSocketable Kind = "Socketable"
)

// Core holds the fields every variant shares.
type Core struct {
	UUID    string     `json:"uuid"`
	Name    string     `json:"name"`
	Image   string     `json:"image,omitempty"`
	Size    geom.Point `json:"size"`
	Type    Type       `json:"type"`
	Subtype string     `json:"subtype"`
	Rarity  Rarity     `json:"rarity,omitempty"`
	Tier    Tier       `json:"tier,omitempty"`
	Level   string     `json:"level,omitempty"`
	Stats   []Stat     `json:"stats,omitempty"`
	// Custom marks user-authored items that are not backed by the catalog.
	Custom bool `json:"custom,omitempty"`
}

// WeaponFacet is the weapon-only stat block.
type WeaponFacet struct {
	APS       string `json:"APSStat"`
	Damage    string `json:"attackDamageStat"`
	TwoHanded bool   `json:"twoHanded"`
}

// ArmorFacet is the armor-only stat block.
type ArmorFacet struct {
	Defense string `json:"defense"`
}

// Data is a catalog item variant. Kind selects which facets are present:
// Equipment, Weapon, Armor and Charm always carry Sockets; Weapon carries
// Weapon; Armor carries Armor. Base and Socketable carry no facets.
type Data struct {
	Kind Kind
	Core

	Sockets *Sockets
	Weapon  *WeaponFacet
	Armor   *ArmorFacet
}

// NewBase builds a plain item with no facets.
func NewBase(core Core) (*Data, error) {
	if err := validate(core); err != nil {
		return nil, err
	}
	return &Data{Kind: KindBase, Core: core}, nil
}

// NewEquipment builds socketed equipment.
func NewEquipment(core Core, sockets Sockets) (*Data, error) {
	return newEquipment(KindEquipment, core, sockets)
}

// NewWeapon builds weapon equipment.
func NewWeapon(core Core, sockets Sockets, weapon WeaponFacet) (*Data, error) {
	d, err := newEquipment(KindWeapon, core, sockets)
	if err != nil {
		return nil, err
	}
	d.Weapon = &weapon
	return d, nil
}

// NewArmor builds armor equipment.
func NewArmor(core Core, sockets Sockets, armor ArmorFacet) (*Data, error) {
	d, err := newEquipment(KindArmor, core, sockets)
	if err != nil {
		return nil, err
	}
	d.Armor = &armor
	return d, nil
}

// NewCharm builds charm equipment. Charms always use the Charm subtype.
func NewCharm(core Core, sockets Sockets) (*Data, error) {
	if core.Subtype != "Charm" {
		return nil, fmt.Errorf("%w: charm with subtype %q", ErrInvalidSubtype, core.Subtype)
	}
	return newEquipment(KindCharm, core, sockets)
}

// NewSocketable builds a socketable. Its footprint is always 1x1.
func NewSocketable(core Core) (*Data, error) {
	core.Type = TypeSocketable
	core.Size = geom.Pt(1, 1)
	if err := validate(core); err != nil {
		return nil, err
	}
	return &Data{Kind: KindSocketable, Core: core}, nil
}

func newEquipment(kind Kind, core Core, sockets Sockets) (*Data, error) {
	if err := validate(core); err != nil {
		return nil, err
	}
	s := sockets.clamped()
	return &Data{Kind: kind, Core: core, Sockets: &s}, nil
}

func validate(core Core) error {
	if !IsValidSubtype(core.Type, core.Subtype) {
		return fmt.Errorf("%w: %q for type %q", ErrInvalidSubtype, core.Subtype, core.Type)
	}
	return nil
}

// IsEquipment reports whether the variant carries sockets.
func (d *Data) IsEquipment() bool { return d != nil && d.Sockets != nil }

// IsSocketable reports whether the variant can be inserted into a socket.
func (d *Data) IsSocketable() bool { return d != nil && d.Kind == KindSocketable }

// InsertSocketable fills the first empty socket with s. It returns false if
// d is not equipment, s is not a socketable or every socket is full.
func (d *Data) InsertSocketable(s *Data) bool {
	if !d.IsEquipment() || !s.IsSocketable() {
		return false
	}
	return d.Sockets.insert(s)
}

// ClearSocketables empties every socket.
func (d *Data) ClearSocketables() {
	if d.IsEquipment() {
		d.Sockets.clear()
	}
}

// Clone returns a deep copy. Socketables inside sockets are copied too.
func (d *Data) Clone() *Data {
	if d == nil {
		return nil
	}
	out := *d
	out.Stats = append([]Stat(nil), d.Stats...)
	if d.Sockets != nil {
		s := d.Sockets.clone()
		out.Sockets = &s
	}
	if d.Weapon != nil {
		w := *d.Weapon
		out.Weapon = &w
	}
	if d.Armor != nil {
		a := *d.Armor
		out.Armor = &a
	}
	return &out
}
