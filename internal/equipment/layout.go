package equipment

import (
	"github.com/gravitas-games/buildplanner/internal/inventory"
	"github.com/gravitas-games/buildplanner/internal/item"
)

// Slot names.
const (
	Helm       = "helm"
	Amulet     = "amulet"
	Weapon     = "weapon"
	BodyArmour = "bodyArmour"
	Offhand    = "offhand"
	RingLeft   = "ringLeft"
	Belt       = "belt"
	RingRight  = "ringRight"
	Gloves     = "gloves"
	Boots      = "boots"
	Flask1     = "flask1"
	Flask2     = "flask2"
	Flask3     = "flask3"
	Flask4     = "flask4"
	Relic1     = "relic1"
	Relic2     = "relic2"
	Relic3     = "relic3"
	Relic4     = "relic4"
	Relic5     = "relic5"
)

// Def is the static definition of a slot.
type Def struct {
	Name   string
	Policy inventory.Policy
}

// Layout is the ordered set of slots every character has, with the policy
// each slot starts with.
var Layout = []Def{
	{Helm, inventory.Whitelist("Helmet")},
	{Amulet, inventory.Whitelist("Amulet")},
	{Weapon, inventory.Whitelist(string(item.TypeWeapon))},
	{BodyArmour, inventory.Whitelist("Body Armor")},
	{Offhand, inventory.Whitelist(string(item.TypeOffhand), string(item.TypeWeapon))},
	{RingLeft, inventory.Whitelist("Ring")},
	{Belt, inventory.Whitelist("Belt")},
	{RingRight, inventory.Whitelist("Ring")},
	{Gloves, inventory.Whitelist("Gloves")},
	{Boots, inventory.Whitelist("Boots")},
	{Flask1, inventory.Whitelist("Flask")},
	{Flask2, inventory.Whitelist("Flask")},
	{Flask3, inventory.Whitelist("Flask")},
	{Flask4, inventory.Whitelist("Flask")},
	{Relic1, inventory.Whitelist("Relic")},
	{Relic2, inventory.Whitelist("Relic")},
	{Relic3, inventory.Whitelist("Relic")},
	{Relic4, inventory.Whitelist("Relic")},
	{Relic5, inventory.Whitelist("Relic")},
}

// Lookup returns the definition of a slot name.
func Lookup(name string) (Def, bool) {
	for _, d := range Layout {
		if d.Name == name {
			return d, true
		}
	}
	return Def{}, false
}

// NewLayout creates one empty slot per definition, in layout order.
func NewLayout() []*Slot {
	out := make([]*Slot, 0, len(Layout))
	for _, d := range Layout {
		out = append(out, NewSlot(d.Name, d.Policy))
	}
	return out
}

// WeaponSlots are the slots a character class restriction applies to.
var WeaponSlots = []string{Weapon, Offhand}
