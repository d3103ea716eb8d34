// Package item models catalog items as a closed set of variants built from a
// shared core plus optional facets, and the placed instances that occupy
// inventory cells.
package item

import "errors"

// Type is the top-level equipment category.
type Type string

const (
	TypeWeapon     Type = "Weapon"
	TypeOffhand    Type = "Offhand"
	TypeArmor      Type = "Armor"
	TypeAccessory  Type = "Accessory"
	TypeSpecial    Type = "Special"
	TypeSocketable Type = "Socketable"
)

// Rarity is the display rarity of an item.
type Rarity string

const (
	RarityCommon     Rarity = "Common"
	RaritySatanic    Rarity = "Satanic"
	RaritySatanicSet Rarity = "Satanic Set"
	RarityHeroic     Rarity = "Heroic"
	RarityRare       Rarity = "Rare"
	RarityMythic     Rarity = "Mythic"
	RarityAngelic    Rarity = "Angelic"
	RarityUnholy     Rarity = "Unholy"
	RarityRuneword   Rarity = "Runeword"
)

// Tier is the item tier grade.
type Tier string

const (
	TierSS Tier = "SS"
	TierS  Tier = "S"
	TierA  Tier = "A"
	TierB  Tier = "B"
	TierC  Tier = "C"
	TierD  Tier = "D"
)

// MaxSockets is the hard cap on the number of sockets any item can carry.
const MaxSockets = 6

// ErrInvalidSubtype is returned when a subtype does not belong to its type.
var ErrInvalidSubtype = errors.New("item: invalid subtype")

// Subtypes maps every type to the subtypes it admits.
var Subtypes = map[Type][]string{
	TypeWeapon: {
		"Sword", "Dagger", "Mace", "Axe", "Claw", "Polearm", "Chainsaw", "Staff",
		"Cane", "Wand", "Book", "Spellblade", "Bow", "Gun", "Flask", "Throwing Weapon",
	},
	TypeArmor:      {"Helmet", "Body Armor", "Gloves", "Boots"},
	TypeOffhand:    {"Shield"},
	TypeAccessory:  {"Amulet", "Ring", "Belt"},
	TypeSpecial:    {"Charm", "Glyph", "Relic", "Potion"},
	TypeSocketable: {"Rune", "Jewel", "Gem"},
}

var subtypeIndex = buildSubtypeIndex()

func buildSubtypeIndex() map[string]Type {
	idx := make(map[string]Type)
	for t, subs := range Subtypes {
		for _, s := range subs {
			idx[s] = t
		}
	}
	return idx
}

// IsValidSubtype reports whether subtype belongs to t.
func IsValidSubtype(t Type, subtype string) bool {
	got, ok := subtypeIndex[subtype]
	return ok && got == t
}

// TypeOf returns the type that owns subtype.
func TypeOf(subtype string) (Type, bool) {
	t, ok := subtypeIndex[subtype]
	return t, ok
}
