package catalog

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/gravitas-games/buildplanner/internal/item"
)

// dirTypes maps case-folded catalog directory names to item types.
var dirTypes = map[string]item.Type{
	"amulets":        item.TypeAccessory,
	"axes":           item.TypeWeapon,
	"belts":          item.TypeAccessory,
	"bodyarmors":     item.TypeArmor,
	"books":          item.TypeWeapon,
	"boots":          item.TypeArmor,
	"bows":           item.TypeWeapon,
	"canes":          item.TypeWeapon,
	"chainsaws":      item.TypeWeapon,
	"charms":         item.TypeSpecial,
	"claws":          item.TypeWeapon,
	"daggers":        item.TypeWeapon,
	"flasks":         item.TypeWeapon,
	"gloves":         item.TypeArmor,
	"guns":           item.TypeWeapon,
	"helmets":        item.TypeArmor,
	"maces":          item.TypeWeapon,
	"polearms":       item.TypeWeapon,
	"potions":        item.TypeSpecial,
	"relics":         item.TypeSpecial,
	"rings":          item.TypeAccessory,
	"shields":        item.TypeOffhand,
	"socketables":    item.TypeSocketable,
	"spellblades":    item.TypeWeapon,
	"staves":         item.TypeWeapon,
	"swords":         item.TypeWeapon,
	"throwingweapon": item.TypeWeapon,
	"wands":          item.TypeWeapon,
}

// TypeForDir returns the item type stored under a catalog directory.
func TypeForDir(dir string) (item.Type, bool) {
	t, ok := dirTypes[cases.Fold().String(dir)]
	return t, ok
}

// dirOf returns the subtype directory of an index path, which is its
// second segment: "/data/Swords/crystal-sword" is in "Swords".
func dirOf(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}
