package item

import (
	"errors"
	"fmt"

	"github.com/gravitas-games/buildplanner/pkg/geom"
)

var (
	// ErrUnknownKind is returned when a record carries an unrecognised tag.
	ErrUnknownKind = errors.New("item: unknown kind")
	// ErrUnknownSocketable is returned when a catalog socketable reference
	// cannot be resolved.
	ErrUnknownSocketable = errors.New("item: unknown socketable")
)

// SocketableLookup resolves catalog socketables by name during decoding.
type SocketableLookup interface {
	LookupSocketable(name string) (*Data, bool)
}

// Record is the tagged wire form of a variant.
type Record struct {
	Kind Kind `json:"kind" jsonschema:"enum=BaseItem,enum=Equipment,enum=WeaponEquipment,enum=ArmorEquipment,enum=CharmEquipment,enum=Socketable"`
	Core

	Sockets *SocketsRecord `json:"sockets,omitempty"`
	Weapon  *WeaponFacet   `json:"weaponStats,omitempty"`
	Armor   *ArmorFacet    `json:"armorStats,omitempty"`
}

// SocketsRecord is the wire form of a socket array.
type SocketsRecord struct {
	Amount int            `json:"amount"`
	Min    int            `json:"min"`
	Max    int            `json:"max"`
	List   []SocketRecord `json:"list"`
}

// SocketRecord is the wire form of one socket.
type SocketRecord struct {
	Prismatic  bool           `json:"prismatic"`
	Socketable *SocketableRef `json:"socketable"`
}

// SocketableRef names a catalog socketable, or embeds a custom one in full.
type SocketableRef struct {
	Name   string  `json:"name"`
	Custom *Record `json:"custom,omitempty"`
}

// ItemRecord is the wire form of a placed item.
type ItemRecord struct {
	UUID             string     `json:"uuid,omitempty"`
	Data             Record     `json:"data"`
	Size             geom.Point `json:"size"`
	StartCoordinates geom.Point `json:"startCoordinates"`
}

// Encode converts a variant into its tagged record.
func Encode(d *Data) Record {
	rec := Record{Kind: d.Kind, Core: d.Core}
	rec.Stats = append([]Stat(nil), d.Stats...)
	if d.Sockets != nil {
		sr := &SocketsRecord{
			Amount: d.Sockets.Amount,
			Min:    d.Sockets.Min,
			Max:    d.Sockets.Max,
			List:   make([]SocketRecord, len(d.Sockets.List)),
		}
		for i, s := range d.Sockets.List {
			sr.List[i] = SocketRecord{Prismatic: s.Prismatic, Socketable: encodeSocketable(s.Socketable)}
		}
		rec.Sockets = sr
	}
	if d.Weapon != nil {
		w := *d.Weapon
		rec.Weapon = &w
	}
	if d.Armor != nil {
		a := *d.Armor
		rec.Armor = &a
	}
	return rec
}

func encodeSocketable(s *Data) *SocketableRef {
	if s == nil {
		return nil
	}
	ref := &SocketableRef{Name: s.Name}
	if s.Custom {
		rec := Encode(s)
		ref.Custom = &rec
	}
	return ref
}

type decodeFunc func(Record, SocketableLookup) (*Data, error)

var decoders map[Kind]decodeFunc

func init() {
	decoders = map[Kind]decodeFunc{
		KindBase:       decodeBase,
		KindEquipment:  decodeEquipment,
		KindWeapon:     decodeWeapon,
		KindArmor:      decodeArmor,
		KindCharm:      decodeCharm,
		KindSocketable: decodeSocketable,
	}
}

// Decode rebuilds a variant from its record. Catalog socketables inside
// sockets are re-resolved through lookup; custom ones are decoded in place.
func Decode(rec Record, lookup SocketableLookup) (*Data, error) {
	fn, ok := decoders[rec.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, rec.Kind)
	}
	return fn(rec, lookup)
}

func decodeBase(rec Record, _ SocketableLookup) (*Data, error) {
	return NewBase(rec.Core)
}

func decodeSocketable(rec Record, _ SocketableLookup) (*Data, error) {
	return NewSocketable(rec.Core)
}

func decodeEquipment(rec Record, lookup SocketableLookup) (*Data, error) {
	s, err := decodeSockets(rec.Sockets, lookup)
	if err != nil {
		return nil, err
	}
	return NewEquipment(rec.Core, s)
}

func decodeWeapon(rec Record, lookup SocketableLookup) (*Data, error) {
	s, err := decodeSockets(rec.Sockets, lookup)
	if err != nil {
		return nil, err
	}
	var w WeaponFacet
	if rec.Weapon != nil {
		w = *rec.Weapon
	}
	return NewWeapon(rec.Core, s, w)
}

func decodeArmor(rec Record, lookup SocketableLookup) (*Data, error) {
	s, err := decodeSockets(rec.Sockets, lookup)
	if err != nil {
		return nil, err
	}
	var a ArmorFacet
	if rec.Armor != nil {
		a = *rec.Armor
	}
	return NewArmor(rec.Core, s, a)
}

func decodeCharm(rec Record, lookup SocketableLookup) (*Data, error) {
	s, err := decodeSockets(rec.Sockets, lookup)
	if err != nil {
		return nil, err
	}
	return NewCharm(rec.Core, s)
}

func decodeSockets(sr *SocketsRecord, lookup SocketableLookup) (Sockets, error) {
	if sr == nil {
		return Sockets{}, nil
	}
	s := Sockets{Amount: sr.Amount, Min: sr.Min, Max: sr.Max, List: make([]Socket, len(sr.List))}
	for i, rec := range sr.List {
		s.List[i].Prismatic = rec.Prismatic
		if rec.Socketable == nil {
			continue
		}
		d, err := resolveRef(*rec.Socketable, lookup)
		if err != nil {
			return Sockets{}, err
		}
		s.List[i].Socketable = d
	}
	return s, nil
}

func resolveRef(ref SocketableRef, lookup SocketableLookup) (*Data, error) {
	if ref.Custom != nil {
		return Decode(*ref.Custom, lookup)
	}
	if lookup != nil {
		if d, ok := lookup.LookupSocketable(ref.Name); ok {
			return d.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSocketable, ref.Name)
}

// EncodeItem converts a placed item into its record.
func EncodeItem(it *Item) ItemRecord {
	return ItemRecord{
		UUID:             it.UUID,
		Data:             Encode(it.Data),
		Size:             it.size,
		StartCoordinates: it.start,
	}
}

// DecodeItem rebuilds a placed item. Records without an identity get a new one.
func DecodeItem(rec ItemRecord, lookup SocketableLookup) (*Item, error) {
	d, err := Decode(rec.Data, lookup)
	if err != nil {
		return nil, err
	}
	var it *Item
	if rec.UUID != "" {
		it = newWithID(rec.UUID, d, rec.Size)
	} else {
		it = NewSized(d, rec.Size)
	}
	it.start = rec.StartCoordinates
	return it, nil
}
