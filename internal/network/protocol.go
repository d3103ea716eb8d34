package network

import (
	"encoding/json"

	"github.com/gravitas-games/buildplanner/internal/catalog"
	"github.com/gravitas-games/buildplanner/internal/item"
	"github.com/gravitas-games/buildplanner/internal/planner"
)

// Message types - Client → Server
const (
	MsgTypePing            = "ping"
	MsgTypeState           = "state"
	MsgTypeCatalog         = "catalog"
	MsgTypeProbe           = "probe"
	MsgTypePickup          = "pickup"
	MsgTypePlace           = "place"
	MsgTypeAdd             = "add"
	MsgTypeRemove          = "remove"
	MsgTypeLock            = "lock"
	MsgTypeEquip           = "equip"
	MsgTypeUnequip         = "unequip"
	MsgTypeReturn          = "return"
	MsgTypeDiscard         = "discard"
	MsgTypeSelectClass     = "select_class"
	MsgTypeAttribute       = "attribute"
	MsgTypeResetAttributes = "reset_attributes"
	MsgTypeRuneword        = "runeword"
	MsgTypeSave            = "save"
	MsgTypeLoad            = "load"
	MsgTypeList            = "list"
	MsgTypeDelete          = "delete"
	MsgTypeReset           = "reset"
)

// Message types - Server → Client
const (
	MsgTypeWelcome     = "welcome"
	MsgTypeStateUpdate = "state"
	MsgTypeProbeResult = "probe"
	MsgTypeCatalogList = "catalog"
	MsgTypeResult      = "result"
	MsgTypeBuilds      = "builds"
	MsgTypeError       = "error"
	MsgTypePong        = "pong"
)

// ClientMessage represents any message from client to server
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ServerMessage represents any message from server to client
type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// --- Client Message Payloads ---

// CellPayload addresses one cell of a named inventory.
type CellPayload struct {
	Inventory string `json:"inventory"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
}

// ProbePayload asks how the cursor item would land at a cell.
type ProbePayload struct {
	CellPayload
}

// PickupPayload lifts an item onto the cursor. Exactly one source is set:
// a cell of an inventory, an equipment slot, or a catalog item name.
type PickupPayload struct {
	Inventory string `json:"inventory,omitempty"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Slot      string `json:"slot,omitempty"`
	Item      string `json:"item,omitempty"`
}

// AddPayload places a fresh catalog item in the first free space.
type AddPayload struct {
	Inventory string `json:"inventory"`
	Item      string `json:"item"`
}

// LockPayload locks or unlocks a cell.
type LockPayload struct {
	CellPayload
	Unlocked bool `json:"unlocked"`
}

// SlotPayload names an equipment slot.
type SlotPayload struct {
	Slot string `json:"slot"`
}

// NamePayload carries a class, runeword or build name.
type NamePayload struct {
	Name string `json:"name"`
}

// CatalogPayload asks for the catalog items of one type.
type CatalogPayload struct {
	Type item.Type `json:"type"`
}

// AttributePayload spends points on one attribute.
type AttributePayload struct {
	Name   string `json:"name"`
	Amount int    `json:"amount"`
}

// --- Server Message Payloads ---

// WelcomePayload is sent to client after successful connection
type WelcomePayload struct {
	PlayerID  string          `json:"player_id"`
	Username  string          `json:"username"`
	Classes   []planner.Class `json:"classes"`
	Runewords []string        `json:"runewords"`
	State     StatePayload    `json:"state"`
}

// StatePayload is the full build pushed after every mutation.
type StatePayload struct {
	Build   planner.Record   `json:"build"`
	Cursor  *item.ItemRecord `json:"cursor,omitempty"`
	Changes []string         `json:"changes,omitempty"`
}

// ProbeResultPayload reports a placement probe and the highlighted grid.
type ProbeResultPayload struct {
	CellPayload
	Placement string `json:"placement"`
	Grid      string `json:"grid"`
}

// ResultPayload reports the outcome of a command that may be refused
// without being an error.
type ResultPayload struct {
	Command string `json:"command"`
	OK      bool   `json:"ok"`
	Outcome string `json:"outcome,omitempty"`
}

// CatalogListPayload lists catalog items.
type CatalogListPayload struct {
	Type  item.Type     `json:"type"`
	Items []item.Record `json:"items"`
}

// BuildsPayload lists the owner's saved builds.
type BuildsPayload struct {
	Names []string `json:"names"`
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewState builds the state payload for an editor.
func NewState(e *planner.Editor, changes []string) StatePayload {
	st := StatePayload{Build: e.Record(), Changes: changes}
	if it := e.CursorItem(); it != nil {
		rec := item.EncodeItem(it)
		st.Cursor = &rec
	}
	return st
}

// NewCatalogList encodes the catalog items of one type.
func NewCatalogList(c *catalog.Catalog, t item.Type) CatalogListPayload {
	out := CatalogListPayload{Type: t, Items: []item.Record{}}
	for _, d := range c.Items(t) {
		out.Items = append(out.Items, item.Encode(d))
	}
	return out
}
