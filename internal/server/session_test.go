package server

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/gravitas-games/buildplanner/internal/catalog"
	"github.com/gravitas-games/buildplanner/internal/item"
	"github.com/gravitas-games/buildplanner/internal/network"
	"github.com/gravitas-games/buildplanner/internal/planner"
	"github.com/gravitas-games/buildplanner/internal/store"
	"github.com/gravitas-games/buildplanner/pkg/geom"
	"github.com/gravitas-games/buildplanner/pkg/models"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.New()
	sword, err := item.NewWeapon(item.Core{Name: "Crystal Sword", Type: item.TypeWeapon, Subtype: "Sword", Size: geom.Pt(2, 3)},
		item.Sockets{Amount: 2, Max: 3}, item.WeaponFacet{})
	if err != nil {
		t.Fatalf("sword: %v", err)
	}
	c.Register(sword)
	for _, name := range []string{"Tir", "El"} {
		r, err := item.NewSocketable(item.Core{Name: name, Subtype: "Rune"})
		if err != nil {
			t.Fatalf("rune: %v", err)
		}
		c.Register(r)
	}
	c.RegisterRuneword(item.Runeword{Name: "Steel", Runes: []string{"Tir", "El"}})
	return c
}

var testClasses = map[string]planner.Class{
	"Paladin": {Name: "Paladin", Weapons: []string{"Sword", "Mace"}},
}

func newTestSession(t *testing.T, st store.Store) *Session {
	t.Helper()
	return NewSession(&models.Player{ID: "7", Username: "tester"}, planner.DefaultConfig, testCatalog(t), st, testClasses)
}

func send(t *testing.T, s *Session, typ string, payload interface{}) []*network.ServerMessage {
	t.Helper()
	msg := &network.ClientMessage{Type: typ}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		msg.Payload = b
	}
	return s.Handle(context.Background(), msg)
}

func lastState(t *testing.T, replies []*network.ServerMessage) network.StatePayload {
	t.Helper()
	if len(replies) == 0 {
		t.Fatalf("no replies")
	}
	last := replies[len(replies)-1]
	st, ok := last.Payload.(network.StatePayload)
	if last.Type != network.MsgTypeStateUpdate || !ok {
		t.Fatalf("expected a state push, got %s %+v", last.Type, last.Payload)
	}
	return st
}

func errorCodeOf(t *testing.T, replies []*network.ServerMessage) string {
	t.Helper()
	if len(replies) != 1 || replies[0].Type != network.MsgTypeError {
		t.Fatalf("expected a single error reply, got %+v", replies)
	}
	return replies[0].Payload.(network.ErrorPayload).Code
}

func TestSessionDragFlow(t *testing.T) {
	s := newTestSession(t, store.NewMemory())

	replies := send(t, s, network.MsgTypeAdd, network.AddPayload{Inventory: planner.MainInventory, Item: "Crystal Sword"})
	if res := replies[0].Payload.(network.ResultPayload); !res.OK {
		t.Fatalf("add refused: %+v", res)
	}
	st := lastState(t, replies)
	if len(st.Changes) != 1 || st.Changes[0] != "main:ItemAdded" {
		t.Fatalf("unexpected changes %v", st.Changes)
	}

	st = lastState(t, send(t, s, network.MsgTypePickup, network.PickupPayload{Inventory: planner.MainInventory}))
	if st.Cursor == nil || st.Cursor.Data.Name != "Crystal Sword" {
		t.Fatalf("cursor must carry the sword: %+v", st.Cursor)
	}

	replies = send(t, s, network.MsgTypeProbe, network.ProbePayload{CellPayload: network.CellPayload{Inventory: planner.MainInventory, X: 9, Y: 0}})
	probe := replies[0].Payload.(network.ProbeResultPayload)
	if probe.Placement != "InvalidPlacement" || !strings.Contains(probe.Grid, "x") {
		t.Fatalf("probe past the edge must be invalid: %+v", probe)
	}

	replies = send(t, s, network.MsgTypePlace, network.CellPayload{Inventory: planner.MainInventory, X: 4, Y: 4})
	if res := replies[0].Payload.(network.ResultPayload); !res.OK || res.Outcome != "moved" {
		t.Fatalf("unexpected place result %+v", res)
	}
	if st := lastState(t, replies); st.Cursor != nil {
		t.Fatalf("cursor must be empty after the drop")
	}

	if code := errorCodeOf(t, send(t, s, network.MsgTypeEquip, network.SlotPayload{Slot: "weapon"})); code != "cursor_empty" {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestSessionSaveLoad(t *testing.T) {
	st := store.NewMemory()
	s := newTestSession(t, st)
	send(t, s, network.MsgTypeAdd, network.AddPayload{Inventory: planner.MainInventory, Item: "Crystal Sword"})
	send(t, s, network.MsgTypeSelectClass, network.NamePayload{Name: "Paladin"})

	replies := send(t, s, network.MsgTypeSave, network.NamePayload{Name: "smiter"})
	if b := replies[0].Payload.(network.BuildsPayload); len(b.Names) != 1 || b.Names[0] != "smiter" {
		t.Fatalf("unexpected builds %+v", b)
	}

	send(t, s, network.MsgTypeReset, nil)
	if s.Editor().Main().Len() != 0 {
		t.Fatalf("reset must empty the build")
	}

	state := lastState(t, send(t, s, network.MsgTypeLoad, network.NamePayload{Name: "smiter"}))
	if len(state.Build.Inventories[planner.MainInventory].Slots) != 1 {
		t.Fatalf("loaded build lost its item")
	}
	if state.Build.Class == nil || state.Build.Class.Name != "Paladin" {
		t.Fatalf("loaded build lost its class")
	}

	if code := errorCodeOf(t, send(t, s, network.MsgTypeLoad, network.NamePayload{Name: "nope"})); code != "not_found" {
		t.Fatalf("unexpected code %s", code)
	}

	other := NewSession(&models.Player{ID: "8", Username: "other"}, planner.DefaultConfig, testCatalog(t), st, testClasses)
	if b := send(t, other, network.MsgTypeList, nil)[0].Payload.(network.BuildsPayload); len(b.Names) != 0 {
		t.Fatalf("builds must be private to their owner: %v", b.Names)
	}

	replies = send(t, s, network.MsgTypeDelete, network.NamePayload{Name: "smiter"})
	if b := replies[0].Payload.(network.BuildsPayload); len(b.Names) != 0 {
		t.Fatalf("delete must remove the build: %v", b.Names)
	}
}

func TestSessionRunewordAndAttributes(t *testing.T) {
	s := newTestSession(t, store.NewMemory())
	send(t, s, network.MsgTypePickup, network.PickupPayload{Item: "Crystal Sword"})
	st := lastState(t, send(t, s, network.MsgTypeRuneword, network.NamePayload{Name: "Steel"}))
	if st.Cursor == nil || st.Cursor.Data.Name != "Steel" {
		t.Fatalf("cursor must hold the runeword item: %+v", st.Cursor)
	}

	st = lastState(t, send(t, s, network.MsgTypeAttribute, network.AttributePayload{Name: "strength", Amount: 10}))
	if st.Build.Attributes.Strength != 10 {
		t.Fatalf("attribute not applied: %+v", st.Build.Attributes)
	}
	if code := errorCodeOf(t, send(t, s, network.MsgTypeAttribute, network.AttributePayload{Name: "strength", Amount: 1000})); code != "invalid_attribute" {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestSessionRejectsBadInput(t *testing.T) {
	s := newTestSession(t, store.NewMemory())
	if code := errorCodeOf(t, send(t, s, "teleport", nil)); code != "invalid_message" {
		t.Fatalf("unexpected code %s", code)
	}
	if code := errorCodeOf(t, s.Handle(context.Background(), &network.ClientMessage{Type: network.MsgTypeAdd, Payload: json.RawMessage(`[1]`)})); code != "invalid_message" {
		t.Fatalf("unexpected code %s", code)
	}
	if code := errorCodeOf(t, send(t, s, network.MsgTypeSelectClass, network.NamePayload{Name: "Bard"})); code != "not_found" {
		t.Fatalf("unexpected code %s", code)
	}
	if code := errorCodeOf(t, send(t, s, network.MsgTypeAdd, network.AddPayload{Inventory: "stash", Item: "Crystal Sword"})); code != "unknown_container" {
		t.Fatalf("unexpected code %s", code)
	}
}
