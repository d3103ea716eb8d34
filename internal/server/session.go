package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/gravitas-games/buildplanner/internal/catalog"
	"github.com/gravitas-games/buildplanner/internal/inventory"
	"github.com/gravitas-games/buildplanner/internal/item"
	"github.com/gravitas-games/buildplanner/internal/network"
	"github.com/gravitas-games/buildplanner/internal/planner"
	"github.com/gravitas-games/buildplanner/internal/store"
	"github.com/gravitas-games/buildplanner/pkg/geom"
	"github.com/gravitas-games/buildplanner/pkg/models"
)

// Session is one connection's build. It owns a planner editor and is driven
// by a single goroutine, so it needs no locking.
type Session struct {
	ID        string
	CreatedAt time.Time

	owner   *models.Player
	editor  *planner.Editor
	catalog *catalog.Catalog
	store   store.Store
	classes map[string]planner.Class

	bus     *inventory.SimpleEventBus
	changes []string
}

// NewSession creates an empty build for owner.
func NewSession(owner *models.Player, cfg planner.Config, cat *catalog.Catalog, st store.Store, classes map[string]planner.Class) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		owner:     owner,
		catalog:   cat,
		store:     st,
		classes:   classes,
		bus:       inventory.NewSimpleEventBus(),
	}
	s.bus.Subscribe(s.ID, func(ev inventory.Event) {
		s.changes = append(s.changes, ev.Inventory+":"+ev.Type.String())
	})
	s.editor = planner.New(cfg, cat, s.bus)
	log.Printf("Created session %s for %s", s.ID, owner.Username)
	return s
}

// Editor returns the session's editor.
func (s *Session) Editor() *planner.Editor { return s.editor }

// Welcome returns the greeting sent once the connection is established.
func (s *Session) Welcome() *network.ServerMessage {
	classes := make([]planner.Class, 0, len(s.classes))
	for _, c := range s.classes {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })

	runewords := []string{}
	for _, rw := range s.catalog.Runewords() {
		runewords = append(runewords, rw.Name)
	}
	return &network.ServerMessage{
		Type: network.MsgTypeWelcome,
		Payload: network.WelcomePayload{
			PlayerID:  s.owner.ID,
			Username:  s.owner.Username,
			Classes:   classes,
			Runewords: runewords,
			State:     s.state(),
		},
	}
}

func (s *Session) state() network.StatePayload {
	st := network.NewState(s.editor, s.changes)
	s.changes = nil
	return st
}

func (s *Session) stateMessage() *network.ServerMessage {
	return &network.ServerMessage{Type: network.MsgTypeStateUpdate, Payload: s.state()}
}

func result(command string, ok bool, outcome string) *network.ServerMessage {
	return &network.ServerMessage{
		Type:    network.MsgTypeResult,
		Payload: network.ResultPayload{Command: command, OK: ok, Outcome: outcome},
	}
}

func errorMessage(code, message string) *network.ServerMessage {
	return &network.ServerMessage{
		Type:    network.MsgTypeError,
		Payload: network.ErrorPayload{Code: code, Message: message},
	}
}

// errorCode maps a command error to a stable client-facing code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, errBadPayload):
		return "invalid_message"
	case errors.Is(err, planner.ErrCursorBusy):
		return "cursor_busy"
	case errors.Is(err, planner.ErrCursorEmpty):
		return "cursor_empty"
	case errors.Is(err, planner.ErrNotOnCursor):
		return "not_on_cursor"
	case errors.Is(err, planner.ErrUnknownContainer):
		return "unknown_container"
	case errors.Is(err, planner.ErrInconsistent), errors.Is(err, inventory.ErrInvalidRecord),
		errors.Is(err, item.ErrUnknownKind), errors.Is(err, item.ErrUnknownSocketable):
		return "invalid_build"
	case errors.Is(err, planner.ErrNoPoints), errors.Is(err, planner.ErrUnknownAttribute):
		return "invalid_attribute"
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrInvalidName):
		return "invalid_name"
	case errors.Is(err, item.ErrNotEquipment), errors.Is(err, item.ErrTooManyRunes):
		return "invalid_runeword"
	default:
		return "internal_error"
	}
}

// Handle runs one client command and returns the replies in send order.
// Every successful mutation ends with a full state push.
func (s *Session) Handle(ctx context.Context, msg *network.ClientMessage) []*network.ServerMessage {
	replies, err := s.dispatch(ctx, msg)
	if err != nil {
		code := errorCode(err)
		if code == "internal_error" {
			log.Printf("Session %s: %s failed: %v", s.ID, msg.Type, err)
		}
		return []*network.ServerMessage{errorMessage(code, err.Error())}
	}
	return replies
}

func decode(payload json.RawMessage, v interface{}) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", errBadPayload, err)
	}
	return nil
}

var errBadPayload = errors.New("invalid payload")

func (s *Session) dispatch(ctx context.Context, msg *network.ClientMessage) ([]*network.ServerMessage, error) {
	e := s.editor
	switch msg.Type {
	case network.MsgTypePing:
		return []*network.ServerMessage{{
			Type:    network.MsgTypePong,
			Payload: map[string]interface{}{"timestamp": time.Now().Unix()},
		}}, nil

	case network.MsgTypeState:
		return []*network.ServerMessage{s.stateMessage()}, nil

	case network.MsgTypeCatalog:
		var p network.CatalogPayload
		if err := decode(msg.Payload, &p); err != nil {
			return nil, err
		}
		if p.Type != "" {
			if _, err := s.catalog.LoadType(ctx, p.Type); err != nil && !errors.Is(err, catalog.ErrNoSource) {
				return nil, err
			}
		}
		return []*network.ServerMessage{{
			Type:    network.MsgTypeCatalogList,
			Payload: network.NewCatalogList(s.catalog, p.Type),
		}}, nil

	case network.MsgTypeProbe:
		var p network.ProbePayload
		if err := decode(msg.Payload, &p); err != nil {
			return nil, err
		}
		return s.probe(p)

	case network.MsgTypePickup:
		var p network.PickupPayload
		if err := decode(msg.Payload, &p); err != nil {
			return nil, err
		}
		var err error
		switch {
		case p.Slot != "":
			err = e.PickupFromSlot(p.Slot)
		case p.Item != "":
			err = e.PickupFromCatalog(p.Item)
		default:
			err = e.PickupFromInventory(p.Inventory, geom.Pt(p.X, p.Y))
		}
		if err != nil {
			return nil, err
		}
		return []*network.ServerMessage{s.stateMessage()}, nil

	case network.MsgTypePlace:
		var p network.CellPayload
		if err := decode(msg.Payload, &p); err != nil {
			return nil, err
		}
		tr, err := e.DropOnInventory(p.Inventory, geom.Pt(p.X, p.Y))
		if err != nil {
			return nil, err
		}
		return s.mutated(msg.Type, tr.OK(), tr.Outcome.String()), nil

	case network.MsgTypeAdd:
		var p network.AddPayload
		if err := decode(msg.Payload, &p); err != nil {
			return nil, err
		}
		d, ok := s.catalog.Lookup(p.Item)
		if !ok {
			return nil, fmt.Errorf("%w: %q", catalog.ErrNotFound, p.Item)
		}
		it, err := e.AddToInventory(p.Inventory, d.Clone())
		if err != nil {
			return nil, err
		}
		return s.mutated(msg.Type, it != nil, ""), nil

	case network.MsgTypeRemove:
		var p network.CellPayload
		if err := decode(msg.Payload, &p); err != nil {
			return nil, err
		}
		ok, err := e.RemoveFromInventory(p.Inventory, geom.Pt(p.X, p.Y))
		if err != nil {
			return nil, err
		}
		return s.mutated(msg.Type, ok, ""), nil

	case network.MsgTypeLock:
		var p network.LockPayload
		if err := decode(msg.Payload, &p); err != nil {
			return nil, err
		}
		ok, err := e.SetCellUnlocked(p.Inventory, geom.Pt(p.X, p.Y), p.Unlocked)
		if err != nil {
			return nil, err
		}
		return s.mutated(msg.Type, ok, ""), nil

	case network.MsgTypeEquip:
		var p network.SlotPayload
		if err := decode(msg.Payload, &p); err != nil {
			return nil, err
		}
		ok, err := e.EquipCursor(p.Slot)
		if err != nil {
			return nil, err
		}
		return s.mutated(msg.Type, ok, ""), nil

	case network.MsgTypeUnequip:
		var p network.SlotPayload
		if err := decode(msg.Payload, &p); err != nil {
			return nil, err
		}
		ok, err := e.Unequip(p.Slot)
		if err != nil {
			return nil, err
		}
		return s.mutated(msg.Type, ok, ""), nil

	case network.MsgTypeReturn:
		return s.mutated(msg.Type, e.ReturnCursor(), ""), nil

	case network.MsgTypeDiscard:
		e.RemoveSlotFromCursor()
		return []*network.ServerMessage{s.stateMessage()}, nil

	case network.MsgTypeSelectClass:
		var p network.NamePayload
		if err := decode(msg.Payload, &p); err != nil {
			return nil, err
		}
		if p.Name == "" {
			e.ClearClass()
			return []*network.ServerMessage{s.stateMessage()}, nil
		}
		c, ok := s.classes[p.Name]
		if !ok {
			return nil, fmt.Errorf("%w: class %q", catalog.ErrNotFound, p.Name)
		}
		e.SelectClass(c)
		return []*network.ServerMessage{s.stateMessage()}, nil

	case network.MsgTypeAttribute:
		var p network.AttributePayload
		if err := decode(msg.Payload, &p); err != nil {
			return nil, err
		}
		if err := e.IncreaseAttribute(p.Name, p.Amount); err != nil {
			return nil, err
		}
		return []*network.ServerMessage{s.stateMessage()}, nil

	case network.MsgTypeResetAttributes:
		e.ResetAttributes()
		return []*network.ServerMessage{s.stateMessage()}, nil

	case network.MsgTypeRuneword:
		var p network.NamePayload
		if err := decode(msg.Payload, &p); err != nil {
			return nil, err
		}
		if _, err := e.ApplyRuneword(ctx, p.Name); err != nil {
			return nil, err
		}
		return []*network.ServerMessage{s.stateMessage()}, nil

	case network.MsgTypeSave:
		var p network.NamePayload
		if err := decode(msg.Payload, &p); err != nil {
			return nil, err
		}
		b, err := e.Serialize()
		if err != nil {
			return nil, err
		}
		if err := s.store.Save(ctx, s.owner.ID, p.Name, b); err != nil {
			return nil, err
		}
		log.Printf("Saved build %q for %s", p.Name, s.owner.Username)
		return s.builds(ctx)

	case network.MsgTypeLoad:
		var p network.NamePayload
		if err := decode(msg.Payload, &p); err != nil {
			return nil, err
		}
		b, err := s.store.Load(ctx, s.owner.ID, p.Name)
		if err != nil {
			return nil, err
		}
		if err := e.Deserialize(b); err != nil {
			return nil, err
		}
		return []*network.ServerMessage{s.stateMessage()}, nil

	case network.MsgTypeList:
		return s.builds(ctx)

	case network.MsgTypeDelete:
		var p network.NamePayload
		if err := decode(msg.Payload, &p); err != nil {
			return nil, err
		}
		if err := s.store.Delete(ctx, s.owner.ID, p.Name); err != nil {
			return nil, err
		}
		return s.builds(ctx)

	case network.MsgTypeReset:
		e.Reset()
		return []*network.ServerMessage{s.stateMessage()}, nil

	default:
		return nil, fmt.Errorf("%w: unknown message type %q", errBadPayload, msg.Type)
	}
}

func (s *Session) mutated(command string, ok bool, outcome string) []*network.ServerMessage {
	return []*network.ServerMessage{result(command, ok, outcome), s.stateMessage()}
}

func (s *Session) builds(ctx context.Context) ([]*network.ServerMessage, error) {
	names, err := s.store.List(ctx, s.owner.ID)
	if err != nil {
		return nil, err
	}
	return []*network.ServerMessage{{Type: network.MsgTypeBuilds, Payload: network.BuildsPayload{Names: names}}}, nil
}

// probe highlights where the cursor item would land and renders the grid.
func (s *Session) probe(p network.ProbePayload) ([]*network.ServerMessage, error) {
	it := s.editor.CursorItem()
	if it == nil {
		return nil, planner.ErrCursorEmpty
	}
	inv, ok := s.editor.Inventory(p.Inventory)
	if !ok {
		return nil, fmt.Errorf("%w: inventory %q", planner.ErrUnknownContainer, p.Inventory)
	}
	placement := inv.HighlightPlacement(it.Footprint(), geom.Pt(p.X, p.Y), it.Subtype())
	grid := inv.Render()
	inv.ClearHighlights()
	return []*network.ServerMessage{{
		Type:    network.MsgTypeProbeResult,
		Payload: network.ProbeResultPayload{CellPayload: p.CellPayload, Placement: string(placement), Grid: grid},
	}}, nil
}

// Close drops the session's event subscription.
func (s *Session) Close() {
	s.bus.Unsubscribe(s.ID)
	log.Printf("Closed session %s for %s", s.ID, s.owner.Username)
}
