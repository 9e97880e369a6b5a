// Package dispatch routes server events to the lobby, room and game reducers and owns
// the combined client state. Dispatch is strictly sequential.
package dispatch

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/DoyleJ11/durak-client/internal/engine"
	"github.com/DoyleJ11/durak-client/internal/protocol"
)

// State is the combined client state. Each reducer only ever sees its own part.
type State struct {
	Lobby engine.Lobby
	Room  engine.Room
	Game  engine.Game
}

func NewState() State {
	return State{
		Room: engine.NewRoom(),
		Game: engine.NewGame(),
	}
}

type Options struct {
	// RoomHint is the remembered room to rejoin on bootstrap when no other auto-action fires.
	RoomHint protocol.Opt[protocol.RoomID]
	// AutoStart sends room.startGame as soon as a room is joined.
	AutoStart bool
}

type handler func(d *Dispatcher, data json.RawMessage) ([]engine.Effect, error)

// handlers is fixed at compile time: one entry per event a client must understand.
var handlers = map[protocol.EventName]handler{
	protocol.EvtSessionEstablished:        (*Dispatcher).onSessionEstablished,
	protocol.EvtClientBroadcastJoined:     (*Dispatcher).onClientJoined,
	protocol.EvtClientLeft:                (*Dispatcher).onClientLeft,
	protocol.EvtRoomListed:                (*Dispatcher).onRoomListed,
	protocol.EvtRoomUpdated:               (*Dispatcher).onRoomUpdated,
	protocol.EvtRoomRemoved:               (*Dispatcher).onRoomRemoved,
	protocol.EvtRoomJoined:                (*Dispatcher).onRoomJoined,
	protocol.EvtClientCommandError:        (*Dispatcher).onCommandError,
	protocol.EvtRoomCreated:               (*Dispatcher).onRoomCreated,
	protocol.EvtMemberStatusChanged:       (*Dispatcher).onMemberStatusChanged,
	protocol.EvtMemberPlayerStatusChanged: (*Dispatcher).onMemberPlayerStatusChanged,
	protocol.EvtGamePlayersAssigned:       gameHandler(engine.Game.PlayersAssigned),
	protocol.EvtGameDeal:                  gameHandler(engine.Game.Deal),
	protocol.EvtGameFirstAttacker:         gameHandler(engine.Game.FirstAttacker),
	protocol.EvtGameStarted:               gameHandler(engine.Game.GameStarted),
	protocol.EvtGameAttack:                gameHandler(engine.Game.Attack),
	protocol.EvtGameDefend:                gameHandler(engine.Game.Defend),
	protocol.EvtGameState:                 gameHandler(engine.Game.StateOnly),
	protocol.EvtNewRound:                  gameHandler(engine.Game.StateOnly),
	protocol.EvtGameEnd:                   gameHandler(engine.Game.End),
	protocol.EvtGamePlayerLeft:            gameHandler(engine.Game.PlayerLeft),
}

// Handles reports whether name has a registered handler.
func Handles(name protocol.EventName) bool {
	_, ok := handlers[name]
	return ok
}

type Dispatcher struct {
	log   *zap.Logger
	opts  Options
	state State
}

func New(log *zap.Logger, opts Options) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{log: log, opts: opts, state: NewState()}
}

func (d *Dispatcher) State() State { return d.state }

// Dispatch runs the handler registered for in.Name and returns the effects it asks for.
// applied is false when the event was dropped: unknown names, malformed payloads and
// lookup misses are logged and leave state alone.
func (d *Dispatcher) Dispatch(in protocol.Inbound) (effects []engine.Effect, applied bool) {
	log := d.log.With(zap.String("event", string(in.Name)))
	log.Debug("dispatch", zap.Int("bytes", len(in.Data)))

	h, ok := handlers[in.Name]
	if !ok {
		log.Warn("no handler for event")
		return nil, false
	}

	effects, err := h(d, in.Data)
	switch {
	case err == nil:
		return effects, true
	case isLookupMiss(err):
		log.Warn("lookup miss, event ignored", zap.Error(err))
	default:
		log.Warn("malformed event dropped", zap.Error(err))
	}
	return nil, false
}

func isLookupMiss(err error) bool {
	return errors.Is(err, engine.ErrUnknownClient) ||
		errors.Is(err, engine.ErrUnknownRoom) ||
		errors.Is(err, engine.ErrUnknownMember) ||
		errors.Is(err, engine.ErrSlotNotFound)
}

// ---------- lobby ----------

func (d *Dispatcher) onSessionEstablished(data json.RawMessage) ([]engine.Effect, error) {
	ev, err := protocol.DecodeSessionEstablished(data)
	if err != nil {
		return nil, err
	}
	lobby, effects, err := d.state.Lobby.SessionEstablished(ev, d.opts.RoomHint)
	if err != nil {
		return nil, err
	}
	d.state.Lobby = lobby
	return effects, nil
}

func (d *Dispatcher) onClientJoined(data json.RawMessage) ([]engine.Effect, error) {
	c, err := protocol.DecodeClientSession(data)
	if err != nil {
		return nil, err
	}
	lobby, effects, err := d.state.Lobby.ClientJoined(c)
	if err != nil {
		return nil, err
	}
	d.state.Lobby = lobby
	return effects, nil
}

func (d *Dispatcher) onClientLeft(data json.RawMessage) ([]engine.Effect, error) {
	id, err := protocol.DecodeClientLeft(data)
	if err != nil {
		return nil, err
	}
	lobby, effects, err := d.state.Lobby.ClientLeft(id)
	if err != nil {
		return nil, err
	}
	d.state.Lobby = lobby
	return effects, nil
}

func (d *Dispatcher) onRoomListed(data json.RawMessage) ([]engine.Effect, error) {
	r, err := protocol.DecodeRoomSummary(data)
	if err != nil {
		return nil, err
	}
	lobby, effects, err := d.state.Lobby.RoomListed(r)
	if err != nil {
		return nil, err
	}
	d.state.Lobby = lobby
	return effects, nil
}

func (d *Dispatcher) onRoomCreated(data json.RawMessage) ([]engine.Effect, error) {
	r, err := protocol.DecodeRoomSummary(data)
	if err != nil {
		return nil, err
	}
	lobby, effects, err := d.state.Lobby.RoomCreated(r)
	if err != nil {
		return nil, err
	}
	d.state.Lobby = lobby
	return effects, nil
}

func (d *Dispatcher) onRoomRemoved(data json.RawMessage) ([]engine.Effect, error) {
	id, err := protocol.DecodeRoomRemoved(data)
	if err != nil {
		return nil, err
	}
	lobby, effects, err := d.state.Lobby.RoomRemoved(id)
	if err != nil {
		return nil, err
	}
	d.state.Lobby = lobby
	return effects, nil
}

func (d *Dispatcher) onCommandError(data json.RawMessage) ([]engine.Effect, error) {
	ce, err := protocol.DecodeCommandError(data)
	if err != nil {
		return nil, err
	}
	d.log.Info("command rejected", zap.String("message", ce.Message))
	return []engine.Effect{engine.ShowError{Message: ce.Message}}, nil
}

// ---------- room ----------

func (d *Dispatcher) onRoomJoined(data json.RawMessage) ([]engine.Effect, error) {
	r, err := protocol.DecodeRoom(data)
	if err != nil {
		return nil, err
	}
	room, effects, err := d.state.Room.RoomJoined(r, d.state.Lobby.SelfID, d.opts.AutoStart)
	if err != nil {
		return nil, err
	}
	d.state.Room = room
	d.state.Game = engine.NewGame()
	d.refreshListing()
	return effects, nil
}

func (d *Dispatcher) onRoomUpdated(data json.RawMessage) ([]engine.Effect, error) {
	r, err := protocol.DecodeRoom(data)
	if err != nil {
		return nil, err
	}
	room, effects, err := d.state.Room.RoomUpdated(r)
	if err != nil {
		return nil, err
	}
	d.state.Room = room
	d.refreshListing()
	return effects, nil
}

// refreshListing keeps the lobby row of the current room in step with the room itself.
func (d *Dispatcher) refreshListing() {
	if lobby, _, err := d.state.Lobby.RoomListed(d.state.Room.Summary()); err == nil {
		d.state.Lobby = lobby
	}
}

func (d *Dispatcher) onMemberStatusChanged(data json.RawMessage) ([]engine.Effect, error) {
	m, err := protocol.DecodeMember(data)
	if err != nil {
		return nil, err
	}
	room, effects, err := d.state.Room.MemberStatusChanged(m, d.state.Lobby.SelfID)
	if err != nil {
		return nil, err
	}
	d.state.Room = room
	return effects, nil
}

func (d *Dispatcher) onMemberPlayerStatusChanged(data json.RawMessage) ([]engine.Effect, error) {
	m, err := protocol.DecodeMember(data)
	if err != nil {
		return nil, err
	}
	room, effects, err := d.state.Room.MemberPlayerStatusChanged(m)
	if err != nil {
		return nil, err
	}
	d.state.Room = room
	return effects, nil
}

// ---------- game ----------

type gameReducer func(engine.Game, protocol.GameEvent) (engine.Game, []engine.Effect, error)

func gameHandler(reduce gameReducer) handler {
	return func(d *Dispatcher, data json.RawMessage) ([]engine.Effect, error) {
		ev, err := protocol.DecodeGameEvent(data)
		if err != nil {
			return nil, err
		}
		game, effects, err := reduce(d.state.Game, ev)
		if err != nil {
			return nil, err
		}
		d.state.Game = game
		return effects, nil
	}
}
