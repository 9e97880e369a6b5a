package dispatch

import (
	"errors"
	"fmt"

	"github.com/DoyleJ11/durak-client/internal/cards"
	"github.com/DoyleJ11/durak-client/internal/command"
	"github.com/DoyleJ11/durak-client/internal/engine"
	"github.com/DoyleJ11/durak-client/internal/protocol"
)

var ErrUnknownVerb = errors.New("unknown intent")
var ErrMissingArgument = errors.New("missing intent argument")

type Verb string

const (
	VerbCreateRoom      Verb = "createRoom"
	VerbJoinRoom        Verb = "joinRoom"
	VerbWantToPlay      Verb = "wantToPlay"
	VerbWantToSpectate  Verb = "wantToSpectate"
	VerbSetPlayerStatus Verb = "setPlayerStatus"
	VerbStartGame       Verb = "startGame"
	VerbDeleteGame      Verb = "deleteGame"
	VerbAddBot          Verb = "addBot"
	VerbRemoveBots      Verb = "removeBots"
	VerbUseCard         Verb = "useCard"
	VerbAttack          Verb = "attack"
	VerbDefend          Verb = "defend"
	VerbPickUp          Verb = "pickUp"
	VerbComplete        Verb = "complete"
)

// Intent is a user-level action. Only the fields its verb needs are read.
type Intent struct {
	Verb          Verb                  `json:"verb"`
	RoomID        protocol.RoomID       `json:"roomId,omitempty"`
	MemberID      protocol.ClientID     `json:"memberId,omitempty"`
	Status        protocol.MemberStatus `json:"status,omitempty"`
	Card          *cards.Card           `json:"card,omitempty"`
	AttackingCard *cards.Card           `json:"attackingCard,omitempty"`
}

// Apply gates the intent against local state and returns what to send.
// A refused intent returns an error and changes nothing.
func (d *Dispatcher) Apply(in Intent) ([]engine.Effect, error) {
	s := d.state
	switch in.Verb {
	case VerbCreateRoom:
		return []engine.Effect{engine.Send{Out: command.CreateRoom()}}, nil

	case VerbJoinRoom:
		if in.RoomID == 0 {
			return nil, fmt.Errorf("%s: roomId: %w", in.Verb, ErrMissingArgument)
		}
		return []engine.Effect{engine.Send{Out: command.JoinRoom(in.RoomID)}}, nil

	case VerbWantToPlay, VerbWantToSpectate:
		room, effects, err := s.Room.MarkWantToPlay(in.Verb == VerbWantToPlay)
		if err != nil {
			return nil, err
		}
		d.state.Room = room
		return effects, nil

	case VerbSetPlayerStatus:
		if in.MemberID == 0 || in.Status == "" {
			return nil, fmt.Errorf("%s: memberId and status: %w", in.Verb, ErrMissingArgument)
		}
		return s.Room.Command(command.SetPlayerStatus(in.MemberID, in.Status))
	case VerbStartGame:
		return s.Room.Command(command.StartGame())
	case VerbDeleteGame:
		return s.Room.Command(command.DeleteGame())
	case VerbAddBot:
		return s.Room.Command(command.AddBot())
	case VerbRemoveBots:
		return s.Room.Command(command.RemoveBots())

	case VerbUseCard:
		if in.Card == nil {
			return nil, fmt.Errorf("%s: card: %w", in.Verb, ErrMissingArgument)
		}
		game, err := s.Game.UseCard(*in.Card)
		if err != nil {
			return nil, err
		}
		d.state.Game = game
		return nil, nil

	case VerbAttack:
		game, effects, err := s.Game.AttackWithPicked()
		if err != nil {
			return nil, err
		}
		d.state.Game = game
		return effects, nil

	case VerbDefend:
		if in.AttackingCard == nil {
			return nil, fmt.Errorf("%s: attackingCard: %w", in.Verb, ErrMissingArgument)
		}
		game, effects, err := s.Game.DefendAgainst(*in.AttackingCard)
		if err != nil {
			return nil, err
		}
		d.state.Game = game
		return effects, nil

	case VerbPickUp:
		return s.Game.PickUp()
	case VerbComplete:
		return s.Game.Complete()

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVerb, in.Verb)
	}
}

// Refused reports whether err means the intent was gated off by local state,
// as opposed to being malformed.
func Refused(err error) bool {
	return errors.Is(err, engine.ErrNotPermitted) ||
		errors.Is(err, engine.ErrNoPickedCard) ||
		errors.Is(err, engine.ErrNotInRoom)
}
