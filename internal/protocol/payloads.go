package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DoyleJ11/durak-client/internal/cards"
)

var ErrMalformedPayload = errors.New("malformed payload")

// Opt records whether a key was present in a payload, which a zero value cannot.
type Opt[T any] struct {
	Set   bool
	Value T
}

func Some[T any](v T) Opt[T] { return Opt[T]{Set: true, Value: v} }

func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	var zero T
	o.Value = zero
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// decodeObject reads a JSON object into a key -> raw value map.
// A null or missing payload decodes to an empty map.
func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	raw := map[string]json.RawMessage{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return raw, nil
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return raw, nil
}

func decodeNormalized(data []byte, table AliasTable, out any) (unknown map[string]json.RawMessage, err error) {
	raw, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	normalized, unknownKeys := table.Normalize(raw)
	if len(unknownKeys) > 0 {
		unknown = make(map[string]json.RawMessage, len(unknownKeys))
		for _, k := range unknownKeys {
			unknown[k] = normalized[k]
			delete(normalized, k)
		}
	}
	buf, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(buf, out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return unknown, nil
}

// ---------- lobby ----------

type ClientSession struct {
	ID       ClientID `json:"id"`
	Nickname string   `json:"nickname"`
}

func (c *ClientSession) UnmarshalJSON(data []byte) error {
	type plain ClientSession
	var p plain
	if _, err := decodeNormalized(data, ClientKeys, &p); err != nil {
		return err
	}
	*c = ClientSession(p)
	return nil
}

type RoomSummary struct {
	ID          RoomID   `json:"id"`
	OwnerID     ClientID `json:"ownerId"`
	Name        string   `json:"name"`
	GameStatus  string   `json:"gameStatus"`
	MemberCount int      `json:"memberCount"`
}

func (r *RoomSummary) UnmarshalJSON(data []byte) error {
	type plain RoomSummary
	var p plain
	if _, err := decodeNormalized(data, RoomSummaryKeys, &p); err != nil {
		return err
	}
	*r = RoomSummary(p)
	return nil
}

type SessionEstablished struct {
	YourID       ClientID        `json:"yourId"`
	YourNickname string          `json:"yourNickname"`
	Clients      []ClientSession `json:"clients"`
	Rooms        []RoomSummary   `json:"rooms"`
}

func DecodeSessionEstablished(data []byte) (SessionEstablished, error) {
	var s SessionEstablished
	_, err := decodeNormalized(data, SessionKeys, &s)
	return s, err
}

func DecodeClientSession(data []byte) (ClientSession, error) {
	var c ClientSession
	err := c.UnmarshalJSON(data)
	return c, err
}

type envelopeFields struct {
	Room    json.RawMessage `json:"room"`
	RoomID  Opt[RoomID]     `json:"roomId"`
	ID      Opt[ClientID]   `json:"id"`
	Member  json.RawMessage `json:"member"`
	Message string          `json:"message"`
}

func decodeEnvelopeFields(data []byte) (envelopeFields, error) {
	var f envelopeFields
	_, err := decodeNormalized(data, EnvelopeKeys, &f)
	return f, err
}

// DecodeClientLeft returns the id of the client that left the lobby.
func DecodeClientLeft(data []byte) (ClientID, error) {
	f, err := decodeEnvelopeFields(data)
	if err != nil {
		return 0, err
	}
	if !f.ID.Set {
		return 0, fmt.Errorf("%w: missing id", ErrMalformedPayload)
	}
	return f.ID.Value, nil
}

// DecodeRoomSummary reads the {"room": {...}} shape of the lobby room-list events.
func DecodeRoomSummary(data []byte) (RoomSummary, error) {
	f, err := decodeEnvelopeFields(data)
	if err != nil {
		return RoomSummary{}, err
	}
	if len(f.Room) == 0 || string(f.Room) == "null" {
		return RoomSummary{}, fmt.Errorf("%w: missing room", ErrMalformedPayload)
	}
	var r RoomSummary
	if err := json.Unmarshal(f.Room, &r); err != nil {
		return RoomSummary{}, err
	}
	return r, nil
}

func DecodeRoomRemoved(data []byte) (RoomID, error) {
	f, err := decodeEnvelopeFields(data)
	if err != nil {
		return 0, err
	}
	if !f.RoomID.Set {
		return 0, fmt.Errorf("%w: missing roomId", ErrMalformedPayload)
	}
	return f.RoomID.Value, nil
}

type CommandError struct {
	Message string `json:"message"`
}

func DecodeCommandError(data []byte) (CommandError, error) {
	f, err := decodeEnvelopeFields(data)
	if err != nil {
		return CommandError{}, err
	}
	return CommandError{Message: f.Message}, nil
}

// ---------- room ----------

type MemberStatus string

type RoomMember struct {
	ID         ClientID     `json:"id"`
	Nickname   string       `json:"nickname"`
	IsPlayer   bool         `json:"isPlayer"`
	WantToPlay bool         `json:"wantToPlay"`
	Status     MemberStatus `json:"status"`
}

func (m *RoomMember) UnmarshalJSON(data []byte) error {
	type plain RoomMember
	var p plain
	if _, err := decodeNormalized(data, MemberKeys, &p); err != nil {
		return err
	}
	*m = RoomMember(p)
	return nil
}

type Room struct {
	ID         RoomID       `json:"id"`
	OwnerID    ClientID     `json:"ownerId"`
	Name       string       `json:"name"`
	GameStatus string       `json:"gameStatus"`
	Members    []RoomMember `json:"members"`
}

func (r *Room) UnmarshalJSON(data []byte) error {
	type plain Room
	var p plain
	if _, err := decodeNormalized(data, RoomKeys, &p); err != nil {
		return err
	}
	*r = Room(p)
	return nil
}

// DecodeRoom reads the {"room": {...}} shape of room-joined and room-updated.
func DecodeRoom(data []byte) (Room, error) {
	f, err := decodeEnvelopeFields(data)
	if err != nil {
		return Room{}, err
	}
	if len(f.Room) == 0 || string(f.Room) == "null" {
		return Room{}, fmt.Errorf("%w: missing room", ErrMalformedPayload)
	}
	var r Room
	if err := json.Unmarshal(f.Room, &r); err != nil {
		return Room{}, err
	}
	return r, nil
}

func DecodeMember(data []byte) (RoomMember, error) {
	f, err := decodeEnvelopeFields(data)
	if err != nil {
		return RoomMember{}, err
	}
	if len(f.Member) == 0 || string(f.Member) == "null" {
		return RoomMember{}, fmt.Errorf("%w: missing member", ErrMalformedPayload)
	}
	var m RoomMember
	if err := json.Unmarshal(f.Member, &m); err != nil {
		return RoomMember{}, err
	}
	return m, nil
}

// ---------- game ----------

type Player struct {
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

func (p *Player) UnmarshalJSON(data []byte) error {
	type plain Player
	var pl plain
	if _, err := decodeNormalized(data, PlayerKeys, &pl); err != nil {
		return err
	}
	*p = Player(pl)
	return nil
}

// GameStateInfoPatch is a sparse game-state update: only fields with Set were sent.
// Player indices are pointers so an explicit null can be told apart from seat 0.
type GameStateInfoPatch struct {
	HandsSizes                    Opt[[]int]                 `json:"handsSizes"`
	DeckSize                      Opt[int]                   `json:"deckSize"`
	DiscardPileSize               Opt[int]                   `json:"discardPileSize"`
	TrumpCard                     Opt[*cards.Card]           `json:"trumpCard"`
	TrumpSuit                     Opt[cards.Suit]            `json:"trumpSuit"`
	TrumpCardIsInDeck             Opt[bool]                  `json:"trumpCardIsInDeck"`
	TrumpCardIsOwnedByPlayerIndex Opt[*int]                  `json:"trumpCardIsOwnedByPlayerIndex"`
	AttackerIndex                 Opt[*int]                  `json:"attackerIndex"`
	DefenderIndex                 Opt[*int]                  `json:"defenderIndex"`
	YourHand                      Opt[[]cards.Card]          `json:"yourHand"`
	CanYouPickUp                  Opt[bool]                  `json:"canYouPickUp"`
	CanYouComplete                Opt[bool]                  `json:"canYouComplete"`
	CanYouAttack                  Opt[bool]                  `json:"canYouAttack"`
	Battleground                  Opt[[]cards.Card]          `json:"battleground"`
	DefendingCards                Opt[map[int]*cards.Card]   `json:"defendingCards"`
	CompletedPlayers              Opt[map[int]bool]          `json:"completedPlayers"`
	DefenderPickUp                Opt[bool]                  `json:"defenderPickUp"`
	Extra                         map[string]json.RawMessage `json:"-"`
}

// Empty reports whether the patch would change nothing.
func (p GameStateInfoPatch) Empty() bool {
	return !p.HandsSizes.Set && !p.DeckSize.Set && !p.DiscardPileSize.Set &&
		!p.TrumpCard.Set && !p.TrumpSuit.Set && !p.TrumpCardIsInDeck.Set &&
		!p.TrumpCardIsOwnedByPlayerIndex.Set && !p.AttackerIndex.Set && !p.DefenderIndex.Set &&
		!p.YourHand.Set && !p.CanYouPickUp.Set && !p.CanYouComplete.Set && !p.CanYouAttack.Set &&
		!p.Battleground.Set && !p.DefendingCards.Set && !p.CompletedPlayers.Set &&
		!p.DefenderPickUp.Set && len(p.Extra) == 0
}

func DecodeGameStateInfo(data []byte) (GameStateInfoPatch, error) {
	var p GameStateInfoPatch
	extra, err := decodeNormalized(data, GameStateInfoKeys, &p)
	if err != nil {
		return GameStateInfoPatch{}, err
	}
	p.Extra = extra
	return p, nil
}

// GameEvent holds every shape a game event can take: the nested gameStateInfo,
// legacy state fields shipped at the top level, and the event-specific fields.
type GameEvent struct {
	Info     GameStateInfoPatch
	HasInfo  bool
	TopLevel GameStateInfoPatch

	ReasonCard          Opt[*cards.Card]
	Card                Opt[*cards.Card]
	AttackingCard       Opt[*cards.Card]
	DefendingCard       Opt[*cards.Card]
	WasAttackSuccessful Opt[bool]
	HasLoser            Opt[bool]
	LoserIndex          Opt[int]
	PlayerIndex         Opt[int]
	IsAfk               Opt[bool]
	Players             Opt[[]Player]
	YourPlayerIndex     Opt[int]
}

type gameEventFields struct {
	GameStateInfo       json.RawMessage  `json:"gameStateInfo"`
	ReasonCard          Opt[*cards.Card] `json:"reasonCard"`
	Card                Opt[*cards.Card] `json:"card"`
	AttackingCard       Opt[*cards.Card] `json:"attackingCard"`
	DefendingCard       Opt[*cards.Card] `json:"defendingCard"`
	WasAttackSuccessful Opt[bool]        `json:"wasAttackSuccessful"`
	HasLoser            Opt[bool]        `json:"hasLoser"`
	LoserIndex          Opt[int]         `json:"loserIndex"`
	PlayerIndex         Opt[int]         `json:"playerIndex"`
	IsAfk               Opt[bool]        `json:"isAfk"`
	Players             Opt[[]Player]    `json:"players"`
	YourPlayerIndex     Opt[int]         `json:"yourPlayerIndex"`
}

// DecodeGameEvent splits a game event payload into its event fields and state patches.
// Keys that are neither event fields nor known state fields end up in TopLevel.Extra.
func DecodeGameEvent(data []byte) (GameEvent, error) {
	var f gameEventFields
	rest, err := decodeNormalized(data, GameEventKeys, &f)
	if err != nil {
		return GameEvent{}, err
	}

	ev := GameEvent{
		ReasonCard:          f.ReasonCard,
		Card:                f.Card,
		AttackingCard:       f.AttackingCard,
		DefendingCard:       f.DefendingCard,
		WasAttackSuccessful: f.WasAttackSuccessful,
		HasLoser:            f.HasLoser,
		LoserIndex:          f.LoserIndex,
		PlayerIndex:         f.PlayerIndex,
		IsAfk:               f.IsAfk,
		Players:             f.Players,
		YourPlayerIndex:     f.YourPlayerIndex,
	}

	if len(f.GameStateInfo) > 0 && string(f.GameStateInfo) != "null" {
		info, err := DecodeGameStateInfo(f.GameStateInfo)
		if err != nil {
			return GameEvent{}, fmt.Errorf("gameStateInfo: %w", err)
		}
		ev.Info = info
		ev.HasInfo = true
	}

	if len(rest) > 0 {
		buf, err := json.Marshal(rest)
		if err != nil {
			return GameEvent{}, err
		}
		top, err := DecodeGameStateInfo(buf)
		if err != nil {
			return GameEvent{}, fmt.Errorf("top-level state: %w", err)
		}
		ev.TopLevel = top
	}
	return ev, nil
}

// ---------- outbound payloads ----------

type SetPlayerStatusData struct {
	MemberID ClientID     `json:"memberId"`
	Status   MemberStatus `json:"status"`
}

type AttackData struct {
	Card cards.Card `json:"card"`
}

type DefendData struct {
	AttackingCard cards.Card `json:"attackingCard"`
	DefendingCard cards.Card `json:"defendingCard"`
}
