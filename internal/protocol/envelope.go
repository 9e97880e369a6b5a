package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedEnvelope = errors.New("malformed envelope")

type ClientID uint64

type RoomID uint64

// Inbound is a server -> client frame: {"name": ..., "data": ...}.
type Inbound struct {
	Name EventName       `json:"name"`
	Data json.RawMessage `json:"data"`
}

// DecodeInbound parses one text frame. Payload shape is not checked here.
func DecodeInbound(frame []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(frame, &in); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if in.Name == "" {
		return Inbound{}, fmt.Errorf("%w: missing name", ErrMalformedEnvelope)
	}
	return in, nil
}

type Category string

const (
	CategoryLobby Category = "lobby"
	CategoryRoom  Category = "room"
	CategoryGame  Category = "game"
)

type Action string

const (
	ActionJoin       Action = "join"
	ActionCreateRoom Action = "createRoom"
	ActionJoinRoom   Action = "joinRoom"

	ActionWantToPlay      Action = "wantToPlay"
	ActionWantToSpectate  Action = "wantToSpectate"
	ActionSetPlayerStatus Action = "setPlayerStatus"
	ActionStartGame       Action = "startGame"
	ActionDeleteGame      Action = "deleteGame"
	ActionAddBot          Action = "addBot"
	ActionRemoveBots      Action = "removeBots"

	ActionAttack   Action = "attack"
	ActionDefend   Action = "defend"
	ActionPickUp   Action = "pickUp"
	ActionComplete Action = "complete"
)

// Outbound is a client -> server frame: {"type": ..., "subType": ..., "data": ...}.
type Outbound struct {
	Type    Category `json:"type"`
	SubType Action   `json:"subType"`
	Data    any      `json:"data"`
}

func (o Outbound) String() string {
	return string(o.Type) + "." + string(o.SubType)
}

func (o Outbound) Encode() ([]byte, error) {
	return json.Marshal(o)
}
