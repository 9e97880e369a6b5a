package engine

import (
	"fmt"

	"github.com/DoyleJ11/durak-client/internal/command"
	"github.com/DoyleJ11/durak-client/internal/protocol"
)

func memberKey(m protocol.RoomMember) protocol.ClientID { return m.ID }

func isPlayer(m protocol.RoomMember) bool { return m.IsPlayer }

// Room is the room this client currently sits in.
type Room struct {
	Joined     bool
	ID         protocol.RoomID
	OwnerID    protocol.ClientID
	Name       string
	GameStatus string
	Members    Keyed[protocol.ClientID, protocol.RoomMember]

	PlayersInRoom int
	// WantToPlay mirrors the local member's flag for the presentation layer.
	WantToPlay bool
}

// NewRoom is the state before any room has been joined.
func NewRoom() Room {
	return Room{WantToPlay: true}
}

func (r Room) replace(room protocol.Room) Room {
	r.Joined = true
	r.ID = room.ID
	r.OwnerID = room.OwnerID
	r.Name = room.Name
	r.GameStatus = room.GameStatus
	r.Members = NewKeyed(memberKey, room.Members...)
	r.PlayersInRoom = r.Members.Count(isPlayer)
	return r
}

// RoomJoined replaces the room wholesale and asks for the room id to be remembered.
func (r Room) RoomJoined(room protocol.Room, self protocol.ClientID, autoStart bool) (Room, []Effect, error) {
	next := r.replace(room)
	if m, ok := next.Members.Get(self); ok {
		next.WantToPlay = m.WantToPlay
	}

	effects := []Effect{PersistRoom{RoomID: room.ID}}
	if autoStart {
		effects = append(effects, Send{Out: command.StartGame()})
	}
	return next, effects, nil
}

func (r Room) RoomUpdated(room protocol.Room) (Room, []Effect, error) {
	if r.Joined && room.ID != r.ID {
		return r, nil, fmt.Errorf("update for room %d while in room %d: %w", room.ID, r.ID, ErrUnknownRoom)
	}
	return r.replace(room), nil, nil
}

// MemberStatusChanged patches one member and mirrors wantToPlay when it is this client.
func (r Room) MemberStatusChanged(m protocol.RoomMember, self protocol.ClientID) (Room, []Effect, error) {
	members, ok := r.Members.Replace(m.ID, m)
	if !ok {
		return r, nil, fmt.Errorf("status of member %d: %w", m.ID, ErrUnknownMember)
	}
	r.Members = members
	if m.ID == self {
		r.WantToPlay = m.WantToPlay
	}
	return r, nil, nil
}

func (r Room) MemberPlayerStatusChanged(m protocol.RoomMember) (Room, []Effect, error) {
	members, ok := r.Members.Replace(m.ID, m)
	if !ok {
		return r, nil, fmt.Errorf("player status of member %d: %w", m.ID, ErrUnknownMember)
	}
	r.Members = members
	r.PlayersInRoom = r.Members.Count(isPlayer)
	return r, nil, nil
}

// Summary is the lobby-list view of this room.
func (r Room) Summary() protocol.RoomSummary {
	return protocol.RoomSummary{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Name:        r.Name,
		GameStatus:  r.GameStatus,
		MemberCount: r.Members.Len(),
	}
}
