package engine

import (
	"fmt"

	"github.com/DoyleJ11/durak-client/internal/command"
	"github.com/DoyleJ11/durak-client/internal/protocol"
)

func clientKey(c protocol.ClientSession) protocol.ClientID { return c.ID }
func roomKey(r protocol.RoomSummary) protocol.RoomID       { return r.ID }

// Lobby is everything known about connected participants and joinable rooms.
type Lobby struct {
	Established  bool
	SelfID       protocol.ClientID
	SelfNickname string
	Clients      Keyed[protocol.ClientID, protocol.ClientSession]
	Rooms        Keyed[protocol.RoomID, protocol.RoomSummary]

	// MyRoom is set once the server confirms a room created by this client.
	MyRoom protocol.Opt[protocol.RoomID]
}

// SessionEstablished replaces both lists and decides the single bootstrap auto-action.
// hint is a room id remembered from an earlier session or a shared link.
func (l Lobby) SessionEstablished(ev protocol.SessionEstablished, hint protocol.Opt[protocol.RoomID]) (Lobby, []Effect, error) {
	next := Lobby{
		Established:  true,
		SelfID:       ev.YourID,
		SelfNickname: ev.YourNickname,
		Clients:      NewKeyed(clientKey, ev.Clients...),
		Rooms:        NewKeyed(roomKey, ev.Rooms...),
	}

	var effects []Effect
	switch {
	case len(ev.Rooms) == 0:
		effects = append(effects, Send{Out: command.CreateRoom()})
	case len(ev.Rooms) == 1 && ev.Rooms[0].MemberCount == 1:
		effects = append(effects, Send{Out: command.JoinRoom(ev.Rooms[0].ID)})
	case hint.Set:
		effects = append(effects, Send{Out: command.JoinRoom(hint.Value)})
	}
	return next, effects, nil
}

// ClientJoined is idempotent: a repeated id replaces the earlier record in place.
func (l Lobby) ClientJoined(c protocol.ClientSession) (Lobby, []Effect, error) {
	l.Clients = l.Clients.Upsert(c.ID, c)
	return l, nil, nil
}

func (l Lobby) ClientLeft(id protocol.ClientID) (Lobby, []Effect, error) {
	clients, ok := l.Clients.Remove(id)
	if !ok {
		return l, nil, fmt.Errorf("client %d left: %w", id, ErrUnknownClient)
	}
	l.Clients = clients
	return l, nil, nil
}

// RoomListed updates a known room. Unknown rooms are ignored: only RoomCreated appends.
func (l Lobby) RoomListed(r protocol.RoomSummary) (Lobby, []Effect, error) {
	rooms, ok := l.Rooms.Replace(r.ID, r)
	if !ok {
		return l, nil, nil
	}
	l.Rooms = rooms
	return l, nil, nil
}

func (l Lobby) RoomCreated(r protocol.RoomSummary) (Lobby, []Effect, error) {
	l.Rooms = l.Rooms.Upsert(r.ID, r)
	if l.Established && r.OwnerID == l.SelfID {
		l.MyRoom = protocol.Some(r.ID)
	}
	return l, nil, nil
}

func (l Lobby) RoomRemoved(id protocol.RoomID) (Lobby, []Effect, error) {
	rooms, ok := l.Rooms.Remove(id)
	if !ok {
		return l, nil, fmt.Errorf("remove room %d: %w", id, ErrUnknownRoom)
	}
	l.Rooms = rooms
	if l.MyRoom.Set && l.MyRoom.Value == id {
		l.MyRoom = protocol.Opt[protocol.RoomID]{}
	}
	return l, nil, nil
}
