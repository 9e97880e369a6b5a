package dispatch

import (
	"slices"

	"github.com/DoyleJ11/durak-client/internal/cards"
	"github.com/DoyleJ11/durak-client/internal/engine"
	"github.com/DoyleJ11/durak-client/internal/protocol"
)

// View is a read-only copy of the client state for presentation. It shares no memory
// with the live state, so it is safe to hand to other goroutines.
type View struct {
	Version int       `json:"version"`
	Lobby   LobbyView `json:"lobby"`
	Room    RoomView  `json:"room"`
	Game    GameView  `json:"game"`
	Banners Banners   `json:"banners"`
}

type LobbyView struct {
	SelfID       protocol.ClientID        `json:"selfId"`
	SelfNickname string                   `json:"selfNickname"`
	Clients      []protocol.ClientSession `json:"clients"`
	Rooms        []protocol.RoomSummary   `json:"rooms"`
	MyRoomID     *protocol.RoomID         `json:"myRoomId"`
}

type RoomView struct {
	Joined        bool                  `json:"joined"`
	ID            protocol.RoomID       `json:"id"`
	OwnerID       protocol.ClientID     `json:"ownerId"`
	Name          string                `json:"name"`
	GameStatus    string                `json:"gameStatus"`
	Members       []protocol.RoomMember `json:"members"`
	PlayersInRoom int                   `json:"playersInRoom"`
	WantToPlay    bool                  `json:"wantToPlay"`
}

type GameView struct {
	Started         bool                 `json:"started"`
	Players         []engine.Player      `json:"players"`
	YourPlayerIndex int                  `json:"yourPlayerIndex"`
	Info            engine.GameStateInfo `json:"gameStateInfo"`
	Slots           []engine.Slot        `json:"slots"`
	Transient       engine.Transient     `json:"gameState"`
	Permissions     engine.Permissions   `json:"permissions"`
}

func copyCard(c *cards.Card) *cards.Card {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

func buildView(version int, s State, banners Banners) View {
	v := View{Version: version, Banners: banners.copy()}

	v.Lobby = LobbyView{
		SelfID:       s.Lobby.SelfID,
		SelfNickname: s.Lobby.SelfNickname,
		Clients:      s.Lobby.Clients.Values(),
		Rooms:        s.Lobby.Rooms.Values(),
	}
	if s.Lobby.MyRoom.Set {
		id := s.Lobby.MyRoom.Value
		v.Lobby.MyRoomID = &id
	}

	v.Room = RoomView{
		Joined:        s.Room.Joined,
		ID:            s.Room.ID,
		OwnerID:       s.Room.OwnerID,
		Name:          s.Room.Name,
		GameStatus:    s.Room.GameStatus,
		Members:       s.Room.Members.Values(),
		PlayersInRoom: s.Room.PlayersInRoom,
		WantToPlay:    s.Room.WantToPlay,
	}

	g := s.Game
	transient := g.Transient
	transient.PickedCard = copyCard(g.Transient.PickedCard)
	transient.FirstAttackerReasonCard = copyCard(g.Transient.FirstAttackerReasonCard)
	v.Game = GameView{
		Started:         g.Started,
		Players:         slices.Clone(g.Players),
		YourPlayerIndex: g.YourIndex,
		Info:            g.Info.Clone(),
		Slots:           g.Info.Slots(),
		Transient:       transient,
		Permissions:     engine.Derive(g),
	}
	return v
}

// View snapshots the dispatcher state without banners. Used where no loop runs, e.g. replay.
func (d *Dispatcher) View(version int) View {
	return buildView(version, d.state, Banners{})
}
