// Package command builds the outbound intent envelopes the server understands.
// It performs no validation: legality is decided by the server.
package command

import (
	"github.com/DoyleJ11/durak-client/internal/cards"
	"github.com/DoyleJ11/durak-client/internal/protocol"
)

func envelope(category protocol.Category, action protocol.Action, data any) protocol.Outbound {
	return protocol.Outbound{Type: category, SubType: action, Data: data}
}

// Join introduces the client to the lobby. The server answers with the session bootstrap.
func Join(nickname string) protocol.Outbound {
	return envelope(protocol.CategoryLobby, protocol.ActionJoin, nickname)
}

func CreateRoom() protocol.Outbound {
	return envelope(protocol.CategoryLobby, protocol.ActionCreateRoom, nil)
}

// JoinRoom carries the bare numeric room id as data.
func JoinRoom(id protocol.RoomID) protocol.Outbound {
	return envelope(protocol.CategoryLobby, protocol.ActionJoinRoom, id)
}

func WantToPlay() protocol.Outbound {
	return envelope(protocol.CategoryRoom, protocol.ActionWantToPlay, nil)
}

func WantToSpectate() protocol.Outbound {
	return envelope(protocol.CategoryRoom, protocol.ActionWantToSpectate, nil)
}

func SetPlayerStatus(member protocol.ClientID, status protocol.MemberStatus) protocol.Outbound {
	return envelope(protocol.CategoryRoom, protocol.ActionSetPlayerStatus, protocol.SetPlayerStatusData{
		MemberID: member,
		Status:   status,
	})
}

func StartGame() protocol.Outbound {
	return envelope(protocol.CategoryRoom, protocol.ActionStartGame, nil)
}

func DeleteGame() protocol.Outbound {
	return envelope(protocol.CategoryRoom, protocol.ActionDeleteGame, nil)
}

// AddBot fills an empty seat with a server-side placeholder player.
func AddBot() protocol.Outbound {
	return envelope(protocol.CategoryRoom, protocol.ActionAddBot, nil)
}

func RemoveBots() protocol.Outbound {
	return envelope(protocol.CategoryRoom, protocol.ActionRemoveBots, nil)
}

func Attack(card cards.Card) protocol.Outbound {
	return envelope(protocol.CategoryGame, protocol.ActionAttack, protocol.AttackData{Card: card})
}

func Defend(attacking, defending cards.Card) protocol.Outbound {
	return envelope(protocol.CategoryGame, protocol.ActionDefend, protocol.DefendData{
		AttackingCard: attacking,
		DefendingCard: defending,
	})
}

func PickUp() protocol.Outbound {
	return envelope(protocol.CategoryGame, protocol.ActionPickUp, nil)
}

func Complete() protocol.Outbound {
	return envelope(protocol.CategoryGame, protocol.ActionComplete, nil)
}
