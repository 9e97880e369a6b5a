package engine

import "github.com/DoyleJ11/durak-client/internal/protocol"

// Effect is something a reducer asks the dispatcher to do once the new state is in place.
type Effect interface{ isEffect() }

// Send hands an outbound envelope to the transport. Fire and forget.
type Send struct {
	Out protocol.Outbound
}

// PersistRoom asks the room locator to remember the joined room.
type PersistRoom struct {
	RoomID protocol.RoomID
}

// ShowError raises the command-error banner.
type ShowError struct {
	Message string
}

type NoticeKind string

const (
	NoticePlayerLeft    NoticeKind = "player_left"
	NoticePlayerLeftAfk NoticeKind = "player_left_afk"
)

type Notice struct {
	Kind       NoticeKind `json:"kind"`
	PlayerName string     `json:"playerName"`
}

// ShowNotice raises the informational toast.
type ShowNotice struct {
	Notice Notice
}

func (Send) isEffect()        {}
func (PersistRoom) isEffect() {}
func (ShowError) isEffect()   {}
func (ShowNotice) isEffect()  {}
