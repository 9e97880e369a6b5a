package protocol

type EventName string

// Wire names are the record names the server serializes.
const (
	EvtSessionEstablished        EventName = "ClientJoinedEvent"
	EvtClientBroadcastJoined     EventName = "ClientBroadCastJoinedEvent"
	EvtClientLeft                EventName = "ClientLeftEvent"
	EvtRoomListed                EventName = "RoomInListUpdatedEvent"
	EvtRoomUpdated               EventName = "RoomUpdatedEvent"
	EvtRoomRemoved               EventName = "RoomInListRemovedEvent"
	EvtRoomJoined                EventName = "RoomJoinedEvent"
	EvtClientCommandError        EventName = "ClientCommandError"
	EvtRoomCreated               EventName = "ClientCreatedRoomEvent"
	EvtMemberStatusChanged       EventName = "RoomMemberChangedStatusEvent"
	EvtMemberPlayerStatusChanged EventName = "RoomMemberChangedPlayerStatusEvent"
	EvtGamePlayersAssigned       EventName = "GamePlayersEvent"
	EvtGameDeal                  EventName = "GameDealEvent"
	EvtGameFirstAttacker         EventName = "GameFirstAttackerEvent"
	EvtGameStarted               EventName = "GameStartedEvent"
	EvtGameAttack                EventName = "GameAttackEvent"
	EvtGameDefend                EventName = "GameDefendEvent"
	EvtGameState                 EventName = "GameStateEvent"
	EvtNewRound                  EventName = "NewRoundEvent"
	EvtGameEnd                   EventName = "GameEndEvent"
	EvtGamePlayerLeft            EventName = "GamePlayerLeftEvent"
)

// EventNames is the closed set of events a client must understand.
var EventNames = []EventName{
	EvtSessionEstablished,
	EvtClientBroadcastJoined,
	EvtClientLeft,
	EvtRoomListed,
	EvtRoomUpdated,
	EvtRoomRemoved,
	EvtRoomJoined,
	EvtClientCommandError,
	EvtRoomCreated,
	EvtMemberStatusChanged,
	EvtMemberPlayerStatusChanged,
	EvtGamePlayersAssigned,
	EvtGameDeal,
	EvtGameFirstAttacker,
	EvtGameStarted,
	EvtGameAttack,
	EvtGameDefend,
	EvtGameState,
	EvtNewRound,
	EvtGameEnd,
	EvtGamePlayerLeft,
}
