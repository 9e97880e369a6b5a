package engine

import (
	"fmt"
	"slices"

	"github.com/DoyleJ11/durak-client/internal/cards"
	"github.com/DoyleJ11/durak-client/internal/protocol"
)

// Player is a seat in the running game. Index is what every game event refers to.
type Player struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

// Transient is per-deal display state. Narrow events replace it, it is never merged.
type Transient struct {
	PickedCard              *cards.Card `json:"pickedCard"`
	FirstAttackerReasonCard *cards.Card `json:"firstAttackerReasonCard"`
	GameEnd                 bool        `json:"gameEnd"`
	HasLoser                bool        `json:"hasLoser"`
	LoserIndex              int         `json:"loserIndex"`
}

func NewTransient() Transient {
	return Transient{LoserIndex: -1}
}

type Game struct {
	Started   bool
	Players   []Player
	YourIndex int
	Info      GameStateInfo
	Transient Transient
}

// NewGame is the empty game a freshly joined room starts with.
func NewGame() Game {
	return Game{
		YourIndex: -1,
		Info:      NewGameStateInfo(),
		Transient: NewTransient(),
	}
}

func (g Game) clone() Game {
	out := g
	out.Players = slices.Clone(g.Players)
	out.Info = g.Info.clone()
	return out
}

// PlayerName resolves a seat index. ok is false for indices outside the player list.
func (g Game) PlayerName(index int) (string, bool) {
	if index < 0 || index >= len(g.Players) {
		return "", false
	}
	return g.Players[index].Name, true
}

func (g Game) merge(p protocol.GameStateInfoPatch) Game {
	g.Info = g.Info.Merge(p).pruneCompleted(len(g.Players))
	return g
}

// mergeEvent applies the nested gameStateInfo, or the legacy top-level fields when an
// older server shipped the state flat on the event.
func (g Game) mergeEvent(ev protocol.GameEvent) Game {
	if ev.HasInfo {
		return g.merge(ev.Info)
	}
	if !ev.TopLevel.Empty() {
		return g.merge(ev.TopLevel)
	}
	return g
}

func (g Game) PlayersAssigned(ev protocol.GameEvent) (Game, []Effect, error) {
	next := g.clone()
	if ev.Players.Set {
		next.Players = make([]Player, len(ev.Players.Value))
		for i, p := range ev.Players.Value {
			next.Players[i] = Player{Index: i, Name: p.Name, IsActive: true}
		}
	}
	next.YourIndex = -1
	if ev.YourPlayerIndex.Set {
		next.YourIndex = ev.YourPlayerIndex.Value
	}
	return next, nil, nil
}

// Deal starts a new round of play from a clean snapshot. The nested state goes in first,
// then any flat legacy keys on the event.
func (g Game) Deal(ev protocol.GameEvent) (Game, []Effect, error) {
	next := g.clone()
	next.Started = true
	next.Info = NewGameStateInfo()
	next.Transient = NewTransient()
	if ev.HasInfo {
		next = next.merge(ev.Info)
	}
	if !ev.TopLevel.Empty() {
		next = next.merge(ev.TopLevel)
	}
	return next, nil, nil
}

// FirstAttacker sets the turn indices and the reason card. The battleground is left alone.
func (g Game) FirstAttacker(ev protocol.GameEvent) (Game, []Effect, error) {
	next := g.clone()
	var turn protocol.GameStateInfoPatch
	turn.AttackerIndex = ev.TopLevel.AttackerIndex
	turn.DefenderIndex = ev.TopLevel.DefenderIndex
	if !turn.AttackerIndex.Set {
		turn.AttackerIndex = ev.Info.AttackerIndex
	}
	if !turn.DefenderIndex.Set {
		turn.DefenderIndex = ev.Info.DefenderIndex
	}
	next = next.merge(turn)

	next.Transient.FirstAttackerReasonCard = nil
	if ev.ReasonCard.Set && ev.ReasonCard.Value != nil {
		c := *ev.ReasonCard.Value
		next.Transient.FirstAttackerReasonCard = &c
	}
	return next, nil, nil
}

func (g Game) GameStarted(ev protocol.GameEvent) (Game, []Effect, error) {
	next := g.clone()
	next.Started = true
	if ev.HasInfo {
		next = next.merge(ev.Info)
	}
	return next, nil, nil
}

// Attack merges the nested state. Without it the top-level card opens a new slot.
func (g Game) Attack(ev protocol.GameEvent) (Game, []Effect, error) {
	if ev.HasInfo {
		return g.clone().merge(ev.Info), nil, nil
	}
	next := g.clone()
	if !ev.TopLevel.Empty() {
		next = next.merge(ev.TopLevel)
	}
	if ev.Card.Set && ev.Card.Value != nil {
		next.Info = next.Info.withAttack(*ev.Card.Value)
	}
	return next, nil, nil
}

// Defend merges the nested state. Without it the top-level card pair fills the slot
// whose attacking card matches.
func (g Game) Defend(ev protocol.GameEvent) (Game, []Effect, error) {
	if ev.HasInfo {
		return g.clone().merge(ev.Info), nil, nil
	}
	next := g.clone()
	if !ev.TopLevel.Empty() {
		next = next.merge(ev.TopLevel)
	}
	if ev.AttackingCard.Value == nil || ev.DefendingCard.Value == nil {
		return next, nil, nil
	}
	info, ok := next.Info.withDefend(*ev.AttackingCard.Value, *ev.DefendingCard.Value)
	if !ok {
		return g, nil, fmt.Errorf("defend against %s: %w", ev.AttackingCard.Value, ErrSlotNotFound)
	}
	next.Info = info
	return next, nil, nil
}

// StateOnly is the bare merge behind state and new-round events. The first-attacker
// reason card is only meaningful right after the announcement, so it goes away here.
func (g Game) StateOnly(ev protocol.GameEvent) (Game, []Effect, error) {
	if !ev.HasInfo && ev.TopLevel.Empty() {
		return g, nil, nil
	}
	next := g.clone().mergeEvent(ev)
	next.Transient.FirstAttackerReasonCard = nil
	return next, nil, nil
}

func (g Game) End(ev protocol.GameEvent) (Game, []Effect, error) {
	next := g.clone()
	if ev.HasInfo {
		next = next.merge(ev.Info)
	}
	next.Transient.GameEnd = true
	next.Transient.PickedCard = nil
	next.Transient.LoserIndex = -1
	if ev.LoserIndex.Set {
		next.Transient.LoserIndex = ev.LoserIndex.Value
	}
	if ev.HasLoser.Set {
		next.Transient.HasLoser = ev.HasLoser.Value
	} else {
		next.Transient.HasLoser = next.Transient.LoserIndex >= 0
	}
	return next, nil, nil
}

// PlayerLeft raises a notice naming the player, or an empty name when the index does
// not resolve.
func (g Game) PlayerLeft(ev protocol.GameEvent) (Game, []Effect, error) {
	next := g
	name := ""
	if ev.PlayerIndex.Set {
		if n, ok := g.PlayerName(ev.PlayerIndex.Value); ok {
			name = n
			next = g.clone()
			next.Players[ev.PlayerIndex.Value].IsActive = false
		}
	}

	kind := NoticePlayerLeft
	if ev.IsAfk.Value {
		kind = NoticePlayerLeftAfk
	}
	return next, []Effect{ShowNotice{Notice: Notice{Kind: kind, PlayerName: name}}}, nil
}
