package engine

import (
	"fmt"

	"github.com/DoyleJ11/durak-client/internal/cards"
	"github.com/DoyleJ11/durak-client/internal/command"
	"github.com/DoyleJ11/durak-client/internal/protocol"
)

// UseCard toggles the picked card. Picking the picked card again clears it.
func (g Game) UseCard(c cards.Card) (Game, error) {
	if cards.IndexOf(g.Info.YourHand, c) < 0 {
		return g, fmt.Errorf("use %s: not in hand: %w", c, ErrNotPermitted)
	}
	next := g
	if g.Transient.PickedCard != nil && *g.Transient.PickedCard == c {
		next.Transient.PickedCard = nil
		return next, nil
	}
	picked := c
	next.Transient.PickedCard = &picked
	return next, nil
}

// AttackWithPicked sends the picked card and clears it without waiting for the server.
func (g Game) AttackWithPicked() (Game, []Effect, error) {
	if !Derive(g).AreYouAttacker {
		return g, nil, fmt.Errorf("attack: not the attacker: %w", ErrNotPermitted)
	}
	if g.Transient.PickedCard == nil {
		return g, nil, fmt.Errorf("attack: %w", ErrNoPickedCard)
	}
	card := *g.Transient.PickedCard
	next := g
	next.Transient.PickedCard = nil
	return next, []Effect{Send{Out: command.Attack(card)}}, nil
}

// DefendAgainst answers attacking with the picked card.
func (g Game) DefendAgainst(attacking cards.Card) (Game, []Effect, error) {
	if !Derive(g).AreYouDefender {
		return g, nil, fmt.Errorf("defend: not the defender: %w", ErrNotPermitted)
	}
	if g.Transient.PickedCard == nil {
		return g, nil, fmt.Errorf("defend: %w", ErrNoPickedCard)
	}
	card := *g.Transient.PickedCard
	next := g
	next.Transient.PickedCard = nil
	return next, []Effect{Send{Out: command.Defend(attacking, card)}}, nil
}

func (g Game) PickUp() ([]Effect, error) {
	if !Derive(g).CanYouPickUp {
		return nil, fmt.Errorf("pick up: %w", ErrNotPermitted)
	}
	return []Effect{Send{Out: command.PickUp()}}, nil
}

func (g Game) Complete() ([]Effect, error) {
	if !Derive(g).CanYouComplete {
		return nil, fmt.Errorf("complete: %w", ErrNotPermitted)
	}
	return []Effect{Send{Out: command.Complete()}}, nil
}

// MarkWantToPlay flips the local flag before the server confirms it.
func (r Room) MarkWantToPlay(want bool) (Room, []Effect, error) {
	if !r.Joined {
		return r, nil, ErrNotInRoom
	}
	r.WantToPlay = want
	out := command.WantToSpectate()
	if want {
		out = command.WantToPlay()
	}
	return r, []Effect{Send{Out: out}}, nil
}

// Command forwards a room-scoped command. The server decides whether it is legal.
func (r Room) Command(out protocol.Outbound) ([]Effect, error) {
	if !r.Joined {
		return nil, fmt.Errorf("%s: %w", out, ErrNotInRoom)
	}
	return []Effect{Send{Out: out}}, nil
}
