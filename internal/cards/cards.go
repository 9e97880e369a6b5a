package cards

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

var ErrUnknownRank = errors.New("unknown card rank")
var ErrUnknownSuit = errors.New("unknown card suit")

type Rank string

const (
	RankSix   Rank = "6"
	RankSeven Rank = "7"
	RankEight Rank = "8"
	RankNine  Rank = "9"
	RankTen   Rank = "10"
	RankJack  Rank = "J"
	RankQueen Rank = "Q"
	RankKing  Rank = "K"
	RankAce   Rank = "A"
)

type Suit string

const (
	SuitClubs    Suit = "♣"
	SuitDiamonds Suit = "♦"
	SuitHearts   Suit = "♥"
	SuitSpades   Suit = "♠"
)

// Ranks lists every rank from lowest to highest.
var Ranks = []Rank{RankSix, RankSeven, RankEight, RankNine, RankTen, RankJack, RankQueen, RankKing, RankAce}

var Suits = []Suit{SuitClubs, SuitDiamonds, SuitHearts, SuitSpades}

func (r Rank) Valid() bool { return slices.Contains(Ranks, r) }

func (s Suit) Valid() bool { return slices.Contains(Suits, s) }

// Card is compared by value: two cards are the same card when rank and suit match.
type Card struct {
	Value Rank `json:"value"`
	Suit  Suit `json:"suit"`
}

func New(value Rank, suit Suit) Card {
	return Card{Value: value, Suit: suit}
}

// Parse validates a rank/suit pair coming from user input.
func Parse(value, suit string) (Card, error) {
	c := Card{Value: Rank(value), Suit: Suit(suit)}
	if err := c.Validate(); err != nil {
		return Card{}, err
	}
	return c, nil
}

func (c Card) Validate() error {
	if !c.Value.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRank, c.Value)
	}
	if !c.Suit.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSuit, c.Suit)
	}
	return nil
}

func (c Card) String() string {
	return string(c.Value) + string(c.Suit)
}

// UnmarshalJSON rejects cards outside the closed rank/suit sets.
func (c *Card) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value Rank `json:"value"`
		Suit  Suit `json:"suit"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed := Card{Value: raw.Value, Suit: raw.Suit}
	if err := parsed.Validate(); err != nil {
		return err
	}
	*c = parsed
	return nil
}

// IndexOf returns the position of card in hand or -1.
func IndexOf(hand []Card, card Card) int {
	return slices.Index(hand, card)
}
