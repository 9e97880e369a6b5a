package engine

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/DoyleJ11/durak-client/internal/cards"
	"github.com/DoyleJ11/durak-client/internal/protocol"
)

// GameStateInfo is the canonical, continuously merged game snapshot.
//
// The battleground is kept the way the server ships it: attack cards in attack order plus
// a slot index -> defending card map. Slots pairs them up and never yields a defending
// card for a slot that has no attacking card.
type GameStateInfo struct {
	HandsSizes                    []int              `json:"handsSizes"`
	DeckSize                      int                `json:"deckSize"`
	DiscardPileSize               int                `json:"discardPileSize"`
	TrumpCard                     *cards.Card        `json:"trumpCard"`
	TrumpSuit                     cards.Suit         `json:"trumpSuit,omitempty"`
	TrumpCardIsInDeck             bool               `json:"trumpCardIsInDeck"`
	TrumpCardIsOwnedByPlayerIndex int                `json:"trumpCardIsOwnedByPlayerIndex"`
	AttackerIndex                 int                `json:"attackerIndex"`
	DefenderIndex                 int                `json:"defenderIndex"`
	YourHand                      []cards.Card       `json:"yourHand"`
	CanYouPickUp                  bool               `json:"canYouPickUp"`
	CanYouComplete                bool               `json:"canYouComplete"`
	CanYouAttack                  bool               `json:"canYouAttack"`
	Battleground                  []cards.Card       `json:"battleground"`
	DefendingCards                map[int]cards.Card `json:"defendingCards"`
	CompletedPlayers              map[int]bool       `json:"completedPlayers"`
	DefenderPickUp                bool               `json:"defenderPickUp"`

	// Extra holds keys no known protocol revision uses, passed through untouched.
	Extra map[string]json.RawMessage `json:"extra,omitempty"`
}

func NewGameStateInfo() GameStateInfo {
	return GameStateInfo{
		HandsSizes:                    []int{},
		TrumpCardIsOwnedByPlayerIndex: -1,
		AttackerIndex:                 -1,
		DefenderIndex:                 -1,
		YourHand:                      []cards.Card{},
		Battleground:                  []cards.Card{},
		DefendingCards:                map[int]cards.Card{},
		CompletedPlayers:              map[int]bool{},
	}
}

// Slot is one attack on the battleground and its answer, if any.
type Slot struct {
	Attack cards.Card  `json:"attack"`
	Defend *cards.Card `json:"defend"`
}

func (g GameStateInfo) Slots() []Slot {
	slots := make([]Slot, len(g.Battleground))
	for i, attack := range g.Battleground {
		slots[i].Attack = attack
		if d, ok := g.DefendingCards[i]; ok {
			slots[i].Defend = &d
		}
	}
	return slots
}

// Clone returns a copy that shares no slices or maps with g.
func (g GameStateInfo) Clone() GameStateInfo { return g.clone() }

func (g GameStateInfo) clone() GameStateInfo {
	out := g
	out.HandsSizes = slices.Clone(g.HandsSizes)
	out.YourHand = slices.Clone(g.YourHand)
	out.Battleground = slices.Clone(g.Battleground)
	out.DefendingCards = maps.Clone(g.DefendingCards)
	out.CompletedPlayers = maps.Clone(g.CompletedPlayers)
	out.Extra = maps.Clone(g.Extra)
	if g.TrumpCard != nil {
		c := *g.TrumpCard
		out.TrumpCard = &c
	}
	return out
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clone(s)
}

// Merge assigns every field present in p and leaves the rest alone.
// A null value resets the field to its empty value, or -1 for player indices.
func (g GameStateInfo) Merge(p protocol.GameStateInfoPatch) GameStateInfo {
	out := g.clone()

	if p.HandsSizes.Set {
		out.HandsSizes = orEmpty(p.HandsSizes.Value)
	}
	if p.DeckSize.Set {
		out.DeckSize = p.DeckSize.Value
	}
	if p.DiscardPileSize.Set {
		out.DiscardPileSize = p.DiscardPileSize.Value
	}
	if p.TrumpCard.Set {
		out.TrumpCard = nil
		if p.TrumpCard.Value != nil {
			c := *p.TrumpCard.Value
			out.TrumpCard = &c
		}
	}
	if p.TrumpSuit.Set {
		out.TrumpSuit = p.TrumpSuit.Value
	}
	if p.TrumpCardIsInDeck.Set {
		out.TrumpCardIsInDeck = p.TrumpCardIsInDeck.Value
	}
	if p.TrumpCardIsOwnedByPlayerIndex.Set {
		out.TrumpCardIsOwnedByPlayerIndex = indexOrNone(p.TrumpCardIsOwnedByPlayerIndex.Value)
	}
	if p.AttackerIndex.Set {
		out.AttackerIndex = indexOrNone(p.AttackerIndex.Value)
	}
	if p.DefenderIndex.Set {
		out.DefenderIndex = indexOrNone(p.DefenderIndex.Value)
	}
	if p.YourHand.Set {
		out.YourHand = orEmpty(p.YourHand.Value)
	}
	if p.CanYouPickUp.Set {
		out.CanYouPickUp = p.CanYouPickUp.Value
	}
	if p.CanYouComplete.Set {
		out.CanYouComplete = p.CanYouComplete.Value
	}
	if p.CanYouAttack.Set {
		out.CanYouAttack = p.CanYouAttack.Value
	}
	if p.Battleground.Set {
		out.Battleground = orEmpty(p.Battleground.Value)
	}
	if p.DefendingCards.Set {
		out.DefendingCards = make(map[int]cards.Card, len(p.DefendingCards.Value))
		for i, c := range p.DefendingCards.Value {
			if c != nil && i >= 0 {
				out.DefendingCards[i] = *c
			}
		}
	}
	if p.CompletedPlayers.Set {
		out.CompletedPlayers = maps.Clone(p.CompletedPlayers.Value)
		if out.CompletedPlayers == nil {
			out.CompletedPlayers = map[int]bool{}
		}
	}
	if p.DefenderPickUp.Set {
		out.DefenderPickUp = p.DefenderPickUp.Value
	}
	if len(p.Extra) > 0 {
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage, len(p.Extra))
		}
		for k, v := range p.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// indexOrNone maps a null player index to -1.
func indexOrNone(i *int) int {
	if i == nil {
		return -1
	}
	return *i
}

// withDefend pairs defending with the slot attacked by attacking.
func (g GameStateInfo) withDefend(attacking, defending cards.Card) (GameStateInfo, bool) {
	i := cards.IndexOf(g.Battleground, attacking)
	if i < 0 {
		return g, false
	}
	out := g.clone()
	if out.DefendingCards == nil {
		out.DefendingCards = map[int]cards.Card{}
	}
	out.DefendingCards[i] = defending
	return out, true
}

func (g GameStateInfo) withAttack(card cards.Card) GameStateInfo {
	out := g.clone()
	out.Battleground = append(out.Battleground, card)
	return out
}

// pruneCompleted drops completedPlayers keys outside [0, players).
func (g GameStateInfo) pruneCompleted(players int) GameStateInfo {
	if players <= 0 {
		return g
	}
	for i := range g.CompletedPlayers {
		if i < 0 || i >= players {
			g = g.clone()
			maps.DeleteFunc(g.CompletedPlayers, func(k int, _ bool) bool { return k < 0 || k >= players })
			return g
		}
	}
	return g
}
