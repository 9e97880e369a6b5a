package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/durak-client/internal/cards"
	"github.com/DoyleJ11/durak-client/internal/protocol"
)

var (
	tenSpades   = cards.New(cards.RankTen, cards.SuitSpades)
	jackSpades  = cards.New(cards.RankJack, cards.SuitSpades)
	sixHearts   = cards.New(cards.RankSix, cards.SuitHearts)
	aceDiamonds = cards.New(cards.RankAce, cards.SuitDiamonds)
)

func gameEvent(t *testing.T, payload string) protocol.GameEvent {
	t.Helper()
	ev, err := protocol.DecodeGameEvent([]byte(payload))
	require.NoError(t, err)
	return ev
}

func patch(t *testing.T, payload string) protocol.GameStateInfoPatch {
	t.Helper()
	p, err := protocol.DecodeGameStateInfo([]byte(payload))
	require.NoError(t, err)
	return p
}

// seated returns a dealt two-player game where this client sits at index 0.
func seated(t *testing.T) Game {
	t.Helper()
	g, _, err := NewGame().PlayersAssigned(gameEvent(t, `{"yourPlayerIndex":0,"players":[{"name":"ann"},{"name":"bob"}]}`))
	require.NoError(t, err)
	g, _, err = g.Deal(gameEvent(t, `{"gameStateInfo":{
		"yourHand":[{"value":"10","suit":"♠"},{"value":"J","suit":"♠"},{"value":"6","suit":"♥"}],
		"handsSizes":[6,6],"deckSize":24,"trumpCard":{"value":"A","suit":"♦"},"trumpCardIsInDeck":true
	}}`))
	require.NoError(t, err)
	return g
}

func TestDealResetsRound(t *testing.T) {
	g := seated(t)
	g.Transient.GameEnd = true
	g.Transient.LoserIndex = 1
	g.Info = g.Info.withAttack(tenSpades)

	g, _, err := g.Deal(gameEvent(t, `{"gameStateInfo":{"deckSize":12}}`))
	require.NoError(t, err)
	assert.False(t, g.Transient.GameEnd)
	assert.Equal(t, -1, g.Transient.LoserIndex)
	assert.Equal(t, []cards.Card{}, g.Info.Battleground)
	assert.Equal(t, 12, g.Info.DeckSize)
	assert.Equal(t, []cards.Card{}, g.Info.YourHand, "deal starts from an empty snapshot")
}

func TestDealAcceptsLegacyFlatShape(t *testing.T) {
	g, _, err := NewGame().Deal(gameEvent(t, `{
		"your_hand":[{"value":"6","suit":"♥"}],
		"hands_sizes":[6,6],
		"pile_size":24,
		"trump_card":{"value":"A","suit":"♦"},
		"trump_card_is_in_pile":true,
		"trump_card_is_owned_by_player_index":-1
	}`))
	require.NoError(t, err)
	assert.Equal(t, []cards.Card{sixHearts}, g.Info.YourHand)
	assert.Equal(t, 24, g.Info.DeckSize)
	assert.True(t, g.Info.TrumpCardIsInDeck)
	require.NotNil(t, g.Info.TrumpCard)
	assert.Equal(t, aceDiamonds, *g.Info.TrumpCard)
}

func TestFirstAttackerKeepsBattleground(t *testing.T) {
	g := seated(t)
	g.Info = g.Info.withAttack(tenSpades)

	g, _, err := g.FirstAttacker(gameEvent(t, `{"attackerIndex":1,"defenderIndex":0,"reasonCard":{"value":"6","suit":"♦"}}`))
	require.NoError(t, err)
	assert.Equal(t, 1, g.Info.AttackerIndex)
	assert.Equal(t, 0, g.Info.DefenderIndex)
	assert.Equal(t, []cards.Card{tenSpades}, g.Info.Battleground)
	require.NotNil(t, g.Transient.FirstAttackerReasonCard)

	g, _, err = g.StateOnly(gameEvent(t, `{"gameStateInfo":{"deckSize":20}}`))
	require.NoError(t, err)
	assert.Nil(t, g.Transient.FirstAttackerReasonCard)
	assert.Equal(t, 20, g.Info.DeckSize)
}

func TestAttackThenDefendPairsSlot(t *testing.T) {
	t.Run("nested state", func(t *testing.T) {
		g := seated(t)
		g, _, err := g.Attack(gameEvent(t, `{"gameStateInfo":{"battleground":[{"value":"10","suit":"♠"}],"defendingCards":{}}}`))
		require.NoError(t, err)
		g, _, err = g.Defend(gameEvent(t, `{"gameStateInfo":{"battleground":[{"value":"10","suit":"♠"}],"defendingCards":{"0":{"value":"J","suit":"♠"}}}}`))
		require.NoError(t, err)

		defend := jackSpades
		assert.Equal(t, []Slot{{Attack: tenSpades, Defend: &defend}}, g.Info.Slots())
	})

	t.Run("legacy top-level cards", func(t *testing.T) {
		g := seated(t)
		g, _, err := g.Attack(gameEvent(t, `{"card":{"value":"10","suit":"♠"}}`))
		require.NoError(t, err)
		g, _, err = g.Defend(gameEvent(t, `{"attackingCard":{"value":"10","suit":"♠"},"defendingCard":{"value":"J","suit":"♠"}}`))
		require.NoError(t, err)

		defend := jackSpades
		assert.Equal(t, []Slot{{Attack: tenSpades, Defend: &defend}}, g.Info.Slots())
	})

	t.Run("defend against a missing attack is a lookup miss", func(t *testing.T) {
		g := seated(t)
		after, _, err := g.Defend(gameEvent(t, `{"attackingCard":{"value":"10","suit":"♠"},"defendingCard":{"value":"J","suit":"♠"}}`))
		require.ErrorIs(t, err, ErrSlotNotFound)
		assert.Equal(t, g, after)
	})
}

func TestBattlegroundNeverDefendsAnEmptySlot(t *testing.T) {
	steps := []string{
		`{"defendingCards":{"0":{"value":"J","suit":"♠"},"3":{"value":"A","suit":"♦"}}}`,
		`{"battleground":[{"value":"10","suit":"♠"}]}`,
		`{"battleground":[]}`,
		`{"battleground":[{"value":"6","suit":"♥"},{"value":"10","suit":"♠"}]}`,
		`{"defendingCards":{"1":{"value":"J","suit":"♠"}}}`,
		`{"battleground":[{"value":"6","suit":"♥"}]}`,
	}

	info := NewGameStateInfo()
	for i, s := range steps {
		info = info.Merge(patch(t, s))
		for _, slot := range info.Slots() {
			assert.NotEqual(t, cards.Card{}, slot.Attack, "step %d", i)
		}
		assert.LessOrEqual(t, len(info.Slots()), len(info.Battleground))
	}
	assert.Equal(t, []Slot{{Attack: sixHearts}}, info.Slots())
}

func TestMergeIsIdempotent(t *testing.T) {
	p := patch(t, `{"battleground":[{"value":"10","suit":"♠"}],"defendingCards":{"0":{"value":"J","suit":"♠"}},"completedPlayers":{"1":true},"attacker_index":1,"unknownKey":"kept"}`)

	once := NewGameStateInfo().Merge(p)
	twice := once.Merge(p)
	assert.Equal(t, once, twice)
	assert.JSONEq(t, `"kept"`, string(once.Extra["unknownKey"]))
}

func TestSequentialMergeEqualsUnion(t *testing.T) {
	tests := []struct {
		name  string
		steps []string
		union string
	}{
		{
			name: "disjoint and overlapping keys",
			steps: []string{
				`{"deckSize":24,"yourHand":[{"value":"6","suit":"♥"}],"attackerIndex":0}`,
				`{"battleground":[{"value":"10","suit":"♠"}],"attacker_index":1}`,
				`{"deck_size":20,"defendingCards":{"0":{"value":"J","suit":"♠"}}}`,
				`{"canYouPickUp":true,"yourHand":[]}`,
			},
			union: `{"deckSize":20,"yourHand":[],"attackerIndex":1,"battleground":[{"value":"10","suit":"♠"}],"defendingCards":{"0":{"value":"J","suit":"♠"}},"canYouPickUp":true}`,
		},
		{
			name: "battleground alone keeps defending cards",
			steps: []string{
				`{"battleground":[{"value":"10","suit":"♠"}],"defendingCards":{"0":{"value":"J","suit":"♠"}}}`,
				`{"battleground":[{"value":"6","suit":"♥"}]}`,
			},
			union: `{"battleground":[{"value":"6","suit":"♥"}],"defendingCards":{"0":{"value":"J","suit":"♠"}}}`,
		},
		{
			name: "null index after a seat",
			steps: []string{
				`{"attackerIndex":1,"defenderIndex":0}`,
				`{"attackerIndex":null}`,
			},
			union: `{"attackerIndex":null,"defenderIndex":0}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := NewGameStateInfo()
			for _, s := range tt.steps {
				seq = seq.Merge(patch(t, s))
			}
			assert.Equal(t, NewGameStateInfo().Merge(patch(t, tt.union)), seq)
		})
	}
}

func TestBattlegroundPatchLeavesDefendingCardsAlone(t *testing.T) {
	info := NewGameStateInfo().Merge(patch(t, `{"battleground":[{"value":"10","suit":"♠"}],"defendingCards":{"0":{"value":"J","suit":"♠"}}}`))
	info = info.Merge(patch(t, `{"battleground":[]}`))
	assert.Equal(t, map[int]cards.Card{0: jackSpades}, info.DefendingCards)
	assert.Empty(t, info.Slots(), "an answer without an attack is never shown")

	info = info.Merge(patch(t, `{"battleground":[{"value":"6","suit":"♥"}]}`))
	assert.Equal(t, map[int]cards.Card{0: jackSpades}, info.DefendingCards)
}

func TestNullPlayerIndexMeansNobody(t *testing.T) {
	g := seated(t)
	g, _, err := g.StateOnly(gameEvent(t, `{"gameStateInfo":{"attackerIndex":1,"defenderIndex":0,"trumpCardIsOwnedByPlayerIndex":0}}`))
	require.NoError(t, err)
	require.True(t, Derive(g).AreYouDefender)

	g, _, err = g.StateOnly(gameEvent(t, `{"gameStateInfo":{"attackerIndex":null,"defenderIndex":null,"trumpCardIsOwnedByPlayerIndex":null}}`))
	require.NoError(t, err)
	assert.Equal(t, -1, g.Info.AttackerIndex)
	assert.Equal(t, -1, g.Info.DefenderIndex)
	assert.Equal(t, -1, g.Info.TrumpCardIsOwnedByPlayerIndex)

	p := Derive(g)
	assert.False(t, p.AreYouAttacker, "seat 0 must not become the attacker")
	assert.False(t, p.AreYouDefender)
	assert.Empty(t, p.AttackerNickname)
}

func TestMergeLeavesAbsentKeysAlone(t *testing.T) {
	info := NewGameStateInfo().Merge(patch(t, `{"deckSize":24,"trumpCard":{"value":"A","suit":"♦"}}`))
	info = info.Merge(patch(t, `{"discardPileSize":4}`))
	assert.Equal(t, 24, info.DeckSize)
	require.NotNil(t, info.TrumpCard)

	info = info.Merge(patch(t, `{"trumpCard":null}`))
	assert.Nil(t, info.TrumpCard)
}

func TestCompletedPlayersOutsideSeatsAreDropped(t *testing.T) {
	g := seated(t)
	g, _, err := g.StateOnly(gameEvent(t, `{"gameStateInfo":{"completedPlayers":{"0":true,"1":false,"5":true}}}`))
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{0: true, 1: false}, g.Info.CompletedPlayers)
}

func TestGameEndThenDeal(t *testing.T) {
	g := seated(t)
	g.Info = g.Info.withAttack(tenSpades)

	g, _, err := g.End(gameEvent(t, `{"hasLoser":true,"loserIndex":1}`))
	require.NoError(t, err)
	assert.True(t, g.Transient.GameEnd)
	assert.Equal(t, 1, g.Transient.LoserIndex)
	assert.Equal(t, "bob", Derive(g).LoserNickname)

	g, _, err = g.Deal(gameEvent(t, `{"gameStateInfo":{"deckSize":24}}`))
	require.NoError(t, err)
	assert.False(t, g.Transient.GameEnd)
	assert.Equal(t, []cards.Card{}, g.Info.Battleground)
	assert.Empty(t, g.Info.Slots())
}

func TestGameEndWithoutLoserIsADraw(t *testing.T) {
	g, _, err := seated(t).End(gameEvent(t, `{"hasLoser":false,"loserIndex":-1}`))
	require.NoError(t, err)
	assert.True(t, g.Transient.GameEnd)
	assert.False(t, g.Transient.HasLoser)
	assert.Equal(t, "", Derive(g).LoserNickname)
}

func TestPlayerLeftNotice(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    Notice
	}{
		{"resolvable player", `{"playerIndex":1,"isAfk":false}`, Notice{Kind: NoticePlayerLeft, PlayerName: "bob"}},
		{"away player", `{"playerIndex":0,"isAfk":true}`, Notice{Kind: NoticePlayerLeftAfk, PlayerName: "ann"}},
		{"unknown index falls back to empty name", `{"playerIndex":7}`, Notice{Kind: NoticePlayerLeft}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, effects, err := seated(t).PlayerLeft(gameEvent(t, tc.payload))
			require.NoError(t, err)
			assert.Equal(t, []Effect{ShowNotice{Notice: tc.want}}, effects)
		})
	}
}
