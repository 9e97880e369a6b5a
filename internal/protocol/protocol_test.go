package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/durak-client/internal/cards"
)

func rawObject(t *testing.T, s string) map[string]json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestAliasTablesAreTotal(t *testing.T) {
	tables := map[string]AliasTable{
		"gameStateInfo": GameStateInfoKeys,
		"gameEvent":     GameEventKeys,
		"session":       SessionKeys,
		"room":          RoomKeys,
		"roomSummary":   RoomSummaryKeys,
		"member":        MemberKeys,
		"player":        PlayerKeys,
		"envelope":      EnvelopeKeys,
	}
	for name, table := range tables {
		t.Run(name, func(t *testing.T) {
			for _, canonical := range table.Keys() {
				got, ok := table.Canonical(canonical)
				require.True(t, ok)
				assert.Equal(t, canonical, got)
				for _, alias := range table.Aliases(canonical) {
					got, ok := table.Canonical(alias)
					require.True(t, ok, alias)
					assert.Equal(t, canonical, got, alias)
				}
			}
		})
	}
}

func TestNormalizeLegacyDealKeys(t *testing.T) {
	raw := rawObject(t, `{"your_hand":[],"hands_sizes":[6,6],"pile_size":24,"trump_card_is_in_pile":true,"trump_card_is_owned_by_player_index":-1,"mystery":1}`)
	out, unknown := GameStateInfoKeys.Normalize(raw)

	assert.Equal(t, []string{"mystery"}, unknown)
	assert.JSONEq(t, `24`, string(out["deckSize"]))
	assert.JSONEq(t, `true`, string(out["trumpCardIsInDeck"]))
	assert.JSONEq(t, `[6,6]`, string(out["handsSizes"]))
	assert.JSONEq(t, `-1`, string(out["trumpCardIsOwnedByPlayerIndex"]))
	assert.Contains(t, out, "yourHand")
	assert.Contains(t, out, "mystery")
	assert.NotContains(t, out, "pile_size")
}

func TestNormalizeCanonicalWins(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "canonical sorts first", in: `{"deckSize":10,"deck_size":99}`, want: `10`},
		{name: "canonical sorts last", in: `{"pile_size":99,"deckSize":10,"pileSize":98}`, want: `10`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, _ := GameStateInfoKeys.Normalize(rawObject(t, tc.in))
			assert.JSONEq(t, tc.want, string(out["deckSize"]))
		})
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	in := `{"pile_size":1,"pileSize":2,"deck_size":3}`
	first, _ := GameStateInfoKeys.Normalize(rawObject(t, in))
	for i := 0; i < 20; i++ {
		again, _ := GameStateInfoKeys.Normalize(rawObject(t, in))
		assert.Equal(t, first, again)
	}
}

func TestDecodeInbound(t *testing.T) {
	in, err := DecodeInbound([]byte(`{"name":"GameEndEvent","data":{"hasLoser":false}}`))
	require.NoError(t, err)
	assert.Equal(t, EvtGameEnd, in.Name)

	_, err = DecodeInbound([]byte(`{"data":{}}`))
	assert.ErrorIs(t, err, ErrMalformedEnvelope)

	_, err = DecodeInbound([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestDecodeSessionEstablished(t *testing.T) {
	s, err := DecodeSessionEstablished([]byte(`{
		"yourId": 3,
		"yourNickname": "ann",
		"clients": [{"id": 3, "name": "ann"}, {"id": 4, "nickname": "bob"}],
		"rooms": [{"id": 7, "owner_id": 4, "name": "r7", "members_num": 2}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, ClientID(3), s.YourID)
	assert.Equal(t, []ClientSession{{ID: 3, Nickname: "ann"}, {ID: 4, Nickname: "bob"}}, s.Clients)
	require.Len(t, s.Rooms, 1)
	assert.Equal(t, RoomSummary{ID: 7, OwnerID: 4, Name: "r7", MemberCount: 2}, s.Rooms[0])
}

func TestDecodeRoomWithAliasedMembers(t *testing.T) {
	r, err := DecodeRoom([]byte(`{"room":{"id":1,"ownerId":3,"clients":[{"id":3,"nickname":"ann","is_player":true,"wantToPlay":true,"status":"ready"}]}}`))
	require.NoError(t, err)
	require.Len(t, r.Members, 1)
	assert.Equal(t, RoomMember{ID: 3, Nickname: "ann", IsPlayer: true, WantToPlay: true, Status: "ready"}, r.Members[0])

	_, err = DecodeRoom([]byte(`{}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestDecodeGameEventSplitsNestedAndTopLevel(t *testing.T) {
	ev, err := DecodeGameEvent([]byte(`{
		"gameStateInfo": {"deckSize": 20, "trumpCard": null},
		"card": {"value": "K", "suit": "♠"},
		"your_hand": [{"value": "6", "suit": "♣"}]
	}`))
	require.NoError(t, err)

	require.True(t, ev.HasInfo)
	assert.True(t, ev.Info.DeckSize.Set)
	assert.Equal(t, 20, ev.Info.DeckSize.Value)
	assert.True(t, ev.Info.TrumpCard.Set)
	assert.Nil(t, ev.Info.TrumpCard.Value)
	assert.False(t, ev.Info.YourHand.Set)

	require.True(t, ev.Card.Set)
	assert.Equal(t, cards.New(cards.RankKing, cards.SuitSpades), *ev.Card.Value)

	assert.True(t, ev.TopLevel.YourHand.Set)
	assert.Equal(t, []cards.Card{cards.New(cards.RankSix, cards.SuitClubs)}, ev.TopLevel.YourHand.Value)
}

func TestDecodeGameEventRejectsBadCard(t *testing.T) {
	_, err := DecodeGameEvent([]byte(`{"gameStateInfo":{"yourHand":[{"value":"3","suit":"♣"}]}}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, cards.ErrUnknownRank)
}

func TestGameStateInfoPatchEmpty(t *testing.T) {
	p, err := DecodeGameStateInfo(nil)
	require.NoError(t, err)
	assert.True(t, p.Empty())

	p, err = DecodeGameStateInfo([]byte(`{"defenderPickUp":false}`))
	require.NoError(t, err)
	assert.False(t, p.Empty())
}

func TestOutboundEncode(t *testing.T) {
	out := Outbound{Type: CategoryGame, SubType: ActionDefend, Data: DefendData{
		AttackingCard: cards.New(cards.RankSix, cards.SuitHearts),
		DefendingCard: cards.New(cards.RankTen, cards.SuitHearts),
	}}
	b, err := out.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"game","subType":"defend","data":{"attackingCard":{"value":"6","suit":"♥"},"defendingCard":{"value":"10","suit":"♥"}}}`, string(b))
	assert.Equal(t, "game.defend", out.String())
}
