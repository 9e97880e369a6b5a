package protocol

import (
	"encoding/json"
	"slices"
	"sort"
)

// AliasTable maps every known external spelling of a field to one canonical key.
// The canonical key is always one of its own spellings.
type AliasTable struct {
	toCanonical map[string]string
	aliases     map[string][]string
}

func NewAliasTable(entries map[string][]string) AliasTable {
	t := AliasTable{
		toCanonical: make(map[string]string),
		aliases:     make(map[string][]string),
	}
	for canonical, external := range entries {
		t.toCanonical[canonical] = canonical
		for _, name := range external {
			t.toCanonical[name] = canonical
		}
		t.aliases[canonical] = slices.Clone(external)
	}
	return t
}

// Canonical resolves an external key. Unknown keys come back unchanged with ok=false.
func (t AliasTable) Canonical(key string) (string, bool) {
	c, ok := t.toCanonical[key]
	if !ok {
		return key, false
	}
	return c, true
}

// Aliases returns the non-canonical spellings registered for canonical.
func (t AliasTable) Aliases(canonical string) []string {
	return slices.Clone(t.aliases[canonical])
}

// Keys returns every canonical key in sorted order.
func (t AliasTable) Keys() []string {
	keys := make([]string, 0, len(t.aliases))
	for k := range t.aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Normalize rewrites raw onto canonical keys. When a payload carries the same field under
// several spellings the canonical spelling wins, otherwise the lexically last alias does.
// Unknown keys are kept verbatim and also reported in unknown.
func (t AliasTable) Normalize(raw map[string]json.RawMessage) (out map[string]json.RawMessage, unknown []string) {
	out = make(map[string]json.RawMessage, len(raw))
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	canonicalSpelled := make(map[string]bool)
	for _, k := range keys {
		c, ok := t.Canonical(k)
		if !ok {
			unknown = append(unknown, k)
			out[k] = raw[k]
			continue
		}
		if canonicalSpelled[c] {
			continue
		}
		out[c] = raw[k]
		if c == k {
			canonicalSpelled[c] = true
		}
	}
	return out, unknown
}

var GameStateInfoKeys = NewAliasTable(map[string][]string{
	"handsSizes":                    {"hands_sizes"},
	"deckSize":                      {"deck_size", "pile_size", "pileSize"},
	"discardPileSize":               {"discard_pile_size"},
	"trumpCard":                     {"trump_card"},
	"trumpSuit":                     {"trump_suit"},
	"trumpCardIsInDeck":             {"trump_card_is_in_deck", "trump_card_is_in_pile", "trumpCardIsInPile"},
	"trumpCardIsOwnedByPlayerIndex": {"trump_card_is_owned_by_player_index"},
	"attackerIndex":                 {"attacker_index"},
	"defenderIndex":                 {"defender_index"},
	"yourHand":                      {"your_hand"},
	"canYouPickUp":                  {"can_you_pick_up"},
	"canYouComplete":                {"can_you_complete"},
	"canYouAttack":                  {"can_you_attack"},
	"battleground":                  {},
	"defendingCards":                {"defending_cards"},
	"completedPlayers":              {"completed_players"},
	"defenderPickUp":                {"defender_pick_up"},
})

// GameEventKeys covers the keys a game event carries next to the state-info fields.
var GameEventKeys = NewAliasTable(map[string][]string{
	"gameStateInfo":       {"game_state_info"},
	"reasonCard":          {"reason_card"},
	"card":                {},
	"attackingCard":       {"attacking_card"},
	"defendingCard":       {"defending_card"},
	"wasAttackSuccessful": {"was_attack_successful"},
	"hasLoser":            {"has_loser"},
	"loserIndex":          {"loser_index"},
	"playerIndex":         {"player_index"},
	"isAfk":               {"is_afk"},
	"players":             {},
	"yourPlayerIndex":     {"your_player_index"},
})

var SessionKeys = NewAliasTable(map[string][]string{
	"yourId":       {"your_id"},
	"yourNickname": {"your_nickname"},
	"clients":      {},
	"rooms":        {},
})

var ClientKeys = NewAliasTable(map[string][]string{
	"id":       {},
	"nickname": {"name"},
})

var RoomSummaryKeys = NewAliasTable(map[string][]string{
	"id":          {},
	"ownerId":     {"owner_id"},
	"name":        {},
	"gameStatus":  {"game_status"},
	"memberCount": {"member_count", "membersNum", "members_num", "clientsNum", "clients_num"},
})

var RoomKeys = NewAliasTable(map[string][]string{
	"id":         {},
	"ownerId":    {"owner_id"},
	"name":       {},
	"gameStatus": {"game_status"},
	"members":    {"clients"},
})

var MemberKeys = NewAliasTable(map[string][]string{
	"id":         {},
	"nickname":   {"name"},
	"isPlayer":   {"is_player"},
	"wantToPlay": {"want_to_play"},
	"status":     {},
})

var PlayerKeys = NewAliasTable(map[string][]string{
	"name":     {"nickname"},
	"isActive": {"is_active"},
})

var EnvelopeKeys = NewAliasTable(map[string][]string{
	"room":    {},
	"roomId":  {"room_id"},
	"id":      {},
	"member":  {},
	"message": {},
})
