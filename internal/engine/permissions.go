package engine

// Permissions are rebuilt from the snapshot every time they are read, never stored.
type Permissions struct {
	AreYouAttacker     bool   `json:"areYouAttacker"`
	AreYouDefender     bool   `json:"areYouDefender"`
	CanYouAttack       bool   `json:"canYouAttack"`
	CanYouPickUp       bool   `json:"canYouPickUp"`
	CanYouComplete     bool   `json:"canYouComplete"`
	AreBeaten          bool   `json:"areBeaten"`
	IsWaitingForOthers bool   `json:"isWaitingForOthers"`
	AttackerNickname   string `json:"attackerNickname"`
	LoserNickname      string `json:"loserNickname"`
}

func Derive(g Game) Permissions {
	info := g.Info
	seated := g.YourIndex >= 0

	p := Permissions{
		AreYouAttacker: seated && info.AttackerIndex == g.YourIndex,
		AreYouDefender: seated && info.DefenderIndex == g.YourIndex,
		CanYouAttack:   info.CanYouAttack,
		CanYouPickUp:   info.CanYouPickUp,
		CanYouComplete: info.CanYouComplete,
	}
	p.AreBeaten = info.CanYouPickUp && info.CanYouComplete
	p.IsWaitingForOthers = len(info.Battleground) > 0 && !info.CanYouPickUp && !info.CanYouComplete

	p.AttackerNickname, _ = g.PlayerName(info.AttackerIndex)
	if g.Transient.GameEnd && g.Transient.HasLoser {
		p.LoserNickname, _ = g.PlayerName(g.Transient.LoserIndex)
	}
	return p
}
