// Package notify turns informational notices into display text.
package notify

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/DoyleJ11/durak-client/internal/engine"
)

const (
	keyPlayerLeft          = "player_left"
	keyPlayerLeftAfk       = "player_left_afk"
	keySomeoneLeft         = "someone_left"
	keySomeoneLeftAfk      = "someone_left_afk"
	keyUnknownNoticeFormat = "unknown_notice"
)

var messages = map[language.Tag]map[string]string{
	language.English: {
		keyPlayerLeft:          "%s left the game",
		keyPlayerLeftAfk:       "%s was inactive for too long and left the game",
		keySomeoneLeft:         "A player left the game",
		keySomeoneLeftAfk:      "A player was inactive for too long and left the game",
		keyUnknownNoticeFormat: "%s",
	},
	language.Russian: {
		keyPlayerLeft:          "%s покинул игру",
		keyPlayerLeftAfk:       "%s слишком долго бездействовал и покинул игру",
		keySomeoneLeft:         "Игрок покинул игру",
		keySomeoneLeftAfk:      "Игрок слишком долго бездействовал и покинул игру",
		keyUnknownNoticeFormat: "%s",
	},
}

var cat = build()

func build() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range messages {
		for key, text := range msgs {
			// SetString only fails on malformed messages, and these are constants.
			_ = b.SetString(tag, key, text)
		}
	}
	return b
}

type Renderer struct {
	p *message.Printer
}

// New picks the closest supported language for lang ("ru", "en-GB", ...). Unknown or
// empty input falls back to English.
func New(lang string) *Renderer {
	tag := language.English
	if lang != "" {
		if parsed, err := language.Parse(lang); err == nil {
			supported := cat.Languages()
			_, idx, conf := language.NewMatcher(supported).Match(parsed)
			if conf != language.No {
				tag = supported[idx]
			}
		}
	}
	return &Renderer{p: message.NewPrinter(tag, message.Catalog(cat))}
}

func (r *Renderer) Render(n engine.Notice) string {
	switch n.Kind {
	case engine.NoticePlayerLeft:
		if n.PlayerName == "" {
			return r.p.Sprintf(keySomeoneLeft)
		}
		return r.p.Sprintf(keyPlayerLeft, n.PlayerName)
	case engine.NoticePlayerLeftAfk:
		if n.PlayerName == "" {
			return r.p.Sprintf(keySomeoneLeftAfk)
		}
		return r.p.Sprintf(keyPlayerLeftAfk, n.PlayerName)
	default:
		return r.p.Sprintf(keyUnknownNoticeFormat, string(n.Kind))
	}
}
