package dispatch

import (
	"time"

	"github.com/DoyleJ11/durak-client/internal/engine"
)

type BannerKind string

const (
	BannerError BannerKind = "error"
	BannerInfo  BannerKind = "info"
)

// Banner is a transient message. Gen identifies which clear timer may take it down.
type Banner struct {
	Kind    BannerKind     `json:"kind"`
	Text    string         `json:"text"`
	Notice  *engine.Notice `json:"notice,omitempty"`
	Gen     uint64         `json:"gen"`
	ShownAt time.Time      `json:"shownAt"`
}

type Banners struct {
	Error *Banner `json:"error"`
	Info  *Banner `json:"info"`
}

func (b Banners) copy() Banners {
	out := Banners{}
	if b.Error != nil {
		e := *b.Error
		out.Error = &e
	}
	if b.Info != nil {
		i := *b.Info
		if b.Info.Notice != nil {
			n := *b.Info.Notice
			i.Notice = &n
		}
		out.Info = &i
	}
	return out
}

func (b *Banners) slot(kind BannerKind) **Banner {
	if kind == BannerError {
		return &b.Error
	}
	return &b.Info
}

// clear takes the banner down only if it is still the one gen was issued for.
func (b *Banners) clear(kind BannerKind, gen uint64) bool {
	slot := b.slot(kind)
	if *slot == nil || (*slot).Gen != gen {
		return false
	}
	*slot = nil
	return true
}

// Timer is the part of *time.Timer the loop needs.
type Timer interface {
	Stop() bool
}

// Clock lets tests drive banner expiry by hand.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
