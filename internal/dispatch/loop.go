package dispatch

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/durak-client/internal/engine"
	"github.com/DoyleJ11/durak-client/internal/protocol"
)

var ErrLoopClosed = errors.New("dispatch loop closed")

const (
	DefaultErrorTTL = 3 * time.Second
	DefaultInfoTTL  = 10 * time.Second
	persistTimeout  = 2 * time.Second
)

// Sender is the fire-and-forget outbound half of the transport.
type Sender interface {
	Send(out protocol.Outbound)
}

// RoomStore remembers the joined room so a later session can rejoin it.
type RoomStore interface {
	Save(ctx context.Context, id protocol.RoomID) error
}

type Msg interface{ isLoopMsg() }

// FromServer carries one inbound envelope, in the order the server sent it.
type FromServer struct {
	Inbound protocol.Inbound
}

// FromUser carries a user intent. Reply, if set, receives the gating result.
type FromUser struct {
	Intent Intent
	Reply  chan error
}

type Subscribe struct {
	ID     string
	Outbox chan View
}

type Unsubscribe struct{ ID string }

type GetView struct {
	Reply chan View
}

type Shutdown struct{}

type bannerExpired struct {
	kind BannerKind
	gen  uint64
}

func (FromServer) isLoopMsg()    {}
func (FromUser) isLoopMsg()      {}
func (Subscribe) isLoopMsg()     {}
func (Unsubscribe) isLoopMsg()   {}
func (GetView) isLoopMsg()       {}
func (Shutdown) isLoopMsg()      {}
func (bannerExpired) isLoopMsg() {}

type LoopConfig struct {
	Log        *zap.Logger
	Dispatcher *Dispatcher
	Sender     Sender
	Rooms      RoomStore
	// Render turns a notice into display text. Optional.
	Render   func(engine.Notice) string
	Clock    Clock
	ErrorTTL time.Duration
	InfoTTL  time.Duration
}

// Loop owns the dispatcher and serializes everything that touches it: server events,
// user intents, banner timers and view reads.
type Loop struct {
	cfg     LoopConfig
	log     *zap.Logger
	d       *Dispatcher
	inbox   chan Msg
	version int
	banners Banners
	gen     uint64
	timers  map[uint64]Timer
	subs    map[string]chan View
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewLoop(parent context.Context, cfg LoopConfig) *Loop {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Dispatcher == nil {
		cfg.Dispatcher = New(cfg.Log, Options{})
	}
	if cfg.Clock == nil {
		cfg.Clock = realClock{}
	}
	if cfg.ErrorTTL <= 0 {
		cfg.ErrorTTL = DefaultErrorTTL
	}
	if cfg.InfoTTL <= 0 {
		cfg.InfoTTL = DefaultInfoTTL
	}

	ctx, cancel := context.WithCancel(parent)
	l := &Loop{
		cfg:    cfg,
		log:    cfg.Log.Named("dispatch"),
		d:      cfg.Dispatcher,
		inbox:  make(chan Msg, 64),
		timers: make(map[uint64]Timer),
		subs:   make(map[string]chan View),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go l.loop()
	return l
}

func (l *Loop) loop() {
	defer close(l.done)
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case FromServer:
				effects, applied := l.d.Dispatch(msg.Inbound)
				l.run(effects)
				if applied {
					l.bump()
				}

			case FromUser:
				effects, err := l.d.Apply(msg.Intent)
				if err != nil {
					l.log.Debug("intent refused", zap.String("verb", string(msg.Intent.Verb)), zap.Error(err))
				} else {
					l.run(effects)
					l.bump()
				}
				if msg.Reply != nil {
					msg.Reply <- err
				}

			case Subscribe:
				l.subs[msg.ID] = msg.Outbox
				select {
				case msg.Outbox <- l.view():
				default:
					close(msg.Outbox)
					delete(l.subs, msg.ID)
				}

			case Unsubscribe:
				if ch, ok := l.subs[msg.ID]; ok {
					close(ch)
					delete(l.subs, msg.ID)
				}

			case GetView:
				msg.Reply <- l.view()

			case bannerExpired:
				delete(l.timers, msg.gen)
				if l.banners.clear(msg.kind, msg.gen) {
					l.bump()
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Loop) run(effects []engine.Effect) {
	for _, e := range effects {
		switch e := e.(type) {
		case engine.Send:
			if l.cfg.Sender == nil {
				l.log.Warn("no transport, dropping command", zap.Stringer("command", e.Out))
				continue
			}
			l.cfg.Sender.Send(e.Out)

		case engine.PersistRoom:
			if l.cfg.Rooms == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(l.ctx, persistTimeout)
			if err := l.cfg.Rooms.Save(ctx, e.RoomID); err != nil {
				l.log.Warn("remember room", zap.Uint64("room_id", uint64(e.RoomID)), zap.Error(err))
			}
			cancel()

		case engine.ShowError:
			l.show(Banner{Kind: BannerError, Text: e.Message}, l.cfg.ErrorTTL)

		case engine.ShowNotice:
			n := e.Notice
			text := ""
			if l.cfg.Render != nil {
				text = l.cfg.Render(n)
			}
			l.show(Banner{Kind: BannerInfo, Text: text, Notice: &n}, l.cfg.InfoTTL)
		}
	}
}

// show replaces the banner of its kind and arms a clear timer for exactly this instance.
func (l *Loop) show(b Banner, ttl time.Duration) {
	l.gen++
	b.Gen = l.gen
	b.ShownAt = l.cfg.Clock.Now()
	*l.banners.slot(b.Kind) = &b

	msg := bannerExpired{kind: b.Kind, gen: b.Gen}
	l.timers[b.Gen] = l.cfg.Clock.AfterFunc(ttl, func() {
		select {
		case l.inbox <- msg:
		case <-l.ctx.Done():
		}
	})
}

func (l *Loop) view() View {
	return buildView(l.version, l.d.State(), l.banners)
}

func (l *Loop) bump() {
	l.version++
	l.broadcast(l.view())
}

func (l *Loop) broadcast(v View) {
	for id, ch := range l.subs {
		select {
		case ch <- v:
		default:
			// Slow subscriber: drop it rather than stall the loop.
			l.log.Debug("dropping slow subscriber", zap.String("subscriber", id))
			close(ch)
			delete(l.subs, id)
		}
	}
}

func (l *Loop) shutdown() {
	for gen, t := range l.timers {
		t.Stop()
		delete(l.timers, gen)
	}
	for id, ch := range l.subs {
		close(ch)
		delete(l.subs, id)
	}
	l.cancel()
}

// Inbox exposes the loop's mailbox for callers that manage their own messages.
func (l *Loop) Inbox() chan<- Msg { return l.inbox }

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} { return l.done }

func (l *Loop) post(ctx context.Context, m Msg) error {
	select {
	case l.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopClosed
	}
}

// Deliver queues one inbound envelope. Calls must be made in arrival order.
func (l *Loop) Deliver(ctx context.Context, in protocol.Inbound) error {
	return l.post(ctx, FromServer{Inbound: in})
}

// Do runs an intent and waits for its gating result.
func (l *Loop) Do(ctx context.Context, in Intent) error {
	reply := make(chan error, 1)
	if err := l.post(ctx, FromUser{Intent: in, Reply: reply}); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopClosed
	}
}

func (l *Loop) View(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if err := l.post(ctx, GetView{Reply: reply}); err != nil {
		return View{}, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return View{}, ctx.Err()
	case <-l.done:
		return View{}, ErrLoopClosed
	}
}
