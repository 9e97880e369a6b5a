package journal

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/durak-client/internal/dispatch"
	"github.com/DoyleJ11/durak-client/internal/engine"
	"github.com/DoyleJ11/durak-client/internal/protocol"
)

var ErrEmptySession = errors.New("no entries for session")

const (
	queueSize    = 256
	batchSize    = 32
	flushTimeout = 5 * time.Second
)

// Recorder numbers envelopes in the order it sees them and writes them in the
// background, so neither the read loop nor the dispatch loop waits on the database.
type Recorder struct {
	log     *zap.Logger
	store   Store
	session uuid.UUID

	mu    sync.Mutex
	seq   int
	queue chan Entry
	now   func() time.Time
}

func NewRecorder(store Store, session uuid.UUID, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{
		log:     log.Named("journal").With(zap.Stringer("session", session)),
		store:   store,
		session: session,
		queue:   make(chan Entry, queueSize),
		now:     time.Now,
	}
}

func (r *Recorder) Session() uuid.UUID { return r.session }

func (r *Recorder) Inbound(in protocol.Inbound) {
	r.enqueue(In, string(in.Name), string(in.Data))
}

func (r *Recorder) Outbound(out protocol.Outbound) {
	payload, err := out.Encode()
	if err != nil {
		r.log.Warn("encode outbound for journal", zap.Stringer("command", out), zap.Error(err))
		return
	}
	r.enqueue(Out, out.String(), string(payload))
}

func (r *Recorder) enqueue(dir Direction, name, payload string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := Entry{
		SessionID: r.session,
		Seq:       r.seq,
		Direction: dir,
		Name:      name,
		Payload:   payload,
		CreatedAt: r.now(),
	}
	select {
	case r.queue <- e:
		r.seq++
	default:
		r.log.Warn("journal queue full, entry dropped", zap.String("name", name))
	}
}

// Run writes queued entries until ctx ends, then flushes what is left.
func (r *Recorder) Run(ctx context.Context) error {
	batch := make([]Entry, 0, batchSize)
	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		if err := r.store.Append(ctx, batch...); err != nil {
			r.log.Warn("journal append", zap.Int("entries", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			fctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
			defer cancel()
			for {
				select {
				case e := <-r.queue:
					batch = append(batch, e)
				default:
					flush(fctx)
					return nil
				}
			}

		case e := <-r.queue:
			batch = append(batch, e)
		drain:
			for len(batch) < batchSize {
				select {
				case e := <-r.queue:
					batch = append(batch, e)
				default:
					break drain
				}
			}
			flush(ctx)
		}
	}
}

type teeSender struct {
	r    *Recorder
	next dispatch.Sender
}

func (t teeSender) Send(out protocol.Outbound) {
	t.r.Outbound(out)
	t.next.Send(out)
}

// Sender records every outbound command before passing it on.
func (r *Recorder) Sender(next dispatch.Sender) dispatch.Sender {
	return teeSender{r: r, next: next}
}

// Tap records every inbound envelope before passing it on.
func (r *Recorder) Tap(next func(context.Context, protocol.Inbound) error) func(context.Context, protocol.Inbound) error {
	return func(ctx context.Context, in protocol.Inbound) error {
		r.Inbound(in)
		return next(ctx, in)
	}
}

// Replayed is the outcome of feeding a recorded session through a fresh dispatcher.
type Replayed struct {
	View dispatch.View
	// Sent holds the commands the dispatcher would have sent. They are never sent.
	Sent     []protocol.Outbound
	Recorded int
	Applied  int
	Dropped  int
}

func Replay(entries []Entry, opts dispatch.Options, log *zap.Logger) Replayed {
	d := dispatch.New(log, opts)
	var res Replayed
	for _, e := range entries {
		if e.Direction == Out {
			res.Recorded++
			continue
		}
		effects, applied := d.Dispatch(protocol.Inbound{
			Name: protocol.EventName(e.Name),
			Data: json.RawMessage(e.Payload),
		})
		if !applied {
			res.Dropped++
			continue
		}
		res.Applied++
		for _, eff := range effects {
			if s, ok := eff.(engine.Send); ok {
				res.Sent = append(res.Sent, s.Out)
			}
		}
	}
	res.View = d.View(res.Applied)
	return res
}

// ReplaySession loads a session from store and replays it.
func ReplaySession(ctx context.Context, store Store, session uuid.UUID, opts dispatch.Options, log *zap.Logger) (Replayed, error) {
	entries, err := store.Session(ctx, session)
	if err != nil {
		return Replayed{}, err
	}
	if len(entries) == 0 {
		return Replayed{}, ErrEmptySession
	}
	return Replay(entries, opts, log), nil
}
