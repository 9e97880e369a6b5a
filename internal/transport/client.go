// Package transport is the websocket boundary to the game server: it turns text frames
// into inbound envelopes in arrival order and writes outbound commands fire-and-forget.
package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/durak-client/internal/protocol"
)

var ErrClosed = errors.New("transport closed")

type Options struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
	// QueueSize bounds outbound frames waiting for the writer.
	QueueSize int
}

func (o Options) withDefaults() Options {
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 3 * time.Second
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 20 * time.Second
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 32
	}
	return o
}

// DeliverFunc hands one inbound envelope to the state engine.
type DeliverFunc func(ctx context.Context, in protocol.Inbound) error

type Client struct {
	conn *websocket.Conn
	log  *zap.Logger
	opts Options
	out  chan []byte
	done chan struct{}
}

func Dial(ctx context.Context, url string, log *zap.Logger, opts Options) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	opts = opts.withDefaults()
	return &Client{
		conn: conn,
		log:  log.Named("transport"),
		opts: opts,
		out:  make(chan []byte, opts.QueueSize),
		done: make(chan struct{}),
	}, nil
}

// Send queues a command without waiting. A full queue or a closed connection drops it.
func (c *Client) Send(out protocol.Outbound) {
	payload, err := out.Encode()
	if err != nil {
		c.log.Warn("encode command", zap.Stringer("command", out), zap.Error(err))
		return
	}
	select {
	case <-c.done:
		c.log.Warn("connection closed, command dropped", zap.Stringer("command", out))
	case c.out <- payload:
		c.log.Debug("command queued", zap.Stringer("command", out))
	default:
		c.log.Warn("send queue full, command dropped", zap.Stringer("command", out))
	}
}

// Run reads frames into deliver and drains the send queue until ctx ends or the peer
// closes. A normal close returns nil.
func (c *Client) Run(ctx context.Context, deliver DeliverFunc) error {
	defer close(c.done)

	g, gctx := errgroup.WithContext(ctx)

	// Reader
	g.Go(func() error {
		for {
			_, data, err := c.conn.Read(gctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return ErrClosed
				}
				if gctx.Err() != nil {
					return gctx.Err()
				}
				return fmt.Errorf("read: %w", err)
			}

			in, err := protocol.DecodeInbound(data)
			if err != nil {
				c.log.Warn("malformed frame dropped", zap.Error(err), zap.Int("bytes", len(data)))
				continue
			}
			if err := deliver(gctx, in); err != nil {
				return err
			}
		}
	})

	// Writer
	g.Go(func() error {
		ticker := time.NewTicker(c.opts.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()

			case payload := <-c.out:
				wctx, cancel := context.WithTimeout(gctx, c.opts.WriteTimeout)
				err := c.conn.Write(wctx, websocket.MessageText, payload)
				cancel()
				if err != nil {
					return fmt.Errorf("write: %w", err)
				}

			case <-ticker.C:
				pctx, cancel := context.WithTimeout(gctx, c.opts.WriteTimeout)
				err := c.conn.Ping(pctx)
				cancel()
				if err != nil {
					return fmt.Errorf("ping: %w", err)
				}
			}
		}
	})

	err := g.Wait()
	_ = c.conn.Close(websocket.StatusNormalClosure, "bye")
	if errors.Is(err, ErrClosed) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
