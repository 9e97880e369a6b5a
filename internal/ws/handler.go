package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/durak-client/internal/dispatch"
	"github.com/DoyleJ11/durak-client/internal/types"
)

const (
	writeTimeout  = 3 * time.Second
	intentTimeout = 2 * time.Second
)

// Handler streams versioned views to a presentation client and accepts intents back.
func Handler(loop *dispatch.Loop, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("ws")

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
		})
		if err != nil {
			log.Debug("accept", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		subID := uuid.NewString()
		out := make(chan dispatch.View, 8)
		select {
		case loop.Inbox() <- dispatch.Subscribe{ID: subID, Outbox: out}:
		case <-loop.Done():
			return
		}
		defer func() {
			select {
			case loop.Inbox() <- dispatch.Unsubscribe{ID: subID}:
			case <-loop.Done():
			}
		}()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		errs := make(chan string, 4)

		// Writer goroutine
		go func() {
			defer cancel()
			for {
				var msg types.ServerMessage
				select {
				case <-ctx.Done():
					return
				case v, ok := <-out:
					if !ok {
						// Dropped as slow, or the loop stopped.
						conn.Close(websocket.StatusGoingAway, "view stream closed")
						return
					}
					msg = types.ServerMessage{Type: "ViewSnapshot", Version: v.Version, View: &v}
				case e := <-errs:
					msg = types.ServerMessage{Type: "Error", Error: e}
				}
				if err := write(ctx, conn, msg); err != nil {
					log.Debug("write", zap.String("subscriber", subID), zap.Error(err))
					return
				}
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read", zap.String("subscriber", subID), zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil || cm.Type != "Intent" {
				report(errs, "bad message")
				continue
			}

			ictx, icancel := context.WithTimeout(ctx, intentTimeout)
			err = loop.Do(ictx, cm.Intent)
			icancel()
			if errors.Is(err, dispatch.ErrLoopClosed) {
				return
			}
			if err != nil {
				report(errs, err.Error())
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(wctx, websocket.MessageText, payload)
}

// report never blocks the reader; errors beyond the buffer are dropped.
func report(errs chan<- string, msg string) {
	select {
	case errs <- msg:
	default:
	}
}
