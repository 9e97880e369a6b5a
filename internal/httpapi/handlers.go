package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/durak-client/internal/dispatch"
)

const (
	requestTimeout = 2 * time.Second
	maxIntentBody  = 4 << 10
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// statusFor maps loop and intent errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case dispatch.Refused(err):
		return http.StatusConflict
	case errors.Is(err, dispatch.ErrUnknownVerb):
		return http.StatusNotFound
	case errors.Is(err, dispatch.ErrMissingArgument):
		return http.StatusBadRequest
	case errors.Is(err, dispatch.ErrLoopClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func GetState(loop *dispatch.Loop) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		v, err := loop.View(ctx)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// PostIntent runs the intent named by {verb}. The optional JSON body carries its
// arguments. A refused intent answers 409 and changes nothing.
func PostIntent(loop *dispatch.Loop, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in dispatch.Intent
		body, err := io.ReadAll(io.LimitReader(r.Body, maxIntentBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &in); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
		}
		in.Verb = dispatch.Verb(chi.URLParam(r, "verb"))

		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		if err := loop.Do(ctx, in); err != nil {
			status := statusFor(err)
			if status >= http.StatusInternalServerError {
				log.Warn("intent failed", zap.String("verb", string(in.Verb)), zap.Error(err))
			}
			writeError(w, status, err)
			return
		}

		v, err := loop.View(ctx)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
