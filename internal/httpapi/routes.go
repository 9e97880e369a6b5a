package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/durak-client/internal/dispatch"
	"github.com/DoyleJ11/durak-client/internal/ws"
)

func SetupRoutes(loop *dispatch.Loop, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("httpapi")

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Healthz)
	r.Get("/state", GetState(loop))
	r.Post("/intents/{verb}", PostIntent(loop, log))
	r.Get("/ws", ws.Handler(loop, log))
	return r
}
