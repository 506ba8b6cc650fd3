package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/debunkbot/debunkbot/internal/handler/audio"
	"github.com/debunkbot/debunkbot/internal/handler/chat"
	"github.com/debunkbot/debunkbot/internal/middleware"
	"github.com/debunkbot/debunkbot/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatHandler *chat.Handler, audioHandler *audio.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS)

	r.Route("/api", func(api chi.Router) {
		api.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		chatHandler.RegisterRoutes(api)
		audioHandler.RegisterRoutes(api)
	})

	return r
}
