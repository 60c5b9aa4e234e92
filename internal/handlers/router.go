package handlers

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"debateroom/internal/debate"
)

// NewRouter wires every route. The request timeout only covers /api so
// websocket streams are not cut off.
func NewRouter(coordinator *debate.Coordinator, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	NewHomeHandler(coordinator).RegisterRoutes(r)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		NewTopicHandler(coordinator, log).RegisterRoutes(r)
	})
	NewSocketHandler(coordinator, log).RegisterRoutes(r)
	return r
}
