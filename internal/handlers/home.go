package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"debateroom/internal/debate"
	"debateroom/internal/viewmodel"
	"debateroom/internal/views"
)

type HomeHandler struct {
	coordinator *debate.Coordinator
}

func NewHomeHandler(coordinator *debate.Coordinator) *HomeHandler {
	return &HomeHandler{coordinator: coordinator}
}

func (h *HomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Get("/healthz", h.health)
}

func (h *HomeHandler) home(w http.ResponseWriter, r *http.Request) {
	data := viewmodel.HomePage{
		Title:  "Debate Room",
		Topics: lo.Map(h.coordinator.List(), toTopicCard),
	}
	render(w, r, views.HomePage(data))
}

func (h *HomeHandler) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func toTopicCard(topic debate.Snapshot, _ int) viewmodel.TopicCard {
	return viewmodel.TopicCard{
		ID:           topic.ID,
		Title:        topic.Title,
		Creator:      topic.Creator,
		ForCount:     len(topic.For),
		AgainstCount: len(topic.Against),
		State:        topic.State.String(),
		CreatedAt:    topic.CreatedAt.Format(time.RFC3339),
	}
}
