package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"debateroom/internal/debate"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type createTopicRequest struct {
	Title    string `json:"title" validate:"required"`
	Username string `json:"username" validate:"required"`
}

type joinRequest struct {
	Username string `json:"username" validate:"required"`
	Side     string `json:"side" validate:"required"`
}

type userRequest struct {
	Username string `json:"username" validate:"required"`
}

type TopicHandler struct {
	coordinator *debate.Coordinator
	log         *slog.Logger
}

func NewTopicHandler(coordinator *debate.Coordinator, log *slog.Logger) *TopicHandler {
	return &TopicHandler{coordinator: coordinator, log: log}
}

func (h *TopicHandler) RegisterRoutes(r chi.Router) {
	r.Route("/topics", func(r chi.Router) {
		r.Get("/", h.listTopics)
		r.Post("/", h.createTopic)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getTopic)
			r.Get("/messages", h.messages)
			r.Post("/join", h.join)
			r.Post("/leave", h.leave)
			r.Post("/delete", h.deleteTopic)
		})
	})
}

func (h *TopicHandler) listTopics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.coordinator.List())
}

func (h *TopicHandler) createTopic(w http.ResponseWriter, r *http.Request) {
	var req createTopicRequest
	if !decode(w, r, &req) {
		return
	}
	topic, err := h.coordinator.Create(req.Title, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, topic)
}

func (h *TopicHandler) getTopic(w http.ResponseWriter, r *http.Request) {
	topic, err := h.coordinator.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

func (h *TopicHandler) messages(w http.ResponseWriter, r *http.Request) {
	transcript, err := h.coordinator.Transcript(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	frames := make([]debate.Frame, 0, len(transcript))
	for _, msg := range transcript {
		frames = append(frames, msg.Frame())
	}
	writeJSON(w, http.StatusOK, frames)
}

func (h *TopicHandler) join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if !decode(w, r, &req) {
		return
	}
	side, err := debate.ParseSide(req.Side)
	if err != nil {
		writeError(w, err)
		return
	}
	topic, err := h.coordinator.Join(chi.URLParam(r, "id"), req.Username, side)
	if err != nil {
		writeError(w, err)
		return
	}
	username := strings.TrimSpace(req.Username)
	message := fmt.Sprintf("%s joined %s. Waiting for participants on the other side.", username, side)
	if topic.BothSides() {
		message = fmt.Sprintf("%s joined %s. Debate can begin.", username, side)
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: message})
}

func (h *TopicHandler) leave(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decode(w, r, &req) {
		return
	}
	topic, side, err := h.coordinator.Leave(chi.URLParam(r, "id"), req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	message := "You have left the debate."
	if side != "" && topic.State == debate.StatePaused {
		message = "Debate is paused. Waiting for participants on the opposing side."
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: message})
}

func (h *TopicHandler) deleteTopic(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.coordinator.Delete(chi.URLParam(r, "id"), req.Username); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Debate topic deleted successfully."})
}

// decode reads a JSON body into dst and validates it, answering 400 itself
// when either step fails.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body.")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeDetail(w, http.StatusBadRequest, validationDetail(err))
		return false
	}
	return true
}

func validationDetail(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Invalid request body."
	}
	field := fieldErrs[0].Field()
	if field == "" {
		return "Invalid request body."
	}
	return strings.ToUpper(field[:1]) + field[1:] + " is required."
}
