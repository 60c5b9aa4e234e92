package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/a-h/templ"

	"debateroom/internal/debate"
)

func render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		http.Error(w, "failed to render", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type detailResponse struct {
	Detail string `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

// writeError maps a coordinator error onto its HTTP status.
func writeError(w http.ResponseWriter, err error) {
	writeDetail(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, debate.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, debate.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, debate.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, debate.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
