package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/libroteca/backend/internal/views"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
	Views  *views.Renderer
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// NotFound sends a plain-text 404 page response
func (h *BaseHandler) NotFound(w http.ResponseWriter, message string) {
	http.Error(w, message, http.StatusNotFound)
}

// ServerError logs an unexpected error and sends a plain-text 500 response
func (h *BaseHandler) ServerError(w http.ResponseWriter, err error) {
	h.Logger.Error("internal server error", zap.Error(err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
