package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EmailChecker is the interface that wraps the email-availability check.
type EmailChecker interface {
	// Method EmailTaken reports whether the email is already registered.
	//
	// "email" parameter is the address to check.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	EmailTaken(ctx context.Context, email string) (bool, error)
}

// APIHandler serves the small JSON endpoints consumed by client-side scripts
type APIHandler struct {
	BaseHandler
	authService EmailChecker
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(authService EmailChecker, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		BaseHandler: BaseHandler{Logger: logger},
		authService: authService,
	}
}

// RegisterRoutes registers all API handler routes
func (h *APIHandler) RegisterRoutes(r chi.Router) {
	r.Get("/apis/check-email", h.CheckEmail)
}

// CheckEmail handles GET /apis/check-email?email=x and responds with
// {"data": true} when the email is already registered
func (h *APIHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		h.RespondError(w, http.StatusBadRequest, "email is required")
		return
	}

	taken, err := h.authService.EmailTaken(r.Context(), email)
	if err != nil {
		h.Logger.Error("failed to check email", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to check email")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]bool{"data": taken})
}
