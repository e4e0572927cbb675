package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/libroteca/backend/internal/middleware"
	"github.com/libroteca/backend/internal/models"
	"github.com/libroteca/backend/internal/views"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Register performs a user credentials validation and creates a new user.
	//
	// "req" parameter contains name, email, country, password and category.
	//
	// If user passed invalid credentials, or such user already exists, or some other error occurs, the error will be returned.
	Register(ctx context.Context, req *models.RegisterRequest) error
	// Method Login performs a user credentials validation and issues a server-held session.
	//
	// "req" parameter contains email and password.
	//
	// If user passed invalid credentials, or such user does not exist, or some other error occurs, the error will be returned together with "nil" value.
	Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error)
	// Method Logout deletes the session for a token.
	//
	// "token" parameter is the opaque session token from the cookie.
	//
	// If some error occurs during session deletion, the error will be returned.
	Logout(ctx context.Context, token string) error
	// Method ListCategories returns the selectable role categories for the registration form.
	//
	// If some error occurs during retrieval, the error will be returned together with "nil" value.
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, renderer *views.Renderer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger, Views: renderer},
		authService: authService,
	}
}

// RegisterRoutes registers all auth handler routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/register", h.RegisterForm)
	r.Post("/register", h.ProcessRegister)
	r.Get("/login", h.LoginForm)
	r.Post("/login", h.ProcessLogin)
	r.Post("/logout", h.Logout)
}

// registerPage is the data for the registration view
type registerPage struct {
	Session    models.SessionInfo
	Errors     []string
	Form       models.RegisterRequest
	Categories []models.Category
}

// loginPage is the data for the login view
type loginPage struct {
	Session models.SessionInfo
	Errors  []string
	Form    models.LoginRequest
}

// RegisterForm handles GET /register
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.renderRegister(w, r, registerPage{})
}

// ProcessRegister handles POST /register
func (h *AuthHandler) ProcessRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.RespondError(w, http.StatusBadRequest, "failed to parse request")
		return
	}

	categoryID, _ := strconv.Atoi(r.PostFormValue("category"))
	req := models.RegisterRequest{
		Name:       r.PostFormValue("name"),
		Email:      r.PostFormValue("email"),
		Country:    r.PostFormValue("country"),
		Password:   r.PostFormValue("password"),
		CategoryID: categoryID,
	}

	if err := h.authService.Register(r.Context(), &req); err != nil {
		if isInternal(err) {
			h.ServerError(w, err)
			return
		}
		// Validation failure: re-render the form with the error list
		req.Password = ""
		h.renderRegister(w, r, registerPage{Errors: []string{err.Error()}, Form: req})
		return
	}

	// Registration done, present the login view
	h.Views.Render(w, http.StatusOK, "login", loginPage{
		Session: middleware.GetSession(r.Context()),
	})
}

// LoginForm handles GET /login
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.Views.Render(w, http.StatusOK, "login", loginPage{
		Session: middleware.GetSession(r.Context()),
	})
}

// ProcessLogin handles POST /login
func (h *AuthHandler) ProcessLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.RespondError(w, http.StatusBadRequest, "failed to parse request")
		return
	}

	req := models.LoginRequest{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	session, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		if isInternal(err) {
			h.ServerError(w, err)
			return
		}
		h.Views.Render(w, http.StatusOK, "login", loginPage{
			Session: middleware.GetSession(r.Context()),
			Errors:  []string{err.Error()},
			Form:    models.LoginRequest{Email: req.Email},
		})
		return
	}

	h.setSessionCookie(w, session)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.authService.Logout(r.Context(), cookie.Value); err != nil {
			// Logout never fails the request; the cookie is cleared either way
			h.Logger.Warn("failed to delete session", zap.Error(err))
		}
	}

	h.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// renderRegister renders the registration view with the category options loaded
func (h *AuthHandler) renderRegister(w http.ResponseWriter, r *http.Request, page registerPage) {
	categories, err := h.authService.ListCategories(r.Context())
	if err != nil {
		h.ServerError(w, err)
		return
	}

	page.Session = middleware.GetSession(r.Context())
	page.Categories = categories
	h.Views.Render(w, http.StatusOK, "register", page)
}

// setSessionCookie sets the opaque session token cookie, expiring together
// with the server-side session row
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session *models.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session token cookie
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// isInternal reports whether a service error is unexpected rather than a
// validation failure to surface on the form
func isInternal(err error) bool {
	return strings.Contains(err.Error(), "failed to")
}
