package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/libroteca/backend/internal/middleware"
	"github.com/libroteca/backend/internal/models"
	"github.com/libroteca/backend/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockAuthService is a mock implementation of AuthService
type mockAuthService struct {
	registerError    error
	session          *models.Session
	loginError       error
	logoutError      error
	loggedOutToken   string
	categories       []models.Category
	categoriesError  error
	emailTakenResult bool
	emailTakenError  error
}

func (m *mockAuthService) Register(ctx context.Context, req *models.RegisterRequest) error {
	return m.registerError
}

func (m *mockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error) {
	if m.loginError != nil {
		return nil, m.loginError
	}
	return m.session, nil
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	if m.logoutError != nil {
		return m.logoutError
	}
	m.loggedOutToken = token
	return nil
}

func (m *mockAuthService) ListCategories(ctx context.Context) ([]models.Category, error) {
	if m.categoriesError != nil {
		return nil, m.categoriesError
	}
	return m.categories, nil
}

func (m *mockAuthService) EmailTaken(ctx context.Context, email string) (bool, error) {
	if m.emailTakenError != nil {
		return false, m.emailTakenError
	}
	return m.emailTakenResult, nil
}

// setupAuthTestHandler builds an auth handler with real templates and a mock service
func setupAuthTestHandler(t *testing.T, svc *mockAuthService) *chi.Mux {
	t.Helper()
	logger := zap.NewNop()
	renderer, err := views.New(logger)
	require.NoError(t, err)

	handler := NewAuthHandler(svc, renderer, logger)
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func postForm(router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestAuthHandler_ProcessLogin(t *testing.T) {
	tests := []struct {
		name           string
		svc            *mockAuthService
		form           url.Values
		expectedStatus int
		expectCookie   bool
		bodyContains   string
	}{
		{
			name: "success sets cookie and redirects home",
			svc: &mockAuthService{
				session: &models.Session{Token: "issued-token", UserID: 1, ExpiresAt: time.Now().Add(30 * time.Minute)},
			},
			form:           url.Values{"email": {"ana@example.com"}, "password": {"Password1!"}},
			expectedStatus: http.StatusSeeOther,
			expectCookie:   true,
		},
		{
			name:           "invalid credentials re-render without cookie",
			svc:            &mockAuthService{loginError: errors.New("invalid credentials")},
			form:           url.Values{"email": {"ana@example.com"}, "password": {"wrong"}},
			expectedStatus: http.StatusOK,
			expectCookie:   false,
			bodyContains:   "invalid credentials",
		},
		{
			name:           "user lookup failure returns 500 not the login form",
			svc:            &mockAuthService{loginError: errors.New("failed to look up user: connection refused")},
			form:           url.Values{"email": {"ana@example.com"}, "password": {"Password1!"}},
			expectedStatus: http.StatusInternalServerError,
			expectCookie:   false,
		},
		{
			name:           "session creation failure returns 500",
			svc:            &mockAuthService{loginError: errors.New("failed to create session: database error")},
			form:           url.Values{"email": {"ana@example.com"}, "password": {"Password1!"}},
			expectedStatus: http.StatusInternalServerError,
			expectCookie:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupAuthTestHandler(t, tt.svc)

			rec := postForm(router, "/login", tt.form)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			cookie := sessionCookie(rec)
			if tt.expectCookie {
				require.NotNil(t, cookie)
				assert.Equal(t, "issued-token", cookie.Value)
				assert.True(t, cookie.HttpOnly)
				// Cookie lifetime tracks the session row's expiry
				assert.InDelta(t, (30 * time.Minute).Seconds(), float64(cookie.MaxAge), 5)
				assert.Equal(t, "/", rec.Header().Get("Location"))
			} else {
				assert.Nil(t, cookie)
			}

			if tt.bodyContains != "" {
				assert.Contains(t, rec.Body.String(), tt.bodyContains)
			}
		})
	}
}

func TestAuthHandler_ProcessRegister(t *testing.T) {
	categories := []models.Category{
		{ID: 1, Name: "Administrator", Role: models.RoleAdmin},
		{ID: 2, Name: "Reader", Role: models.RoleReader},
	}

	validForm := url.Values{
		"name":     {"Ana Torres"},
		"email":    {"ana@example.com"},
		"country":  {"Argentina"},
		"password": {"Password1!"},
		"category": {"2"},
	}

	tests := []struct {
		name           string
		svc            *mockAuthService
		form           url.Values
		expectedStatus int
		bodyContains   string
	}{
		{
			name:           "success shows login page",
			svc:            &mockAuthService{categories: categories},
			form:           validForm,
			expectedStatus: http.StatusOK,
			bodyContains:   "Log in",
		},
		{
			name:           "validation failure re-renders form with error",
			svc:            &mockAuthService{registerError: errors.New("email already registered"), categories: categories},
			form:           validForm,
			expectedStatus: http.StatusOK,
			bodyContains:   "email already registered",
		},
		{
			name:           "internal failure returns 500",
			svc:            &mockAuthService{registerError: errors.New("failed to hash password: boom"), categories: categories},
			form:           validForm,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupAuthTestHandler(t, tt.svc)

			rec := postForm(router, "/register", tt.form)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.bodyContains != "" {
				assert.Contains(t, rec.Body.String(), tt.bodyContains)
			}
		})
	}
}

func TestAuthHandler_RegisterForm_ListsCategories(t *testing.T) {
	// The service only hands out non-administrator categories
	svc := &mockAuthService{categories: []models.Category{
		{ID: 2, Name: "Reader", Role: models.RoleReader},
	}}
	router := setupAuthTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/register", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Reader")
	assert.NotContains(t, rec.Body.String(), "Administrator")
}

func TestAuthHandler_Logout(t *testing.T) {
	svc := &mockAuthService{}
	router := setupAuthTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "issued-token"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, "issued-token", svc.loggedOutToken)

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestAuthHandler_Logout_DeleteFailureStillClearsCookie(t *testing.T) {
	svc := &mockAuthService{logoutError: errors.New("database error")}
	router := setupAuthTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "issued-token"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestAPIHandler_CheckEmail(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		svc            *mockAuthService
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "taken",
			query:          "?email=ana@example.com",
			svc:            &mockAuthService{emailTakenResult: true},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"data":true}`,
		},
		{
			name:           "available",
			query:          "?email=new@example.com",
			svc:            &mockAuthService{emailTakenResult: false},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"data":false}`,
		},
		{
			name:           "missing email",
			query:          "",
			svc:            &mockAuthService{},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "email is required",
		},
		{
			name:           "service failure",
			query:          "?email=ana@example.com",
			svc:            &mockAuthService{emailTakenError: errors.New("database error")},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "failed to check email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAPIHandler(tt.svc, zap.NewNop())
			router := chi.NewRouter()
			handler.RegisterRoutes(router)

			req := httptest.NewRequest(http.MethodGet, "/apis/check-email"+tt.query, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
		})
	}
}
