package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/libroteca/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

// mockSessionStore is a mock implementation of SessionStore
type mockSessionStore struct {
	info *models.SessionInfo
	err  error
}

func (m *mockSessionStore) GetInfoByToken(ctx context.Context, token string) (*models.SessionInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.info, nil
}

func TestSessionMiddleware(t *testing.T) {
	adminInfo := &models.SessionInfo{Email: "admin@example.com", Name: "Admin", IsAdmin: true}

	tests := []struct {
		name         string
		cookie       *http.Cookie
		store        *mockSessionStore
		expectedInfo models.SessionInfo
	}{
		{
			name:         "valid session resolved",
			cookie:       &http.Cookie{Name: SessionCookieName, Value: "valid-token"},
			store:        &mockSessionStore{info: adminInfo},
			expectedInfo: *adminInfo,
		},
		{
			name:         "no cookie proceeds anonymous",
			cookie:       nil,
			store:        &mockSessionStore{info: adminInfo},
			expectedInfo: models.SessionInfo{},
		},
		{
			name:         "empty cookie proceeds anonymous",
			cookie:       &http.Cookie{Name: SessionCookieName, Value: ""},
			store:        &mockSessionStore{info: adminInfo},
			expectedInfo: models.SessionInfo{},
		},
		{
			name:         "unknown token proceeds anonymous",
			cookie:       &http.Cookie{Name: SessionCookieName, Value: "stale-token"},
			store:        &mockSessionStore{err: errors.New("session not found")},
			expectedInfo: models.SessionInfo{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got models.SessionInfo
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = GetSession(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()

			SessionMiddleware(tt.store)(next).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.expectedInfo, got)
		})
	}
}

func TestGetSession_NoValue(t *testing.T) {
	info := GetSession(context.Background())
	assert.Equal(t, models.SessionInfo{}, info)
	assert.False(t, info.LoggedIn())
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name           string
		info           models.SessionInfo
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "admin passes",
			info:           models.SessionInfo{Email: "admin@example.com", Name: "Admin", IsAdmin: true},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "anonymous rejected",
			info:           models.SessionInfo{},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "authentication required",
		},
		{
			name:           "logged-in reader rejected",
			info:           models.SessionInfo{Email: "reader@example.com", Name: "Reader", IsAdmin: false},
			expectedStatus: http.StatusForbidden,
			expectedBody:   "insufficient permissions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodDelete, "/books/1", nil)
			req = req.WithContext(context.WithValue(req.Context(), sessionKey, tt.info))
			rec := httptest.NewRecorder()

			RequireAdmin(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, rec.Body.String(), tt.expectedBody)
				assert.False(t, called)
			} else {
				assert.True(t, called)
			}
		})
	}
}
