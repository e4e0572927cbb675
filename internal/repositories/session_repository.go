package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/libroteca/backend/internal/models"
	"go.uber.org/zap"
)

type sessionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB, logger *zap.Logger) *sessionRepository {
	return &sessionRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new session into the database
func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query, session.Token, session.UserID, session.ExpiresAt); err != nil {
		r.logger.Error("failed to create session", zap.Error(err), zap.Int("userId", session.UserID))
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetInfoByToken resolves a session token to the caller's identity, joining
// the user and category rows. Expired sessions resolve as not found.
func (r *sessionRepository) GetInfoByToken(ctx context.Context, token string) (*models.SessionInfo, error) {
	query := `
		SELECT u.email, u.name, c.role
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		JOIN categories c ON c.id = u.category_id
		WHERE s.token = ? AND s.expires_at > NOW()
		LIMIT 1
	`

	info := &models.SessionInfo{}
	var role models.Role
	err := r.db.QueryRowContext(ctx, query, token).Scan(&info.Email, &info.Name, &role)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found")
	}
	if err != nil {
		r.logger.Error("failed to get session by token", zap.Error(err))
		return nil, fmt.Errorf("failed to get session by token: %w", err)
	}

	info.IsAdmin = role == models.RoleAdmin
	return info, nil
}

// DeleteByToken deletes a session by token. Deleting an unknown token is not
// an error.
func (r *sessionRepository) DeleteByToken(ctx context.Context, token string) error {
	query := `DELETE FROM sessions WHERE token = ?`

	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		r.logger.Error("failed to delete session", zap.Error(err))
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// DeleteExpired purges all expired sessions
func (r *sessionRepository) DeleteExpired(ctx context.Context) error {
	query := `DELETE FROM sessions WHERE expires_at <= NOW()`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		r.logger.Error("failed to delete expired sessions", zap.Error(err))
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	return nil
}
