package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/libroteca/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the interface that wraps methods for User table data access
type UserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// "user" parameter is used to create a new user.
	//
	// If some error occurs during user creation, the error will be returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetByEmail retrieves a user by email.
	//
	// "email" parameter is used to retrieve a user by email.
	//
	// If user with such email does not exist, the error will be returned together with "nil" value.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Method ExistsByEmail checks if a user with such email exists.
	//
	// "email" parameter is used to check if a user with such email exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// CategoryRepository is the interface that wraps methods for Category table data access
type CategoryRepository interface {
	// Method GetByID retrieves a category by ID.
	//
	// "id" parameter is used to retrieve a category by ID.
	//
	// If category with such ID does not exist, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Category, error)
	// Method GetAll retrieves all categories.
	//
	// If some error occurs during retrieval, the error will be returned together with "nil" value.
	GetAll(ctx context.Context) ([]models.Category, error)
}

// SessionRepository is the interface that wraps methods for Session table data access
type SessionRepository interface {
	// Method Create inserts a new session into the database.
	//
	// "session" parameter is used to create a new session.
	//
	// If some error occurs during session creation, the error will be returned.
	Create(ctx context.Context, session *models.Session) error
	// Method DeleteByToken deletes a session by token string.
	//
	// "token" parameter is used to delete a session by token string.
	//
	// If some error occurs during session deletion, the error will be returned.
	DeleteByToken(ctx context.Context, token string) error
	// Method DeleteExpired purges all expired sessions.
	//
	// If some error occurs during purging, the error will be returned.
	DeleteExpired(ctx context.Context) error
}

// authService implements AuthService
type authService struct {
	userRepo     UserRepository
	categoryRepo CategoryRepository
	sessionRepo  SessionRepository
	sessionTTL   time.Duration
	logger       *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo UserRepository,
	categoryRepo CategoryRepository,
	sessionRepo SessionRepository,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *authService {
	return &authService{
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		sessionRepo:  sessionRepo,
		sessionTTL:   sessionTTL,
		logger:       logger,
	}
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Register validates a registration request and creates a new user with a
// bcrypt-hashed password
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Country = strings.TrimSpace(req.Country)

	if req.Name == "" || req.Email == "" || req.Country == "" || req.Password == "" || req.CategoryID == 0 {
		return fmt.Errorf("all fields are required")
	}

	if len([]rune(req.Name)) < 2 {
		return fmt.Errorf("name must be at least 2 characters long")
	}

	if !emailRegex.MatchString(req.Email) {
		return fmt.Errorf("invalid email format")
	}

	emailExists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if emailExists {
		return fmt.Errorf("email already registered")
	}

	// The category must be one of the seeded role rows. Administrator
	// categories are not selectable at registration.
	category, err := s.categoryRepo.GetByID(ctx, req.CategoryID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("invalid category")
		}
		return fmt.Errorf("failed to look up category: %w", err)
	}
	if category.Role == models.RoleAdmin {
		return fmt.Errorf("invalid category")
	}

	// Hash password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		Country:      req.Country,
		CategoryID:   category.ID,
		Role:         category.Role,
	}

	return s.userRepo.Create(ctx, user)
}

// Login authenticates a user and issues a server-held session. "User not
// found" and "wrong password" both surface as invalid credentials.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		return nil, fmt.Errorf("email cannot be empty")
	}

	if req.Password == "" {
		return nil, fmt.Errorf("password cannot be empty")
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Only a missing user is a credential failure; anything else is an
		// infrastructure error and must not look like one
		if strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("invalid credentials")
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// Purge expired sessions opportunistically. A failed purge must not break
	// the login flow, so it runs in a separate goroutine and is only logged.
	go func() {
		if err := s.sessionRepo.DeleteExpired(context.Background()); err != nil {
			s.logger.Warn("failed to purge expired sessions", zap.Error(err))
		}
	}()

	return session, nil
}

// Logout deletes the session for a token. Unknown tokens are not an error.
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessionRepo.DeleteByToken(ctx, token)
}

// EmailTaken reports whether the email is already registered
func (s *authService) EmailTaken(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	return s.userRepo.ExistsByEmail(ctx, email)
}

// ListCategories returns the role categories selectable at registration.
// Administrator categories are excluded so accounts cannot self-register
// with the administrator role.
func (s *authService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var selectable []models.Category
	for _, category := range categories {
		if category.Role != models.RoleAdmin {
			selectable = append(selectable, category)
		}
	}
	return selectable, nil
}
