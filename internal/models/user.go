package models

type Role int

// Role constants
const (
	RoleReader Role = 1
	RoleAdmin  Role = 2
)

// Category represents a user role/tier classification
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// User represents a registered user
type User struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Never serialize password hash
	Country      string `json:"country"`
	CategoryID   int    `json:"categoryId"`
	Role         Role   `json:"role"` // resolved from the user's category
}

// IsAdmin reports whether the user holds the administrator role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RegisterRequest represents a registration form submission
type RegisterRequest struct {
	Name       string
	Email      string
	Country    string
	Password   string
	CategoryID int
}

// LoginRequest represents a login form submission
type LoginRequest struct {
	Email    string
	Password string
}
