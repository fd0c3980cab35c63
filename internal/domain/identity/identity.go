package identity

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrEmailTaken is returned when registering with an email that is
	// already in use. Emails are compared case-insensitively.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on sign-in with an unknown email or
	// wrong password. The two cases are indistinguishable on purpose.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned when a bearer token cannot be verified.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingCredentials is returned when email or password is empty.
	ErrMissingCredentials = errors.New("email and password required")
	// ErrNotFound is returned when a user does not exist.
	ErrNotFound = errors.New("user not found")
)

// User is a registered account. PasswordHash is a bcrypt hash and never
// leaves the identity layer.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repository defines persistence operations for users.
type Repository interface {
	// Create persists a new user. It returns ErrEmailTaken when another
	// user already holds the email, compared case-insensitively.
	Create(ctx context.Context, u *User) error
	// GetByEmail looks a user up by email, case-insensitively.
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
