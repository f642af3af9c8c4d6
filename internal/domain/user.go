package domain

import (
	"context"
	"time"
)

// User represents a registered user. Credentials never leave the server.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	SavedEvents  []string  `json:"saved_events"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with an empty saved list. ID is set by the repository on create.
func NewUser(username, email, passwordHash, salt string, now time.Time) *User {
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		SavedEvents:  []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues signed bearer tokens for an authenticated user.
type TokenIssuer interface {
	Issue(userID, username string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// ToggleSavedEvent atomically adds or removes eventID from the user's
	// saved list and returns the resulting membership.
	ToggleSavedEvent(ctx context.Context, userID, eventID string) (saved bool, err error)
}

// AuthService defines registration, login, and identity lookup.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (token string, user *User, err error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	Me(ctx context.Context, userID string) (*User, error)
}
