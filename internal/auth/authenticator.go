// Package auth implements registration and password verification for the
// tracker's user accounts.
package auth

import (
	"context"
	"errors"
	"fmt"

	"dollartrack/internal/models"
	"dollartrack/internal/storage"
)

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password; callers cannot tell which.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already exists")
)

// UserStorage defines the interface for user persistence operations.
// This allows the authenticator to be independent of the storage implementation.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// PasswordAuthenticator implements salted-hash password authentication over a
// user store.
type PasswordAuthenticator struct {
	storage UserStorage
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage UserStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
	}
}

// Register creates a new user account with a freshly salted password hash.
func (a *PasswordAuthenticator) Register(ctx context.Context, username, password string) (*models.User, error) {
	salt, err := NewSalt()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: HashPassword(password, salt),
		Salt:         salt,
	}

	if err := a.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicateUsername) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the username and password, returning the user's ID if
// valid. Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, username, password string) (int64, error) {
	user, err := a.storage.GetUserByUsername(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return 0, ErrInvalidCredentials
	}

	if !VerifyPassword(password, user.Salt, user.PasswordHash) {
		return 0, ErrInvalidCredentials
	}

	return user.ID, nil
}
