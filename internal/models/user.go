package models

import "time"

// User represents a registered user account.
//
// Accounts are created once at registration and never updated or deleted.
// The password is stored as a salted one-way hash; see internal/auth for the
// derivation.
type User struct {
	// ID is the numeric identifier assigned by the database.
	ID int64

	// Username is the unique login name.
	Username string

	// PasswordHash is the hex-encoded derived hash of password+salt.
	PasswordHash string

	// Salt is the hex-encoded per-user random salt.
	Salt string

	// CreatedAt is when the account was registered.
	CreatedAt time.Time
}
