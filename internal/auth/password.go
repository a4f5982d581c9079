package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes  = 16
	hashBytes  = 32
	iterations = 4096
)

// NewSalt produces a fresh per-user random salt, hex encoded.
func NewSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashPassword derives the stored hash for a password and salt using
// PBKDF2-SHA256. The salt is stored alongside the hash, so the same inputs
// always reproduce the same output.
func HashPassword(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, hashBytes, sha256.New)
	return hex.EncodeToString(key)
}

// VerifyPassword reports whether password and salt reproduce storedHash.
// Comparison is constant time.
func VerifyPassword(password, salt, storedHash string) bool {
	derived := HashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(derived), []byte(storedHash)) == 1
}
