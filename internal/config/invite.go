package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidInvite is returned when an invitation token fails validation.
var ErrInvalidInvite = errors.New("invalid or expired invitation")

// InviteClaims are the contents of a signed invitation token: where the
// inviting server lives, plus the standard expiry claims.
type InviteClaims struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	jwt.RegisteredClaims
}

// CreateInvite signs an invitation to the server at host:port using the
// installation's server token as the HMAC secret. The invitation is
// self-contained: the recipient learns the address from the token itself and
// the server can verify the token was minted here.
func CreateInvite(serverToken, host string, port int, ttl time.Duration) (string, error) {
	claims := &InviteClaims{
		Host: host,
		Port: port,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(serverToken))
	if err != nil {
		return "", fmt.Errorf("failed to sign invitation: %w", err)
	}
	return signed, nil
}

// ParseInvite validates an invitation token against the server token and
// returns its claims.
func ParseInvite(serverToken, tokenString string) (*InviteClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&InviteClaims{},
		func(token *jwt.Token) (interface{}, error) {
			// Verify the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(serverToken), nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInvite, err)
	}

	claims, ok := token.Claims.(*InviteClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidInvite
	}
	return claims, nil
}
