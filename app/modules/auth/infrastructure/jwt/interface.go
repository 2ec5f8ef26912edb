package authjwt

import (
	"errors"
	"time"

	authdomain "github.com/Black-And-White-Club/shared-dice/app/modules/auth/domain"
)

var (
	// ErrInvalidToken is returned when the token is malformed or invalid.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")

	// ErrInvalidSignature is returned when the token signature is invalid.
	ErrInvalidSignature = errors.New("invalid token signature")
)

// Provider defines the interface for JWT token operations.
type Provider interface {
	// GenerateToken creates a signed token whose subject is the participant.
	GenerateToken(claims *authdomain.Claims, ttl time.Duration) (string, error)

	// ValidateToken validates a JWT token and returns the claims if valid.
	ValidateToken(tokenString string) (*authdomain.Claims, error)
}
