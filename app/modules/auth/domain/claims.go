package authdomain

import (
	"time"

	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
)

// Claims is what a participant token asserts.
type Claims struct {
	ParticipantID participantdomain.ID
	TokenID       string
	Issuer        string
	ExpiresAt     time.Time
	IssuedAt      time.Time
}

// IsExpired checks if the claims have expired.
func (c *Claims) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}
