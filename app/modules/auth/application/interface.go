package authservice

import (
	"context"
	"time"

	authdomain "github.com/Black-And-White-Club/shared-dice/app/modules/auth/domain"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
)

// Service defines the authentication service interface.
type Service interface {
	// IssueToken mints a token for a known participant. A zero ttl uses the
	// configured default.
	IssueToken(ctx context.Context, participantID participantdomain.ID, ttl time.Duration) (string, error)

	// Authenticate validates a token and checks that it was minted for the
	// local participant.
	Authenticate(ctx context.Context, tokenString string) (*authdomain.Claims, error)
}

// Directory resolves participants for token issuance.
type Directory interface {
	SelfID() participantdomain.ID
	Get(ctx context.Context, id participantdomain.ID) (participantdomain.Participant, error)
}

// Config holds token settings.
type Config struct {
	DefaultTTL time.Duration
}
