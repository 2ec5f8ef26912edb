package authservice

import (
	"context"
	"fmt"
	"time"

	authdomain "github.com/Black-And-White-Club/shared-dice/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/shared-dice/app/modules/auth/infrastructure/jwt"
	participantservice "github.com/Black-And-White-Club/shared-dice/app/modules/participant/application"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
)

// ------------------------
// Fake JWT Provider
// ------------------------

type FakeJWTProvider struct {
	trace []string

	GenerateTokenFunc func(claims *authdomain.Claims, ttl time.Duration) (string, error)
	ValidateTokenFunc func(tokenString string) (*authdomain.Claims, error)
}

func (f *FakeJWTProvider) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeJWTProvider) GenerateToken(claims *authdomain.Claims, ttl time.Duration) (string, error) {
	f.record("GenerateToken")
	if f.GenerateTokenFunc != nil {
		return f.GenerateTokenFunc(claims, ttl)
	}
	return "token-" + string(claims.ParticipantID), nil
}

func (f *FakeJWTProvider) ValidateToken(tokenString string) (*authdomain.Claims, error) {
	f.record("ValidateToken")
	if f.ValidateTokenFunc != nil {
		return f.ValidateTokenFunc(tokenString)
	}
	return nil, authjwt.ErrInvalidToken
}

func (f *FakeJWTProvider) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ authjwt.Provider = (*FakeJWTProvider)(nil)

// ------------------------
// Fake Directory
// ------------------------

type FakeDirectory struct {
	Self  participantdomain.ID
	Known []participantdomain.ID
}

func (f *FakeDirectory) SelfID() participantdomain.ID {
	return f.Self
}

func (f *FakeDirectory) Get(ctx context.Context, id participantdomain.ID) (participantdomain.Participant, error) {
	for _, k := range f.Known {
		if k == id {
			return participantdomain.Participant{ID: id}, nil
		}
	}
	return participantdomain.Participant{}, fmt.Errorf("%w: %s", participantservice.ErrUnknownParticipant, id)
}

var _ Directory = (*FakeDirectory)(nil)
