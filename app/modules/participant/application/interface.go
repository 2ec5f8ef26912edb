package participantservice

import (
	"context"

	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
)

// Service is the participant directory of a node.
type Service interface {
	// SelfID returns the id of the local participant.
	SelfID() participantdomain.ID

	// Self returns the stored record of the local participant.
	Self(ctx context.Context) (participantdomain.Participant, error)

	// Get returns a participant or ErrUnknownParticipant.
	Get(ctx context.Context, id participantdomain.ID) (participantdomain.Participant, error)

	// List returns every participant in join order.
	List(ctx context.Context) ([]participantdomain.Participant, error)

	// Connected returns the connected participants in join order.
	Connected(ctx context.Context) ([]participantdomain.Participant, error)

	// CanWrite reports whether actor holds write authority over target.
	CanWrite(ctx context.Context, actor, target participantdomain.ID) (bool, error)

	// Join registers the local participant as active.
	Join(ctx context.Context) error

	// Heartbeat refreshes the presence of the local participant.
	Heartbeat(ctx context.Context) error

	// Leave marks the local participant inactive.
	Leave(ctx context.Context) error
}
