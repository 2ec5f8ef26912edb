package chatservice

import (
	"context"

	chatdomain "github.com/Black-And-White-Club/shared-dice/app/modules/chat/domain"
	dicetypedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/domain"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/Black-And-White-Club/shared-dice/app/shared/hooks"
)

// Request describes the chat message for one ledger action.
type Request struct {
	Action      dicetypedomain.Action
	DieType     dicetypedomain.DieType
	SourceName  string
	TargetID    *participantdomain.ID
	TargetName  string
	Amount      int
	MessageData map[string]any
}

// Outcome of a send. Suppressed is set when the die type has no template
// for the action; Message is nil when a hook vetoed the message.
type Outcome struct {
	Suppressed bool
	Message    *chatdomain.Message
}

// Sender turns ledger actions into chat messages.
type Sender interface {
	Send(ctx context.Context, req Request) (Outcome, error)
}

// Sink creates chat messages.
type Sink interface {
	// Create runs the preCreateChatMessage hooks, persists and broadcasts the
	// message, then runs the createChatMessage hooks. It returns nil when a
	// hook vetoed.
	Create(ctx context.Context, event *chatdomain.Event) (*chatdomain.Message, error)

	// Recent returns up to limit messages, newest first.
	Recent(ctx context.Context, limit int) ([]chatdomain.Message, error)

	// Hooks exposes the chat hook registry.
	Hooks() *hooks.Registry[*chatdomain.Event]
}
