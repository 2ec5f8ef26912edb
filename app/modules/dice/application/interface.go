package diceservice

import (
	"context"

	dicedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dice/domain"
	delegationdomain "github.com/Black-And-White-Club/shared-dice/app/modules/delegation/domain"
	delegationservice "github.com/Black-And-White-Club/shared-dice/app/modules/delegation/application"
	dicetypedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/domain"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/Black-And-White-Club/shared-dice/app/shared/hooks"
)

// Service is the action API of the local participant.
type Service interface {
	// Add gives amount dice of a type to target. It returns false when the
	// action was rejected; the reason has been delivered as a notice.
	Add(ctx context.Context, target participantdomain.ID, dieTypeID string, opts ...ActionOption) (bool, error)
	Remove(ctx context.Context, target participantdomain.ID, dieTypeID string, opts ...ActionOption) (bool, error)
	Use(ctx context.Context, dieTypeID string, opts ...ActionOption) (bool, error)
	Gift(ctx context.Context, target participantdomain.ID, dieTypeID string, opts ...ActionOption) (bool, error)

	// GetUserDie returns one quantity, 0 when no entry exists.
	GetUserDie(ctx context.Context, participantID participantdomain.ID, dieTypeID string) (int, error)
	// GetUserDice returns every entry of a participant.
	GetUserDice(ctx context.Context, participantID participantdomain.ID) (map[string]int, error)
	FindDiceTypesByName(ctx context.Context, name string) ([]dicetypedomain.DieType, error)

	CleanInvalidData(ctx context.Context, participantID participantdomain.ID) dicedomain.CleanupResult
	// CleanAllInvalidData reconciles every participant and returns how many
	// could not be cleaned.
	CleanAllInvalidData(ctx context.Context, notify bool) (int, error)

	Tray(ctx context.Context) ([]dicedomain.TrayRow, error)
	ExportLedger(ctx context.Context) ([]byte, error)
	HoldingsChart(ctx context.Context, dieTypeID string) ([]byte, error)

	Hooks() *hooks.Registry[*dicedomain.ActionEvent]
}

// Directory is the participant directory as used by the action API.
type Directory interface {
	SelfID() participantdomain.ID
	Self(ctx context.Context) (participantdomain.Participant, error)
	Get(ctx context.Context, id participantdomain.ID) (participantdomain.Participant, error)
	List(ctx context.Context) ([]participantdomain.Participant, error)
	CanWrite(ctx context.Context, actor, target participantdomain.ID) (bool, error)
}

// Registry is the die type registry as used by the action API.
type Registry interface {
	Get(ctx context.Context, id string) (dicetypedomain.DieType, error)
	GetAll(ctx context.Context) ([]dicetypedomain.DieType, error)
	FindByName(ctx context.Context, name string) ([]dicetypedomain.DieType, error)
}

// Ledger is the quantity store as used by the action API.
type Ledger interface {
	Get(ctx context.Context, participantID participantdomain.ID, dieTypeID string) (int, bool, error)
	GetAll(ctx context.Context, participantID participantdomain.ID) (map[string]int, error)
	Snapshot(ctx context.Context) (map[participantdomain.ID]map[string]int, error)
	Set(ctx context.Context, participantID participantdomain.ID, dieTypeID string, quantity int) error
	Delete(ctx context.Context, participantID participantdomain.ID, dieTypeID string) error
}

// Channel is the delegation channel as used by the action API.
type Channel interface {
	Register(id string, fn delegationdomain.Func)
	Query(ctx context.Context, functionID string, target participantdomain.ID, payload any, opts ...delegationservice.QueryOption) bool
	QueryRaw(ctx context.Context, functionID string, target participantdomain.ID, payload any, opts ...delegationservice.QueryOption) *delegationdomain.Result
}

type actionOptions struct {
	amount      int
	chatMessage bool
	messageData map[string]any
}

// ActionOption customises a single action.
type ActionOption func(*actionOptions)

// WithAmount sets how many dice the action moves. The default is 1.
func WithAmount(n int) ActionOption {
	return func(o *actionOptions) { o.amount = n }
}

// WithoutChatMessage skips the chat message of the action.
func WithoutChatMessage() ActionOption {
	return func(o *actionOptions) { o.chatMessage = false }
}

// WithMessageData is merged into the chat message. It also makes the message
// bypass aggregation.
func WithMessageData(data map[string]any) ActionOption {
	return func(o *actionOptions) { o.messageData = data }
}

func applyActionOptions(opts []ActionOption) actionOptions {
	o := actionOptions{amount: 1, chatMessage: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
