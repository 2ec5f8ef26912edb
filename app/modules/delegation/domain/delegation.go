package delegationdomain

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	notificationdomain "github.com/Black-And-White-Club/shared-dice/app/modules/notification/domain"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
)

// DefaultTimeout bounds a remote round trip when the caller gives none.
const DefaultTimeout = 30 * time.Second

// SubjectPrefix is followed by the id of the serving participant.
const SubjectPrefix = "shareddice.query."

var (
	ErrUnknownFunction = errors.New("unknown delegated function")
	ErrNotOwner        = errors.New("no write authority over target")
)

// Subject returns the request subject served by participant id.
func Subject(id participantdomain.ID) string {
	return SubjectPrefix + string(id)
}

// Result is what a delegated function returns: either OK or a structured
// failure to show to the caller.
type Result struct {
	OK      bool                       `json:"ok"`
	Failure *notificationdomain.Notice `json:"failure,omitempty"`
}

func Success() *Result {
	return &Result{OK: true}
}

func Failure(n notificationdomain.Notice) *Result {
	return &Result{Failure: &n}
}

// Request is sent to the owner of a target.
type Request struct {
	FunctionID    string               `json:"function_id"`
	TargetID      participantdomain.ID `json:"target_participant_id"`
	SenderID      participantdomain.ID `json:"sender_id"`
	CorrelationID string               `json:"correlation_id,omitempty"`
	Payload       json.RawMessage      `json:"payload"`
}

// Response carries either a result or an execution error.
type Response struct {
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Func is a function that can be executed on behalf of other participants.
type Func func(ctx context.Context, target participantdomain.ID, payload json.RawMessage) (*Result, error)
