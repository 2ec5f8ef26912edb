package dicedomain

import (
	"errors"

	dicetypedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/domain"
	notificationdomain "github.com/Black-And-White-Club/shared-dice/app/modules/notification/domain"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
)

// ModifyQuantityFunction is the delegated function id of the quantity
// mutation.
const ModifyQuantityFunction = "shareddice.modifyQuantity"

var (
	// ErrInvalidAmount is returned for non-positive action amounts.
	ErrInvalidAmount = errors.New("amount must be a positive integer")

	// ErrInvalidSchedule is returned when a reconcile time cannot be parsed.
	ErrInvalidSchedule = errors.New("invalid reconcile schedule")
)

// ModifyQuantityPayload is the payload of ModifyQuantityFunction.
type ModifyQuantityPayload struct {
	DieTypeID string `json:"die_type_id"`
	Delta     int    `json:"delta"`
}

// CheckQuantity applies delta to current and validates the result against
// the bounds of d. It returns the new quantity, or the notice explaining the
// rejection. The bounds are compared before adding so that no amount can
// overflow.
func CheckQuantity(d dicetypedomain.DieType, current, delta int) (int, *notificationdomain.Notice) {
	if delta < -current {
		n := notificationdomain.Warn(notificationdomain.KeyOnNegative, nil)
		return current, &n
	}
	if delta > d.Limit()-current {
		n := notificationdomain.Warn(notificationdomain.KeyOnOverLimit, map[string]any{
			"limit":    d.Limit(),
			"typeName": d.Name,
		})
		return current, &n
	}
	return current + delta, nil
}

// Clamp returns quantity bounded to [0, d.Limit()].
func Clamp(d dicetypedomain.DieType, quantity int) int {
	if quantity < 0 {
		return 0
	}
	if quantity > d.Limit() {
		return d.Limit()
	}
	return quantity
}

// Hook names of the action API.
const (
	HookPreAdd    = "preAdd"
	HookAdd       = "add"
	HookPreRemove = "preRemove"
	HookRemove    = "remove"
	HookPreUse    = "preUse"
	HookUse       = "use"
	HookPreGift   = "preGift"
	HookGift      = "gift"
)

// ActionEvent is passed to the action hooks.
type ActionEvent struct {
	Action      dicetypedomain.Action
	SourceID    participantdomain.ID
	TargetID    participantdomain.ID
	DieTypeID   string
	Amount      int
	MessageData map[string]any
}

// CleanupResult is the outcome of reconciling one participant.
type CleanupResult int

const (
	CleanupNoChange CleanupResult = iota
	CleanupCleaned
	CleanupFailed
)

func (r CleanupResult) String() string {
	switch r {
	case CleanupCleaned:
		return "cleaned"
	case CleanupFailed:
		return "failed"
	default:
		return "no_change"
	}
}
