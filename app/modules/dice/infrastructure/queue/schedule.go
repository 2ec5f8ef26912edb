package dicequeue

import (
	"fmt"
	"strings"
	"time"

	dicedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dice/domain"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ParseAt resolves a reconcile time. It accepts RFC 3339 timestamps and
// English expressions such as "in 2 hours" or "tomorrow at 9am"; an empty
// string means now. Times in the past are rejected.
func ParseAt(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.EqualFold(input, "now") {
		return now, nil
	}

	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return checkFuture(input, t, now)
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(strings.ToLower(input), now)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", dicedomain.ErrInvalidSchedule, input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("%w: %q", dicedomain.ErrInvalidSchedule, input)
	}
	return checkFuture(input, r.Time, now)
}

func checkFuture(input string, t, now time.Time) (time.Time, error) {
	if t.Before(now.Truncate(time.Minute)) {
		return time.Time{}, fmt.Errorf("%w: %q is in the past", dicedomain.ErrInvalidSchedule, input)
	}
	return t, nil
}
