package metrics

import (
	"context"
	"time"
)

// Namespace prefixes every collector exported by the service.
const Namespace = "shareddice"

// Noop satisfies every metrics interface and records nothing.
type Noop struct{}

// NewNoop returns a metrics sink that discards everything.
func NewNoop() *Noop { return &Noop{} }

func (*Noop) RecordOperationAttempt(context.Context, string, string)                 {}
func (*Noop) RecordOperationSuccess(context.Context, string, string)                 {}
func (*Noop) RecordOperationFailure(context.Context, string, string)                 {}
func (*Noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (*Noop) RecordQuery(context.Context, string, string, string)                    {}
func (*Noop) RecordQueryDuration(context.Context, string, string, time.Duration)     {}
func (*Noop) RecordCoalesced(context.Context, string)                                {}
func (*Noop) RecordFlush(context.Context, string, int)                               {}

var (
	_ OperationMetrics  = (*Noop)(nil)
	_ DelegationMetrics = (*Noop)(nil)
	_ ChatMetrics       = (*Noop)(nil)
)
