// Package hooks provides ordered, named extension points. "Before" hooks may
// veto an action; "after" hooks only observe it.
package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Black-And-White-Club/shared-dice/app/shared/attr"
)

// Decision is returned by a before hook.
type Decision int

const (
	Continue Decision = iota
	Veto
)

// BeforeFunc inspects (and may mutate) the event before an action runs.
type BeforeFunc[E any] func(ctx context.Context, event E) Decision

// AfterFunc observes a completed action.
type AfterFunc[E any] func(ctx context.Context, event E)

// Registry keeps an ordered hook list per event name.
type Registry[E any] struct {
	mu     sync.RWMutex
	before map[string][]BeforeFunc[E]
	after  map[string][]AfterFunc[E]
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry[E any](logger *slog.Logger) *Registry[E] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry[E]{
		before: make(map[string][]BeforeFunc[E]),
		after:  make(map[string][]AfterFunc[E]),
		logger: logger,
	}
}

// OnBefore appends a veto-capable hook for name.
func (r *Registry[E]) OnBefore(name string, fn BeforeFunc[E]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.before[name] = append(r.before[name], fn)
}

// OnAfter appends an observing hook for name.
func (r *Registry[E]) OnAfter(name string, fn AfterFunc[E]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.after[name] = append(r.after[name], fn)
}

// CallBefore runs the before hooks of name in registration order. It returns
// false as soon as one of them vetoes.
func (r *Registry[E]) CallBefore(ctx context.Context, name string, event E) bool {
	r.mu.RLock()
	fns := append([]BeforeFunc[E](nil), r.before[name]...)
	r.mu.RUnlock()

	for i, fn := range fns {
		if fn(ctx, event) == Veto {
			r.logger.InfoContext(ctx, "Hook vetoed action",
				attr.ExtractCorrelationID(ctx),
				attr.String("hook", name),
				attr.Int("index", i),
			)
			return false
		}
	}
	return true
}

// CallAfter runs the after hooks of name. A panicking hook is logged and the
// remaining hooks still run.
func (r *Registry[E]) CallAfter(ctx context.Context, name string, event E) {
	r.mu.RLock()
	fns := append([]AfterFunc[E](nil), r.after[name]...)
	r.mu.RUnlock()

	for _, fn := range fns {
		r.callAfter(ctx, name, fn, event)
	}
}

func (r *Registry[E]) callAfter(ctx context.Context, name string, fn AfterFunc[E], event E) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.ErrorContext(ctx, "Hook panicked",
				attr.ExtractCorrelationID(ctx),
				attr.String("hook", name),
				attr.Error(fmt.Errorf("%v", rec)),
			)
		}
	}()
	fn(ctx, event)
}
