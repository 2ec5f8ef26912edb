package hooks

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type event struct {
	Amount int
}

func newTestRegistry() *Registry[*event] {
	return NewRegistry[*event](slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCallBefore(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(r *Registry[*event], trace *[]string)
		want      bool
		wantTrace []string
	}{
		{
			name:  "no hooks continue",
			setup: func(r *Registry[*event], trace *[]string) {},
			want:  true,
		},
		{
			name: "hooks run in registration order",
			setup: func(r *Registry[*event], trace *[]string) {
				r.OnBefore("preAdd", func(ctx context.Context, e *event) Decision {
					*trace = append(*trace, "first")
					return Continue
				})
				r.OnBefore("preAdd", func(ctx context.Context, e *event) Decision {
					*trace = append(*trace, "second")
					return Continue
				})
			},
			want:      true,
			wantTrace: []string{"first", "second"},
		},
		{
			name: "veto short circuits",
			setup: func(r *Registry[*event], trace *[]string) {
				r.OnBefore("preAdd", func(ctx context.Context, e *event) Decision {
					*trace = append(*trace, "first")
					return Veto
				})
				r.OnBefore("preAdd", func(ctx context.Context, e *event) Decision {
					*trace = append(*trace, "second")
					return Continue
				})
			},
			want:      false,
			wantTrace: []string{"first"},
		},
		{
			name: "hooks for other names are ignored",
			setup: func(r *Registry[*event], trace *[]string) {
				r.OnBefore("preRemove", func(ctx context.Context, e *event) Decision {
					*trace = append(*trace, "remove")
					return Veto
				})
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry()
			var trace []string
			tt.setup(r, &trace)

			got := r.CallBefore(context.Background(), "preAdd", &event{Amount: 1})

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantTrace, trace)
		})
	}
}

func TestBeforeHookCanMutateEvent(t *testing.T) {
	r := newTestRegistry()
	r.OnBefore("preAdd", func(ctx context.Context, e *event) Decision {
		e.Amount = 5
		return Continue
	})

	e := &event{Amount: 1}
	assert.True(t, r.CallBefore(context.Background(), "preAdd", e))
	assert.Equal(t, 5, e.Amount)
}

func TestCallAfterSurvivesPanic(t *testing.T) {
	r := newTestRegistry()
	var trace []string
	r.OnAfter("add", func(ctx context.Context, e *event) {
		panic("hook failure")
	})
	r.OnAfter("add", func(ctx context.Context, e *event) {
		trace = append(trace, "after")
	})

	assert.NotPanics(t, func() {
		r.CallAfter(context.Background(), "add", &event{})
	})
	assert.Equal(t, []string{"after"}, trace)
}
