package dicetyperouter

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	dicetypeevents "github.com/Black-And-White-Club/shared-dice/app/events/dicetype"
	dicetypehandlers "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/infrastructure/handlers"
	"github.com/Black-And-White-Club/shared-dice/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type fakeHandlers struct {
	mu   sync.Mutex
	seen []dicetypeevents.DieTypeChangedPayloadV1
}

func (f *fakeHandlers) HandleDieTypeChanged(ctx context.Context, payload *dicetypeevents.DieTypeChangedPayloadV1) ([]handlerwrapper.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, *payload)
	return nil, nil
}

func (f *fakeHandlers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

var _ dicetypehandlers.Handlers = (*fakeHandlers)(nil)

func TestRouterDeliversDieTypeChanges(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	router, err := message.NewRouter(message.RouterConfig{}, watermill.NopLogger{})
	require.NoError(t, err)

	handlers := &fakeHandlers{}
	r := NewDieTypeRouter(slog.Default(), router, pubSub, pubSub, noop.NewTracerProvider().Tracer("test"))
	require.NoError(t, r.Configure(ctx, handlers))

	go func() { _ = router.Run(ctx) }()
	<-router.Running()
	defer r.Close()

	body, err := json.Marshal(dicetypeevents.DieTypeChangedPayloadV1{DieTypeID: "insp", Operation: dicetypeevents.OperationUpdated, ChangedBy: "gm"})
	require.NoError(t, err)
	require.NoError(t, pubSub.Publish(dicetypeevents.DieTypeChangedV1, message.NewMessage(watermill.NewUUID(), body)))

	assert.Eventually(t, func() bool { return handlers.count() == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "insp", handlers.seen[0].DieTypeID)
}
