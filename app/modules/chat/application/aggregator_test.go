package chatservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	chatdomain "github.com/Black-And-White-Club/shared-dice/app/modules/chat/domain"
	dicetypedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/domain"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/Black-And-White-Club/shared-dice/app/shared/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDelay = 150 * time.Millisecond

func newTestAggregator(sender Sender, delay time.Duration) *Aggregator {
	return NewAggregator(sender, delay, slog.New(slog.NewTextHandler(io.Discard, nil)), metrics.NewNoop())
}

func targetPtr(id string) *participantdomain.ID {
	p := participantdomain.ID(id)
	return &p
}

type sendResult struct {
	outcome Outcome
	err     error
}

// sendAll issues every request concurrently and waits for all of them.
func sendAll(agg *Aggregator, reqs []Request) []sendResult {
	out := make([]sendResult, len(reqs))
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req Request) {
			defer wg.Done()
			o, err := agg.Send(context.Background(), req)
			out[i] = sendResult{outcome: o, err: err}
		}(i, req)
	}
	wg.Wait()
	return out
}

func TestAggregatorSumsRapidCalls(t *testing.T) {
	sender := &FakeSender{}
	agg := newTestAggregator(sender, testDelay)

	req := Request{Action: dicetypedomain.ActionAdd, DieType: testDieType(), TargetID: targetPtr("bob"), Amount: 1}
	results := sendAll(agg, []Request{req, req, req})

	requests := sender.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, 3, requests[0].Amount)

	for _, r := range results {
		require.NoError(t, r.err)
		assert.Same(t, results[0].outcome.Message, r.outcome.Message)
	}
}

func TestAggregatorIsolatesGroups(t *testing.T) {
	sender := &FakeSender{}
	agg := newTestAggregator(sender, testDelay)

	dt := testDieType()
	other := testDieType()
	other.ID = "luck"

	sendAll(agg, []Request{
		{Action: dicetypedomain.ActionAdd, DieType: dt, TargetID: targetPtr("bob"), Amount: 1},
		{Action: dicetypedomain.ActionAdd, DieType: dt, TargetID: targetPtr("carol"), Amount: 2},
		{Action: dicetypedomain.ActionRemove, DieType: dt, TargetID: targetPtr("bob"), Amount: 3},
		{Action: dicetypedomain.ActionAdd, DieType: other, TargetID: targetPtr("bob"), Amount: 4},
		{Action: dicetypedomain.ActionUse, DieType: dt, Amount: 5},
	})

	requests := sender.Requests()
	require.Len(t, requests, 5)
	amounts := map[int]bool{}
	for _, r := range requests {
		amounts[r.Amount] = true
	}
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}, amounts)
}

func TestAggregatorCustomDataBypasses(t *testing.T) {
	sender := &FakeSender{}
	agg := newTestAggregator(sender, time.Hour)

	start := time.Now()
	_, err := agg.Send(context.Background(), Request{
		Action:      dicetypedomain.ActionUse,
		DieType:     testDieType(),
		Amount:      1,
		MessageData: map[string]any{"whisper": true},
	})

	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Len(t, sender.Requests(), 1)
}

func TestAggregatorSuppressedAndInvalid(t *testing.T) {
	sender := &FakeSender{}
	agg := newTestAggregator(sender, time.Hour)

	dt := testDieType()
	dt.Messages.Gift = ""

	out, err := agg.Send(context.Background(), Request{Action: dicetypedomain.ActionGift, DieType: dt, TargetID: targetPtr("bob"), Amount: 1})
	require.NoError(t, err)
	assert.True(t, out.Suppressed)

	_, err = agg.Send(context.Background(), Request{Action: "juggle", DieType: dt})
	assert.ErrorIs(t, err, chatdomain.ErrInvalidAction)

	assert.Empty(t, sender.Requests())
}

func TestAggregatorSharesErrors(t *testing.T) {
	sendErr := errors.New("chat store down")
	sender := &FakeSender{SendFunc: func(ctx context.Context, req Request) (Outcome, error) {
		return Outcome{}, sendErr
	}}
	agg := newTestAggregator(sender, testDelay)

	req := Request{Action: dicetypedomain.ActionUse, DieType: testDieType(), Amount: 1}
	results := sendAll(agg, []Request{req, req})

	assert.Len(t, sender.Requests(), 1)
	for _, r := range results {
		assert.ErrorIs(t, r.err, sendErr)
	}
}

func TestAggregatorNewGroupAfterFlush(t *testing.T) {
	sender := &FakeSender{}
	agg := newTestAggregator(sender, 20*time.Millisecond)

	req := Request{Action: dicetypedomain.ActionUse, DieType: testDieType(), Amount: 1}
	_, err := agg.Send(context.Background(), req)
	require.NoError(t, err)
	_, err = agg.Send(context.Background(), req)
	require.NoError(t, err)

	requests := sender.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, 1, requests[0].Amount)
	assert.Equal(t, 1, requests[1].Amount)
}

func TestAggregatorCloseFlushesPending(t *testing.T) {
	sender := &FakeSender{}
	agg := newTestAggregator(sender, time.Hour)

	done := make(chan sendResult, 1)
	go func() {
		o, err := agg.Send(context.Background(), Request{Action: dicetypedomain.ActionUse, DieType: testDieType(), Amount: 2})
		done <- sendResult{outcome: o, err: err}
	}()

	require.Eventually(t, func() bool {
		agg.mu.Lock()
		defer agg.mu.Unlock()
		return len(agg.groups) == 1
	}, time.Second, 5*time.Millisecond)

	agg.Close()

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.NotNil(t, r.outcome.Message)
	case <-time.After(time.Second):
		t.Fatal("pending caller was not released by Close")
	}
	assert.Len(t, sender.Requests(), 1)

	// Closed aggregators send immediately.
	_, err := agg.Send(context.Background(), Request{Action: dicetypedomain.ActionUse, DieType: testDieType(), Amount: 1})
	require.NoError(t, err)
	assert.Len(t, sender.Requests(), 2)
}

func TestAggregatorCallerCancellation(t *testing.T) {
	sender := &FakeSender{}
	agg := newTestAggregator(sender, testDelay)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := agg.Send(ctx, Request{Action: dicetypedomain.ActionUse, DieType: testDieType(), Amount: 1})
	assert.ErrorIs(t, err, context.Canceled)

	// The message is still sent once the group flushes.
	assert.Eventually(t, func() bool { return len(sender.Requests()) == 1 }, time.Second, 10*time.Millisecond)
}
