package messaging

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/shared"
)

func awardEvent() shared.Event {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return shared.NewAwardEarnedEvent("l1", "first-quiz", "first-quiz", at, at)
}

func TestInMemoryEventBus_SyncDelivery(t *testing.T) {
	reg := prometheus.NewRegistry()
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{Registerer: reg})

	var typed, all int
	require.NoError(t, bus.Subscribe(shared.EventAwardEarned, func(shared.Event) error { typed++; return nil }))
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error { all++; return nil }))
	require.NoError(t, bus.Subscribe(shared.EventBaselineRecorded, func(shared.Event) error {
		t.Fatal("wrong subscriber")
		return nil
	}))

	require.NoError(t, bus.Publish(awardEvent()))
	assert.Equal(t, 1, typed)
	assert.Equal(t, 1, all)
	assert.Equal(t, 1.0, testutil.ToFloat64(bus.metrics.published.WithLabelValues(string(shared.EventAwardEarned))))
}

func TestInMemoryEventBus_HandlerErrorAndPanic(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{})
	boom := errors.New("boom")

	var after bool
	require.NoError(t, bus.Subscribe(shared.EventAwardEarned, func(shared.Event) error { panic("bad handler") }))
	require.NoError(t, bus.Subscribe(shared.EventAwardEarned, func(shared.Event) error { return boom }))
	require.NoError(t, bus.Subscribe(shared.EventAwardEarned, func(shared.Event) error { after = true; return nil }))

	err := bus.Publish(awardEvent())
	assert.ErrorIs(t, err, ErrHandlerPanic)
	assert.True(t, after, "later handlers still run")
}

func TestInMemoryEventBus_AsyncAndClose(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: true, WorkerPoolSize: 2})

	var calls atomic.Int32
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		calls.Add(1)
		return nil
	}))

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(awardEvent()))
	}
	assert.Eventually(t, func() bool { return calls.Load() == 5 }, time.Second, 5*time.Millisecond)

	require.NoError(t, bus.Close())
	assert.ErrorIs(t, bus.Publish(awardEvent()), ErrEventBusClosed)
	assert.ErrorIs(t, bus.Subscribe(shared.EventAwardEarned, func(shared.Event) error { return nil }), ErrEventBusClosed)
	assert.NoError(t, bus.Close())
}

func TestInMemoryEventBus_NilHandler(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultInMemoryEventBusConfig())
	assert.ErrorIs(t, bus.Subscribe(shared.EventAwardEarned, nil), ErrNilHandler)
	assert.ErrorIs(t, bus.SubscribeAll(nil), ErrNilHandler)
}
