package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ascent/internal/domain/models"
	"ascent/internal/domain/repository"
	"ascent/pkg/logger"
)

type fakePublisher struct {
	events []models.Event
}

func (f *fakePublisher) Publish(ctx context.Context, ev models.Event) error {
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeSubscription struct {
	ch chan models.Event
}

func (f *fakeSubscription) Events() <-chan models.Event { return f.ch }
func (f *fakeSubscription) Close() error                { return nil }

type fakeSubscriber struct {
	sub *fakeSubscription
	err error
}

func (f *fakeSubscriber) Subscribe(ctx context.Context) (repository.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sub, nil
}

func (f *fakeSubscriber) Close() error { return nil }

type noopMetrics struct{}

func (noopMetrics) RecordTick()                          {}
func (noopMetrics) RecordTrade(symbol, side string)      {}
func (noopMetrics) RecordEventPublished(kind string)     {}
func (noopMetrics) RecordLastPrice(string, float64)      {}
func (noopMetrics) RecordError(kind string)              {}
func (noopMetrics) RecordLatency(op string, sec float64) {}
func (noopMetrics) RecordBroadcast(delivered int)        {}
func (noopMetrics) SetObserverCount(n int)               {}

func testManager(t *testing.T, subscriber repository.Subscriber) *Manager {
	t.Helper()
	lgr, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return NewManager(Config{
		SendBuffer:   4,
		WriteTimeout: time.Second,
		PongTimeout:  time.Minute,
	}, &fakePublisher{}, subscriber, noopMetrics{}, lgr)
}

func testClient(m *Manager, buffer int) *Client {
	return &Client{id: "test-client", manager: m, send: make(chan []byte, buffer)}
}

func TestStartFailsWhenSubscribeFails(t *testing.T) {
	m := testManager(t, &fakeSubscriber{err: errors.New("broker down")})
	err := m.Start(context.Background())
	assert.Error(t, err)
}

func TestBroadcastDeliversToObservers(t *testing.T) {
	sub := &fakeSubscription{ch: make(chan models.Event, 1)}
	m := testManager(t, &fakeSubscriber{sub: sub})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, m.Start(ctx))

	client := testClient(m, 4)
	m.register <- client
	require.Eventually(t, func() bool { return m.Count() == 1 }, time.Second, 10*time.Millisecond)

	sub.ch <- models.NewTradeEvent("AAPL", "buy", 123.4, "momentum")

	select {
	case data := <-client.send:
		var ev models.Event
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, models.EventTrade, ev.Type)
		assert.Equal(t, "AAPL", ev.Symbol)
	case <-time.After(time.Second):
		t.Fatal("observer never received broadcast")
	}
}

func TestUnregisterUpdatesCount(t *testing.T) {
	sub := &fakeSubscription{ch: make(chan models.Event)}
	m := testManager(t, &fakeSubscriber{sub: sub})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, m.Start(ctx))

	client := testClient(m, 4)
	m.register <- client
	require.Eventually(t, func() bool { return m.Count() == 1 }, time.Second, 10*time.Millisecond)

	m.unregister <- client
	require.Eventually(t, func() bool { return m.Count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestDetachReturnsAfterShutdown(t *testing.T) {
	sub := &fakeSubscription{ch: make(chan models.Event)}
	m := testManager(t, &fakeSubscriber{sub: sub})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, m.Start(ctx))

	client := testClient(m, 4)
	m.register <- client
	require.Eventually(t, func() bool { return m.Count() == 1 }, time.Second, 10*time.Millisecond)

	// Stop the serving loop. Nothing drains unregister anymore, so a
	// late detach must fall through instead of blocking forever.
	cancel()
	require.Eventually(t, func() bool {
		_, open := <-client.send
		return !open
	}, time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		client.detach()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("detach blocked after manager shutdown")
	}
}

func TestDeliverNoObserversIsNoop(t *testing.T) {
	m := testManager(t, &fakeSubscriber{})
	registry := make(map[*Client]struct{})

	m.deliver(registry, models.NewStatusEvent(models.StatusRunning))

	assert.Empty(t, registry)
}

func TestDeliverPrunesStalledObserver(t *testing.T) {
	m := testManager(t, &fakeSubscriber{})

	healthy := testClient(m, 4)
	stalled := testClient(m, 1)
	stalled.send <- []byte("backlog") // buffer now full

	registry := map[*Client]struct{}{
		healthy: {},
		stalled: {},
	}

	m.deliver(registry, models.NewTradeEvent("MSFT", "sell", 300, "rsi"))

	assert.Contains(t, registry, healthy)
	assert.NotContains(t, registry, stalled)
	assert.Len(t, healthy.send, 1)

	// Pruning closes the stalled client's channel after draining is
	// abandoned; the buffered item is still readable, then closed.
	<-stalled.send
	_, open := <-stalled.send
	assert.False(t, open)
}

func TestRemoveIdempotent(t *testing.T) {
	m := testManager(t, &fakeSubscriber{})
	client := testClient(m, 1)
	registry := map[*Client]struct{}{client: {}}

	m.remove(registry, client)
	m.remove(registry, client)

	assert.Empty(t, registry)
	assert.Equal(t, 0, m.Count())
}
