package broadcast

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"ascent/internal/domain/models"
	"ascent/internal/domain/repository"
	"ascent/pkg/logger"
)

// Config holds broadcast connection parameters.
type Config struct {
	SendBuffer   int
	WriteTimeout time.Duration
	PongTimeout  time.Duration
}

// Manager owns the observer registry for one serving process. The
// registry is mutated only inside Run's serving loop; the broker
// listener and the HTTP handlers communicate with it exclusively
// through channels, never by touching the registry directly.
type Manager struct {
	cfg        Config
	publisher  repository.Publisher
	subscriber repository.Subscriber
	metrics    repository.Metrics
	logger     *logger.Logger

	register   chan *Client
	unregister chan *Client
	broadcast  chan models.Event

	count atomic.Int64
	ctx   context.Context
}

func NewManager(
	cfg Config,
	publisher repository.Publisher,
	subscriber repository.Subscriber,
	metrics repository.Metrics,
	lgr *logger.Logger,
) *Manager {
	return &Manager{
		cfg:        cfg,
		publisher:  publisher,
		subscriber: subscriber,
		metrics:    metrics,
		logger:     lgr,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan models.Event, 64),
	}
}

// Start launches the serving loop and the broker listener. It fails
// fast when the broker subscription cannot be established, so the
// process never enters service without a live event feed.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx = ctx

	sub, err := m.subscriber.Subscribe(ctx)
	if err != nil {
		return err
	}

	go m.run(ctx, sub)
	go m.listen(ctx, sub)
	return nil
}

// run is the single-threaded serving loop owning the registry.
func (m *Manager) run(ctx context.Context, sub repository.Subscription) {
	registry := make(map[*Client]struct{})

	defer func() {
		_ = sub.Close()
		for client := range registry {
			close(client.send)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("broadcast manager stopped")
			return

		case client := <-m.register:
			registry[client] = struct{}{}
			m.count.Store(int64(len(registry)))
			m.metrics.SetObserverCount(len(registry))
			m.logger.Info("observer connected",
				logger.String("client_id", client.id),
				logger.Int("active_connections", len(registry)))

		case client := <-m.unregister:
			m.remove(registry, client)

		case ev := <-m.broadcast:
			m.deliver(registry, ev)
		}
	}
}

// listen blocks on the broker subscription and hands each event to the
// serving loop. Delivery happens there, not here: the listener must
// never touch the registry concurrently with the serving loop.
func (m *Manager) listen(ctx context.Context, sub repository.Subscription) {
	m.logger.Info("broker listener started")
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				m.logger.Warn("broker subscription closed")
				return
			}
			m.logger.Debug("event received", logger.String("type", string(ev.Type)))
			select {
			case m.broadcast <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

// deliver fans one event out to every registered observer. A failed
// delivery prunes only that observer; an empty registry is a no-op.
func (m *Manager) deliver(registry map[*Client]struct{}, ev models.Event) {
	if len(registry) == 0 {
		m.logger.Warn("no active observers to broadcast to")
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		m.metrics.RecordError("event_marshal")
		m.logger.Error("event not serializable", logger.Error(err))
		return
	}

	delivered := 0
	for client := range registry {
		select {
		case client.send <- data:
			delivered++
		default:
			// Send buffer full means the observer stopped draining;
			// treat it like any other failed delivery.
			m.logger.Warn("observer send buffer full, pruning",
				logger.String("client_id", client.id))
			m.remove(registry, client)
		}
	}

	m.metrics.RecordBroadcast(delivered)
	m.logger.Info("broadcast complete",
		logger.String("type", string(ev.Type)),
		logger.Int("delivered", delivered),
		logger.Int("active_connections", len(registry)))
}

// remove drops a client from the registry exactly once.
func (m *Manager) remove(registry map[*Client]struct{}, client *Client) {
	if _, ok := registry[client]; !ok {
		return
	}
	delete(registry, client)
	close(client.send)
	m.count.Store(int64(len(registry)))
	m.metrics.SetObserverCount(len(registry))
	m.logger.Info("observer disconnected",
		logger.String("client_id", client.id),
		logger.Int("active_connections", len(registry)))
}

// Register attaches an upgraded connection as a new observer and
// starts its pumps. Reconnection is a fresh registration: no backlog
// is replayed.
func (m *Manager) Register(conn *websocket.Conn) *Client {
	client := newClient(m, conn)
	m.register <- client
	go client.writePump()
	go client.readPump()
	return client
}

// Count returns the number of currently registered observers.
func (m *Manager) Count() int {
	return int(m.count.Load())
}
