package broadcast

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"ascent/internal/domain/models"
	"ascent/pkg/logger"
)

// Client is one observer connection. It is owned by the Manager for
// its lifetime: registered on accept, removed on send failure or
// close, with no replay of missed events on reconnect.
type Client struct {
	id      string
	manager *Manager
	conn    *websocket.Conn
	send    chan []byte
}

func newClient(m *Manager, conn *websocket.Conn) *Client {
	return &Client{
		id:      uuid.NewString(),
		manager: m,
		conn:    conn,
		send:    make(chan []byte, m.cfg.SendBuffer),
	}
}

// ID returns the connection identifier used in logs.
func (c *Client) ID() string { return c.id }

// readPump consumes inbound observer messages until the connection
// drops. Observers may request a strategy change, which is republished
// into the broker channel; anything else is ignored.
func (c *Client) readPump() {
	defer func() {
		c.detach()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.manager.cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.manager.cfg.PongTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.manager.logger.Warn("observer read error",
					logger.String("client_id", c.id),
					logger.Error(err))
			}
			return
		}
		c.handleInbound(data)
	}
}

// detach hands the connection back to the serving loop. After the
// Manager shuts down nothing drains the unregister channel, so give
// up once the Manager context is done.
func (c *Client) detach() {
	select {
	case c.manager.unregister <- c:
	case <-c.manager.ctx.Done():
	}
}

func (c *Client) handleInbound(data []byte) {
	var msg struct {
		Type     string `json:"type"`
		Strategy string `json:"strategy"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		c.manager.logger.Warn("invalid observer message", logger.String("client_id", c.id))
		return
	}

	if msg.Type == string(models.EventStrategyChange) && msg.Strategy != "" {
		ev := models.NewStrategyChangeEvent(msg.Strategy)
		if err := c.manager.publisher.Publish(c.manager.ctx, ev); err != nil {
			c.manager.logger.Error("failed to republish strategy change", logger.Error(err))
		}
	}
}

// writePump delivers broadcast payloads and keepalive pings to the
// observer. It exits when the send channel is closed by the Manager or
// a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod(c.manager.cfg.PongTimeout))
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.manager.cfg.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.manager.logger.Warn("observer write failed",
					logger.String("client_id", c.id),
					logger.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.manager.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

const maxMessageSize = 4096

func pingPeriod(pongTimeout time.Duration) time.Duration {
	return pongTimeout * 9 / 10
}
