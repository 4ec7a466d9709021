package stream

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"ascent/internal/broadcast"
	xhttp "ascent/pkg/http"
	xlogger "ascent/pkg/logger"
)

// Handler exposes the broadcast service's surface: the observer
// websocket endpoint and a health endpoint reporting connection count.
type Handler struct {
	logger   *xlogger.Logger
	manager  *broadcast.Manager
	upgrader websocket.Upgrader
}

func NewHandler(lgr *xlogger.Logger, manager *broadcast.Manager) *Handler {
	return &Handler{
		logger:  lgr,
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.Connect)
	e.GET("/health", h.Health)
}

// Connect upgrades the request and registers the observer. The
// connection lives until the observer disconnects or a delivery fails.
func (h *Handler) Connect(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return err
	}
	client := h.manager.Register(conn)
	h.logger.Debug("websocket connection accepted", xlogger.String("client_id", client.ID()))
	return nil
}

func (h *Handler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":      "healthy",
		"connections": h.manager.Count(),
	})
}
