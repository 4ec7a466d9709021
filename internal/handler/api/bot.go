package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"ascent/internal/bot"
	"ascent/internal/domain/models"
	"ascent/internal/domain/repository"
	"ascent/internal/strategy"
	xhttp "ascent/pkg/http"
	xlogger "ascent/pkg/logger"
)

// BotHandler exposes the trading service's HTTP surface: control
// endpoints, trade history and brokerage pass-throughs.
type BotHandler struct {
	logger     *xlogger.Logger
	controller *bot.Controller
	gateway    repository.Gateway
	store      repository.Store
	publisher  repository.Publisher
	metrics    repository.Metrics
}

func NewBotHandler(
	lgr *xlogger.Logger,
	controller *bot.Controller,
	gateway repository.Gateway,
	store repository.Store,
	publisher repository.Publisher,
	metrics repository.Metrics,
) *BotHandler {
	return &BotHandler{
		logger:     lgr,
		controller: controller,
		gateway:    gateway,
		store:      store,
		publisher:  publisher,
		metrics:    metrics,
	}
}

func (h *BotHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/health", h.Health)
	g.GET("/status", h.Status)
	g.GET("/strategies", h.Strategies)
	g.GET("/trades", h.Trades)
	g.GET("/account", h.Account)
	g.GET("/positions", h.Positions)
	g.GET("/activities", h.Activities)
	g.GET("/validate-alpaca", h.ValidateAlpaca)
	g.POST("/toggle", h.Toggle)
	g.POST("/strategy", h.SetStrategy)
	g.POST("/execute_trade", h.ExecuteTrade)
}

func (h *BotHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"message": "API is running"})
}

func (h *BotHandler) Status(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{
		"status": string(h.controller.Status()),
	})
}

func (h *BotHandler) Strategies(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"strategies": strategy.Names(),
		"active":     h.controller.Strategy().Name(),
		"default":    strategy.DefaultName,
	})
}

// Toggle flips the run state and publishes the status change. Publish
// failure is logged only: the toggle itself already took effect.
func (h *BotHandler) Toggle(c echo.Context) error {
	status := h.controller.Toggle(c.Request().Context())

	ev := models.NewStatusEvent(status)
	if err := h.publisher.Publish(c.Request().Context(), ev); err != nil {
		h.metrics.RecordError("event_publish")
		h.logger.Error("failed to publish status event", xlogger.Error(err))
	} else {
		h.metrics.RecordEventPublished(string(models.EventStatus))
	}

	return xhttp.SuccessResponse(c, map[string]interface{}{
		"success": true,
		"status":  string(status),
	})
}

func (h *BotHandler) SetStrategy(c echo.Context) error {
	req := &models.StrategyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	name := h.controller.SetStrategy(req.Strategy)

	ev := models.NewStrategyChangeEvent(name)
	if err := h.publisher.Publish(c.Request().Context(), ev); err != nil {
		h.metrics.RecordError("event_publish")
		h.logger.Error("failed to publish strategy change", xlogger.Error(err))
	} else {
		h.metrics.RecordEventPublished(string(models.EventStrategyChange))
	}

	return xhttp.SuccessResponse(c, map[string]interface{}{
		"success":  true,
		"strategy": name,
	})
}

func (h *BotHandler) Trades(c echo.Context) error {
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 10)
	trades, err := h.store.RecentTrades(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("failed to fetch trades", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, trades)
}

func (h *BotHandler) Account(c echo.Context) error {
	account, err := h.gateway.GetAccount(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to fetch account", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("failed to fetch account info").WithError(err))
	}
	return xhttp.SuccessResponse(c, account)
}

func (h *BotHandler) Positions(c echo.Context) error {
	positions, err := h.gateway.GetPositions(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to fetch positions", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("failed to fetch positions").WithError(err))
	}
	return xhttp.SuccessResponse(c, positions)
}

func (h *BotHandler) Activities(c echo.Context) error {
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 20)
	activities, err := h.gateway.GetActivities(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("failed to fetch activities", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("failed to fetch activities").WithError(err))
	}
	return xhttp.SuccessResponse(c, activities)
}

func (h *BotHandler) ValidateAlpaca(c echo.Context) error {
	account, err := h.gateway.GetAccount(c.Request().Context())
	if err != nil {
		return xhttp.SuccessResponse(c, map[string]string{
			"status":  "error",
			"message": "Account not found or API error",
		})
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":        "success",
		"account_id":    account.ID,
		"buying_power":  account.BuyingPower,
		"crypto_status": account.CryptoStatus,
	})
}

// ExecuteTrade submits a manual order outside the scheduler, recording
// and publishing it the same way a scheduled trade would be.
func (h *BotHandler) ExecuteTrade(c echo.Context) error {
	req := &models.ExecuteTradeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()

	order, err := h.gateway.SubmitMarketOrder(ctx, req.Symbol, req.Qty, req.Side)
	if err != nil {
		h.logger.Error("manual trade failed", xlogger.Error(err))
		return xhttp.SuccessResponse(c, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
	}

	// Paper-trading orders may not be filled yet; fall back to the
	// last close so the record carries a usable price.
	price := order.FilledAvgPrice
	if price == 0 {
		if bars, err := h.gateway.GetRecentBars(ctx, req.Symbol, "stock", 1); err == nil && len(bars) > 0 {
			price = bars[len(bars)-1].Close
		}
	}

	trade := &models.ExecutedTrade{
		Symbol:    req.Symbol,
		Side:      req.Side,
		Price:     price,
		Qty:       req.Qty,
		Signal:    req.Side,
		Strategy:  manualStrategy,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.InsertTrade(ctx, trade); err != nil {
		h.logger.Error("failed to store manual trade", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("failed to store trade").WithError(err))
	}
	h.metrics.RecordTrade(trade.Symbol, trade.Side)

	if account, err := h.gateway.GetAccount(ctx); err == nil {
		perf := &models.StrategyPerformance{
			Strategy:       manualStrategy,
			PortfolioValue: account.Cash,
			CapturedAt:     time.Now().UTC(),
		}
		if err := h.store.InsertPerformance(ctx, perf); err != nil {
			h.logger.Error("failed to store manual performance", xlogger.Error(err))
		}
	}

	ev := models.NewTradeEvent(trade.Symbol, trade.Side, trade.Price, manualStrategy)
	if err := h.publisher.Publish(ctx, ev); err != nil {
		h.metrics.RecordError("event_publish")
		h.logger.Error("failed to publish manual trade event", xlogger.Error(err))
	} else {
		h.metrics.RecordEventPublished(string(models.EventTrade))
	}

	return xhttp.SuccessResponse(c, map[string]interface{}{
		"success": true,
		"trade":   trade,
	})
}

const manualStrategy = "manual"
