package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ascent/internal/bot"
	"ascent/internal/domain/models"
	"ascent/pkg/logger"
)

type fakeStore struct {
	state  *models.BotState
	trades []*models.ExecutedTrade
	perfs  []*models.StrategyPerformance
}

func (f *fakeStore) Init(ctx context.Context) error { return nil }

func (f *fakeStore) LoadBotState(ctx context.Context) (*models.BotState, error) {
	if f.state == nil {
		f.state = &models.BotState{ID: 1, Running: true}
	}
	return f.state, nil
}

func (f *fakeStore) SaveBotState(ctx context.Context, state *models.BotState) error { return nil }

func (f *fakeStore) InsertTrade(ctx context.Context, trade *models.ExecutedTrade) error {
	f.trades = append(f.trades, trade)
	return nil
}

func (f *fakeStore) InsertPerformance(ctx context.Context, perf *models.StrategyPerformance) error {
	f.perfs = append(f.perfs, perf)
	return nil
}

func (f *fakeStore) RecentTrades(ctx context.Context, limit int) ([]*models.ExecutedTrade, error) {
	if limit > len(f.trades) {
		limit = len(f.trades)
	}
	return f.trades[:limit], nil
}

func (f *fakeStore) Health(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                     { return nil }

type fakeGateway struct {
	bars []models.Bar
}

func (f *fakeGateway) GetAccount(ctx context.Context) (*models.Account, error) {
	return &models.Account{ID: "acct", Cash: 1000, BuyingPower: 2000, CryptoStatus: "ACTIVE"}, nil
}

func (f *fakeGateway) GetPositions(ctx context.Context) ([]models.Position, error) {
	return []models.Position{{Symbol: "AAPL", Qty: 2}}, nil
}

func (f *fakeGateway) GetActivities(ctx context.Context, limit int) ([]models.Activity, error) {
	return nil, nil
}

func (f *fakeGateway) GetRecentBars(ctx context.Context, symbol, marketType string, limit int) ([]models.Bar, error) {
	return f.bars, nil
}

func (f *fakeGateway) SubmitMarketOrder(ctx context.Context, symbol string, qty float64, side string) (*models.Order, error) {
	return &models.Order{ID: "ord", Symbol: symbol, Qty: qty, Side: side, FilledAvgPrice: 150}, nil
}

type fakePublisher struct {
	events []models.Event
}

func (f *fakePublisher) Publish(ctx context.Context, ev models.Event) error {
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type noopMetrics struct{}

func (noopMetrics) RecordTick()                          {}
func (noopMetrics) RecordTrade(symbol, side string)      {}
func (noopMetrics) RecordEventPublished(kind string)     {}
func (noopMetrics) RecordLastPrice(string, float64)      {}
func (noopMetrics) RecordError(kind string)              {}
func (noopMetrics) RecordLatency(op string, sec float64) {}
func (noopMetrics) RecordBroadcast(delivered int)        {}
func (noopMetrics) SetObserverCount(n int)               {}

type fixture struct {
	echo      *echo.Echo
	store     *fakeStore
	publisher *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	lgr, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	store := &fakeStore{}
	pub := &fakePublisher{}
	controller := bot.NewController(context.Background(), store, lgr, "momentum")
	h := NewBotHandler(lgr, controller, &fakeGateway{}, store, pub, noopMetrics{})

	e := echo.New()
	h.RegisterRoutes(e)
	return &fixture{echo: e, store: store, publisher: pub}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func dataField(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestStatusEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/status", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Running", dataField(t, rec)["status"])
}

func TestToggleEndpointFlipsAndPublishes(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/toggle", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Paused", dataField(t, rec)["status"])
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, models.EventStatus, f.publisher.events[0].Type)
	assert.Equal(t, "Paused", f.publisher.events[0].Status)

	rec = f.do(http.MethodPost, "/api/toggle", "")
	assert.Equal(t, "Running", dataField(t, rec)["status"])
}

func TestStrategyEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/strategy", `{"strategy":"breakout"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "breakout", dataField(t, rec)["strategy"])
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, models.EventStrategyChange, f.publisher.events[0].Type)
	assert.Equal(t, "breakout", f.publisher.events[0].Strategy)
}

func TestStrategyEndpointUnknownFallsBack(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/strategy", `{"strategy":"astrology"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "momentum", dataField(t, rec)["strategy"])
}

func TestStrategyEndpointRequiresName(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/strategy", `{}`)

	var envelope struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, http.StatusBadRequest, envelope.Status)
}

func TestExecuteTradeEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/execute_trade", `{"symbol":"NVDA","side":"sell","qty":2}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, dataField(t, rec)["success"])

	require.Len(t, f.store.trades, 1)
	trade := f.store.trades[0]
	assert.Equal(t, "NVDA", trade.Symbol)
	assert.Equal(t, "sell", trade.Side)
	assert.Equal(t, 150.0, trade.Price)
	assert.Equal(t, 2.0, trade.Qty)
	assert.Equal(t, "manual", trade.Strategy)

	require.Len(t, f.store.perfs, 1)
	assert.Equal(t, 1000.0, f.store.perfs[0].PortfolioValue)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, models.EventTrade, f.publisher.events[0].Type)
}

func TestExecuteTradeDefaults(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/execute_trade", `{}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.store.trades, 1)
	assert.Equal(t, "AAPL", f.store.trades[0].Symbol)
	assert.Equal(t, "buy", f.store.trades[0].Side)
	assert.Equal(t, 1.0, f.store.trades[0].Qty)
}

func TestTradesEndpoint(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.store.trades = append(f.store.trades, &models.ExecutedTrade{
			ID: int64(i + 1), Symbol: "AAPL", Side: "buy", CreatedAt: time.Now(),
		})
	}

	rec := f.do(http.MethodGet, "/api/trades?limit=2", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data []models.ExecutedTrade `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 2)
}

func TestValidateAlpacaEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/validate-alpaca", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	data := dataField(t, rec)
	assert.Equal(t, "success", data["status"])
	assert.Equal(t, "acct", data["account_id"])
}
