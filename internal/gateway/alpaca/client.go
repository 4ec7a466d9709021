package alpaca

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"ascent/internal/domain/models"
	"ascent/internal/domain/repository"
	xhttp "ascent/pkg/http"
	"ascent/pkg/logger"
)

// Client implements the brokerage Gateway against the Alpaca REST API.
// Every call is rate limited and guarded by a circuit breaker; callers
// treat any failure as recoverable within their unit of work.
type Client struct {
	http    *xhttp.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *logger.Logger

	baseURL   string
	dataURL   string
	apiKey    string
	secretKey string
}

// Config holds Alpaca connection settings.
type Config struct {
	APIKey    string
	SecretKey string
	BaseURL   string
	DataURL   string
	Timeout   time.Duration
	RateRPS   float64
	RateBurst int
}

// New creates an Alpaca gateway client.
func New(cfg Config, lgr *logger.Logger) (*Client, error) {
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("alpaca credentials are required")
	}

	settings := gobreaker.Settings{Name: "alpaca"}
	settings.Interval = 60 * time.Second
	settings.Timeout = 60 * time.Second
	settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 5
	}

	return &Client{
		http:      xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateRPS), cfg.RateBurst),
		breaker:   gobreaker.NewCircuitBreaker(settings),
		logger:    lgr,
		baseURL:   cfg.BaseURL,
		dataURL:   cfg.DataURL,
		apiKey:    cfg.APIKey,
		secretKey: cfg.SecretKey,
	}, nil
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"APCA-API-KEY-ID":     c.apiKey,
		"APCA-API-SECRET-KEY": c.secretKey,
	}
}

func (c *Client) call(ctx context.Context, opts *xhttp.RequestOptions, dest interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.http.SendAndParse(ctx, opts, dest)
	})
	return err
}

// GetAccount fetches the brokerage account snapshot.
func (c *Client) GetAccount(ctx context.Context) (*models.Account, error) {
	var account models.Account
	err := c.call(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + "/v2/account",
		Headers: c.headers(),
	}, &account)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &account, nil
}

// GetPositions fetches all open positions.
func (c *Client) GetPositions(ctx context.Context) ([]models.Position, error) {
	var positions []models.Position
	err := c.call(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + "/v2/positions",
		Headers: c.headers(),
	}, &positions)
	if err != nil {
		return nil, fmt.Errorf("get positions: %w", err)
	}
	return positions, nil
}

// GetActivities fetches recent account activity records.
func (c *Client) GetActivities(ctx context.Context, limit int) ([]models.Activity, error) {
	var activities []models.Activity
	err := c.call(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + "/v2/account/activities",
		Headers: c.headers(),
		QueryParams: map[string][]string{
			"page_size": {strconv.Itoa(limit)},
		},
	}, &activities)
	if err != nil {
		return nil, fmt.Errorf("get activities: %w", err)
	}
	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}

type stockBarsResponse struct {
	Bars []models.Bar `json:"bars"`
}

type cryptoBarsResponse struct {
	Bars map[string][]models.Bar `json:"bars"`
}

// GetRecentBars fetches daily bars for a symbol, chronologically
// ascending, trimmed to the last limit entries.
func (c *Client) GetRecentBars(ctx context.Context, symbol, marketType string, limit int) ([]models.Bar, error) {
	now := time.Now().UTC()
	days := limit * 2
	if days < 10 {
		days = 10
	}
	start := now.AddDate(0, 0, -days)

	var bars []models.Bar
	if marketType == "crypto" {
		var resp cryptoBarsResponse
		err := c.call(ctx, &xhttp.RequestOptions{
			Method:  xhttp.MethodGet,
			URL:     c.dataURL + "/v1beta3/crypto/us/bars",
			Headers: c.headers(),
			QueryParams: map[string][]string{
				"symbols":   {symbol},
				"timeframe": {"1Day"},
				"start":     {start.Format(time.RFC3339)},
				"end":       {now.Format(time.RFC3339)},
			},
		}, &resp)
		if err != nil {
			return nil, fmt.Errorf("get crypto bars %s: %w", symbol, err)
		}
		bars = resp.Bars[symbol]
	} else {
		var resp stockBarsResponse
		err := c.call(ctx, &xhttp.RequestOptions{
			Method:  xhttp.MethodGet,
			URL:     c.dataURL + "/v2/stocks/" + symbol + "/bars",
			Headers: c.headers(),
			QueryParams: map[string][]string{
				"timeframe": {"1Day"},
				"start":     {start.Format(time.RFC3339)},
				"end":       {now.Format(time.RFC3339)},
				"feed":      {"iex"},
			},
		}, &resp)
		if err != nil {
			return nil, fmt.Errorf("get bars %s: %w", symbol, err)
		}
		bars = resp.Bars
	}

	if len(bars) == 0 {
		c.logger.Warn("no bar data", logger.String("symbol", symbol), logger.String("market_type", marketType))
		return nil, nil
	}
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

// SubmitMarketOrder submits a good-till-cancelled market order.
func (c *Client) SubmitMarketOrder(ctx context.Context, symbol string, qty float64, side string) (*models.Order, error) {
	c.logger.Info("submitting market order",
		logger.String("symbol", symbol),
		logger.String("side", side),
		logger.Float64("qty", qty))

	var order models.Order
	err := c.call(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     c.baseURL + "/v2/orders",
		Headers: c.headers(),
		Body: map[string]interface{}{
			"symbol":          symbol,
			"qty":             strconv.FormatFloat(qty, 'f', -1, 64),
			"side":            side,
			"type":            "market",
			"time_in_force":   "gtc",
			"client_order_id": uuid.NewString(),
		},
	}, &order)
	if err != nil {
		return nil, fmt.Errorf("submit %s order for %s: %w", side, symbol, err)
	}
	return &order, nil
}

var _ repository.Gateway = (*Client)(nil)
