package alpaca_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ascent/internal/gateway/alpaca"
	"ascent/pkg/logger"
)

func newTestClient(t *testing.T, baseURL, dataURL string) *alpaca.Client {
	t.Helper()
	lgr, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	client, err := alpaca.New(alpaca.Config{
		APIKey:    "test-key",
		SecretKey: "test-secret",
		BaseURL:   baseURL,
		DataURL:   dataURL,
		Timeout:   5 * time.Second,
		RateRPS:   1000,
		RateBurst: 1000,
	}, lgr)
	require.NoError(t, err)
	return client
}

func TestNewRequiresCredentials(t *testing.T) {
	lgr, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	_, err = alpaca.New(alpaca.Config{Timeout: time.Second, RateRPS: 1, RateBurst: 1}, lgr)
	assert.Error(t, err)
}

func TestGetAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/account", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("APCA-API-KEY-ID"))
		assert.Equal(t, "test-secret", r.Header.Get("APCA-API-SECRET-KEY"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "acct-1",
			"cash": "1234.56",
			"buying_power": "2469.12",
			"equity": "1300.00",
			"crypto_status": "ACTIVE"
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)

	account, err := client.GetAccount(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "acct-1", account.ID)
	assert.Equal(t, 1234.56, account.Cash)
	assert.Equal(t, "ACTIVE", account.CryptoStatus)
}

func TestGetAccountServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)

	_, err := client.GetAccount(t.Context())
	assert.Error(t, err)
}

func TestGetRecentBarsTrimsToLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/stocks/AAPL/bars", r.URL.Path)
		assert.Equal(t, "1Day", r.URL.Query().Get("timeframe"))
		assert.Equal(t, "iex", r.URL.Query().Get("feed"))

		type bar struct {
			C float64 `json:"c"`
		}
		bars := make([]bar, 8)
		for i := range bars {
			bars[i] = bar{C: float64(100 + i)}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"bars": bars})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)

	bars, err := client.GetRecentBars(t.Context(), "AAPL", "stock", 5)
	require.NoError(t, err)
	require.Len(t, bars, 5)
	// Trimmed to the most recent entries, order preserved.
	assert.Equal(t, 103.0, bars[0].Close)
	assert.Equal(t, 107.0, bars[4].Close)
}

func TestGetRecentBarsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bars": []}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)

	bars, err := client.GetRecentBars(t.Context(), "AAPL", "stock", 5)
	require.NoError(t, err)
	assert.Nil(t, bars)
}

func TestGetRecentBarsCrypto(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta3/crypto/us/bars", r.URL.Path)
		assert.Equal(t, "BTC/USD", r.URL.Query().Get("symbols"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bars": {"BTC/USD": [{"c": 65000}, {"c": 66000}]}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)

	bars, err := client.GetRecentBars(t.Context(), "BTC/USD", "crypto", 5)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 66000.0, bars[1].Close)
}

func TestSubmitMarketOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/orders", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "AAPL", body["symbol"])
		assert.Equal(t, "1", body["qty"])
		assert.Equal(t, "buy", body["side"])
		assert.Equal(t, "market", body["type"])
		assert.Equal(t, "gtc", body["time_in_force"])
		assert.NotEmpty(t, body["client_order_id"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "ord-1",
			"symbol": "AAPL",
			"qty": "1",
			"side": "buy",
			"type": "market",
			"status": "filled",
			"filled_avg_price": "187.20"
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)

	order, err := client.SubmitMarketOrder(t.Context(), "AAPL", 1, "buy")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", order.ID)
	assert.Equal(t, 187.2, order.FilledAvgPrice)
}
