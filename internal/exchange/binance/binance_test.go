package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exchangeInfoBody = `{
  "timezone": "UTC",
  "serverTime": 1700000000000,
  "rateLimits": [],
  "exchangeFilters": [],
  "symbols": [
    {
      "symbol": "BTCUSDT",
      "status": "TRADING",
      "baseAsset": "BTC",
      "baseAssetPrecision": 8,
      "quoteAsset": "USDT",
      "quotePrecision": 8,
      "orderTypes": ["LIMIT", "MARKET"],
      "icebergAllowed": true,
      "ocoAllowed": true,
      "isSpotTradingAllowed": true,
      "isMarginTradingAllowed": true,
      "filters": [
        {"filterType": "PRICE_FILTER", "minPrice": "0.01", "maxPrice": "1000000.00", "tickSize": "0.01"},
        {"filterType": "LOT_SIZE", "minQty": "0.00001", "maxQty": "9000.0", "stepSize": "0.00001"}
      ],
      "permissions": ["SPOT"]
    },
    {
      "symbol": "NEWUSDT",
      "status": "BREAK",
      "baseAsset": "NEW",
      "baseAssetPrecision": 8,
      "quoteAsset": "USDT",
      "quotePrecision": 8,
      "orderTypes": ["LIMIT"],
      "isSpotTradingAllowed": false,
      "filters": [],
      "permissions": ["SPOT"]
    }
  ]
}`

func TestClient_LoadMarkets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/exchangeInfo", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(exchangeInfoBody))
	}))
	defer server.Close()

	c := New("binance", "", "", WithBaseURL(server.URL), WithTimeout(5*time.Second))

	markets, err := c.LoadMarkets(context.Background())
	require.NoError(t, err)
	require.Len(t, markets, 2)

	btc := markets[0]
	assert.Equal(t, "BTCUSDT", btc.ID)
	assert.Equal(t, "binance", btc.Exchange)
	assert.Equal(t, "BTC", btc.Base)
	assert.Equal(t, "USDT", btc.Quote)
	require.NotNil(t, btc.Trading)
	assert.True(t, *btc.Trading)
	assert.True(t, btc.TickSize.Equal(decimal.RequireFromString("0.01")))
	assert.True(t, btc.LotStep.Equal(decimal.RequireFromString("0.00001")))
	assert.Equal(t, "true", btc.Metadata["spot_trading_allowed"])

	pending := markets[1]
	assert.Equal(t, "NEW", pending.Base)
	assert.Equal(t, "BREAK", pending.Status)
	require.NotNil(t, pending.Trading)
	assert.False(t, *pending.Trading)
	assert.True(t, pending.TickSize.IsZero())
	assert.Equal(t, "false", pending.Metadata["spot_trading_allowed"])
}

func TestClient_LoadMarketsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(`{"code":-1003,"msg":"Too many requests"}`))
	}))
	defer server.Close()

	c := New("binance", "", "", WithBaseURL(server.URL))

	_, err := c.LoadMarkets(context.Background())
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	c := New("binance-main", "", "", WithBaseURL(""), WithTimeout(0))
	assert.Equal(t, "binance-main", c.Name())
	assert.NotEmpty(t, c.cli.BaseURL)
}
