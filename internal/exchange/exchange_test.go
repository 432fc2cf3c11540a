package exchange

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/listing-watch/internal/config"
	"github.com/rickgao/listing-watch/internal/model"
)

type staticClient struct {
	name    string
	markets []model.MarketSnapshot
	err     error
}

func (c *staticClient) Name() string { return c.name }

func (c *staticClient) LoadMarkets(ctx context.Context) ([]model.MarketSnapshot, error) {
	return c.markets, c.err
}

func TestNew(t *testing.T) {
	for _, name := range []string{"binance", "bybit", "Binance"} {
		t.Run(name, func(t *testing.T) {
			c, err := New(config.ExchangeConfig{Name: name}, Options{})
			require.NoError(t, err)
			assert.Equal(t, name, c.Name())
		})
	}
}

func TestNew_Unsupported(t *testing.T) {
	_, err := New(config.ExchangeConfig{Name: "mtgox"}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported exchange "mtgox"`)
	assert.Contains(t, err.Error(), "binance, bybit")
}

func TestNew_QuoteFilter(t *testing.T) {
	c, err := New(config.ExchangeConfig{Name: "bybit", QuoteAssets: []string{"usdt"}}, Options{})
	require.NoError(t, err)
	_, ok := c.(*quoteFilter)
	assert.True(t, ok, "quote_assets should wrap the adapter")
	assert.Equal(t, "bybit", c.Name())
}

func TestWithQuoteFilter(t *testing.T) {
	inner := &staticClient{
		name: "alpha",
		markets: []model.MarketSnapshot{
			{ID: "BTCUSDT", Base: "BTC", Quote: "USDT"},
			{ID: "ETHBTC", Base: "ETH", Quote: "BTC"},
			{ID: "SOLUSDC", Base: "SOL", Quote: "usdc"},
		},
	}

	got, err := WithQuoteFilter(inner, []string{"USDT", "usdc"}).LoadMarkets(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "BTCUSDT", got[0].ID)
	assert.Equal(t, "SOLUSDC", got[1].ID)
}

func TestWithQuoteFilter_PropagatesError(t *testing.T) {
	boom := errors.New("rate limited")
	inner := &staticClient{name: "alpha", err: boom}

	_, err := WithQuoteFilter(inner, []string{"USDT"}).LoadMarkets(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestFetchError(t *testing.T) {
	cause := errors.New("timeout")
	err := error(&FetchError{Exchange: "binance", Err: cause})

	assert.Equal(t, "fetch markets from binance: timeout", err.Error())
	assert.ErrorIs(t, err, cause)
}
