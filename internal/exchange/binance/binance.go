// Package binance lists Binance spot markets via the exchangeInfo endpoint.
package binance

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/rickgao/listing-watch/internal/model"
)

// StatusTrading is the symbol status Binance reports for open markets.
const StatusTrading = "TRADING"

// Client wraps a go-binance REST client.
type Client struct {
	name string
	cli  *binance.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the REST endpoint. Empty keeps the default.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.cli.BaseURL = url
		}
	}
}

// WithTimeout sets the HTTP client timeout. Zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.cli.HTTPClient = &http.Client{Timeout: d}
		}
	}
}

// New creates a Binance adapter. Keys may be empty; exchangeInfo is public.
func New(name, apiKey, apiSecret string, opts ...Option) *Client {
	c := &Client{
		name: name,
		cli:  binance.NewClient(apiKey, apiSecret),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string {
	return c.name
}

// LoadMarkets returns every spot symbol in exchangeInfo, delisted ones included.
func (c *Client) LoadMarkets(ctx context.Context) ([]model.MarketSnapshot, error) {
	info, err := c.cli.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, err
	}

	return lo.Map(info.Symbols, func(s binance.Symbol, _ int) model.MarketSnapshot {
		return c.toSnapshot(s)
	}), nil
}

func (c *Client) toSnapshot(s binance.Symbol) model.MarketSnapshot {
	trading := s.Status == StatusTrading
	snap := model.MarketSnapshot{
		ID:       s.Symbol,
		Exchange: c.name,
		Base:     s.BaseAsset,
		Quote:    s.QuoteAsset,
		Status:   s.Status,
		Trading:  &trading,
		Metadata: map[string]string{
			"spot_trading_allowed": strconv.FormatBool(s.IsSpotTradingAllowed),
		},
	}

	if pf := s.PriceFilter(); pf != nil {
		snap.TickSize = parseDecimal(pf.TickSize)
	}
	if lf := s.LotSizeFilter(); lf != nil {
		snap.LotStep = parseDecimal(lf.StepSize)
	}
	return snap
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
