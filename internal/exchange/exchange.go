// Package exchange defines the market-listing source consumed by the watcher
// and builds adapters by exchange name.
//
// Adapters:
//   - binance: spot exchangeInfo via github.com/adshao/go-binance/v2
//   - bybit:   v5 instruments-info (spot) over REST with retry
package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/rickgao/listing-watch/internal/config"
	"github.com/rickgao/listing-watch/internal/exchange/binance"
	"github.com/rickgao/listing-watch/internal/exchange/bybit"
	"github.com/rickgao/listing-watch/internal/model"
)

// Client loads the current market list of one exchange.
type Client interface {
	// Name returns the configured exchange name.
	Name() string

	// LoadMarkets returns every market the exchange currently reports.
	// Each snapshot has Exchange set to Name().
	LoadMarkets(ctx context.Context) ([]model.MarketSnapshot, error)
}

// FetchError collapses network, auth and rate-limit failures of one exchange.
type FetchError struct {
	Exchange string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch markets from %s: %v", e.Exchange, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Options are shared by every adapter.
type Options struct {
	Timeout time.Duration
	Logger  *slog.Logger
}

type factory func(cfg config.ExchangeConfig, opts Options) Client

var adapters = map[string]factory{
	"binance": func(cfg config.ExchangeConfig, opts Options) Client {
		return binance.New(cfg.Name, cfg.APIKey, cfg.APISecret,
			binance.WithBaseURL(cfg.BaseURL),
			binance.WithTimeout(opts.Timeout),
		)
	},
	"bybit": func(cfg config.ExchangeConfig, opts Options) Client {
		return bybit.NewClient(cfg.Name, cfg.BaseURL,
			bybit.WithTimeout(opts.Timeout),
			bybit.WithLogger(opts.Logger),
		)
	},
}

// Supported returns the adapter names in sorted order.
func Supported() []string {
	names := lo.Keys(adapters)
	sort.Strings(names)
	return names
}

// New builds the adapter for cfg.Name.
func New(cfg config.ExchangeConfig, opts Options) (Client, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	build, ok := adapters[strings.ToLower(cfg.Name)]
	if !ok {
		return nil, fmt.Errorf("unsupported exchange %q (supported: %s)", cfg.Name, strings.Join(Supported(), ", "))
	}

	client := build(cfg, opts)
	if len(cfg.QuoteAssets) > 0 {
		client = WithQuoteFilter(client, cfg.QuoteAssets)
	}
	return client, nil
}

// WithQuoteFilter drops markets whose quote asset is not listed.
func WithQuoteFilter(c Client, quotes []string) Client {
	return &quoteFilter{
		Client: c,
		quotes: lo.SliceToMap(quotes, func(q string) (string, struct{}) {
			return strings.ToUpper(q), struct{}{}
		}),
	}
}

type quoteFilter struct {
	Client
	quotes map[string]struct{}
}

func (f *quoteFilter) LoadMarkets(ctx context.Context) ([]model.MarketSnapshot, error) {
	markets, err := f.Client.LoadMarkets(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(markets, func(m model.MarketSnapshot, _ int) bool {
		_, ok := f.quotes[strings.ToUpper(m.Quote)]
		return ok
	}), nil
}
