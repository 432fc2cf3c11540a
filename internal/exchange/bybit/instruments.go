package bybit

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rickgao/listing-watch/internal/model"
)

// LoadMarkets fetches every spot instrument by paginating through results.
func (c *Client) LoadMarkets(ctx context.Context) ([]model.MarketSnapshot, error) {
	var markets []model.MarketSnapshot
	cursor := ""

	for {
		resp, err := c.GetInstruments(ctx, cursor)
		if err != nil {
			return nil, err
		}

		for _, inst := range resp.Result.List {
			markets = append(markets, c.toSnapshot(inst))
		}

		if resp.Result.NextPageCursor == "" || len(resp.Result.List) == 0 {
			break
		}
		cursor = resp.Result.NextPageCursor
	}

	return markets, nil
}

// GetInstruments fetches one page of spot instruments.
func (c *Client) GetInstruments(ctx context.Context, cursor string) (*InstrumentsResponse, error) {
	query := url.Values{}
	query.Set("category", "spot")
	if c.pageSize > 0 {
		query.Set("limit", strconv.Itoa(c.pageSize))
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	var resp InstrumentsResponse
	if err := c.get(ctx, "/v5/market/instruments-info", query, &resp); err != nil {
		return nil, fmt.Errorf("get instruments: %w", err)
	}
	return &resp, nil
}

func (c *Client) toSnapshot(inst Instrument) model.MarketSnapshot {
	trading := inst.Status == StatusTrading
	return model.MarketSnapshot{
		ID:       inst.Symbol,
		Exchange: c.name,
		Base:     inst.BaseCoin,
		Quote:    inst.QuoteCoin,
		Status:   inst.Status,
		Trading:  &trading,
		TickSize: inst.PriceFilter.TickSize,
		LotStep:  inst.LotSizeFilter.BasePrecision,
		Metadata: map[string]string{
			"innovation":     inst.Innovation,
			"margin_trading": inst.MarginTrading,
		},
	}
}
