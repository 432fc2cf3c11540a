package bybit

import "github.com/shopspring/decimal"

// StatusTrading is the instrument status Bybit reports for open markets.
const StatusTrading = "Trading"

// envelope is the common wrapper of every v5 response.
type envelope struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
}

// InstrumentsResponse is the v5 /market/instruments-info payload.
type InstrumentsResponse struct {
	envelope
	Result struct {
		Category       string       `json:"category"`
		List           []Instrument `json:"list"`
		NextPageCursor string       `json:"nextPageCursor"`
	} `json:"result"`
}

// Instrument is one spot symbol.
type Instrument struct {
	Symbol        string `json:"symbol"`
	BaseCoin      string `json:"baseCoin"`
	QuoteCoin     string `json:"quoteCoin"`
	Status        string `json:"status"`
	Innovation    string `json:"innovation"`
	MarginTrading string `json:"marginTrading"`
	LotSizeFilter struct {
		BasePrecision decimal.Decimal `json:"basePrecision"`
		MinOrderQty   decimal.Decimal `json:"minOrderQty"`
	} `json:"lotSizeFilter"`
	PriceFilter struct {
		TickSize decimal.Decimal `json:"tickSize"`
	} `json:"priceFilter"`
}
