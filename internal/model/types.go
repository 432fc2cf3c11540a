package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Exchange View
// -----------------------------------------------------------------------------

// MarketSnapshot is one exchange's current report of a trading pair.
// Adapters construct it fully at fetch time, including the exchange name.
type MarketSnapshot struct {
	ID       string          // Exchange-native symbol (e.g. "BTCUSDT")
	Exchange string          // Exchange name as configured (e.g. "binance")
	Base     string          // Base asset (e.g. "BTC")
	Quote    string          // Quote asset (e.g. "USDT")
	Status   string          // Raw status string reported by the exchange
	Trading  *bool           // Raw trading flag, nil if the exchange reports none
	TickSize decimal.Decimal // Price increment, zero if unknown
	LotStep  decimal.Decimal // Quantity increment, zero if unknown
	Metadata map[string]string
}

// Key returns the store key for the snapshot.
func (s MarketSnapshot) Key() string {
	return RecordKey(s.ID, s.Exchange)
}

// -----------------------------------------------------------------------------
// Durable View
// -----------------------------------------------------------------------------

// MarketRecord is the persisted belief about one market.
// IsTrading never regresses from true to false. Status, TickSize, LotStep and
// Metadata mirror the latest snapshot.
type MarketRecord struct {
	ID          string
	Exchange    string
	Base        string
	Quote       string
	IsTrading   bool
	Status      string
	TickSize    decimal.Decimal
	LotStep     decimal.Decimal
	Metadata    map[string]string
	FirstSeenAt time.Time
	LastSeenAt  time.Time
}

// Key returns the store key for the record.
func (r MarketRecord) Key() string {
	return RecordKey(r.ID, r.Exchange)
}

// RecordKey builds the composite (id, exchange) key. The parts are joined
// with a NUL byte, which cannot occur in an exchange name or symbol.
func RecordKey(id, exchange string) string {
	return exchange + "\x00" + id
}

// -----------------------------------------------------------------------------
// Cycle Types
// -----------------------------------------------------------------------------

// RunContext is fixed at cycle start and never mutated mid-cycle.
type RunContext struct {
	CycleID   string
	IsSeedRun bool // true only for the first cycle after an empty store; suppresses alerts
}

// TransitionKind classifies a detected market state change.
type TransitionKind int

const (
	Listed TransitionKind = iota + 1
	BecameTrading
)

func (k TransitionKind) String() string {
	switch k {
	case Listed:
		return "listed"
	case BecameTrading:
		return "trading"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// TransitionEvent is emitted at most once per market per cycle.
type TransitionEvent struct {
	Kind   TransitionKind
	Market MarketSnapshot
}

// Message renders the human-readable alert text, e.g. "BTC is listed on binance".
func (e TransitionEvent) Message() string {
	return fmt.Sprintf("%s is %s on %s", e.Market.Base, e.Kind, e.Market.Exchange)
}

// DeliveryOutcome is the result of one delivery attempt to one recipient.
type DeliveryOutcome struct {
	Channel   string
	Recipient string
	Success   bool
	Err       error
}
