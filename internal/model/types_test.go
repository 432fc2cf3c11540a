package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitionEvent_Message(t *testing.T) {
	market := MarketSnapshot{ID: "LTCUSD", Exchange: "alpha", Base: "LTC", Quote: "USD"}

	tests := []struct {
		name string
		kind TransitionKind
		want string
	}{
		{name: "listed", kind: Listed, want: "LTC is listed on alpha"},
		{name: "trading", kind: BecameTrading, want: "LTC is trading on alpha"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := TransitionEvent{Kind: tt.kind, Market: market}
			assert.Equal(t, tt.want, ev.Message())
		})
	}
}

func TestTransitionKind_StringUnknown(t *testing.T) {
	assert.Equal(t, "unknown(0)", TransitionKind(0).String())
}

func TestRecordKey(t *testing.T) {
	snap := MarketSnapshot{ID: "BTCUSDT", Exchange: "binance"}
	rec := MarketRecord{ID: "BTCUSDT", Exchange: "binance"}

	assert.Equal(t, "binance\x00BTCUSDT", snap.Key())
	assert.Equal(t, snap.Key(), rec.Key())
	assert.NotEqual(t, RecordKey("BTCUSDT", "bybit"), rec.Key())
}

func TestRecordKey_SlashesDoNotCollide(t *testing.T) {
	assert.NotEqual(t, RecordKey("b/c", "a"), RecordKey("c", "a/b"))
	assert.NotEqual(t, RecordKey("USD", "kraken/BTC"), RecordKey("BTC/USD", "kraken"))
}
