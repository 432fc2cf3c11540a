package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/listing-watch/internal/model"
)

var (
	live   = model.RunContext{IsSeedRun: false}
	seed   = model.RunContext{IsSeedRun: true}
	fixedT = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newTestReconciler(check TradingCheck) *Reconciler {
	r := New(check)
	r.now = func() time.Time { return fixedT }
	return r
}

func never(model.MarketSnapshot) bool { return false }

func snapshot(id, base string) model.MarketSnapshot {
	return model.MarketSnapshot{ID: id, Exchange: "alpha", Base: base, Quote: "USD"}
}

func TestReconcile_NewMarket(t *testing.T) {
	tests := []struct {
		name        string
		check       TradingCheck
		rc          model.RunContext
		wantTrading bool
		wantEvent   bool
	}{
		{"live trading", AlwaysTrading, live, true, true},
		{"live not trading", never, live, false, true},
		{"seed trading", AlwaysTrading, seed, true, false},
		{"seed not trading", never, seed, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestReconciler(tt.check)
			snap := snapshot("LTC/USD", "LTC")

			rec, ev := r.Reconcile(snap, nil, tt.rc)

			assert.Equal(t, "LTC/USD", rec.ID)
			assert.Equal(t, "alpha", rec.Exchange)
			assert.Equal(t, "LTC", rec.Base)
			assert.Equal(t, tt.wantTrading, rec.IsTrading)
			assert.Equal(t, fixedT, rec.FirstSeenAt)
			assert.Equal(t, fixedT, rec.LastSeenAt)

			if !tt.wantEvent {
				assert.Nil(t, ev)
				return
			}
			require.NotNil(t, ev)
			assert.Equal(t, model.Listed, ev.Kind)
			assert.Equal(t, snap, ev.Market)
		})
	}
}

func TestReconcile_BecameTrading(t *testing.T) {
	earlier := fixedT.Add(-time.Hour)
	prior := &model.MarketRecord{ID: "BTC/USD", Exchange: "alpha", IsTrading: false, FirstSeenAt: earlier, LastSeenAt: earlier}

	r := newTestReconciler(AlwaysTrading)
	rec, ev := r.Reconcile(snapshot("BTC/USD", "BTC"), prior, live)

	require.NotNil(t, ev)
	assert.Equal(t, model.BecameTrading, ev.Kind)
	assert.True(t, rec.IsTrading)
	assert.Equal(t, earlier, rec.FirstSeenAt)
	assert.Equal(t, fixedT, rec.LastSeenAt)
	assert.False(t, prior.IsTrading, "prior record must not be mutated")
}

func TestReconcile_StillNotTrading(t *testing.T) {
	prior := &model.MarketRecord{ID: "BTC/USD", Exchange: "alpha", IsTrading: false}

	rec, ev := newTestReconciler(never).Reconcile(snapshot("BTC/USD", "BTC"), prior, live)

	assert.Nil(t, ev)
	assert.False(t, rec.IsTrading)
	assert.Equal(t, fixedT, rec.LastSeenAt)
}

func TestReconcile_RefreshesMarketDetails(t *testing.T) {
	prior := &model.MarketRecord{
		ID: "BTCUSDT", Exchange: "alpha", IsTrading: true,
		Status:   "TRADING",
		TickSize: decimal.RequireFromString("0.1"),
		Metadata: map[string]string{"innovation": "1"},
	}
	snap := model.MarketSnapshot{
		ID: "BTCUSDT", Exchange: "alpha", Base: "BTC", Quote: "USDT",
		Status:   "BREAK",
		TickSize: decimal.RequireFromString("0.01"),
		LotStep:  decimal.RequireFromString("0.00001"),
		Metadata: map[string]string{"innovation": "0"},
	}

	rec, ev := newTestReconciler(never).Reconcile(snap, prior, live)

	assert.Nil(t, ev)
	assert.True(t, rec.IsTrading)
	assert.Equal(t, "BREAK", rec.Status)
	assert.True(t, rec.TickSize.Equal(decimal.RequireFromString("0.01")))
	assert.True(t, rec.LotStep.Equal(decimal.RequireFromString("0.00001")))
	assert.Equal(t, map[string]string{"innovation": "0"}, rec.Metadata)
	assert.Equal(t, "0.1", prior.TickSize.String(), "prior record must not be mutated")
}

func TestReconcile_AlreadyTrading(t *testing.T) {
	prior := &model.MarketRecord{ID: "ETH/USD", Exchange: "alpha", IsTrading: true}

	rec, ev := newTestReconciler(AlwaysTrading).Reconcile(snapshot("ETH/USD", "ETH"), prior, live)

	assert.Nil(t, ev, "already trading must never emit BecameTrading")
	assert.True(t, rec.IsTrading)
}

// Assumed policy: an exchange reporting a trading market as no longer trading
// keeps the record trading and emits nothing.
func TestReconcile_NoDowngrade(t *testing.T) {
	prior := &model.MarketRecord{ID: "ETH/USD", Exchange: "alpha", IsTrading: true}

	rec, ev := newTestReconciler(never).Reconcile(snapshot("ETH/USD", "ETH"), prior, live)

	assert.Nil(t, ev)
	assert.True(t, rec.IsTrading)
}

func TestReconcile_SeedRunSuppressesBecameTrading(t *testing.T) {
	prior := &model.MarketRecord{ID: "BTC/USD", Exchange: "alpha", IsTrading: false}

	rec, ev := newTestReconciler(AlwaysTrading).Reconcile(snapshot("BTC/USD", "BTC"), prior, seed)

	assert.Nil(t, ev)
	assert.True(t, rec.IsTrading)
}

func TestReconcile_Idempotent(t *testing.T) {
	for _, check := range []TradingCheck{AlwaysTrading, never} {
		r := newTestReconciler(check)
		snap := snapshot("SOL/USD", "SOL")

		first, ev := r.Reconcile(snap, nil, live)
		require.NotNil(t, ev)

		second, ev := r.Reconcile(snap, &first, live)
		assert.Nil(t, ev)
		assert.Equal(t, first.IsTrading, second.IsTrading)
	}
}

func TestTradingChecks(t *testing.T) {
	yes, no := true, false

	assert.True(t, AlwaysTrading(model.MarketSnapshot{Trading: &no}))
	assert.True(t, ReportedTrading(model.MarketSnapshot{}))
	assert.True(t, ReportedTrading(model.MarketSnapshot{Trading: &yes}))
	assert.False(t, ReportedTrading(model.MarketSnapshot{Trading: &no}))
}

func TestCheckByName(t *testing.T) {
	no := false
	halted := model.MarketSnapshot{Trading: &no}

	check, err := CheckByName("always")
	require.NoError(t, err)
	assert.True(t, check(halted))

	check, err = CheckByName("")
	require.NoError(t, err)
	assert.True(t, check(halted))

	check, err = CheckByName("reported")
	require.NoError(t, err)
	assert.False(t, check(halted))

	_, err = CheckByName("vibes")
	assert.EqualError(t, err, `unknown trading check "vibes"`)
}

func TestNew_NilCheck(t *testing.T) {
	rec, _ := New(nil).Reconcile(snapshot("X/USD", "X"), nil, live)
	assert.True(t, rec.IsTrading)
}
