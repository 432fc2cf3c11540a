// Package reconcile classifies a market snapshot against its stored record.
//
// Per market key:
//
//	Unknown --first observation--------> Listed or Trading (emits Listed unless seed run)
//	Listed  --trading check true-------> Trading           (emits BecameTrading)
//	Trading --any observation----------> Trading           (no event, never downgraded)
//
// Unknown is the absence of a record.
package reconcile

import (
	"fmt"
	"time"

	"github.com/rickgao/listing-watch/internal/config"
	"github.com/rickgao/listing-watch/internal/model"
)

// TradingCheck decides whether a market is currently tradable.
type TradingCheck func(snap model.MarketSnapshot) bool

// AlwaysTrading reports every market as trading. It is the default policy and
// a placeholder for real trading detection.
func AlwaysTrading(model.MarketSnapshot) bool {
	return true
}

// ReportedTrading trusts the exchange's raw trading flag and falls back to
// true when the exchange reports none.
func ReportedTrading(snap model.MarketSnapshot) bool {
	if snap.Trading == nil {
		return true
	}
	return *snap.Trading
}

// CheckByName resolves a scheduler.trading_check value.
func CheckByName(name string) (TradingCheck, error) {
	switch name {
	case "", config.TradingCheckAlways:
		return AlwaysTrading, nil
	case config.TradingCheckReported:
		return ReportedTrading, nil
	default:
		return nil, fmt.Errorf("unknown trading check %q", name)
	}
}

// Reconciler compares snapshots against stored records.
type Reconciler struct {
	isTrading TradingCheck
	now       func() time.Time
}

// New creates a Reconciler. A nil check uses AlwaysTrading.
func New(check TradingCheck) *Reconciler {
	if check == nil {
		check = AlwaysTrading
	}
	return &Reconciler{
		isTrading: check,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Reconcile returns the record to persist and at most one transition.
// prior is nil when the market has never been stored.
func (r *Reconciler) Reconcile(snap model.MarketSnapshot, prior *model.MarketRecord, rc model.RunContext) (model.MarketRecord, *model.TransitionEvent) {
	now := r.now()
	trading := r.isTrading(snap)

	if prior == nil {
		rec := model.MarketRecord{
			ID:          snap.ID,
			Exchange:    snap.Exchange,
			IsTrading:   trading,
			FirstSeenAt: now,
		}
		observe(&rec, snap, now)
		if rc.IsSeedRun {
			return rec, nil
		}
		return rec, &model.TransitionEvent{Kind: model.Listed, Market: snap}
	}

	rec := *prior
	observe(&rec, snap, now)

	if !prior.IsTrading && trading {
		rec.IsTrading = true
		if rc.IsSeedRun {
			return rec, nil
		}
		return rec, &model.TransitionEvent{Kind: model.BecameTrading, Market: snap}
	}

	// Already trading or still not trading. A trading record stays trading
	// even when the exchange stops reporting it as such.
	return rec, nil
}

// observe copies the snapshot's descriptive fields onto rec.
func observe(rec *model.MarketRecord, snap model.MarketSnapshot, now time.Time) {
	rec.Base = snap.Base
	rec.Quote = snap.Quote
	rec.Status = snap.Status
	rec.TickSize = snap.TickSize
	rec.LotStep = snap.LotStep
	rec.Metadata = snap.Metadata
	rec.LastSeenAt = now
}
