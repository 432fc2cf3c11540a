package watcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/rickgao/listing-watch/internal/exchange"
	"github.com/rickgao/listing-watch/internal/metrics"
	"github.com/rickgao/listing-watch/internal/model"
	"github.com/rickgao/listing-watch/internal/reconcile"
	"github.com/rickgao/listing-watch/internal/store"
)

// Notifier delivers one transition to every subscriber.
type Notifier interface {
	Notify(ctx context.Context, ev model.TransitionEvent) []model.DeliveryOutcome
}

// Result summarizes one exchange pass.
type Result struct {
	Exchange    string
	Markets     int
	Transitions int
	StoreErrors int
}

// Processor runs fetch, reconcile, persist and notify for one exchange.
type Processor struct {
	store        store.Store
	reconciler   *reconcile.Reconciler
	notifier     Notifier
	metrics      *metrics.Metrics
	fetchTimeout time.Duration
	logger       *slog.Logger
}

// NewProcessor creates a Processor. fetchTimeout <= 0 disables the fetch deadline.
func NewProcessor(st store.Store, r *reconcile.Reconciler, n Notifier, m *metrics.Metrics, fetchTimeout time.Duration, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		store:        st,
		reconciler:   r,
		notifier:     n,
		metrics:      m,
		fetchTimeout: fetchTimeout,
		logger:       logger,
	}
}

// Process handles one exchange for the cycle described by rc.
// A fetch failure returns *exchange.FetchError and persists nothing.
// Store failures are logged per market and counted in the Result.
func (p *Processor) Process(ctx context.Context, client exchange.Client, rc model.RunContext) (Result, error) {
	name := client.Name()
	res := Result{Exchange: name}
	logger := p.logger.With("cycle_id", rc.CycleID, "exchange", name)

	snaps, err := p.fetch(ctx, client)
	if err != nil {
		p.metrics.RecordExchangeError(name)
		return res, err
	}
	snaps = p.prepare(snaps, name, logger)
	p.metrics.RecordMarketsSeen(name, len(snaps))
	logger.Debug("markets fetched", "count", len(snaps))

	for _, snap := range snaps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Markets++

		ev, err := p.processMarket(ctx, snap, rc)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			res.StoreErrors++
			var se *store.Error
			if errors.As(err, &se) {
				p.metrics.RecordStoreError(name, se.Op)
			}
			logger.Error("skipping market", "market", snap.ID, "error", err)
			continue
		}
		if ev == nil {
			continue
		}

		res.Transitions++
		p.metrics.RecordTransition(name, ev.Kind.String())
		logger.Info("market transition",
			"market", snap.ID,
			"kind", ev.Kind.String(),
			"base", snap.Base,
			"status", snap.Status,
			"tick_size", snap.TickSize.String(),
			"lot_step", snap.LotStep.String(),
		)
		if p.notifier != nil {
			p.notifier.Notify(ctx, *ev)
		}
	}

	return res, nil
}

// prepare drops snapshots without an id, fills in the exchange name and keeps
// only the first snapshot per key, so a market yields at most one transition
// per cycle even when a paginated listing repeats it.
func (p *Processor) prepare(snaps []model.MarketSnapshot, name string, logger *slog.Logger) []model.MarketSnapshot {
	valid := make([]model.MarketSnapshot, 0, len(snaps))
	for _, snap := range snaps {
		if snap.ID == "" {
			logger.Warn("skipping market without id", "base", snap.Base, "quote", snap.Quote)
			continue
		}
		if snap.Exchange == "" {
			snap.Exchange = name
		}
		valid = append(valid, snap)
	}

	unique := lo.UniqBy(valid, func(s model.MarketSnapshot) string { return s.Key() })
	if dups := len(valid) - len(unique); dups > 0 {
		logger.Warn("dropped duplicate markets from listing", "duplicates", dups)
	}
	return unique
}

func (p *Processor) fetch(ctx context.Context, client exchange.Client) ([]model.MarketSnapshot, error) {
	if p.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.fetchTimeout)
		defer cancel()
	}

	snaps, err := client.LoadMarkets(ctx)
	if err != nil {
		var fe *exchange.FetchError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, &exchange.FetchError{Exchange: client.Name(), Err: err}
	}
	return snaps, nil
}

// processMarket persists the reconciled record before returning its
// transition, so an alert is never sent for a market that was not stored.
func (p *Processor) processMarket(ctx context.Context, snap model.MarketSnapshot, rc model.RunContext) (*model.TransitionEvent, error) {
	prior, err := p.store.FindOne(ctx, snap.ID, snap.Exchange)
	if err != nil {
		return nil, asStoreError("find", snap, err)
	}

	rec, ev := p.reconciler.Reconcile(snap, prior, rc)

	if _, err := p.store.Upsert(ctx, rec); err != nil {
		return nil, asStoreError("upsert", snap, err)
	}
	return ev, nil
}

func asStoreError(op string, snap model.MarketSnapshot, err error) error {
	var se *store.Error
	if errors.As(err, &se) {
		return err
	}
	return &store.Error{Op: op, Exchange: snap.Exchange, MarketID: snap.ID, Err: err}
}
