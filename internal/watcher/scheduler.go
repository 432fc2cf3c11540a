package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/listing-watch/internal/exchange"
	"github.com/rickgao/listing-watch/internal/metrics"
	"github.com/rickgao/listing-watch/internal/model"
	"github.com/rickgao/listing-watch/internal/store"
)

// Config holds scheduler configuration.
type Config struct {
	Interval            time.Duration // Delay after each completed cycle (default: 60s)
	ExchangeConcurrency int           // Exchanges processed at once (default: 1)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:            60 * time.Second,
		ExchangeConcurrency: 1,
	}
}

// CycleSummary describes one completed cycle.
type CycleSummary struct {
	CycleID     string
	IsSeedRun   bool
	Exchanges   int
	Failed      int
	Interrupted int // not started or cut short by shutdown
	Markets     int
	Transitions int
	StartedAt   time.Time
	Duration    time.Duration
}

// Scheduler runs the perpetual cycle loop.
type Scheduler struct {
	cfg       Config
	clients   []exchange.Client
	store     store.Store
	processor *Processor
	metrics   *metrics.Metrics
	logger    *slog.Logger

	newCycleID func() string
	lastCycle  atomic.Pointer[CycleSummary]
}

// New creates a Scheduler. clients are processed in the given order.
func New(cfg Config, clients []exchange.Client, st store.Store, processor *Processor, m *metrics.Metrics, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.ExchangeConcurrency < 1 {
		cfg.ExchangeConcurrency = 1
	}
	return &Scheduler{
		cfg:        cfg,
		clients:    clients,
		store:      st,
		processor:  processor,
		metrics:    m,
		logger:     logger,
		newCycleID: uuid.NewString,
	}
}

// LastCycle returns the most recent completed cycle, or nil before the first.
func (s *Scheduler) LastCycle() *CycleSummary {
	return s.lastCycle.Load()
}

// Run executes cycles until ctx is cancelled. It returns an error only when
// the startup store count fails.
func (s *Scheduler) Run(ctx context.Context) error {
	n, err := s.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count stored markets: %w", err)
	}

	seed := n == 0
	if seed {
		s.logger.Warn("store is empty, first cycle seeds markets and will not send alerts")
	}

	names := make([]string, 0, len(s.clients))
	for _, c := range s.clients {
		names = append(names, c.Name())
	}
	s.logger.Info("scheduler started",
		"exchanges", names,
		"interval", s.cfg.Interval,
		"exchange_concurrency", s.cfg.ExchangeConcurrency,
		"stored_markets", n,
	)

	for ctx.Err() == nil {
		rc := model.RunContext{CycleID: s.newCycleID(), IsSeedRun: seed}
		s.RunCycle(ctx, rc)
		// Seeding happens once, whether or not the first cycle's fetches succeeded.
		seed = false

		timer := time.NewTimer(s.cfg.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}

	s.logger.Info("scheduler stopped")
	return nil
}

// RunCycle processes every exchange once. Exchange failures are logged and
// never abort the cycle.
func (s *Scheduler) RunCycle(ctx context.Context, rc model.RunContext) CycleSummary {
	start := time.Now()
	logger := s.logger.With("cycle_id", rc.CycleID)
	logger.Debug("cycle started", "seed_run", rc.IsSeedRun, "exchanges", len(s.clients))

	results := make([]Result, len(s.clients))
	errs := make([]error, len(s.clients))
	ran := make([]bool, len(s.clients))

	process := func(i int, c exchange.Client) {
		if ctx.Err() != nil {
			return
		}
		ran[i] = true
		results[i], errs[i] = s.processor.Process(ctx, c, rc)
	}

	if s.cfg.ExchangeConcurrency == 1 {
		for i, c := range s.clients {
			process(i, c)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(s.cfg.ExchangeConcurrency)
		for i, c := range s.clients {
			i, c := i, c
			g.Go(func() error {
				process(i, c)
				return nil
			})
		}
		_ = g.Wait()
	}

	sum := CycleSummary{
		CycleID:   rc.CycleID,
		IsSeedRun: rc.IsSeedRun,
		Exchanges: len(s.clients),
		StartedAt: start,
	}
	for i, c := range s.clients {
		if !ran[i] {
			sum.Interrupted++
			continue
		}
		if errs[i] != nil && ctx.Err() != nil && isContextErr(errs[i]) {
			sum.Interrupted++
			logger.Info("exchange interrupted by shutdown", "exchange", c.Name())
			continue
		}
		if errs[i] != nil {
			sum.Failed++
			logger.Error("exchange skipped", "exchange", c.Name(), "error", errs[i])
			continue
		}
		sum.Markets += results[i].Markets
		sum.Transitions += results[i].Transitions
	}
	sum.Duration = time.Since(start)

	s.metrics.RecordCycle(sum.Duration)
	s.lastCycle.Store(&sum)

	logger.Info("cycle complete",
		"seed_run", sum.IsSeedRun,
		"exchanges", sum.Exchanges,
		"failed", sum.Failed,
		"interrupted", sum.Interrupted,
		"markets", sum.Markets,
		"transitions", sum.Transitions,
		"duration", sum.Duration,
	)
	return sum
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
