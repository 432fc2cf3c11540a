package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/listing-watch/internal/config"
	"github.com/rickgao/listing-watch/internal/metrics"
	"github.com/rickgao/listing-watch/internal/model"
)

// DefaultConcurrency caps concurrent sends within one channel.
const DefaultConcurrency = 10

// DefaultSendTimeout bounds one delivery attempt.
const DefaultSendTimeout = config.DefaultSendTimeout

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSendTimeout bounds each Send call. A channel that ignores its context
// is abandoned once the timeout passes and recorded as failed.
func WithSendTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.sendTimeout = d
		}
	}
}

// Dispatcher sends transition alerts to every configured route.
type Dispatcher struct {
	routes      []Route
	concurrency int
	sendTimeout time.Duration
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// NewDispatcher creates a Dispatcher. concurrency < 1 uses DefaultConcurrency.
func NewDispatcher(routes []Route, concurrency int, m *metrics.Metrics, logger *slog.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	d := &Dispatcher{
		routes:      routes,
		concurrency: concurrency,
		sendTimeout: DefaultSendTimeout,
		logger:      logger,
		metrics:     m,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Channels returns the configured channel names in route order.
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.routes))
	for _, r := range d.routes {
		names = append(names, r.Channel.Name())
	}
	return names
}

// Notify delivers ev to every recipient of every route and waits for all
// attempts. Outcomes are ordered by route, then recipient.
func (d *Dispatcher) Notify(ctx context.Context, ev model.TransitionEvent) []model.DeliveryOutcome {
	msg := NewMessage(ev)

	offsets := make([]int, len(d.routes))
	total := 0
	for i, r := range d.routes {
		offsets[i] = total
		total += len(r.Recipients)
	}
	outcomes := make([]model.DeliveryOutcome, total)

	// Channels in parallel; each writes only its own slice of outcomes.
	var wg sync.WaitGroup
	for i, r := range d.routes {
		wg.Add(1)
		go func(r Route, out []model.DeliveryOutcome) {
			defer wg.Done()
			d.sendRoute(ctx, r, msg, out)
		}(r, outcomes[offsets[i]:offsets[i]+len(r.Recipients)])
	}
	wg.Wait()

	failed := 0
	for _, o := range outcomes {
		d.metrics.RecordDelivery(o.Channel, o.Success)
		if !o.Success {
			failed++
			d.logger.Error("notification delivery failed",
				"exchange", ev.Market.Exchange,
				"market", ev.Market.ID,
				"channel", o.Channel,
				"recipient", o.Recipient,
				"error", o.Err,
			)
		}
	}

	d.logger.Info("notification dispatched",
		"exchange", ev.Market.Exchange,
		"market", ev.Market.ID,
		"kind", ev.Kind.String(),
		"deliveries", len(outcomes),
		"failed", failed,
	)

	return outcomes
}

// sendRoute delivers to each recipient of one channel with bounded concurrency.
func (d *Dispatcher) sendRoute(ctx context.Context, r Route, msg Message, out []model.DeliveryOutcome) {
	name := r.Channel.Name()

	var g errgroup.Group
	g.SetLimit(d.concurrency)

	for i, recipient := range r.Recipients {
		i, recipient := i, recipient
		g.Go(func() error {
			err := d.send(ctx, r.Channel, recipient, msg)
			out[i] = model.DeliveryOutcome{
				Channel:   name,
				Recipient: recipient,
				Success:   err == nil,
			}
			if err != nil {
				out[i].Err = &DeliveryError{Channel: name, Recipient: recipient, Err: err}
			}
			// Never fail the group: one recipient must not cancel the rest.
			return nil
		})
	}

	_ = g.Wait()
}

// send runs one Send under the send timeout. The call runs on its own
// goroutine so a channel blocked outside its context cannot stall the cycle.
func (d *Dispatcher) send(ctx context.Context, ch Channel, recipient string, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- safeSend(ctx, ch, recipient, msg)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("send abandoned: %w", ctx.Err())
	}
}

// safeSend converts a panicking channel into an error.
func safeSend(ctx context.Context, ch Channel, recipient string, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel panic: %v", r)
		}
	}()
	return ch.Send(ctx, recipient, msg)
}
