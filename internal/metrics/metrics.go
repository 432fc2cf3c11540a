package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "listing_watch"

// Metrics holds every collector on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	cycles         prometheus.Counter
	cycleDuration  prometheus.Histogram
	lastCycle      prometheus.Gauge
	exchangeErrors *prometheus.CounterVec
	marketsSeen    *prometheus.CounterVec
	transitions    *prometheus.CounterVec
	storeErrors    *prometheus.CounterVec
	deliveries     *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		cycles: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed polling cycles.",
		}),
		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of one pass over all enabled exchanges.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		lastCycle: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_cycle_timestamp_seconds",
			Help:      "Unix time the last cycle completed.",
		}),
		exchangeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchange_errors_total",
			Help:      "Exchanges skipped because the market fetch failed.",
		}, []string{"exchange"}),
		marketsSeen: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "markets_seen_total",
			Help:      "Market snapshots reconciled.",
		}, []string{"exchange"}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Detected market transitions.",
		}, []string{"exchange", "kind"}),
		storeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Failed store operations.",
		}, []string{"exchange", "op"}),
		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Notification delivery attempts.",
		}, []string{"channel", "result"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordCycle(d time.Duration) {
	if m == nil {
		return
	}
	m.cycles.Inc()
	m.cycleDuration.Observe(d.Seconds())
	m.lastCycle.SetToCurrentTime()
}

func (m *Metrics) RecordExchangeError(exchange string) {
	if m == nil {
		return
	}
	m.exchangeErrors.WithLabelValues(exchange).Inc()
}

func (m *Metrics) RecordMarketsSeen(exchange string, n int) {
	if m == nil {
		return
	}
	m.marketsSeen.WithLabelValues(exchange).Add(float64(n))
}

func (m *Metrics) RecordTransition(exchange, kind string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(exchange, kind).Inc()
}

func (m *Metrics) RecordStoreError(exchange, op string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(exchange, op).Inc()
}

func (m *Metrics) RecordDelivery(channel string, success bool) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.deliveries.WithLabelValues(channel, result).Inc()
}
