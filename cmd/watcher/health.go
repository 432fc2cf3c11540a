package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rickgao/listing-watch/internal/metrics"
	"github.com/rickgao/listing-watch/internal/store"
	"github.com/rickgao/listing-watch/internal/watcher"
)

// cycleReporter exposes the last completed cycle.
type cycleReporter interface {
	LastCycle() *watcher.CycleSummary
}

// createHealthHandler creates the HTTP handler for health checks and metrics.
func createHealthHandler(st store.Store, cycles cycleReporter, m *metrics.Metrics, metricsPath string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		// Check store
		if err := st.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["store"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["store"] = "connected"
		}

		// Check scheduler progress
		if last := cycles.LastCycle(); last == nil {
			health.Components["scheduler"] = map[string]any{"status": "starting"}
			if health.Status == "healthy" {
				health.Status = "degraded"
			}
		} else {
			health.Components["scheduler"] = map[string]any{
				"last_cycle_id":  last.CycleID,
				"completed_at":   last.StartedAt.Add(last.Duration).UTC().Format(time.RFC3339),
				"seed_run":       last.IsSeedRun,
				"exchanges":      last.Exchanges,
				"failed":         last.Failed,
				"markets":        last.Markets,
				"transitions":    last.Transitions,
				"duration_milli": last.Duration.Milliseconds(),
			}
			if last.Exchanges > 0 && last.Failed == last.Exchanges && health.Status == "healthy" {
				health.Status = "degraded"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	if m != nil && metricsPath != "" {
		mux.Handle(metricsPath, m.Handler())
	}

	return mux
}
