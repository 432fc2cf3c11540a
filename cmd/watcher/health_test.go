package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/listing-watch/internal/metrics"
	"github.com/rickgao/listing-watch/internal/store"
	"github.com/rickgao/listing-watch/internal/watcher"
)

type staticCycles struct {
	last *watcher.CycleSummary
}

func (s staticCycles) LastCycle() *watcher.CycleSummary { return s.last }

type downStore struct {
	*store.Memory
}

func (downStore) Ping(ctx context.Context) error { return errors.New("connection refused") }

type healthBody struct {
	Status     string         `json:"status"`
	Components map[string]any `json:"components"`
}

func getHealth(t *testing.T, h http.Handler) (int, healthBody) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body healthBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return rec.Code, body
}

func TestHealth_Healthy(t *testing.T) {
	last := &watcher.CycleSummary{CycleID: "c1", Exchanges: 2, Markets: 10, StartedAt: time.Now(), Duration: time.Second}
	h := createHealthHandler(store.NewMemory(), staticCycles{last: last}, nil, "")

	code, body := getHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "connected", body.Components["store"])
}

func TestHealth_DegradedBeforeFirstCycle(t *testing.T) {
	h := createHealthHandler(store.NewMemory(), staticCycles{}, nil, "")

	code, body := getHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", body.Status)
}

func TestHealth_DegradedWhenEveryExchangeFailed(t *testing.T) {
	last := &watcher.CycleSummary{CycleID: "c1", Exchanges: 2, Failed: 2, StartedAt: time.Now()}
	h := createHealthHandler(store.NewMemory(), staticCycles{last: last}, nil, "")

	_, body := getHealth(t, h)
	assert.Equal(t, "degraded", body.Status)
}

func TestHealth_UnhealthyStore(t *testing.T) {
	h := createHealthHandler(downStore{store.NewMemory()}, staticCycles{}, nil, "")

	code, body := getHealth(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Status)
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	m.RecordCycle(time.Second)
	h := createHealthHandler(store.NewMemory(), staticCycles{}, m, "/metrics")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "listing_watch_cycles_total 1")
}
