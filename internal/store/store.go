// Package store persists market records keyed by (id, exchange).
//
// Every backend enforces the is_trading ratchet on write: once a record is
// trading, an upsert carrying IsTrading=false keeps it trading. Each upsert is
// independent; nothing spans more than one market.
package store

import (
	"context"
	"fmt"

	"github.com/rickgao/listing-watch/internal/model"
)

// Store is the state store consumed by the watcher.
type Store interface {
	// Count returns the number of persisted records.
	Count(ctx context.Context) (int64, error)

	// FindOne returns the record for (id, exchange), or nil if absent.
	FindOne(ctx context.Context, id, exchange string) (*model.MarketRecord, error)

	// Upsert inserts or updates one record and returns the stored result.
	Upsert(ctx context.Context, rec model.MarketRecord) (model.MarketRecord, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close()
}

// Error wraps a failed store operation for one market.
type Error struct {
	Op       string // "count", "find", "upsert"
	Exchange string
	MarketID string
	Err      error
}

func (e *Error) Error() string {
	if e.MarketID == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s [%s]: %v", e.Op, e.MarketID, e.Exchange, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// merge applies an incoming record over an existing one.
// FirstSeenAt is kept and IsTrading never regresses.
func merge(existing, incoming model.MarketRecord) model.MarketRecord {
	out := incoming
	if !existing.FirstSeenAt.IsZero() {
		out.FirstSeenAt = existing.FirstSeenAt
	}
	out.IsTrading = existing.IsTrading || incoming.IsTrading
	return out
}
