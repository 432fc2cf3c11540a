package store

import (
	"context"
	"sync"

	"github.com/rickgao/listing-watch/internal/model"
)

// Memory is an in-process store. Records are lost on restart, so every
// process start is a seed run.
type Memory struct {
	mu      sync.RWMutex
	records map[string]model.MarketRecord
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]model.MarketRecord),
	}
}

func (m *Memory) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}

func (m *Memory) FindOne(ctx context.Context, id, exchange string) (*model.MarketRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[model.RecordKey(id, exchange)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *Memory) Upsert(ctx context.Context, rec model.MarketRecord) (model.MarketRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.records[rec.Key()]; ok {
		rec = merge(existing, rec)
	}
	m.records[rec.Key()] = rec
	return rec, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() {}
