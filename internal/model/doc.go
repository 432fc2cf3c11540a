// Package model defines shared data types used across the listing watcher.
//
// Conventions:
//   - Markets are keyed by (ID, Exchange); IDs are exchange-native symbols (e.g. "BTCUSDT").
//   - Timestamps are time.Time in UTC.
//   - Snapshots are ephemeral per cycle; records are the durable view held by the store.
package model
