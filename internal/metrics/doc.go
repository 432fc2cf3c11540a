// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Cycle count, duration and last completion time
//   - Per-exchange fetch errors and markets seen
//   - Transitions by exchange and kind
//   - Store errors by operation
//   - Deliveries by channel and result
//
// A nil *Metrics is valid and records nothing.
package metrics
