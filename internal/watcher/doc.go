// Package watcher implements the cycle loop.
//
// The Scheduler:
//   - Counts stored markets once at startup; an empty store makes the first
//     cycle a seed run that persists markets without alerting
//   - Builds one immutable RunContext per cycle
//   - Hands each enabled exchange to the Processor in configured order
//   - Sleeps a fixed interval after each cycle completes
//
// The Processor handles one exchange: fetch, then for every market in order
// find, reconcile, upsert and notify. A failed fetch skips the exchange; a
// failed store call skips the market.
package watcher
