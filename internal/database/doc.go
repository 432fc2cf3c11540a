// Package database provides the PostgreSQL connection pool backing the market store.
//
// The pool is created once at process start and shared by every cycle. Startup
// retries at a fixed interval until the database answers or the connect timeout
// expires; after that pgxpool re-dials broken connections on the next acquire.
package database
