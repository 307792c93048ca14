// Package sqlite provides the SQLite-backed document sink and failure store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. One database holds:
//
//   - runs: one row per harvest run with its redacted configuration
//   - documents: every document handed to the DocumentSink
//   - failures: one FailureRecord per failed item
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at $XDG_DATA_HOME/harvester/harvester.db
//
// # Thread Safety
//
// All operations are safe for concurrent use by pipeline workers. The store
// relies on SQLite in WAL mode with a busy timeout.
package sqlite
