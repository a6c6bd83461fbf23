// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - CheckpointStore: per-entity sync progress
//   - SessionStore and SyncLogStore: sync sessions and their per-entity logs
//   - StagingWriter and StagingReader: the xero_* staging tables
//   - SchedulerStore: scheduled task state and run history
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Timestamps are stored as fixed-width UTC text so they order as strings.
//
// # Data Location
//
// By default, the database is stored at $XDG_DATA_HOME/ledgersync/ledgersync.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode. Checkpoint updates are single statements, so
// concurrent counter increments are never lost.
package sqlite
