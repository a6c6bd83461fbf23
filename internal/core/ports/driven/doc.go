// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - AccountingSource: Fetches pages of records from the accounting system
//   - CheckpointStore: Per-entity sync progress
//   - SessionStore: Sync session persistence
//   - SyncLogStore: Per-entity, per-session audit entries
//   - StagingWriter: Idempotent upsert of fetched records
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - StagingReader: Read access to staged records. Required only by the
//     integrity checker.
//   - SchedulerStore: Scheduler state. Without it the scheduler keeps
//     state in memory only.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
