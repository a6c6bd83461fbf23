// Package domain defines the core business entities for the ledger sync engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types:
//
//   - EntityType / EntityConfig: the ten Xero entity types and their sync settings
//   - SyncCheckpoint: durable per-entity sync progress
//   - SyncSession / SyncLog: per-run and per-entity telemetry
//   - Record: a staged accounting record (Account, Invoice, Payment, ...)
//   - IntegrityReport: the outcome of a post-sync integrity run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, github.com/shopspring/decimal for money
//   - Cannot Import: Any internal/ package, any other external dependency
package domain
