// Package mcp provides an MCP (Model Context Protocol) server adapter for ledgersync.
// It lets AI assistants trigger Xero syncs and inspect sync state.
package mcp

import "errors"

// ErrMissingSyncService is returned when the sync orchestrator is not provided.
var ErrMissingSyncService = errors.New("mcp: sync service is required")
