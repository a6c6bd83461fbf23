// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services depend only on domain, the port interfaces and small pure-Go
// libraries (uuid for identifiers, cron for schedule parsing).
package services
