// Package xero implements driven.AccountingSource over the Xero Accounting API.
//
// Authentication uses a Xero custom connection (OAuth2 client credentials).
// Requests are throttled to the configured per-minute budget and 429
// responses are retried after the server's Retry-After delay.
//
// Each entity type maps to one endpoint and one mapper that turns the
// wire representation into a domain record. Paged endpoints are requested
// one page at a time ordered by UpdatedDateUTC so an incremental run can
// resume from the last record it saw.
package xero
