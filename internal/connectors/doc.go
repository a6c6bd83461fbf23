// Package connectors holds the implementations of driven.AccountingSource.
// Each subpackage talks to one accounting system and maps its payloads to
// domain records.
//
// The only connector today is xero.
package connectors
