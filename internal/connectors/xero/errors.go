package xero

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

// Xero-specific errors.
var (
	// ErrNotConnected indicates Fetch was called before a successful Connect.
	ErrNotConnected = errors.New("xero: not connected")

	// ErrNoTenants indicates the credentials are not connected to any organisation.
	ErrNoTenants = errors.New("xero: no connected organisations")

	// ErrTenantNotFound indicates the configured tenant is not among the connections.
	ErrTenantNotFound = errors.New("xero: tenant not connected")
)

// RateLimitError is returned when retries are exhausted on 429 responses.
type RateLimitError struct {
	// RetryAfter is the delay the server asked for on the last response.
	RetryAfter time.Duration

	// Problem is the X-Rate-Limit-Problem header ("minute", "day", "concurrent").
	Problem string
}

func (e *RateLimitError) Error() string {
	if e.Problem != "" {
		return fmt.Sprintf("xero: %s rate limit exceeded, retry after %s", e.Problem, e.RetryAfter)
	}
	return fmt.Sprintf("xero: rate limit exceeded, retry after %s", e.RetryAfter)
}

// Unwrap lets callers match domain.ErrRateLimited.
func (e *RateLimitError) Unwrap() error {
	return domain.ErrRateLimited
}

// APIError represents a non-success Xero API response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("xero: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsUnauthorized checks if the error indicates an authentication failure,
// either from the token endpoint or from the API itself.
func IsUnauthorized(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}
