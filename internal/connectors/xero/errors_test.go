package xero

import (
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

func TestErrorHelpers(t *testing.T) {
	unauthorized := fmt.Errorf("list connections: %w", &APIError{StatusCode: 401, Message: "denied"})
	forbidden := &APIError{StatusCode: 403}
	missing := &APIError{StatusCode: 404}
	limited := fmt.Errorf("fetch invoices: %w", &RateLimitError{RetryAfter: time.Second, Problem: "minute"})

	assert.True(t, IsUnauthorized(unauthorized))
	assert.True(t, IsUnauthorized(forbidden))
	assert.False(t, IsUnauthorized(missing))
	assert.False(t, IsUnauthorized(errors.New("plain")))

	assert.True(t, IsUnauthorized(&url.Error{Op: "Get", URL: "https://api.xero.com/connections",
		Err: &oauth2.RetrieveError{ErrorCode: "invalid_client"}}))

	assert.True(t, IsRateLimited(limited))
	assert.False(t, IsRateLimited(unauthorized))
	assert.ErrorIs(t, limited, domain.ErrRateLimited)
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "xero: minute rate limit exceeded, retry after 1s",
		(&RateLimitError{RetryAfter: time.Second, Problem: "minute"}).Error())
	assert.Equal(t, "xero: rate limit exceeded, retry after 5s",
		(&RateLimitError{RetryAfter: 5 * time.Second}).Error())
	assert.Equal(t, "xero: API error 400: bad (URL: https://api.xero.com/x)",
		(&APIError{StatusCode: 400, Message: "bad", URL: "https://api.xero.com/x"}).Error())
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "m", errorMessage("500", []byte(`{"Message":"m"}`)))
	assert.Equal(t, "d", errorMessage("401", []byte(`{"Detail":"d","title":"t"}`)))
	assert.Equal(t, "invalid_client", errorMessage("400", []byte(`{"error":"invalid_client"}`)))
	assert.Equal(t, "plain text", errorMessage("502", []byte("plain text")))
	assert.Equal(t, "502 Bad Gateway", errorMessage("502 Bad Gateway", nil))
}
