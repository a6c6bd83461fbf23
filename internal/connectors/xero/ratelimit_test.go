package xero

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func responseWithHeaders(h map[string]string) *http.Response {
	resp := &http.Response{Header: http.Header{}}
	for k, v := range h {
		resp.Header.Set(k, v)
	}
	return resp
}

func TestRateLimiter_UpdateFromResponse(t *testing.T) {
	r := NewRateLimiter(60)
	assert.Equal(t, -1, r.MinuteRemaining())
	assert.Equal(t, -1, r.DayRemaining())

	r.UpdateFromResponse(responseWithHeaders(map[string]string{
		HeaderMinRemaining: "57",
		HeaderDayRemaining: "4990",
	}))
	assert.Equal(t, 57, r.MinuteRemaining())
	assert.Equal(t, 4990, r.DayRemaining())

	// Missing or malformed headers keep the last values.
	r.UpdateFromResponse(responseWithHeaders(map[string]string{HeaderMinRemaining: "many"}))
	r.UpdateFromResponse(nil)
	assert.Equal(t, 57, r.MinuteRemaining())
}

func TestRateLimiter_Backoff(t *testing.T) {
	tests := []struct {
		name       string
		retryAfter string
		want       time.Duration
	}{
		{"seconds", "7", 7 * time.Second},
		{"zero", "0", 0},
		{"missing", "", DefaultRetryAfter},
		{"malformed", "soon", DefaultRetryAfter},
		{"capped", "86400", MaxRetryAfter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRateLimiter(60)
			got := r.Backoff(responseWithHeaders(map[string]string{HeaderRetryAfter: tt.retryAfter}))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRateLimiter_WaitHonoursBackoff(t *testing.T) {
	r := NewRateLimiter(600000)
	r.Backoff(responseWithHeaders(map[string]string{HeaderRetryAfter: "60"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimiter_WaitProceeds(t *testing.T) {
	r := NewRateLimiter(600000)

	require.NoError(t, r.Wait(context.Background()))
	require.NoError(t, r.Wait(context.Background()))
}

func TestNewRateLimiter_ClampsBudget(t *testing.T) {
	r := NewRateLimiter(0)
	require.NotNil(t, r)
	require.NoError(t, r.Wait(context.Background()))
}
