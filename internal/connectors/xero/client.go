package xero

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/custodia-labs/ledgersync/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// apiPath prefixes every Accounting API resource.
	apiPath = "/api.xro/2.0/"

	// headerTenant selects the organisation for a request.
	headerTenant = "Xero-Tenant-Id"
)

// callStats counts requests spent on one logical call, retries included.
type callStats struct {
	calls         int
	rateLimitHits int
}

// request describes one GET against the API.
type request struct {
	// url is absolute.
	url           string
	query         url.Values
	tenantID      string
	modifiedSince *time.Time
}

// Client performs authenticated, throttled requests against Xero.
type Client struct {
	http        *http.Client
	baseURL     string
	rateLimiter *RateLimiter
	maxRetries  int
}

// NewClient creates a client that obtains tokens with the client
// credentials grant. The token is fetched lazily and refreshed on expiry.
func NewClient(ctx context.Context, cfg Config) *Client {
	cfg = cfg.withDefaults()
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}
	httpClient := cc.Client(ctx)
	httpClient.Timeout = DefaultTimeout
	return NewClientWithHTTPClient(httpClient, cfg)
}

// NewClientWithHTTPClient creates a client around an already
// authenticated http.Client.
func NewClientWithHTTPClient(httpClient *http.Client, cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		http:        httpClient,
		baseURL:     cfg.BaseURL,
		rateLimiter: NewRateLimiter(cfg.RequestsPerMinute),
		maxRetries:  cfg.MaxRetries,
	}
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// connectionsURL lists the organisations the credentials can access.
func (c *Client) connectionsURL() string {
	return c.baseURL + "/connections"
}

// resourceURL returns the URL of an Accounting API collection.
func (c *Client) resourceURL(resource string) string {
	return c.baseURL + apiPath + resource
}

// get performs req and decodes the JSON body into out. 429 responses are
// retried up to maxRetries times after the server's Retry-After delay.
func (c *Client) get(ctx context.Context, req request, out any, stats *callStats) error {
	target := req.url
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	for attempt := 0; ; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		httpReq.Header.Set("Accept", "application/json")
		if req.tenantID != "" {
			httpReq.Header.Set(headerTenant, req.tenantID)
		}
		if req.modifiedSince != nil {
			httpReq.Header.Set("If-Modified-Since", formatModifiedSince(*req.modifiedSince))
		}

		resp, err := c.http.Do(httpReq)
		stats.calls++
		if err != nil {
			return fmt.Errorf("request %s: %w", req.url, err)
		}
		c.rateLimiter.UpdateFromResponse(resp)

		if resp.StatusCode == http.StatusTooManyRequests {
			stats.rateLimitHits++
			delay := c.rateLimiter.Backoff(resp)
			problem := resp.Header.Get(HeaderRateProblem)
			drain(resp)
			if attempt >= c.maxRetries {
				return &RateLimitError{RetryAfter: delay, Problem: problem}
			}
			logger.Warn("Xero rate limit hit (%s), retrying in %s (attempt %d/%d)",
				problem, delay, attempt+1, c.maxRetries)
			continue
		}

		return decodeResponse(resp, req.url, out)
	}
}

// decodeResponse closes resp after decoding a success body into out or
// converting a failure into an APIError.
func decodeResponse(resp *http.Response, requestURL string, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Status, body),
			URL:        requestURL,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", requestURL, err)
	}
	return nil
}

// errorMessage extracts a readable message from a Xero error body.
// Accounting errors carry "Message", identity and connection errors
// carry "Detail" or "title".
func errorMessage(status string, body []byte) string {
	var payload struct {
		Message string `json:"Message"`
		Detail  string `json:"Detail"`
		Title   string `json:"title"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		for _, m := range []string{payload.Message, payload.Detail, payload.Title, payload.Error} {
			if m != "" {
				return m
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) < 512 {
		return text
	}
	return status
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
