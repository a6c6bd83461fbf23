package xero

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"sync"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driven"
	"github.com/custodia-labs/ledgersync/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.AccountingSource = (*Connector)(nil)

const (
	// defaultPageSize is used when FetchOptions.PageSize is unset.
	defaultPageSize = 100

	// maxPageSize is the largest page Xero serves.
	maxPageSize = 1000

	// orderByModified keeps pages stable across runs.
	orderByModified = "UpdatedDateUTC ASC"
)

// Tenant is one organisation the credentials are connected to.
type Tenant struct {
	ID   string
	Name string
	Type string
}

// Connector fetches accounting records from one Xero organisation.
type Connector struct {
	config Config
	client *Client

	mu       sync.RWMutex
	tenantID string
}

// New creates a Xero connector that authenticates with client credentials.
func New(ctx context.Context, cfg Config) *Connector {
	return NewWithClient(cfg, NewClient(ctx, cfg))
}

// NewWithClient creates a connector around an existing client.
func NewWithClient(cfg Config, client *Client) *Connector {
	return &Connector{
		config: cfg.withDefaults(),
		client: client,
	}
}

// Name identifies the source in logs.
func (c *Connector) Name() string {
	return "xero"
}

// TenantID returns the tenant resolved by Connect, or "" before it.
func (c *Connector) TenantID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tenantID
}

// Tenants lists the organisations the credentials are connected to.
func (c *Connector) Tenants(ctx context.Context) ([]Tenant, error) {
	if err := c.config.Validate(); err != nil {
		return nil, err
	}

	var conns []wireConnection
	var stats callStats
	if err := c.client.get(ctx, request{url: c.client.connectionsURL()}, &conns, &stats); err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}

	tenants := make([]Tenant, 0, len(conns))
	for _, conn := range conns {
		// Only organisations expose the Accounting API.
		if conn.TenantType != "" && conn.TenantType != "ORGANISATION" {
			continue
		}
		tenants = append(tenants, Tenant{ID: conn.TenantID, Name: conn.TenantName, Type: conn.TenantType})
	}
	return tenants, nil
}

// Connect authenticates and resolves the tenant to sync. tenantID
// overrides the configured tenant; both empty selects the first connection.
func (c *Connector) Connect(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		tenantID = c.config.TenantID
	}

	tenants, err := c.Tenants(ctx)
	if IsUnauthorized(err) {
		return fmt.Errorf("%w: credentials rejected, check xero.client_id and xero.client_secret: %w",
			domain.ErrSourceConnection, err)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSourceConnection, err)
	}
	if len(tenants) == 0 {
		return fmt.Errorf("%w: %w", domain.ErrSourceConnection, ErrNoTenants)
	}

	selected := tenants[0]
	if tenantID != "" {
		idx := slices.IndexFunc(tenants, func(t Tenant) bool { return t.ID == tenantID })
		if idx < 0 {
			return fmt.Errorf("%w: %w: %s", domain.ErrSourceConnection, ErrTenantNotFound, tenantID)
		}
		selected = tenants[idx]
	} else if len(tenants) > 1 {
		logger.Warn("Xero credentials reach %d organisations, using %q; set xero.tenant_id to choose",
			len(tenants), selected.Name)
	}

	c.mu.Lock()
	c.tenantID = selected.ID
	c.mu.Unlock()

	logger.Info("Connected to Xero organisation %q (%s)", selected.Name, selected.ID)
	return nil
}

// Fetch returns one page of records for an entity type, ordered by
// modification time ascending.
func (c *Connector) Fetch(
	ctx context.Context, entity domain.EntityType, opts domain.FetchOptions,
) (*domain.FetchResult, error) {
	ep, ok := endpoints[entity]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedEntity, entity)
	}

	tenantID := c.TenantID()
	if tenantID == "" {
		return nil, ErrNotConnected
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	pageSize = min(pageSize, maxPageSize)
	page := max(opts.Page, 1)

	query := url.Values{}
	if ep.paged {
		query.Set("page", strconv.Itoa(page))
		query.Set("pageSize", strconv.Itoa(pageSize))
		query.Set("order", orderByModified)
	}
	if ep.where != "" {
		query.Set("where", ep.where)
	}
	if ep.archived != "" && opts.IncludeArchived {
		query.Set(ep.archived, "true")
	}

	var body map[string]json.RawMessage
	var stats callStats
	err := c.client.get(ctx, request{
		url:           c.client.resourceURL(ep.resource),
		query:         query,
		tenantID:      tenantID,
		modifiedSince: opts.ModifiedSince,
	}, &body, &stats)

	result := &domain.FetchResult{
		APICalls:      stats.calls,
		RateLimitHits: stats.rateLimitHits,
	}
	if IsRateLimited(err) {
		logger.Warn("Xero rate limit exhausted fetching %s after %d calls: %v", entity, stats.calls, err)
	}
	if err != nil {
		return result, fmt.Errorf("fetch %s: %w", entity, err)
	}

	records, err := ep.decode(body[ep.collection])
	if err != nil {
		return result, fmt.Errorf("fetch %s: %w", entity, err)
	}

	// A full page means the next page may hold more.
	result.HasMoreRecords = ep.paged && len(records) >= pageSize

	slices.SortStableFunc(records, func(a, b domain.Record) int {
		return a.ModifiedAt().Compare(b.ModifiedAt())
	})
	result.Records = records
	result.LastModified = domain.LatestModification(records)

	// If-Modified-Since has whole-second precision. A full page inside one
	// second would come back unchanged from its own high-water mark.
	if result.HasMoreRecords && sameSecond(records[0].ModifiedAt(), records[len(records)-1].ModifiedAt()) {
		result.NextPage = page + 1
	}

	logger.Debug("Fetched %d %s page %d (api calls: %d, more: %v)",
		len(records), entity, page, stats.calls, result.HasMoreRecords)
	return result, nil
}
