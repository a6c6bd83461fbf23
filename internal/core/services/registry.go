package services

import (
	"fmt"
	"slices"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

const defaultBatchSize = 100

// DefaultEntityConfigs returns the compiled-in registry of Xero entity types.
func DefaultEntityConfigs() []domain.EntityConfig {
	entity := func(
		t domain.EntityType, priority, intervalHours int, incremental bool, deps ...domain.EntityType,
	) domain.EntityConfig {
		return domain.EntityConfig{
			EntityType:               t,
			TableName:                "xero_" + string(t),
			BatchSize:                defaultBatchSize,
			Priority:                 priority,
			Dependencies:             deps,
			SupportsIncrementalSync:  incremental,
			DefaultSyncIntervalHours: intervalHours,
		}
	}

	return []domain.EntityConfig{
		entity(domain.EntityAccounts, 1, 24, true),
		entity(domain.EntityTrackingCategories, 2, 24, false),
		entity(domain.EntityContacts, 3, 6, true),
		entity(domain.EntityItems, 4, 24, true,
			domain.EntityAccounts),
		entity(domain.EntityBankAccounts, 5, 24, true,
			domain.EntityAccounts),
		entity(domain.EntityInvoices, 6, 2, true,
			domain.EntityAccounts, domain.EntityContacts, domain.EntityItems),
		entity(domain.EntityCreditNotes, 7, 6, true,
			domain.EntityContacts, domain.EntityAccounts),
		entity(domain.EntityPayments, 8, 2, true,
			domain.EntityInvoices, domain.EntityAccounts, domain.EntityCreditNotes),
		entity(domain.EntityBankTransactions, 9, 2, true,
			domain.EntityBankAccounts, domain.EntityContacts, domain.EntityAccounts),
		entity(domain.EntityManualJournals, 10, 12, true,
			domain.EntityAccounts, domain.EntityTrackingCategories),
	}
}

// EntityRegistry is the validated, read-only table of entity configurations.
type EntityRegistry struct {
	configs map[domain.EntityType]domain.EntityConfig
	order   []domain.EntityType
}

// NewEntityRegistry validates configs and builds a registry.
// Entity types must be unique. Dependencies on unregistered types are
// allowed and treated as unsatisfiable when ordering.
func NewEntityRegistry(configs []domain.EntityConfig) (*EntityRegistry, error) {
	r := &EntityRegistry{
		configs: make(map[domain.EntityType]domain.EntityConfig, len(configs)),
	}
	for _, cfg := range configs {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.configs[cfg.EntityType]; dup {
			return nil, fmt.Errorf("%w: duplicate entity type %s", domain.ErrInvalidInput, cfg.EntityType)
		}
		cfg.Dependencies = slices.Clone(cfg.Dependencies)
		r.configs[cfg.EntityType] = cfg
		r.order = append(r.order, cfg.EntityType)
	}

	slices.SortStableFunc(r.order, func(a, b domain.EntityType) int {
		return r.configs[a].Priority - r.configs[b].Priority
	})
	return r, nil
}

// NewDefaultEntityRegistry returns the registry of Xero entity types.
func NewDefaultEntityRegistry() *EntityRegistry {
	r, err := NewEntityRegistry(DefaultEntityConfigs())
	if err != nil {
		panic(fmt.Sprintf("default entity registry: %v", err))
	}
	return r
}

// Get returns the configuration for an entity type.
func (r *EntityRegistry) Get(entity domain.EntityType) (domain.EntityConfig, bool) {
	cfg, ok := r.configs[entity]
	return cfg, ok
}

// Has reports whether the entity type is registered.
func (r *EntityRegistry) Has(entity domain.EntityType) bool {
	_, ok := r.configs[entity]
	return ok
}

// Types returns all registered entity types ordered by priority.
func (r *EntityRegistry) Types() []domain.EntityType {
	return slices.Clone(r.order)
}

// All returns all configurations ordered by priority.
func (r *EntityRegistry) All() []domain.EntityConfig {
	out := make([]domain.EntityConfig, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.configs[t])
	}
	return out
}

// Parse normalises names and checks each against the registry.
// Duplicates are removed, keeping first occurrence.
func (r *EntityRegistry) Parse(names []string) ([]domain.EntityType, error) {
	var out []domain.EntityType
	for _, name := range names {
		t := domain.ParseEntityType(name)
		if !r.Has(t) {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownEntityType, name)
		}
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Validate checks every entity type is registered.
func (r *EntityRegistry) Validate(entities []domain.EntityType) error {
	for _, t := range entities {
		if !r.Has(t) {
			return fmt.Errorf("%w: %q", domain.ErrUnknownEntityType, t)
		}
	}
	return nil
}
