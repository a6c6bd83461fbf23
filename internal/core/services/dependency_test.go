package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

func testConfig(t domain.EntityType, priority int, deps ...domain.EntityType) domain.EntityConfig {
	return domain.EntityConfig{
		EntityType:   t,
		TableName:    "t_" + string(t),
		BatchSize:    100,
		Priority:     priority,
		Dependencies: deps,
	}
}

func indexOf(order []domain.EntityType, t domain.EntityType) int {
	for i, e := range order {
		if e == t {
			return i
		}
	}
	return -1
}

func TestResolveOrder_DependenciesFirst(t *testing.T) {
	r := NewDefaultEntityRegistry()

	order := r.ResolveOrder([]domain.EntityType{
		domain.EntityInvoices, domain.EntityAccounts, domain.EntityContacts, domain.EntityItems,
	})

	require.Len(t, order, 4)
	assert.Equal(t, domain.EntityInvoices, order[3])
	assert.Equal(t, []domain.EntityType{
		domain.EntityAccounts, domain.EntityContacts, domain.EntityItems,
	}, order[:3])
}

func TestResolveOrder_AllDefaults(t *testing.T) {
	r := NewDefaultEntityRegistry()

	order := r.ResolveOrder(r.Types())

	require.Len(t, order, 10)
	for _, cfg := range r.All() {
		pos := indexOf(order, cfg.EntityType)
		for _, dep := range cfg.Dependencies {
			assert.Less(t, indexOf(order, dep), pos, "%s before %s", dep, cfg.EntityType)
		}
	}
}

func TestResolveOrder_UnrequestedDependencySatisfied(t *testing.T) {
	r := NewDefaultEntityRegistry()

	// payments depends on invoices and credit_notes, which are registered but not requested.
	order := r.ResolveOrder([]domain.EntityType{domain.EntityPayments, domain.EntityContacts})

	assert.Equal(t, []domain.EntityType{domain.EntityContacts, domain.EntityPayments}, order)
}

func TestResolveOrder_CycleFallsBackToPriority(t *testing.T) {
	r, err := NewEntityRegistry([]domain.EntityConfig{
		testConfig("alpha", 2, "beta"),
		testConfig("beta", 1, "alpha"),
	})
	require.NoError(t, err)

	order := r.ResolveOrder([]domain.EntityType{"alpha", "beta"})

	assert.Equal(t, []domain.EntityType{"beta", "alpha"}, order)
}

func TestResolveOrder_CycleWithDependents(t *testing.T) {
	r, err := NewEntityRegistry([]domain.EntityConfig{
		testConfig("root", 1),
		testConfig("a", 3, "b", "root"),
		testConfig("b", 2, "a"),
		testConfig("leaf", 4, "a"),
	})
	require.NoError(t, err)

	order := r.ResolveOrder([]domain.EntityType{"leaf", "a", "b", "root"})

	assert.Equal(t, []domain.EntityType{"root", "b", "a", "leaf"}, order)
}

func TestResolveOrder_DanglingDependency(t *testing.T) {
	r, err := NewEntityRegistry([]domain.EntityConfig{
		testConfig("orphan", 1, "missing"),
		testConfig("plain", 5),
	})
	require.NoError(t, err)

	order := r.ResolveOrder([]domain.EntityType{"orphan", "plain"})

	// plain is ready immediately; orphan can only be scheduled by fallback.
	assert.Equal(t, []domain.EntityType{"plain", "orphan"}, order)
}

func TestResolveOrder_DuplicatesAndUnknown(t *testing.T) {
	r := NewDefaultEntityRegistry()

	order := r.ResolveOrder([]domain.EntityType{
		domain.EntityContacts, domain.EntityContacts, "widgets",
	})

	assert.Equal(t, []domain.EntityType{domain.EntityContacts}, order)
}

func TestResolveOrder_Empty(t *testing.T) {
	r := NewDefaultEntityRegistry()
	assert.Empty(t, r.ResolveOrder(nil))
}
