package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccessRate(t *testing.T) {
	assert.Zero(t, SuccessRate(0, 0))
	assert.InDelta(t, 100.0, SuccessRate(4, 4), 0.001)
	assert.InDelta(t, 75.0, SuccessRate(3, 4), 0.001)
	assert.Zero(t, SuccessRate(0, 3))
}

func TestEntityError(t *testing.T) {
	assert.Equal(t, "invoices: http 500", EntityError(EntityInvoices, "http 500"))
}

func TestSyncResult_FailedEntities(t *testing.T) {
	r := SyncResult{
		EntityResults: []EntitySyncResult{
			{EntityType: EntityAccounts, Success: true},
			{EntityType: EntityContacts, Success: false},
			{EntityType: EntityInvoices, Success: false},
		},
	}

	assert.Equal(t, []EntityType{EntityContacts, EntityInvoices}, r.FailedEntities())
	assert.Empty(t, (&SyncResult{}).FailedEntities())
}
