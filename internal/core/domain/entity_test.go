package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseEntityType(t *testing.T) {
	tests := []struct {
		input    string
		expected EntityType
	}{
		{"invoices", EntityInvoices},
		{" Invoices ", EntityInvoices},
		{"credit-notes", EntityCreditNotes},
		{"BANK_TRANSACTIONS", EntityBankTransactions},
		{"widgets", EntityType("widgets")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseEntityType(tt.input))
		})
	}
}

func TestEntityConfig_Validate(t *testing.T) {
	valid := EntityConfig{
		EntityType: EntityInvoices,
		TableName:  "xero_invoices",
		BatchSize:  100,
	}

	tests := []struct {
		name    string
		mutate  func(c *EntityConfig)
		wantErr bool
	}{
		{"valid", func(c *EntityConfig) {}, false},
		{"missing type", func(c *EntityConfig) { c.EntityType = "" }, true},
		{"missing table", func(c *EntityConfig) { c.TableName = "" }, true},
		{"batch too small", func(c *EntityConfig) { c.BatchSize = MinBatchSize - 1 }, true},
		{"batch too large", func(c *EntityConfig) { c.BatchSize = MaxBatchSize + 1 }, true},
		{"batch at min", func(c *EntityConfig) { c.BatchSize = MinBatchSize }, false},
		{"batch at max", func(c *EntityConfig) { c.BatchSize = MaxBatchSize }, false},
		{"self dependency", func(c *EntityConfig) { c.Dependencies = []EntityType{EntityInvoices} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidInput))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEntityConfig_SyncInterval(t *testing.T) {
	cfg := EntityConfig{DefaultSyncIntervalHours: 6}
	assert.Equal(t, 6*time.Hour, cfg.SyncInterval())
}
