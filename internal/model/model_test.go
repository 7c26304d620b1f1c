package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func findIndex(t *testing.T, dest interface{}, name string) *schema.Index {
	t.Helper()
	s, err := schema.Parse(dest, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	for _, idx := range s.ParseIndexes() {
		if idx.Name == name {
			return idx
		}
	}
	t.Fatalf("index %s not declared", name)
	return nil
}

// Soft-deleted rows must not keep their natural key reserved.
func TestNaturalKeysAreUniqueAmongLiveRows(t *testing.T) {
	tests := []struct {
		name   string
		dest   interface{}
		index  string
		column string
	}{
		{"retailer phone", &Retailer{}, "idx_retailers_live_phone", "phone_number"},
		{"product item code", &Product{}, "idx_products_live_item_code", "item_code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := findIndex(t, tt.dest, tt.index)
			assert.Equal(t, "UNIQUE", idx.Class)
			assert.Equal(t, "deleted_at IS NULL", idx.Where)
			require.Len(t, idx.Fields, 1)
			assert.Equal(t, tt.column, idx.Fields[0].DBName)
		})
	}
}

func TestRetailerPriorityCodesSkipsInactive(t *testing.T) {
	r := Retailer{Priorities: []Priority{
		{PriorityCode: "GOLD", IsActive: true},
		{PriorityCode: "SILVER", IsActive: false},
	}}
	assert.Equal(t, []string{"GOLD"}, r.PriorityCodes())
}
