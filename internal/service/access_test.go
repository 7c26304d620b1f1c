package service

import (
	"testing"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func catalogAt(level string, active bool) model.Catalog {
	return model.Catalog{ID: uuid.New(), CatalogCode: level + "-" + uuid.NewString()[:4], AccessLevel: level, IsActive: active}
}

func TestBuildAccessIndex_SkipsInactiveCatalogs(t *testing.T) {
	general := catalogAt(model.AccessLevelGeneral, true)
	vip := catalogAt("VIP", true)
	hidden := catalogAt("VIP", false)

	idx := BuildAccessIndex([]model.Catalog{general, vip, hidden})

	assert.Equal(t, []uuid.UUID{general.ID}, idx[model.AccessLevelGeneral])
	assert.Equal(t, []uuid.UUID{vip.ID}, idx["VIP"])
}

func TestAccessIndex_Resolve(t *testing.T) {
	general := catalogAt(model.AccessLevelGeneral, true)
	gold := catalogAt("GOLD", true)
	vip := catalogAt("VIP", true)
	idx := BuildAccessIndex([]model.Catalog{general, gold, vip})

	tests := []struct {
		name  string
		codes []string
		want  []uuid.UUID
	}{
		{"no codes still sees general", nil, []uuid.UUID{general.ID}},
		{"single code", []string{"VIP"}, []uuid.UUID{general.ID, vip.ID}},
		{"several codes", []string{"GOLD", "VIP"}, []uuid.UUID{general.ID, gold.ID, vip.ID}},
		{"repeated codes dedupe", []string{"VIP", "VIP", model.AccessLevelGeneral}, []uuid.UUID{general.ID, vip.ID}},
		{"unknown code", []string{"BRONZE"}, []uuid.UUID{general.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, idx.Resolve(tt.codes))
		})
	}
}

func TestCanAccessCatalog(t *testing.T) {
	vipPriority := model.Priority{ID: uuid.New(), PriorityCode: "VIP", IsActive: true}
	retailer := &model.Retailer{ID: uuid.New(), Priorities: []model.Priority{vipPriority}}

	a := catalogAt("VIP", true)
	b := catalogAt(model.AccessLevelGeneral, true)
	c := catalogAt("GOLD", true)

	assert.True(t, CanAccessCatalog(retailer, &a), "matching priority")
	assert.True(t, CanAccessCatalog(retailer, &b), "general catalog")
	assert.False(t, CanAccessCatalog(retailer, &c), "other tier")

	retailer.AccessibleCatalogs = []model.Catalog{c}
	assert.True(t, CanAccessCatalog(retailer, &c), "stored derived set")

	retailer.AccessibleCatalogs = nil
	retailer.CatalogOverrides = []model.Catalog{c}
	assert.True(t, CanAccessCatalog(retailer, &c), "manual override")
}

func TestCanAccessCatalog_InactivePriorityGrantsNothing(t *testing.T) {
	retailer := &model.Retailer{Priorities: []model.Priority{{PriorityCode: "GOLD", IsActive: false}}}
	c := catalogAt("GOLD", true)
	assert.False(t, CanAccessCatalog(retailer, &c))
}
