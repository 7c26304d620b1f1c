package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncAll_GrantsGeneralAndTierCatalogs(t *testing.T) {
	env := newTestEnv()
	db := env.db
	vip := db.addPriority("VIP")
	gold := db.addPriority("GOLD")

	general := db.addCatalog("SUMMER", model.AccessLevelGeneral, true)
	vipCat := db.addCatalog("VIP-LUXE", "VIP", true)
	goldCat := db.addCatalog("GOLD-FEST", "GOLD", true)
	db.addCatalog("VIP-OLD", "VIP", false)

	vipRetailer := db.addRetailer("9000000001", vip)
	both := db.addRetailer("9000000002", vip, gold)

	summary, err := env.access.SyncAll(context.Background(), "admin")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalRetailers)
	assert.Equal(t, 2, summary.Updated)
	assert.Zero(t, summary.Skipped)
	assert.Empty(t, summary.Failed)

	assert.ElementsMatch(t, []uuid.UUID{general.ID, vipCat.ID}, db.accessible[vipRetailer.ID])
	assert.ElementsMatch(t, []uuid.UUID{general.ID, vipCat.ID, goldCat.ID}, db.accessible[both.ID])
	assert.NotNil(t, db.retailers[both.ID].LastSyncedAt)

	assert.Contains(t, db.auditActions(), model.ActionSyncCatalogAccess)
	assert.Contains(t, env.events.names(), EventCatalogAccessSynced)
}

func TestSyncAll_LeavesRetailersWithoutPrioritiesUntouched(t *testing.T) {
	env := newTestEnv()
	db := env.db
	db.addCatalog("SUMMER", model.AccessLevelGeneral, true)
	manual := db.addCatalog("PRIVATE", "VIP", true)

	bare := db.addRetailer("9000000003")
	db.accessible[bare.ID] = []uuid.UUID{manual.ID}

	for i := 0; i < 2; i++ {
		summary, err := env.access.SyncAll(context.Background(), "admin")
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Skipped)
		assert.Zero(t, summary.Updated)
	}
	assert.Equal(t, []uuid.UUID{manual.ID}, db.accessible[bare.ID])
	assert.Nil(t, db.retailers[bare.ID].LastSyncedAt)
}

func TestSyncAll_SkipsInactiveRetailers(t *testing.T) {
	env := newTestEnv()
	db := env.db
	vip := db.addPriority("VIP")
	db.addCatalog("SUMMER", model.AccessLevelGeneral, true)
	r := db.addRetailer("9000000004", vip)
	db.retailers[r.ID].IsActive = false

	summary, err := env.access.SyncAll(context.Background(), "admin")
	require.NoError(t, err)
	assert.Zero(t, summary.TotalRetailers)
	assert.Empty(t, db.accessible[r.ID])
}

func TestSyncAll_IsIdempotent(t *testing.T) {
	env := newTestEnv()
	db := env.db
	vip := db.addPriority("VIP")
	db.addCatalog("SUMMER", model.AccessLevelGeneral, true)
	db.addCatalog("VIP-LUXE", "VIP", true)
	r := db.addRetailer("9000000005", vip)

	first, err := env.access.SyncAll(context.Background(), "admin")
	require.NoError(t, err)
	require.Len(t, first.Changes, 1)
	assert.True(t, first.Changes[0].Changed)
	afterFirst := append([]uuid.UUID(nil), db.accessible[r.ID]...)

	second, err := env.access.SyncAll(context.Background(), "admin")
	require.NoError(t, err)
	require.Len(t, second.Changes, 1)
	assert.False(t, second.Changes[0].Changed)
	assert.ElementsMatch(t, afterFirst, db.accessible[r.ID])
}

func TestSyncAll_ContinuesPastRetailerFailures(t *testing.T) {
	env := newTestEnv()
	db := env.db
	vip := db.addPriority("VIP")
	general := db.addCatalog("SUMMER", model.AccessLevelGeneral, true)
	broken := db.addRetailer("9000000006", vip)
	healthy := db.addRetailer("9000000007", vip)
	db.failAccessWrite[broken.ID] = errors.New("connection reset")

	summary, err := env.access.SyncAll(context.Background(), "admin")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Updated)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, broken.ID.String(), summary.Failed[0].RetailerID)
	assert.Contains(t, summary.Failed[0].Error, "connection reset")
	assert.Equal(t, []uuid.UUID{general.ID}, db.accessible[healthy.ID])
}

func TestSyncAll_RejectsConcurrentRun(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	unlock, err := env.locker.Acquire(ctx, propagationLockKey, time.Minute)
	require.NoError(t, err)
	defer unlock(ctx)

	_, err = env.access.SyncAll(ctx, "admin")
	require.Error(t, err)
	assert.Equal(t, KindConflict, appErrorKind(err))
}

func seedAccessScenario(env *testEnv) (vipRetailer *model.Retailer, a, b, c *model.Catalog, products []*model.Product) {
	db := env.db
	vip := db.addPriority("VIP")
	db.addPriority("GOLD")

	zari := db.addProduct("EW-102", "Zari Kurta", true)
	anar := db.addProduct("EW-101", "Anarkali Set", true)
	retired := db.addProduct("EW-103", "Retired Dupatta", false)
	hiddenEntry := db.addProduct("EW-104", "Bandhani Saree", true)
	dangling := uuid.New()

	a = db.addCatalog("VIP-LUXE", "VIP", true,
		model.CatalogProduct{ProductID: zari.ID, IsActive: true},
		model.CatalogProduct{ProductID: anar.ID, IsActive: true},
		model.CatalogProduct{ProductID: retired.ID, IsActive: true},
		model.CatalogProduct{ProductID: hiddenEntry.ID, IsActive: false},
		model.CatalogProduct{ProductID: dangling, IsActive: true},
	)
	b = db.addCatalog("SUMMER", model.AccessLevelGeneral, true,
		model.CatalogProduct{ProductID: anar.ID, IsActive: true},
	)
	c = db.addCatalog("GOLD-FEST", "GOLD", true)

	vipRetailer = db.addRetailer("9876543210", vip)
	return vipRetailer, a, b, c, []*model.Product{anar, zari}
}

func TestCheckAccess_MatchingPriority(t *testing.T) {
	env := newTestEnv()
	retailer, a, _, _, products := seedAccessScenario(env)

	res, err := env.access.CheckAccess(context.Background(), CatalogAccessRequest{
		PhoneNumber: "98765-43210",
		CatalogCode: "vip-luxe",
	})
	require.NoError(t, err)

	assert.Equal(t, a.ID, res.Catalog.ID)
	assert.Equal(t, retailer.ID, res.Retailer.ID)
	require.Len(t, res.Products, 2)
	assert.Equal(t, products[0].Name, res.Products[0].Name)
	assert.Equal(t, products[1].Name, res.Products[1].Name)
}

func TestCheckAccess_GeneralCatalog(t *testing.T) {
	env := newTestEnv()
	seedAccessScenario(env)
	bare := env.db.addRetailer("9111111111")

	res, err := env.access.CheckAccess(context.Background(), CatalogAccessRequest{PhoneNumber: bare.PhoneNumber, CatalogCode: "SUMMER"})
	require.NoError(t, err)
	assert.Len(t, res.Products, 1)
}

func TestCheckAccess_ForbiddenTier(t *testing.T) {
	env := newTestEnv()
	retailer, _, _, _, _ := seedAccessScenario(env)

	_, err := env.access.CheckAccess(context.Background(), CatalogAccessRequest{PhoneNumber: retailer.PhoneNumber, CatalogCode: "GOLD-FEST"})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, appErrorStatus(err))
}

func TestCheckAccess_OverrideGrantsTier(t *testing.T) {
	env := newTestEnv()
	retailer, _, _, c, _ := seedAccessScenario(env)
	env.db.overrides[retailer.ID] = []uuid.UUID{c.ID}

	_, err := env.access.CheckAccess(context.Background(), CatalogAccessRequest{PhoneNumber: retailer.PhoneNumber, CatalogCode: "GOLD-FEST"})
	assert.NoError(t, err)
}

func TestCheckAccess_NotFound(t *testing.T) {
	env := newTestEnv()
	retailer, a, _, _, _ := seedAccessScenario(env)
	env.db.catalogs[a.ID].IsActive = false

	tests := []struct {
		name string
		req  CatalogAccessRequest
	}{
		{"unknown retailer", CatalogAccessRequest{PhoneNumber: "9000000000", CatalogCode: "SUMMER"}},
		{"unknown catalog", CatalogAccessRequest{PhoneNumber: retailer.PhoneNumber, CatalogCode: "NOPE"}},
		{"inactive catalog", CatalogAccessRequest{PhoneNumber: retailer.PhoneNumber, CatalogCode: "VIP-LUXE"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.access.CheckAccess(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, http.StatusNotFound, appErrorStatus(err))
		})
	}
}

func TestCheckAccess_InactiveRetailer(t *testing.T) {
	env := newTestEnv()
	retailer, _, _, _, _ := seedAccessScenario(env)
	env.db.retailers[retailer.ID].IsActive = false

	_, err := env.access.CheckAccess(context.Background(), CatalogAccessRequest{PhoneNumber: retailer.PhoneNumber, CatalogCode: "SUMMER"})
	assert.Equal(t, http.StatusForbidden, appErrorStatus(err))
}

func TestListAccessibleCatalogs(t *testing.T) {
	env := newTestEnv()
	retailer, a, b, _, _ := seedAccessScenario(env)

	catalogs, err := env.access.ListAccessibleCatalogs(context.Background(), retailer.PhoneNumber)
	require.NoError(t, err)

	ids := []uuid.UUID{}
	for _, c := range catalogs {
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, ids)
}

func TestSyncRetailer_IgnoresRetailerWithoutPriorities(t *testing.T) {
	env := newTestEnv()
	env.db.addCatalog("SUMMER", model.AccessLevelGeneral, true)
	r := env.db.addRetailer("9222222222")

	require.NoError(t, env.access.SyncRetailer(context.Background(), r.ID))
	assert.Empty(t, env.db.accessible[r.ID])
}
