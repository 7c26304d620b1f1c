package service

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCatalog_PropagatesAccess(t *testing.T) {
	env := newTestEnv()
	gold := env.db.addPriority("GOLD")
	holder := env.db.addRetailer("9000000061", gold)
	other := env.db.addRetailer("9000000062", env.db.addPriority("SILVER"))
	p1 := env.db.addProduct("EW-401", "Banarasi Saree", true)
	p2 := env.db.addProduct("EW-402", "Kanjivaram Saree", true)
	off := false

	res, err := env.catalog.CreateCatalog(context.Background(), "admin", CreateCatalogRequest{
		CatalogName: "Gold Festive",
		CatalogCode: " gold-fest ",
		AccessLevel: "gold",
		Products: []CatalogProductInput{
			{ProductID: p2.ID.String()},
			{ProductID: p1.ID.String(), IsActive: &off},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Catalog)
	require.NotNil(t, res.Sync)

	assert.Equal(t, "GOLD-FEST", res.Catalog.CatalogCode)
	assert.Equal(t, "GOLD", res.Catalog.AccessLevel)
	assert.True(t, res.Catalog.IsActive)
	require.Len(t, res.Catalog.Products, 2)
	assert.Equal(t, p2.ID, res.Catalog.Products[0].ProductID)
	assert.True(t, res.Catalog.Products[0].IsActive)
	assert.False(t, res.Catalog.Products[1].IsActive)

	assert.Equal(t, []uuid.UUID{res.Catalog.ID}, env.db.accessible[holder.ID])
	assert.Empty(t, env.db.accessible[other.ID])
	assert.Contains(t, env.db.auditActions(), model.ActionCreateCatalog)
}

func TestCreateCatalog_Validation(t *testing.T) {
	env := newTestEnv()
	env.db.addCatalog("TAKEN", model.AccessLevelGeneral, true)
	p := env.db.addProduct("EW-403", "Sharara", true)

	tests := []struct {
		name string
		req  CreateCatalogRequest
		kind ErrorKind
	}{
		{"unknown access level", CreateCatalogRequest{CatalogName: "X", CatalogCode: "X1", AccessLevel: "PLATINUM"}, KindValidation},
		{"duplicate code", CreateCatalogRequest{CatalogName: "X", CatalogCode: "taken", AccessLevel: "GENERAL"}, KindConflict},
		{"blank code", CreateCatalogRequest{CatalogName: "X", CatalogCode: "  ", AccessLevel: "GENERAL"}, KindValidation},
		{"unknown product", CreateCatalogRequest{CatalogName: "X", CatalogCode: "X2", AccessLevel: "GENERAL", Products: []CatalogProductInput{{ProductID: uuid.NewString()}}}, KindValidation},
		{"duplicate product", CreateCatalogRequest{CatalogName: "X", CatalogCode: "X3", AccessLevel: "GENERAL", Products: []CatalogProductInput{{ProductID: p.ID.String()}, {ProductID: p.ID.String()}}}, KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.catalog.CreateCatalog(context.Background(), "admin", tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, appErrorKind(err))
		})
	}
	assert.Len(t, env.db.catalogs, 1)
}

func TestGetCatalog_DropsDanglingEntries(t *testing.T) {
	env := newTestEnv()
	kept := env.db.addProduct("EW-404", "Palazzo Set", true)
	gone := env.db.addProduct("EW-405", "Dupatta", true)
	catalog := env.db.addCatalog("SUMMER", model.AccessLevelGeneral, true,
		model.CatalogProduct{ProductID: gone.ID, IsActive: true},
		model.CatalogProduct{ProductID: kept.ID, IsActive: true},
	)
	delete(env.db.products, gone.ID)

	detail, err := env.catalog.GetCatalog(context.Background(), catalog.ID)
	require.NoError(t, err)
	require.Len(t, detail.Products, 1)
	assert.Equal(t, kept.ID, detail.Products[0].ProductID)
	assert.Equal(t, "Palazzo Set", detail.Products[0].Product.Name)
}

func TestUpdateCatalog_LevelChangeMovesAccess(t *testing.T) {
	env := newTestEnv()
	gold := env.db.addPriority("GOLD")
	silver := env.db.addPriority("SILVER")
	goldHolder := env.db.addRetailer("9000000063", gold)
	silverHolder := env.db.addRetailer("9000000064", silver)
	catalog := env.db.addCatalog("WINTER", "GOLD", true)

	_, err := env.access.SyncAll(context.Background(), "admin")
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{catalog.ID}, env.db.accessible[goldHolder.ID])

	level := "SILVER"
	res, err := env.catalog.UpdateCatalog(context.Background(), "admin", catalog.ID, UpdateCatalogRequest{AccessLevel: &level})
	require.NoError(t, err)
	assert.Equal(t, "SILVER", res.Catalog.AccessLevel)

	assert.Empty(t, env.db.accessible[goldHolder.ID])
	assert.Equal(t, []uuid.UUID{catalog.ID}, env.db.accessible[silverHolder.ID])
}

func TestDeleteCatalog_RemovesGrants(t *testing.T) {
	env := newTestEnv()
	gold := env.db.addPriority("GOLD")
	holder := env.db.addRetailer("9000000065", gold)
	catalog := env.db.addCatalog("GOLDONLY", "GOLD", true)
	env.db.overrides[holder.ID] = []uuid.UUID{catalog.ID}
	_, err := env.access.SyncAll(context.Background(), "admin")
	require.NoError(t, err)

	res, err := env.catalog.DeleteCatalog(context.Background(), "admin", catalog.ID)
	require.NoError(t, err)
	assert.Nil(t, res.Catalog)
	assert.NotContains(t, env.db.catalogs, catalog.ID)
	assert.Empty(t, env.db.accessible[holder.ID])
	assert.Empty(t, env.db.overrides[holder.ID])

	_, err = env.catalog.DeleteCatalog(context.Background(), "admin", catalog.ID)
	assert.Equal(t, http.StatusNotFound, appErrorStatus(err))
}

func TestSetCatalogEntryActive(t *testing.T) {
	env := newTestEnv()
	p := env.db.addProduct("EW-406", "Kurti", true)
	catalog := env.db.addCatalog("DAILY", model.AccessLevelGeneral, true,
		model.CatalogProduct{ProductID: p.ID, IsActive: true},
	)

	detail, err := env.catalog.SetCatalogEntryActive(context.Background(), "admin", catalog.ID, p.ID, false)
	require.NoError(t, err)
	require.Len(t, detail.Products, 1)
	assert.False(t, detail.Products[0].IsActive)
	assert.Empty(t, env.events.names())

	_, err = env.catalog.SetCatalogEntryActive(context.Background(), "admin", catalog.ID, uuid.New(), true)
	assert.Equal(t, KindNotFound, appErrorKind(err))
}

func TestCreateCatalog_PropagationBusyStillCommits(t *testing.T) {
	env := newTestEnv()
	unlock, err := env.locker.Acquire(context.Background(), propagationLockKey, 0)
	require.NoError(t, err)
	defer unlock(context.Background())

	res, err := env.catalog.CreateCatalog(context.Background(), "admin", CreateCatalogRequest{
		CatalogName: "Monsoon",
		CatalogCode: "MONSOON",
		AccessLevel: "GENERAL",
	})
	require.NoError(t, err)
	assert.Nil(t, res.Sync)
	assert.Contains(t, env.db.catalogs, res.Catalog.ID)
}
