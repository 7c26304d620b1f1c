package service

import (
	"context"
	"testing"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct(t *testing.T) {
	env := newTestEnv()

	p, err := env.product.CreateProduct(context.Background(), "admin", CreateProductRequest{
		ItemCode:      " EW-501 ",
		Name:          "Georgette Gown",
		PricePerPiece: decimal.RequireFromString("799.50"),
		PricePerSet:   decimal.NewFromInt(3600),
		Sizes:         []string{"S", " ", "M ", "L"},
	})
	require.NoError(t, err)

	assert.Equal(t, "EW-501", p.ItemCode)
	assert.True(t, p.IsActive)
	assert.Equal(t, []string{"S", "M", "L"}, []string(p.Sizes))
	assert.Empty(t, p.Images)
	assert.Contains(t, env.db.auditActions(), model.ActionCreateProduct)

	_, err = env.product.CreateProduct(context.Background(), "admin", CreateProductRequest{ItemCode: "EW-501", Name: "Copy"})
	assert.Equal(t, KindConflict, appErrorKind(err))

	_, err = env.product.CreateProduct(context.Background(), "admin", CreateProductRequest{
		ItemCode:      "EW-502",
		Name:          "Negative",
		PricePerPiece: decimal.NewFromInt(-1),
	})
	assert.Equal(t, KindValidation, appErrorKind(err))
}

func TestUpdateProduct_PartialFields(t *testing.T) {
	env := newTestEnv()
	p := env.db.addProduct("EW-503", "Lehenga Choli", true)
	off := false
	price := decimal.NewFromInt(1250)

	out, err := env.product.UpdateProduct(context.Background(), "admin", p.ID, UpdateProductRequest{
		PricePerPiece: &price,
		IsActive:      &off,
	})
	require.NoError(t, err)
	assert.Equal(t, "Lehenga Choli", out.Name)
	assert.True(t, out.PricePerPiece.Equal(price))
	assert.False(t, env.db.products[p.ID].IsActive)
}

func TestDeleteProduct_CatalogReadSkipsIt(t *testing.T) {
	env := newTestEnv()
	p := env.db.addProduct("EW-504", "Salwar Suit", true)
	catalog := env.db.addCatalog("BASICS", model.AccessLevelGeneral, true,
		model.CatalogProduct{ProductID: p.ID, IsActive: true},
	)

	require.NoError(t, env.product.DeleteProduct(context.Background(), "admin", p.ID))

	detail, err := env.catalog.GetCatalog(context.Background(), catalog.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Products)
	assert.Len(t, env.db.catalogs[catalog.ID].Products, 1)
}

func TestGetDashboard(t *testing.T) {
	env := newTestEnv()
	env.db.addRetailer("9000000081")
	inactive := env.db.addRetailer("9000000082")
	inactive.IsActive = false
	env.db.addCatalog("ON", model.AccessLevelGeneral, true)
	env.db.addCatalog("OFF", model.AccessLevelGeneral, false)
	env.db.addProduct("EW-505", "Kurta", true)
	seedOrder(env, model.OrderStatusSubmitted, thousand())
	approved := seedOrder(env, model.OrderStatusApproved, thousand())
	_, err := env.po.GeneratePurchaseOrder(context.Background(), "admin", GeneratePORequest{OrderID: approved.ID.String()})
	require.NoError(t, err)

	stats, err := env.dashboard.GetDashboard(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 1, stats.ActiveRetailers)
	assert.EqualValues(t, 1, stats.ActiveCatalogs)
	assert.EqualValues(t, 1, stats.Products)
	assert.Equal(t, map[string]int64{
		model.OrderStatusSubmitted:   1,
		model.OrderStatusPOGenerated: 1,
	}, stats.OrdersByStatus)
	assert.EqualValues(t, 1, stats.PurchaseOrders)
	assert.True(t, stats.PurchaseOrderValue.Equal(decimal.NewFromInt(1180)))
	assert.Zero(t, stats.PendingContactLeads)
}
