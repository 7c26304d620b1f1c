package service

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitOrder_SnapshotsAndTotals(t *testing.T) {
	env := newTestEnv()
	gold := env.db.addPriority("GOLD")
	retailer := env.db.addRetailer("9000000051", gold)
	kurta := env.db.addProduct("EW-301", "Cotton Kurta", true)
	lehenga := env.db.addProduct("EW-302", "Bridal Lehenga", true)

	order, err := env.order.SubmitOrder(context.Background(), SubmitOrderRequest{
		PhoneNumber: " 90000-00051 ",
		Items: []OrderItemInput{
			{ProductID: kurta.ID.String(), Pieces: 3, Sets: 1},
			{ProductID: lehenga.ID.String(), Sets: 2},
		},
		Notes: "  deliver before Diwali ",
	})
	require.NoError(t, err)

	assert.Regexp(t, `^ORD-\d{6}-[0-9A-Z]{4}$`, order.OrderNumber)
	assert.Equal(t, model.OrderStatusSubmitted, order.Status)
	assert.True(t, order.IsGSTApplicable)
	assert.Equal(t, "deliver before Diwali", order.Notes)
	assert.Equal(t, retailer.ID, order.RetailerInfo.RetailerID)
	assert.Equal(t, retailer.BusinessName, order.RetailerInfo.BusinessName)

	require.Len(t, order.Items, 2)
	assert.Equal(t, "EW-301", order.Items[0].ItemCode)
	assert.True(t, order.Items[0].LineTotal.Equal(decimal.NewFromInt(750)))
	assert.True(t, order.Items[1].LineTotal.Equal(decimal.NewFromInt(900)))

	sum := order.Summary
	assert.Equal(t, 3, sum.TotalPieces)
	assert.Equal(t, 3, sum.TotalSets)
	assert.True(t, sum.TotalAmountBeforeGST.Decimal.Equal(decimal.NewFromInt(1650)))
	assert.True(t, sum.GSTAmount.Equal(decimal.NewFromInt(297)))
	assert.True(t, sum.TotalAmountAfterGST.Equal(decimal.NewFromInt(1947)))

	assert.Contains(t, env.db.orders, order.ID)
	assert.Equal(t, []string{EventOrderSubmitted}, env.events.names())
}

func TestSubmitOrder_WithoutGST(t *testing.T) {
	env := newTestEnv()
	env.db.addRetailer("9000000052")
	p := env.db.addProduct("EW-303", "Silk Saree", true)
	no := false

	order, err := env.order.SubmitOrder(context.Background(), SubmitOrderRequest{
		PhoneNumber:     "9000000052",
		Items:           []OrderItemInput{{ProductID: p.ID.String(), Pieces: 10}},
		IsGSTApplicable: &no,
	})
	require.NoError(t, err)
	assert.False(t, order.IsGSTApplicable)
	assert.True(t, order.Summary.GSTAmount.IsZero())
	assert.True(t, order.Summary.TotalAmountAfterGST.Equal(decimal.NewFromInt(1000)))
}

func TestSubmitOrder_Rejections(t *testing.T) {
	env := newTestEnv()
	env.db.addRetailer("9000000053")
	inactive := env.db.addRetailer("9000000054")
	inactive.IsActive = false
	active := env.db.addProduct("EW-304", "Anarkali", true)
	retired := env.db.addProduct("EW-305", "Old Stock", false)

	tests := []struct {
		name   string
		req    SubmitOrderRequest
		status int
	}{
		{
			name:   "unknown retailer",
			req:    SubmitOrderRequest{PhoneNumber: "9999999999", Items: []OrderItemInput{{ProductID: active.ID.String(), Pieces: 1}}},
			status: http.StatusNotFound,
		},
		{
			name:   "inactive retailer",
			req:    SubmitOrderRequest{PhoneNumber: "9000000054", Items: []OrderItemInput{{ProductID: active.ID.String(), Pieces: 1}}},
			status: http.StatusForbidden,
		},
		{
			name:   "inactive product",
			req:    SubmitOrderRequest{PhoneNumber: "9000000053", Items: []OrderItemInput{{ProductID: retired.ID.String(), Pieces: 1}}},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown product",
			req:    SubmitOrderRequest{PhoneNumber: "9000000053", Items: []OrderItemInput{{ProductID: uuid.NewString(), Pieces: 1}}},
			status: http.StatusBadRequest,
		},
		{
			name:   "empty quantity",
			req:    SubmitOrderRequest{PhoneNumber: "9000000053", Items: []OrderItemInput{{ProductID: active.ID.String()}}},
			status: http.StatusBadRequest,
		},
		{
			name: "duplicate product",
			req: SubmitOrderRequest{PhoneNumber: "9000000053", Items: []OrderItemInput{
				{ProductID: active.ID.String(), Pieces: 1},
				{ProductID: active.ID.String(), Sets: 1},
			}},
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.order.SubmitOrder(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.status, appErrorStatus(err))
		})
	}
	assert.Empty(t, env.db.orders)
}

func TestUpdateOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to string
		ok       bool
	}{
		{model.OrderStatusSubmitted, model.OrderStatusUnderReview, true},
		{model.OrderStatusSubmitted, model.OrderStatusApproved, true},
		{model.OrderStatusSubmitted, model.OrderStatusRejected, true},
		{model.OrderStatusUnderReview, model.OrderStatusApproved, true},
		{model.OrderStatusUnderReview, model.OrderStatusSubmitted, false},
		{model.OrderStatusApproved, model.OrderStatusRejected, false},
		{model.OrderStatusRejected, model.OrderStatusApproved, false},
		{model.OrderStatusPOGenerated, model.OrderStatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			env := newTestEnv()
			order := seedOrder(env, tt.from, thousand())

			updated, err := env.order.UpdateOrderStatus(context.Background(), "admin", order.ID, UpdateOrderStatusRequest{Status: tt.to})
			if !tt.ok {
				assert.Equal(t, KindValidation, appErrorKind(err))
				assert.Equal(t, tt.from, env.db.orders[order.ID].Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, updated.Status)
			assert.NotNil(t, updated.ReviewedAt)
			assert.Equal(t, tt.to, env.db.orders[order.ID].Status)
			assert.Contains(t, env.db.auditActions(), model.ActionUpdateOrderStatus)
		})
	}
}

func TestUpdateOrderStatus_StampsDecision(t *testing.T) {
	env := newTestEnv()
	approved := seedOrder(env, model.OrderStatusSubmitted, thousand())
	rejected := seedOrder(env, model.OrderStatusUnderReview, thousand())

	out, err := env.order.UpdateOrderStatus(context.Background(), "admin", approved.ID, UpdateOrderStatusRequest{Status: model.OrderStatusApproved})
	require.NoError(t, err)
	assert.NotNil(t, out.ApprovedAt)
	assert.Empty(t, out.RejectionReason)

	out, err = env.order.UpdateOrderStatus(context.Background(), "admin", rejected.ID, UpdateOrderStatusRequest{
		Status:          model.OrderStatusRejected,
		RejectionReason: " out of stock ",
	})
	require.NoError(t, err)
	assert.Nil(t, out.ApprovedAt)
	assert.Equal(t, "out of stock", out.RejectionReason)
}

func TestGetOrder_NotFound(t *testing.T) {
	env := newTestEnv()
	_, err := env.order.GetOrder(context.Background(), uuid.New())
	assert.Equal(t, KindNotFound, appErrorKind(err))
}
