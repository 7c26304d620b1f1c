package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"
	"storefront/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("handler-test-secret")

type stubAccessService struct {
	check func(req service.CatalogAccessRequest) (*service.CatalogAccessResponse, error)
	sync  func(actor string) (*service.SyncSummary, error)
}

func (s *stubAccessService) SyncAll(_ context.Context, actor string) (*service.SyncSummary, error) {
	return s.sync(actor)
}

func (s *stubAccessService) SyncRetailer(context.Context, uuid.UUID) error { return nil }

func (s *stubAccessService) CheckAccess(_ context.Context, req service.CatalogAccessRequest) (*service.CatalogAccessResponse, error) {
	return s.check(req)
}

func (s *stubAccessService) ListAccessibleCatalogs(context.Context, string) ([]service.CatalogSummary, error) {
	return []service.CatalogSummary{}, nil
}

type stubPOService struct {
	generate func(actor string, req service.GeneratePORequest) (*model.PurchaseOrder, error)
}

func (s *stubPOService) GeneratePurchaseOrder(_ context.Context, actor string, req service.GeneratePORequest) (*model.PurchaseOrder, error) {
	return s.generate(actor, req)
}

func (s *stubPOService) ListPurchaseOrders(context.Context, string, int, int) ([]model.PurchaseOrder, int64, error) {
	return nil, 0, nil
}

func (s *stubPOService) GetPurchaseOrder(context.Context, uuid.UUID) (*model.PurchaseOrder, error) {
	return nil, service.ErrNotFound("Purchase order not found")
}

func (s *stubPOService) GetByOrderID(context.Context, uuid.UUID) (*model.PurchaseOrder, error) {
	return nil, service.ErrNotFound("Purchase order not found")
}

func (s *stubPOService) UpdatePOStatus(context.Context, string, uuid.UUID, service.UpdatePOStatusRequest) (*model.PurchaseOrder, error) {
	return nil, nil
}

func newRouter(access service.AccessService, po service.PurchaseOrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	public := r.Group("")
	admin := r.Group("/api/admin", middleware.RequireAdmin(testSecret))

	accessHandler := NewAccessHandler(access)
	accessHandler.RegisterRoutes(public)
	accessHandler.RegisterAdminRoutes(admin)
	NewPurchaseOrderHandler(po).RegisterRoutes(admin)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var res response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return w, res
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := service.IssueAdminToken(testSecret, time.Hour, time.Now())
	require.NoError(t, err)
	return token
}

func TestCheckAccess_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"granted", nil, http.StatusOK, ""},
		{"retailer missing", service.ErrNotFound("Retailer not found"), http.StatusNotFound, "Retailer not found"},
		{"catalog missing", service.ErrNotFound("Catalog not found"), http.StatusNotFound, "Catalog not found"},
		{"denied", service.ErrForbidden("You do not have access to this catalog"), http.StatusForbidden, "You do not have access to this catalog"},
		{"store failure", service.ErrInternal("failed to load retailer", errors.New("conn reset")), http.StatusInternalServerError, "failed to load retailer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			access := &stubAccessService{check: func(req service.CatalogAccessRequest) (*service.CatalogAccessResponse, error) {
				assert.Equal(t, "SUMMER", req.CatalogCode)
				if tt.err != nil {
					return nil, tt.err
				}
				return &service.CatalogAccessResponse{
					Catalog:  service.CatalogSummary{CatalogCode: "SUMMER"},
					Products: []model.Product{},
				}, nil
			}}
			r := newRouter(access, &stubPOService{})

			w, res := doJSON(t, r, http.MethodPost, "/api/catalog-access", gin.H{
				"phoneNumber": "9876543210",
				"catalogCode": "SUMMER",
			}, "")

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.status, res.StatusCode)
			assert.Equal(t, tt.message, res.Error)
		})
	}
}

func TestCheckAccess_RequiresFields(t *testing.T) {
	r := newRouter(&stubAccessService{}, &stubPOService{})

	w, res := doJSON(t, r, http.MethodPost, "/api/catalog-access", gin.H{"phoneNumber": "9876543210"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", res.Status)
}

func TestGeneratePurchaseOrder_StatusMapping(t *testing.T) {
	exists := &service.AppError{Kind: service.KindConflict, Status: http.StatusBadRequest, Message: "Purchase order already exists for this order"}
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"created", nil, http.StatusCreated},
		{"order missing", service.ErrNotFound("Order not found"), http.StatusNotFound},
		{"not approved", service.ErrValidation("Order must be approved before generating a purchase order"), http.StatusBadRequest},
		{"already exists", exists, http.StatusBadRequest},
		{"malformed summary", service.ErrValidation("Order summary has no valid pre-GST total"), http.StatusBadRequest},
	}

	orderID := uuid.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			po := &stubPOService{generate: func(actor string, req service.GeneratePORequest) (*model.PurchaseOrder, error) {
				assert.Equal(t, service.AdminSubject, actor)
				assert.Equal(t, orderID.String(), req.OrderID)
				if tt.err != nil {
					return nil, tt.err
				}
				return &model.PurchaseOrder{PONumber: "EBA-260101-ZZ99", OrderID: orderID}, nil
			}}
			r := newRouter(&stubAccessService{}, po)

			w, _ := doJSON(t, r, http.MethodPost, "/api/admin/purchase-orders", gin.H{
				"orderId":     orderID.String(),
				"generatedBy": "Ops",
			}, adminToken(t))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	r := newRouter(&stubAccessService{}, &stubPOService{})

	w, _ := doJSON(t, r, http.MethodPost, "/api/admin/catalog-access/sync", gin.H{}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSyncAll_LockBusy(t *testing.T) {
	access := &stubAccessService{sync: func(actor string) (*service.SyncSummary, error) {
		return nil, service.ErrConflict("propagation already in progress")
	}}
	r := newRouter(access, &stubPOService{})

	w, res := doJSON(t, r, http.MethodPost, "/api/admin/catalog-access/sync", gin.H{}, adminToken(t))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "propagation already in progress", res.Error)
}

func TestGetByOrderID_InvalidID(t *testing.T) {
	r := newRouter(&stubAccessService{}, &stubPOService{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders/not-a-uuid/purchase-order", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
