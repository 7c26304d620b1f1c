package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"
	"storefront/pkg/pagination"
	"storefront/pkg/response"

	"github.com/gin-gonic/gin"
)

type PurchaseOrderHandler struct {
	poService service.PurchaseOrderService
}

func NewPurchaseOrderHandler(poService service.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{poService: poService}
}

// RegisterRoutes mounts purchase order endpoints under an admin-guarded group
func (h *PurchaseOrderHandler) RegisterRoutes(admin *gin.RouterGroup) {
	group := admin.Group("/purchase-orders")
	{
		group.POST("", h.GeneratePurchaseOrder)
		group.GET("", h.ListPurchaseOrders)
		group.GET("/:id", h.GetPurchaseOrder)
		group.PATCH("/:id/status", h.UpdatePOStatus)
	}
	admin.GET("/orders/:id/purchase-order", h.GetByOrderID)
}

// GeneratePurchaseOrder mints the purchase order for an approved order
// @Summary      Generate purchase order
// @Description  Applies 18% GST unless isGSTApplicable is false. One purchase order per order.
// @Tags         purchase-orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.GeneratePORequest  true  "Order to convert"
// @Success      201      {object}  response.Response{data=model.PurchaseOrder}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/admin/purchase-orders [post]
func (h *PurchaseOrderHandler) GeneratePurchaseOrder(c *gin.Context) {
	var req service.GeneratePORequest
	if !bindJSON(c, &req) {
		return
	}
	po, err := h.poService.GeneratePurchaseOrder(c.Request.Context(), middleware.AdminID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, po))
}

// ListPurchaseOrders returns paginated purchase orders
// @Summary      List purchase orders
// @Tags         purchase-orders
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default: 1)"
// @Param        limit   query     int     false  "Items per page (default: 20)"
// @Param        status  query     string  false  "GENERATED, SENT, ACKNOWLEDGED, CANCELLED"
// @Success      200     {object}  response.Response{data=[]model.PurchaseOrder}
// @Router       /api/admin/purchase-orders [get]
func (h *PurchaseOrderHandler) ListPurchaseOrders(c *gin.Context) {
	p := pagination.Parse(c)
	pos, total, err := h.poService.ListPurchaseOrders(c.Request.Context(), c.Query("status"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, pos, p.Page, p.Limit, total))
}

// GetPurchaseOrder returns a purchase order
// @Summary      Get purchase order
// @Tags         purchase-orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Purchase order ID"
// @Success      200  {object}  response.Response{data=model.PurchaseOrder}
// @Failure      404  {object}  response.Response
// @Router       /api/admin/purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetPurchaseOrder(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	po, err := h.poService.GetPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, po))
}

// GetByOrderID returns the purchase order generated from an order
// @Summary      Get purchase order by order
// @Tags         purchase-orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=model.PurchaseOrder}
// @Failure      404  {object}  response.Response
// @Router       /api/admin/orders/{id}/purchase-order [get]
func (h *PurchaseOrderHandler) GetByOrderID(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	po, err := h.poService.GetByOrderID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, po))
}

// UpdatePOStatus moves a purchase order to SENT, ACKNOWLEDGED or CANCELLED
// @Summary      Update purchase order status
// @Tags         purchase-orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Purchase order ID"
// @Param        payload  body      service.UpdatePOStatusRequest  true  "New status"
// @Success      200      {object}  response.Response{data=model.PurchaseOrder}
// @Failure      400      {object}  response.Response
// @Router       /api/admin/purchase-orders/{id}/status [patch]
func (h *PurchaseOrderHandler) UpdatePOStatus(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req service.UpdatePOStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	po, err := h.poService.UpdatePOStatus(c.Request.Context(), middleware.AdminID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, po))
}
