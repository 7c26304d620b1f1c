package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"
	"storefront/pkg/pagination"
	"storefront/pkg/response"

	"github.com/gin-gonic/gin"
)

type RetailerHandler struct {
	retailerService service.RetailerService
}

func NewRetailerHandler(retailerService service.RetailerService) *RetailerHandler {
	return &RetailerHandler{retailerService: retailerService}
}

// RegisterRoutes mounts retailer management under an admin-guarded group
func (h *RetailerHandler) RegisterRoutes(admin *gin.RouterGroup) {
	group := admin.Group("/retailers")
	{
		group.GET("", h.ListRetailers)
		group.GET("/:id", h.GetRetailer)
		group.POST("", h.CreateRetailer)
		group.PUT("/:id", h.UpdateRetailer)
		group.DELETE("/:id", h.DeleteRetailer)
		group.PUT("/:id/priorities", h.AssignPriorities)
		group.PUT("/:id/catalog-overrides", h.SetCatalogOverrides)
	}
}

// ListRetailers returns paginated retailers
// @Summary      List retailers
// @Tags         retailers
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default: 1)"
// @Param        limit   query     int     false  "Items per page (default: 20)"
// @Param        search  query     string  false  "Search by phone or business name"
// @Param        active  query     bool    false  "Filter by active flag"
// @Success      200     {object}  response.Response{data=[]model.Retailer}
// @Router       /api/admin/retailers [get]
func (h *RetailerHandler) ListRetailers(c *gin.Context) {
	p := pagination.Parse(c)
	retailers, total, err := h.retailerService.ListRetailers(c.Request.Context(), service.RetailerFilter{
		Search:   c.Query("search"),
		IsActive: pagination.OptionalBool(c, "active"),
		Page:     p.Page,
		Limit:    p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, retailers, p.Page, p.Limit, total))
}

// GetRetailer returns a retailer with priorities and catalog grants
// @Summary      Get retailer
// @Tags         retailers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Retailer ID"
// @Success      200  {object}  response.Response{data=model.Retailer}
// @Failure      404  {object}  response.Response
// @Router       /api/admin/retailers/{id} [get]
func (h *RetailerHandler) GetRetailer(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	retailer, err := h.retailerService.GetRetailer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, retailer))
}

// CreateRetailer registers a retailer and computes its catalog access
// @Summary      Create retailer
// @Tags         retailers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateRetailerRequest  true  "Retailer payload"
// @Success      201      {object}  response.Response{data=model.Retailer}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/admin/retailers [post]
func (h *RetailerHandler) CreateRetailer(c *gin.Context) {
	var req service.CreateRetailerRequest
	if !bindJSON(c, &req) {
		return
	}
	retailer, err := h.retailerService.CreateRetailer(c.Request.Context(), middleware.AdminID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, retailer))
}

// UpdateRetailer updates retailer profile fields
// @Summary      Update retailer
// @Tags         retailers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Retailer ID"
// @Param        payload  body      service.UpdateRetailerRequest  true  "Update payload"
// @Success      200      {object}  response.Response{data=model.Retailer}
// @Failure      400      {object}  response.Response
// @Router       /api/admin/retailers/{id} [put]
func (h *RetailerHandler) UpdateRetailer(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateRetailerRequest
	if !bindJSON(c, &req) {
		return
	}
	retailer, err := h.retailerService.UpdateRetailer(c.Request.Context(), middleware.AdminID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, retailer))
}

// DeleteRetailer soft-deletes a retailer
// @Summary      Delete retailer
// @Tags         retailers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Retailer ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/admin/retailers/{id} [delete]
func (h *RetailerHandler) DeleteRetailer(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.retailerService.DeleteRetailer(c.Request.Context(), middleware.AdminID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Retailer deleted"}))
}

// AssignPriorities replaces the retailer's priority tiers
// @Summary      Assign priorities
// @Tags         retailers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                           true  "Retailer ID"
// @Param        payload  body      service.AssignPrioritiesRequest  true  "Priority IDs"
// @Success      200      {object}  response.Response{data=model.Retailer}
// @Failure      400      {object}  response.Response
// @Router       /api/admin/retailers/{id}/priorities [put]
func (h *RetailerHandler) AssignPriorities(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req service.AssignPrioritiesRequest
	if !bindJSON(c, &req) {
		return
	}
	retailer, err := h.retailerService.AssignPriorities(c.Request.Context(), middleware.AdminID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, retailer))
}

// SetCatalogOverrides replaces the manually granted catalogs
// @Summary      Set catalog overrides
// @Tags         retailers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                              true  "Retailer ID"
// @Param        payload  body      service.SetCatalogOverridesRequest  true  "Catalog IDs"
// @Success      200      {object}  response.Response{data=model.Retailer}
// @Failure      400      {object}  response.Response
// @Router       /api/admin/retailers/{id}/catalog-overrides [put]
func (h *RetailerHandler) SetCatalogOverrides(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req service.SetCatalogOverridesRequest
	if !bindJSON(c, &req) {
		return
	}
	retailer, err := h.retailerService.SetCatalogOverrides(c.Request.Context(), middleware.AdminID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, retailer))
}
