package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"
	"storefront/pkg/pagination"
	"storefront/pkg/response"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// RegisterRoutes mounts catalog management under an admin-guarded group
func (h *CatalogHandler) RegisterRoutes(admin *gin.RouterGroup) {
	group := admin.Group("/catalogs")
	{
		group.GET("", h.ListCatalogs)
		group.GET("/:id", h.GetCatalog)
		group.POST("", h.CreateCatalog)
		group.PUT("/:id", h.UpdateCatalog)
		group.DELETE("/:id", h.DeleteCatalog)
		group.PUT("/:id/products", h.SetCatalogProducts)
		group.PATCH("/:id/products/:productId", h.SetCatalogEntry)
	}
}

// ListCatalogs returns paginated catalogs
// @Summary      List catalogs
// @Tags         catalogs
// @Security     BearerAuth
// @Produce      json
// @Param        page         query     int     false  "Page number (default: 1)"
// @Param        limit        query     int     false  "Items per page (default: 20)"
// @Param        search       query     string  false  "Search by name or code"
// @Param        accessLevel  query     string  false  "GENERAL or a priority code"
// @Param        active       query     bool    false  "Filter by active flag"
// @Success      200          {object}  response.Response{data=[]model.Catalog}
// @Router       /api/admin/catalogs [get]
func (h *CatalogHandler) ListCatalogs(c *gin.Context) {
	p := pagination.Parse(c)
	catalogs, total, err := h.catalogService.ListCatalogs(c.Request.Context(), service.CatalogFilter{
		Search:      c.Query("search"),
		AccessLevel: c.Query("accessLevel"),
		IsActive:    pagination.OptionalBool(c, "active"),
		Page:        p.Page,
		Limit:       p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, catalogs, p.Page, p.Limit, total))
}

// GetCatalog returns a catalog with its products in display order
// @Summary      Get catalog
// @Tags         catalogs
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Catalog ID"
// @Success      200  {object}  response.Response{data=service.CatalogDetail}
// @Failure      404  {object}  response.Response
// @Router       /api/admin/catalogs/{id} [get]
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	catalog, err := h.catalogService.GetCatalog(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, catalog))
}

// CreateCatalog creates a catalog and propagates retailer access
// @Summary      Create catalog
// @Tags         catalogs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateCatalogRequest  true  "Catalog payload"
// @Success      201      {object}  response.Response{data=service.CatalogMutationResult}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/admin/catalogs [post]
func (h *CatalogHandler) CreateCatalog(c *gin.Context) {
	var req service.CreateCatalogRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.catalogService.CreateCatalog(c.Request.Context(), middleware.AdminID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// UpdateCatalog updates catalog fields and propagates retailer access
// @Summary      Update catalog
// @Tags         catalogs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Catalog ID"
// @Param        payload  body      service.UpdateCatalogRequest  true  "Update payload"
// @Success      200      {object}  response.Response{data=service.CatalogMutationResult}
// @Failure      400      {object}  response.Response
// @Router       /api/admin/catalogs/{id} [put]
func (h *CatalogHandler) UpdateCatalog(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateCatalogRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.catalogService.UpdateCatalog(c.Request.Context(), middleware.AdminID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// DeleteCatalog removes a catalog and propagates retailer access
// @Summary      Delete catalog
// @Tags         catalogs
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Catalog ID"
// @Success      200  {object}  response.Response{data=service.CatalogMutationResult}
// @Failure      404  {object}  response.Response
// @Router       /api/admin/catalogs/{id} [delete]
func (h *CatalogHandler) DeleteCatalog(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	res, err := h.catalogService.DeleteCatalog(c.Request.Context(), middleware.AdminID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// SetCatalogProducts replaces the ordered product list of a catalog
// @Summary      Set catalog products
// @Tags         catalogs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                             true  "Catalog ID"
// @Param        payload  body      service.SetCatalogProductsRequest  true  "Ordered products"
// @Success      200      {object}  response.Response{data=service.CatalogMutationResult}
// @Failure      400      {object}  response.Response
// @Router       /api/admin/catalogs/{id}/products [put]
func (h *CatalogHandler) SetCatalogProducts(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req service.SetCatalogProductsRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.catalogService.SetCatalogProducts(c.Request.Context(), middleware.AdminID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// SetCatalogEntry toggles one product inside a catalog
// @Summary      Toggle catalog entry
// @Tags         catalogs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id         path      string                          true  "Catalog ID"
// @Param        productId  path      string                          true  "Product ID"
// @Param        payload    body      service.SetCatalogEntryRequest  true  "Entry state"
// @Success      200        {object}  response.Response{data=service.CatalogDetail}
// @Failure      404        {object}  response.Response
// @Router       /api/admin/catalogs/{id}/products/{productId} [patch]
func (h *CatalogHandler) SetCatalogEntry(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	productID, ok := paramUUID(c, "productId")
	if !ok {
		return
	}
	var req service.SetCatalogEntryRequest
	if !bindJSON(c, &req) {
		return
	}
	detail, err := h.catalogService.SetCatalogEntryActive(c.Request.Context(), middleware.AdminID(c), id, productID, *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}
