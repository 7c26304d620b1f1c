package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"
	"storefront/pkg/response"

	"github.com/gin-gonic/gin"
)

type AccessHandler struct {
	accessService service.AccessService
}

func NewAccessHandler(accessService service.AccessService) *AccessHandler {
	return &AccessHandler{accessService: accessService}
}

// RegisterRoutes mounts the retailer-facing catalog endpoints
func (h *AccessHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/api/catalog-access", h.CheckAccess)
	router.GET("/api/retailers/:phone/catalogs", h.ListRetailerCatalogs)
}

// RegisterAdminRoutes mounts the manual propagation trigger
func (h *AccessHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.POST("/catalog-access/sync", h.SyncAll)
}

// CheckAccess resolves a retailer's view of one catalog
// @Summary      Check catalog access
// @Description  Returns the catalog and its active products when the retailer may view it
// @Tags         catalog-access
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CatalogAccessRequest  true  "Phone number and catalog code"
// @Success      200      {object}  response.Response{data=service.CatalogAccessResponse}
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/catalog-access [post]
func (h *AccessHandler) CheckAccess(c *gin.Context) {
	var req service.CatalogAccessRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.accessService.CheckAccess(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// ListRetailerCatalogs lists the active catalogs a retailer can open
// @Summary      List retailer catalogs
// @Tags         catalog-access
// @Produce      json
// @Param        phone  path      string  true  "Retailer phone number"
// @Success      200    {object}  response.Response{data=[]service.CatalogSummary}
// @Failure      403    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /api/retailers/{phone}/catalogs [get]
func (h *AccessHandler) ListRetailerCatalogs(c *gin.Context) {
	catalogs, err := h.accessService.ListAccessibleCatalogs(c.Request.Context(), c.Param("phone"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, catalogs))
}

// SyncAll recomputes every retailer's accessible catalogs
// @Summary      Run access propagation
// @Tags         catalog-access
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.SyncSummary}
// @Failure      409  {object}  response.Response
// @Router       /api/admin/catalog-access/sync [post]
func (h *AccessHandler) SyncAll(c *gin.Context) {
	summary, err := h.accessService.SyncAll(c.Request.Context(), middleware.AdminID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
