package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"
	"storefront/pkg/response"

	"github.com/gin-gonic/gin"
)

type PriorityHandler struct {
	priorityService service.PriorityService
}

func NewPriorityHandler(priorityService service.PriorityService) *PriorityHandler {
	return &PriorityHandler{priorityService: priorityService}
}

// RegisterRoutes mounts priority management under an admin-guarded group
func (h *PriorityHandler) RegisterRoutes(admin *gin.RouterGroup) {
	group := admin.Group("/priorities")
	{
		group.GET("", h.ListPriorities)
		group.GET("/:id", h.GetPriority)
		group.POST("", h.CreatePriority)
		group.PUT("/:id", h.UpdatePriority)
		group.DELETE("/:id", h.DeletePriority)
	}
}

// ListPriorities returns every priority tier ordered by code
// @Summary      List priorities
// @Tags         priorities
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Priority}
// @Router       /api/admin/priorities [get]
func (h *PriorityHandler) ListPriorities(c *gin.Context) {
	priorities, err := h.priorityService.ListPriorities(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, priorities))
}

// GetPriority returns a single priority
// @Summary      Get priority
// @Tags         priorities
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Priority ID"
// @Success      200  {object}  response.Response{data=model.Priority}
// @Failure      404  {object}  response.Response
// @Router       /api/admin/priorities/{id} [get]
func (h *PriorityHandler) GetPriority(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	priority, err := h.priorityService.GetPriority(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, priority))
}

// CreatePriority creates a tier and propagates catalog access
// @Summary      Create priority
// @Tags         priorities
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePriorityRequest  true  "Priority payload"
// @Success      201      {object}  response.Response{data=service.PriorityMutationResult}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/admin/priorities [post]
func (h *PriorityHandler) CreatePriority(c *gin.Context) {
	var req service.CreatePriorityRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.priorityService.CreatePriority(c.Request.Context(), middleware.AdminID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// UpdatePriority updates a tier and propagates catalog access
// @Summary      Update priority
// @Tags         priorities
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Priority ID"
// @Param        payload  body      service.UpdatePriorityRequest  true  "Update payload"
// @Success      200      {object}  response.Response{data=service.PriorityMutationResult}
// @Failure      400      {object}  response.Response
// @Router       /api/admin/priorities/{id} [put]
func (h *PriorityHandler) UpdatePriority(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req service.UpdatePriorityRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.priorityService.UpdatePriority(c.Request.Context(), middleware.AdminID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// DeletePriority removes a tier, reassigning or deactivating its retailers
// @Summary      Delete priority
// @Tags         priorities
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Priority ID"
// @Success      200  {object}  response.Response{data=service.DeletePriorityResult}
// @Failure      404  {object}  response.Response
// @Router       /api/admin/priorities/{id} [delete]
func (h *PriorityHandler) DeletePriority(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	res, err := h.priorityService.DeletePriority(c.Request.Context(), middleware.AdminID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
