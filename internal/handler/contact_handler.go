package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"
	"storefront/pkg/pagination"
	"storefront/pkg/response"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contactService service.ContactService
}

func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

func (h *ContactHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/api/contact", h.Submit)
}

func (h *ContactHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	group := admin.Group("/contact-inquiries")
	{
		group.GET("", h.ListInquiries)
		group.PATCH("/:id/handled", h.MarkHandled)
	}
}

// Submit stores a public contact form submission
// @Summary      Submit contact form
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ContactRequest  true  "Inquiry"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Router       /api/contact [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	var req service.ContactRequest
	if !bindJSON(c, &req) {
		return
	}
	inquiry, err := h.contactService.Submit(c.Request.Context(), c.ClientIP(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, gin.H{
		"id":      inquiry.ID,
		"message": "Thank you, we will get back to you shortly.",
	}))
}

// ListInquiries returns paginated contact inquiries
// @Summary      List contact inquiries
// @Tags         contact
// @Security     BearerAuth
// @Produce      json
// @Param        page     query     int   false  "Page number (default: 1)"
// @Param        limit    query     int   false  "Items per page (default: 20)"
// @Param        handled  query     bool  false  "Filter by handled flag"
// @Success      200      {object}  response.Response{data=[]model.ContactInquiry}
// @Router       /api/admin/contact-inquiries [get]
func (h *ContactHandler) ListInquiries(c *gin.Context) {
	p := pagination.Parse(c)
	inquiries, total, err := h.contactService.ListInquiries(c.Request.Context(), pagination.OptionalBool(c, "handled"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, inquiries, p.Page, p.Limit, total))
}

// MarkHandled flags an inquiry as followed up
// @Summary      Mark inquiry handled
// @Tags         contact
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Inquiry ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/admin/contact-inquiries/{id}/handled [patch]
func (h *ContactHandler) MarkHandled(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.contactService.MarkHandled(c.Request.Context(), middleware.AdminID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Inquiry marked as handled"}))
}
