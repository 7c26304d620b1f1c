package handler

import (
	"net/http"
	"time"

	"storefront/internal/middleware"
	"storefront/internal/service"
	"storefront/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService  service.AuthService
	requireAdmin gin.HandlerFunc
}

func NewAuthHandler(authService service.AuthService, requireAdmin gin.HandlerFunc) *AuthHandler {
	return &AuthHandler{authService: authService, requireAdmin: requireAdmin}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/admin")
	{
		group.POST("/login", h.Login)
		group.POST("/logout", h.Logout)
		group.GET("/verify", h.requireAdmin, h.Verify)
	}
}

// Login exchanges the admin password for a signed token
// @Summary      Admin login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Admin password"
// @Success      200      {object}  response.Response{data=service.LoginResponse}
// @Failure      401      {object}  response.Response
// @Router       /api/admin/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetTokenCookie(c, res.Token, int(time.Until(res.ExpiresAt).Seconds()))
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Logout clears the admin token cookie
// @Summary      Admin logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/admin/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookie(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Logged out"}))
}

// Verify reports the authenticated admin identity
// @Summary      Verify admin token
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /api/admin/verify [get]
func (h *AuthHandler) Verify(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"adminId": middleware.AdminID(c),
		"role":    service.AdminRole,
	}))
}
