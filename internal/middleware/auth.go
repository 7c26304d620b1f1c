package middleware

import (
	"errors"
	"net/http"
	"strings"

	"storefront/internal/service"
	"storefront/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenCookie = "access_token"
	adminIDKey        = "adminID"
)

// ErrNotAdmin is returned for a valid token that does not carry the admin role.
var ErrNotAdmin = errors.New("token does not grant admin access")

// ParseAdminToken verifies an HS256 admin token and returns its claims.
func ParseAdminToken(secret []byte, tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if role, _ := claims["role"].(string); role != service.AdminRole {
		return claims, ErrNotAdmin
	}
	return claims, nil
}

func cookieSecurity() (http.SameSite, bool) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	if gin.Mode() == gin.ReleaseMode {
		return http.SameSiteNoneMode, true
	}
	return http.SameSiteLaxMode, false
}

// SetTokenCookie stores the admin token as an HttpOnly cookie
func SetTokenCookie(c *gin.Context, token string, maxAge int) {
	sameSite, secure := cookieSecurity()
	c.SetSameSite(sameSite)
	c.SetCookie(AccessTokenCookie, token, maxAge, "/", "", secure, true)
}

// ClearTokenCookie removes the admin token cookie
func ClearTokenCookie(c *gin.Context) {
	sameSite, secure := cookieSecurity()
	c.SetSameSite(sameSite)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
}

// RequireAdmin validates the admin JWT from the access_token cookie or the
// Authorization header.
func RequireAdmin(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Try cookie first, fallback to Authorization header
		tokenString, cookieErr := c.Cookie(AccessTokenCookie)
		if cookieErr != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
				return
			}
			tokenString = parts[1]
		}

		claims, err := ParseAdminToken(secret, tokenString)
		if errors.Is(err, ErrNotAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: admin only"))
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token: "+err.Error()))
			return
		}

		sub, _ := claims["sub"].(string)
		if sub == "" {
			sub = service.AdminSubject
		}
		c.Set(adminIDKey, sub)

		c.Next()
	}
}

// AdminID returns the admin identity set by RequireAdmin
func AdminID(c *gin.Context) string {
	if id := c.GetString(adminIDKey); id != "" {
		return id
	}
	return service.AdminSubject
}
