// internal/middleware/auth_middleware.go
package middleware

import (
	"strings"

	"takataka-service/internal/pkg/response"
	"takataka-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	authService *auth.Service
}

func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Auth validates the bearer token and loads the admin into the request
// context.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "missing authorization token")
			return
		}

		a, claims, err := m.authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			response.FromError(c, "authentication failed", err)
			return
		}

		c.Set("admin_id", a.ID)
		c.Set("admin_email", a.Email)
		c.Set("admin_role", string(a.Role))
		c.Set("jti", claims.ID)

		c.Next()
	}
}

// RequireSuperAdmin restricts a route to super admins. Must run after
// Auth().
func (m *AuthMiddleware) RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsSuperAdmin(c) {
			response.Forbidden(c, "super admin access required")
			return
		}
		c.Next()
	}
}

// extractToken pulls the token from the Authorization header, or from
// the token query parameter for websocket upgrades where browsers cannot
// set headers.
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}
