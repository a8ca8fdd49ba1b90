// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"takataka-service/internal/domain/admin"
	"takataka-service/internal/middleware"
	"takataka-service/internal/pkg/response"
	service "takataka-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *service.Service
}

func NewAuthHandler(authService *service.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates an admin and returns a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req admin.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "login failed", err)
		return
	}

	response.Success(c, http.StatusOK, "login successful", result)
}

// Me returns the identity attached to the current token.
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := middleware.GetAdminID(c)
	if !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}

	response.Success(c, http.StatusOK, "authenticated admin", gin.H{
		"admin_id": id,
		"email":    c.GetString("admin_email"),
		"role":     middleware.GetAdminRole(c),
	})
}

// CreateAdmin registers a new admin account. Super admin only.
func (h *AuthHandler) CreateAdmin(c *gin.Context) {
	var req admin.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.authService.CreateAdmin(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to create admin", err)
		return
	}

	response.Success(c, http.StatusCreated, "admin created", result)
}
