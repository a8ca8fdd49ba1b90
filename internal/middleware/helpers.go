// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

// GetAdminID gets the authenticated admin's ID from the context.
func GetAdminID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("admin_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// MustGetAdminID gets the admin ID or panics. Only call on routes behind
// Auth().
func MustGetAdminID(c *gin.Context) int64 {
	id, ok := GetAdminID(c)
	if !ok {
		panic("admin_id not found in context")
	}
	return id
}

// GetAdminRole gets the authenticated admin's role from the context.
func GetAdminRole(c *gin.Context) string {
	v, exists := c.Get("admin_role")
	if !exists {
		return ""
	}
	role, _ := v.(string)
	return role
}

// IsSuperAdmin reports whether the request is from a super admin.
func IsSuperAdmin(c *gin.Context) bool {
	return GetAdminRole(c) == "super_admin"
}
