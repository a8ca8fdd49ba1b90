// internal/domain/admin/entity.go
package admin

import (
	"database/sql"
	"time"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Admin is a back-office user of the admin UI.
type Admin struct {
	ID           int64        `json:"id" db:"id"`
	Email        string       `json:"email" db:"email"`
	PasswordHash string       `json:"-" db:"password_hash"`
	FullName     string       `json:"full_name" db:"full_name"`
	Role         Role         `json:"role" db:"role"`
	IsActive     bool         `json:"is_active" db:"is_active"`
	LastLoginAt  sql.NullTime `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Admin     *Admin    `json:"admin"`
}

type CreateAdminRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required,max=255"`
	Role     Role   `json:"role" binding:"required,oneof=admin super_admin"`
}
