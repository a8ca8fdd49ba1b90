// internal/repository/postgres/auth_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"takataka-service/internal/domain/admin"
	xerrors "takataka-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AuthRepository struct {
	db *pgxpool.Pool
}

func NewAuthRepository(db *pgxpool.Pool) *AuthRepository {
	return &AuthRepository{db: db}
}

const adminColumns = `
	id, email, password_hash, full_name, role, is_active, last_login_at,
	created_at, updated_at`

// CreateAdmin inserts a new admin account.
func (r *AuthRepository) CreateAdmin(ctx context.Context, a *admin.Admin) error {
	query := `
		INSERT INTO admins (email, password_hash, full_name, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		a.Email, a.PasswordHash, a.FullName, a.Role, a.IsActive,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)

	if isUniqueViolation(err) {
		return xerrors.Conflictf("admin %s already exists", a.Email)
	}
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

// FindByEmail retrieves an admin by email.
func (r *AuthRepository) FindByEmail(ctx context.Context, email string) (*admin.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE email = $1`

	var a admin.Admin
	err := r.db.QueryRow(ctx, query, email).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.FullName, &a.Role, &a.IsActive,
		&a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err, "admin", email)
	}
	return &a, nil
}

// FindByID retrieves an admin by ID.
func (r *AuthRepository) FindByID(ctx context.Context, id int64) (*admin.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1`

	var a admin.Admin
	err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.FullName, &a.Role, &a.IsActive,
		&a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err, "admin", id)
	}
	return &a, nil
}

// UpdateLastLogin stamps a successful login.
func (r *AuthRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE admins SET last_login_at = $2, updated_at = $2 WHERE id = $1`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// SuperAdminExists reports whether any super admin account exists.
func (r *AuthRepository) SuperAdminExists(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM admins WHERE role = 'super_admin')`,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check super admin: %w", err)
	}
	return exists, nil
}
