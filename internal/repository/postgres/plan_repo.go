// internal/repository/postgres/plan_repo.go
package postgres

import (
	"context"
	"fmt"

	"takataka-service/internal/domain/plan"
	xerrors "takataka-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PlanRepository struct {
	db *pgxpool.Pool
}

func NewPlanRepository(db *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{db: db}
}

const planColumns = `
	id, code, name, description, monthly_price, collections_per_week,
	is_active, display_order, created_at, updated_at`

// Create inserts a new plan.
func (r *PlanRepository) Create(ctx context.Context, p *plan.Plan) error {
	query := `
		INSERT INTO plans (code, name, description, monthly_price, collections_per_week, is_active, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		p.Code, p.Name, p.Description, p.MonthlyPrice, p.CollectionsPerWeek, p.IsActive, p.DisplayOrder,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if isUniqueViolation(err) {
		return xerrors.Conflictf("plan code %q already exists", p.Code)
	}
	if err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}
	return nil
}

// FindByID retrieves a plan by ID.
func (r *PlanRepository) FindByID(ctx context.Context, id int64) (*plan.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`

	var p plan.Plan
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Code, &p.Name, &p.Description, &p.MonthlyPrice, &p.CollectionsPerWeek,
		&p.IsActive, &p.DisplayOrder, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err, "plan", id)
	}
	return &p, nil
}

// FindByCode retrieves a plan by its code.
func (r *PlanRepository) FindByCode(ctx context.Context, code string) (*plan.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE code = $1`

	var p plan.Plan
	err := r.db.QueryRow(ctx, query, code).Scan(
		&p.ID, &p.Code, &p.Name, &p.Description, &p.MonthlyPrice, &p.CollectionsPerWeek,
		&p.IsActive, &p.DisplayOrder, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err, "plan", code)
	}
	return &p, nil
}

// List retrieves plans, optionally only active ones, ordered for display.
func (r *PlanRepository) List(ctx context.Context, activeOnly bool) ([]plan.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY display_order, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	plans := []plan.Plan{}
	for rows.Next() {
		var p plan.Plan
		if err := rows.Scan(
			&p.ID, &p.Code, &p.Name, &p.Description, &p.MonthlyPrice, &p.CollectionsPerWeek,
			&p.IsActive, &p.DisplayOrder, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, p)
	}

	return plans, rows.Err()
}

// Update persists mutable plan fields.
func (r *PlanRepository) Update(ctx context.Context, p *plan.Plan) error {
	query := `
		UPDATE plans SET
			name = $2, description = $3, monthly_price = $4,
			collections_per_week = $5, is_active = $6, display_order = $7,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.MonthlyPrice, p.CollectionsPerWeek, p.IsActive, p.DisplayOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.NotFoundf("plan", p.ID)
	}
	return nil
}
