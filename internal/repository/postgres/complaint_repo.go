// internal/repository/postgres/complaint_repo.go
package postgres

import (
	"context"
	"fmt"

	"takataka-service/internal/domain/complaint"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ComplaintRepository struct {
	db *pgxpool.Pool
}

func NewComplaintRepository(db *pgxpool.Pool) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

const complaintColumns = `
	id, customer_id, category, subject, description, status, assigned_to,
	resolution_notes, resolved_at, created_at, updated_at`

// Create inserts a new complaint.
func (r *ComplaintRepository) Create(ctx context.Context, c *complaint.Complaint) error {
	query := `
		INSERT INTO complaints (customer_id, category, subject, description, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		c.CustomerID, c.Category, c.Subject, c.Description, c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create complaint: %w", err)
	}
	return nil
}

// FindByID retrieves a complaint by ID.
func (r *ComplaintRepository) FindByID(ctx context.Context, id int64) (*complaint.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`

	var c complaint.Complaint
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.CustomerID, &c.Category, &c.Subject, &c.Description, &c.Status,
		&c.AssignedTo, &c.ResolutionNotes, &c.ResolvedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err, "complaint", id)
	}
	return &c, nil
}

// Update persists workflow state (assignment, resolution).
func (r *ComplaintRepository) Update(ctx context.Context, c *complaint.Complaint) error {
	query := `
		UPDATE complaints SET
			status = $2, assigned_to = $3, resolution_notes = $4, resolved_at = $5,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		c.ID, c.Status, c.AssignedTo, c.ResolutionNotes, c.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update complaint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("complaint %d not found", c.ID)
	}
	return nil
}

// List retrieves complaints with filters.
func (r *ComplaintRepository) List(ctx context.Context, filters *complaint.ComplaintListFilters) ([]complaint.Complaint, int64, error) {
	where := "TRUE"
	args := []interface{}{}
	argPos := 1

	if filters.CustomerID != nil {
		where += fmt.Sprintf(" AND customer_id = $%d", argPos)
		args = append(args, *filters.CustomerID)
		argPos++
	}
	if filters.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, filters.Status)
		argPos++
	}
	if filters.Category != "" {
		where += fmt.Sprintf(" AND category = $%d", argPos)
		args = append(args, filters.Category)
		argPos++
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM complaints WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count complaints: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM complaints WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		complaintColumns, where, argPos, argPos+1,
	)
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list complaints: %w", err)
	}
	defer rows.Close()

	complaints := []complaint.Complaint{}
	for rows.Next() {
		var c complaint.Complaint
		if err := rows.Scan(
			&c.ID, &c.CustomerID, &c.Category, &c.Subject, &c.Description, &c.Status,
			&c.AssignedTo, &c.ResolutionNotes, &c.ResolvedAt, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan complaint: %w", err)
		}
		complaints = append(complaints, c)
	}

	return complaints, total, rows.Err()
}
