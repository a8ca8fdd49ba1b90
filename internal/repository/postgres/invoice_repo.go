// internal/repository/postgres/invoice_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"takataka-service/internal/domain/invoice"
	xerrors "takataka-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InvoiceRepository struct {
	db *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceColumns = `
	id, invoice_number, customer_id, customer_plan_id, invoice_type,
	amount, tax_amount, total_amount, description, due_date, status, paid_at,
	created_at, updated_at`

// Create inserts a new invoice outside a transaction.
func (r *InvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	return r.create(ctx, r.db, inv)
}

// CreateWithTx inserts a new invoice inside the caller's transaction.
func (r *InvoiceRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, inv *invoice.Invoice) error {
	return r.create(ctx, tx, inv)
}

func (r *InvoiceRepository) create(ctx context.Context, q Queryer, inv *invoice.Invoice) error {
	query := `
		INSERT INTO invoices (
			invoice_number, customer_id, customer_plan_id, invoice_type,
			amount, tax_amount, total_amount, description, due_date, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		inv.InvoiceNumber, inv.CustomerID, inv.CustomerPlanID, inv.InvoiceType,
		inv.Amount, inv.TaxAmount, inv.TotalAmount, inv.Description, inv.DueDate, inv.Status,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)

	if isUniqueViolation(err) {
		return xerrors.Conflictf("invoice number %s already exists", inv.InvoiceNumber)
	}
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

// FindByID retrieves an invoice by ID.
func (r *InvoiceRepository) FindByID(ctx context.Context, id int64) (*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	return r.scanOne(ctx, r.db, query, id, id)
}

// FindByIDForUpdate locks the invoice row for the duration of tx.
func (r *InvoiceRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, tx, query, id, id)
}

// FindByNumber retrieves an invoice by invoice number.
func (r *InvoiceRepository) FindByNumber(ctx context.Context, number string) (*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_number = $1`
	return r.scanOne(ctx, r.db, query, number, number)
}

func (r *InvoiceRepository) scanOne(ctx context.Context, q Queryer, query string, arg interface{}, id interface{}) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	err := q.QueryRow(ctx, query, arg).Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.CustomerID, &inv.CustomerPlanID, &inv.InvoiceType,
		&inv.Amount, &inv.TaxAmount, &inv.TotalAmount, &inv.Description, &inv.DueDate, &inv.Status, &inv.PaidAt,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err, "invoice", id)
	}
	return &inv, nil
}

// MarkPaidWithTx transitions the invoice to paid inside the caller's
// transaction. The caller has already validated the transition against the
// locked row.
func (r *InvoiceRepository) MarkPaidWithTx(ctx context.Context, tx pgx.Tx, id int64, paidAt time.Time) error {
	query := `
		UPDATE invoices SET status = 'paid', paid_at = $2, updated_at = $2
		WHERE id = $1 AND status IN ('pending', 'overdue')
	`

	tag, err := tx.Exec(ctx, query, id, paidAt)
	if err != nil {
		return fmt.Errorf("failed to mark invoice paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.Conflictf("invoice %d is not payable", id)
	}
	return nil
}

// Cancel voids a pending or overdue invoice.
func (r *InvoiceRepository) Cancel(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE invoices SET status = 'cancelled', updated_at = NOW() WHERE id = $1 AND status IN ('pending', 'overdue')`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.Conflictf("invoice %d cannot be cancelled", id)
	}
	return nil
}

// MarkOverdue flips every pending invoice whose due date has passed.
// Returns the number of invoices flipped; an external scheduler calls this.
func (r *InvoiceRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE invoices SET status = 'overdue', updated_at = NOW() WHERE status = 'pending' AND due_date < $1`,
		asOf,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark invoices overdue: %w", err)
	}
	return tag.RowsAffected(), nil
}

// List retrieves invoices with filters.
func (r *InvoiceRepository) List(ctx context.Context, filters *invoice.InvoiceListFilters) ([]invoice.Invoice, int64, error) {
	where := "TRUE"
	args := []interface{}{}
	argPos := 1

	if filters.CustomerID != nil {
		where += fmt.Sprintf(" AND customer_id = $%d", argPos)
		args = append(args, *filters.CustomerID)
		argPos++
	}
	if filters.InvoiceType != "" {
		where += fmt.Sprintf(" AND invoice_type = $%d", argPos)
		args = append(args, filters.InvoiceType)
		argPos++
	}
	if filters.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, filters.Status)
		argPos++
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM invoices WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	sortBy := "created_at"
	switch filters.SortBy {
	case "due_date", "total_amount", "created_at":
		sortBy = filters.SortBy
	}
	sortOrder := "DESC"
	if filters.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	query := fmt.Sprintf(
		`SELECT %s FROM invoices WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		invoiceColumns, where, sortBy, sortOrder, argPos, argPos+1,
	)
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := []invoice.Invoice{}
	for rows.Next() {
		var inv invoice.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.InvoiceNumber, &inv.CustomerID, &inv.CustomerPlanID, &inv.InvoiceType,
			&inv.Amount, &inv.TaxAmount, &inv.TotalAmount, &inv.Description, &inv.DueDate, &inv.Status, &inv.PaidAt,
			&inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}

	return invoices, total, rows.Err()
}
