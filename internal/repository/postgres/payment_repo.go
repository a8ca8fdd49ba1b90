// internal/repository/postgres/payment_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"takataka-service/internal/domain/payment"
	xerrors "takataka-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `
	id, payment_reference, invoice_id, customer_id, amount, payment_method,
	status, transaction_reference, payment_details, failure_reason,
	completed_at, created_at, updated_at`

// Create inserts a new pending payment.
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (
			payment_reference, invoice_id, customer_id, amount, payment_method,
			status, transaction_reference, payment_details
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	detailsJSON, err := marshalMetadata(p.PaymentDetails)
	if err != nil {
		return err
	}

	err = r.db.QueryRow(ctx, query,
		p.PaymentReference, p.InvoiceID, p.CustomerID, p.Amount, p.Method,
		p.Status, p.TransactionReference, detailsJSON,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if isUniqueViolation(err) {
		return xerrors.Conflictf("payment reference %s already exists", p.PaymentReference)
	}
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// FindByID retrieves a payment by ID.
func (r *PaymentRepository) FindByID(ctx context.Context, id int64) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return r.scanOne(ctx, r.db, query, id, id)
}

// FindByIDForUpdate locks the payment row for the duration of tx, so two
// concurrent confirmations of the same payment serialize.
func (r *PaymentRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, tx, query, id, id)
}

// FindByReference retrieves a payment by its reference.
func (r *PaymentRepository) FindByReference(ctx context.Context, reference string) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_reference = $1`
	return r.scanOne(ctx, r.db, query, reference, reference)
}

func (r *PaymentRepository) scanOne(ctx context.Context, q Queryer, query string, arg interface{}, id interface{}) (*payment.Payment, error) {
	var p payment.Payment
	var detailsJSON []byte

	err := q.QueryRow(ctx, query, arg).Scan(
		&p.ID, &p.PaymentReference, &p.InvoiceID, &p.CustomerID, &p.Amount, &p.Method,
		&p.Status, &p.TransactionReference, &detailsJSON, &p.FailureReason,
		&p.CompletedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err, "payment", id)
	}

	if len(detailsJSON) > 0 {
		if err := json.Unmarshal(detailsJSON, &p.PaymentDetails); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payment details: %w", err)
		}
	}

	return &p, nil
}

// UpdateOutcomeWithTx persists the confirmation outcome inside the
// caller's transaction: status, merged details, transaction reference,
// failure reason and completion time.
func (r *PaymentRepository) UpdateOutcomeWithTx(ctx context.Context, tx pgx.Tx, p *payment.Payment) error {
	query := `
		UPDATE payments SET
			status = $2, transaction_reference = $3, payment_details = $4,
			failure_reason = $5, completed_at = $6, updated_at = NOW()
		WHERE id = $1
	`

	detailsJSON, err := marshalMetadata(p.PaymentDetails)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, query,
		p.ID, p.Status, p.TransactionReference, detailsJSON, p.FailureReason, p.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.NotFoundf("payment", p.ID)
	}
	return nil
}

// List retrieves payments with filters.
func (r *PaymentRepository) List(ctx context.Context, filters *payment.PaymentListFilters) ([]payment.Payment, int64, error) {
	where := "TRUE"
	args := []interface{}{}
	argPos := 1

	if filters.CustomerID != nil {
		where += fmt.Sprintf(" AND customer_id = $%d", argPos)
		args = append(args, *filters.CustomerID)
		argPos++
	}
	if filters.InvoiceID != nil {
		where += fmt.Sprintf(" AND invoice_id = $%d", argPos)
		args = append(args, *filters.InvoiceID)
		argPos++
	}
	if filters.Method != "" {
		where += fmt.Sprintf(" AND payment_method = $%d", argPos)
		args = append(args, filters.Method)
		argPos++
	}
	if filters.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, filters.Status)
		argPos++
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM payments WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		paymentColumns, where, argPos, argPos+1,
	)
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []payment.Payment{}
	for rows.Next() {
		var p payment.Payment
		var detailsJSON []byte
		if err := rows.Scan(
			&p.ID, &p.PaymentReference, &p.InvoiceID, &p.CustomerID, &p.Amount, &p.Method,
			&p.Status, &p.TransactionReference, &detailsJSON, &p.FailureReason,
			&p.CompletedAt, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan payment: %w", err)
		}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &p.PaymentDetails); err != nil {
				return nil, 0, fmt.Errorf("failed to unmarshal payment details: %w", err)
			}
		}
		payments = append(payments, p)
	}

	return payments, total, rows.Err()
}
