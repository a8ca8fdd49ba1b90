// internal/repository/postgres/subscription_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"takataka-service/internal/domain/subscription"
	xerrors "takataka-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubscriptionRepository persists customer_plans rows. A partial unique
// index on (customer_id) WHERE status = 'active' backstops the single
// active subscription guarantee at the store level.
type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `
	id, customer_id, plan_id, status, monthly_amount,
	start_date, next_billing_date, last_billing_date, auto_renew,
	cancelled_at, cancel_reason, created_at, updated_at`

// CreateWithTx inserts a new subscription inside the caller's transaction.
func (r *SubscriptionRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, s *subscription.CustomerPlan) error {
	query := `
		INSERT INTO customer_plans (
			customer_id, plan_id, status, monthly_amount,
			start_date, next_billing_date, auto_renew
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		s.CustomerID, s.PlanID, s.Status, s.MonthlyAmount,
		s.StartDate, s.NextBillingDate, s.AutoRenew,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if isUniqueViolation(err) {
		return xerrors.Conflict("customer already has an active subscription")
	}
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// FindByID retrieves a subscription by ID.
func (r *SubscriptionRepository) FindByID(ctx context.Context, id int64) (*subscription.CustomerPlan, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM customer_plans WHERE id = $1`
	return r.scanOne(ctx, r.db, query, id, id)
}

// FindActiveByCustomer retrieves the customer's single active subscription.
func (r *SubscriptionRepository) FindActiveByCustomer(ctx context.Context, customerID int64) (*subscription.CustomerPlan, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM customer_plans WHERE customer_id = $1 AND status = 'active'`
	return r.scanOne(ctx, r.db, query, customerID, customerID)
}

// FindActiveByCustomerWithTx reads the active subscription inside the
// caller's transaction. The customer row lock taken before this call keeps
// the read stable.
func (r *SubscriptionRepository) FindActiveByCustomerWithTx(ctx context.Context, tx pgx.Tx, customerID int64) (*subscription.CustomerPlan, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM customer_plans WHERE customer_id = $1 AND status = 'active' FOR UPDATE`
	return r.scanOne(ctx, tx, query, customerID, customerID)
}

func (r *SubscriptionRepository) scanOne(ctx context.Context, q Queryer, query string, arg interface{}, id interface{}) (*subscription.CustomerPlan, error) {
	var s subscription.CustomerPlan
	err := q.QueryRow(ctx, query, arg).Scan(
		&s.ID, &s.CustomerID, &s.PlanID, &s.Status, &s.MonthlyAmount,
		&s.StartDate, &s.NextBillingDate, &s.LastBillingDate, &s.AutoRenew,
		&s.CancelledAt, &s.CancelReason, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err, "subscription", id)
	}
	return &s, nil
}

// CancelWithTx transitions a subscription to cancelled inside the caller's
// transaction. The WHERE status = 'active' guard makes the write a no-op
// if another transaction got there first.
func (r *SubscriptionRepository) CancelWithTx(ctx context.Context, tx pgx.Tx, id int64, now time.Time, reason string) error {
	query := `
		UPDATE customer_plans SET
			status = 'cancelled', cancelled_at = $2, cancel_reason = NULLIF($3, ''), updated_at = $2
		WHERE id = $1 AND status = 'active'
	`

	tag, err := tx.Exec(ctx, query, id, now, reason)
	if err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.Conflict("subscription is no longer active")
	}
	return nil
}

// UpdateStatus transitions a subscription to the given status.
func (r *SubscriptionRepository) UpdateStatus(ctx context.Context, id int64, status subscription.Status) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE customer_plans SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.NotFoundf("subscription", id)
	}
	return nil
}

// List retrieves subscriptions with filters.
func (r *SubscriptionRepository) List(ctx context.Context, filters *subscription.SubscriptionListFilters) ([]subscription.CustomerPlan, int64, error) {
	where := "TRUE"
	args := []interface{}{}
	argPos := 1

	if filters.CustomerID != nil {
		where += fmt.Sprintf(" AND customer_id = $%d", argPos)
		args = append(args, *filters.CustomerID)
		argPos++
	}
	if filters.PlanID != nil {
		where += fmt.Sprintf(" AND plan_id = $%d", argPos)
		args = append(args, *filters.PlanID)
		argPos++
	}
	if filters.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, filters.Status)
		argPos++
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customer_plans WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM customer_plans WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		subscriptionColumns, where, argPos, argPos+1,
	)
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []subscription.CustomerPlan{}
	for rows.Next() {
		var s subscription.CustomerPlan
		if err := rows.Scan(
			&s.ID, &s.CustomerID, &s.PlanID, &s.Status, &s.MonthlyAmount,
			&s.StartDate, &s.NextBillingDate, &s.LastBillingDate, &s.AutoRenew,
			&s.CancelledAt, &s.CancelReason, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, s)
	}

	return subs, total, rows.Err()
}

// CountActive returns the number of active subscriptions for a customer.
// Anything above one indicates a broken invariant.
func (r *SubscriptionRepository) CountActive(ctx context.Context, customerID int64) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM customer_plans WHERE customer_id = $1 AND status = 'active'`,
		customerID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count active subscriptions: %w", err)
	}
	return n, nil
}
