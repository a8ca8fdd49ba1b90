// internal/repository/postgres/expense_repo.go
package postgres

import (
	"context"
	"fmt"

	"takataka-service/internal/domain/expense"
	xerrors "takataka-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ExpenseRepository persists expenses and their category budgets.
type ExpenseRepository struct {
	db *pgxpool.Pool
}

func NewExpenseRepository(db *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

const expenseColumns = `
	id, category, description, amount, incurred_on, receipt_url,
	status, submitted_by, approved_by, approved_at, rejection_reason,
	created_at, updated_at`

// Create inserts a new pending expense.
func (r *ExpenseRepository) Create(ctx context.Context, e *expense.Expense) error {
	query := `
		INSERT INTO expenses (category, description, amount, incurred_on, receipt_url, status, submitted_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		e.Category, e.Description, e.Amount, e.IncurredOn, e.ReceiptURL, e.Status, e.SubmittedBy,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// FindByID retrieves an expense by ID.
func (r *ExpenseRepository) FindByID(ctx context.Context, id int64) (*expense.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`
	return r.scanExpense(ctx, r.db, query, id)
}

// FindByIDForUpdate locks the expense row so a double-approve serializes.
func (r *ExpenseRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*expense.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 FOR UPDATE`
	return r.scanExpense(ctx, tx, query, id)
}

func (r *ExpenseRepository) scanExpense(ctx context.Context, q Queryer, query string, id int64) (*expense.Expense, error) {
	var e expense.Expense
	err := q.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.Category, &e.Description, &e.Amount, &e.IncurredOn, &e.ReceiptURL,
		&e.Status, &e.SubmittedBy, &e.ApprovedBy, &e.ApprovedAt, &e.RejectionReason,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err, "expense", id)
	}
	return &e, nil
}

// UpdateDecisionWithTx persists an approval or rejection inside the
// caller's transaction.
func (r *ExpenseRepository) UpdateDecisionWithTx(ctx context.Context, tx pgx.Tx, e *expense.Expense) error {
	query := `
		UPDATE expenses SET
			status = $2, approved_by = $3, approved_at = $4, rejection_reason = $5,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query,
		e.ID, e.Status, e.ApprovedBy, e.ApprovedAt, e.RejectionReason,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.NotFoundf("expense", e.ID)
	}
	return nil
}

// List retrieves expenses with filters.
func (r *ExpenseRepository) List(ctx context.Context, filters *expense.ExpenseListFilters) ([]expense.Expense, int64, error) {
	where := "TRUE"
	args := []interface{}{}
	argPos := 1

	if filters.Category != "" {
		where += fmt.Sprintf(" AND category = $%d", argPos)
		args = append(args, filters.Category)
		argPos++
	}
	if filters.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, filters.Status)
		argPos++
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM expenses WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM expenses WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		expenseColumns, where, argPos, argPos+1,
	)
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []expense.Expense{}
	for rows.Next() {
		var e expense.Expense
		if err := rows.Scan(
			&e.ID, &e.Category, &e.Description, &e.Amount, &e.IncurredOn, &e.ReceiptURL,
			&e.Status, &e.SubmittedBy, &e.ApprovedBy, &e.ApprovedAt, &e.RejectionReason,
			&e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}

	return expenses, total, rows.Err()
}

// ---------- Budgets ----------

const budgetColumns = `
	id, category, period_month, budget_amount, spent_amount, allow_overrun,
	created_at, updated_at`

// UpsertBudget creates or replaces the cap for a category+month.
func (r *ExpenseRepository) UpsertBudget(ctx context.Context, b *expense.Budget) error {
	query := `
		INSERT INTO expense_budgets (category, period_month, budget_amount, spent_amount, allow_overrun)
		VALUES ($1, $2, $3, 0, $4)
		ON CONFLICT (category, period_month) DO UPDATE SET
			budget_amount = EXCLUDED.budget_amount,
			allow_overrun = EXCLUDED.allow_overrun,
			updated_at = NOW()
		RETURNING id, spent_amount, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		b.Category, b.PeriodMonth, b.BudgetAmount, b.AllowOverrun,
	).Scan(&b.ID, &b.SpentAmount, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert budget: %w", err)
	}
	return nil
}

// FindBudgetForUpdate locks the budget row for the category+month inside
// the caller's transaction, so concurrent approvals apply spend serially.
func (r *ExpenseRepository) FindBudgetForUpdate(ctx context.Context, tx pgx.Tx, category expense.Category, period string) (*expense.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM expense_budgets WHERE category = $1 AND period_month = $2 FOR UPDATE`

	var b expense.Budget
	err := tx.QueryRow(ctx, query, category, period).Scan(
		&b.ID, &b.Category, &b.PeriodMonth, &b.BudgetAmount, &b.SpentAmount,
		&b.AllowOverrun, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err, "budget", fmt.Sprintf("%s/%s", category, period))
	}
	return &b, nil
}

// ApplySpendWithTx moves approved spend into the budget inside the
// caller's transaction.
func (r *ExpenseRepository) ApplySpendWithTx(ctx context.Context, tx pgx.Tx, budgetID int64, amount decimal.Decimal) error {
	tag, err := tx.Exec(ctx,
		`UPDATE expense_budgets SET spent_amount = spent_amount + $2, updated_at = NOW() WHERE id = $1`,
		budgetID, amount,
	)
	if err != nil {
		return fmt.Errorf("failed to apply spend: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.NotFoundf("budget", budgetID)
	}
	return nil
}

// ListBudgets returns budgets for a period.
func (r *ExpenseRepository) ListBudgets(ctx context.Context, period string) ([]expense.Budget, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+budgetColumns+` FROM expense_budgets WHERE period_month = $1 ORDER BY category`,
		period,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	budgets := []expense.Budget{}
	for rows.Next() {
		var b expense.Budget
		if err := rows.Scan(
			&b.ID, &b.Category, &b.PeriodMonth, &b.BudgetAmount, &b.SpentAmount,
			&b.AllowOverrun, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}
