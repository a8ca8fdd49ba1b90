// internal/service/expense/expense_service.go
package expense

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"takataka-service/internal/domain/expense"
	"takataka-service/internal/events"
	xerrors "takataka-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ExpenseStore persists expenses and category budgets.
type ExpenseStore interface {
	Create(ctx context.Context, e *expense.Expense) error
	FindByID(ctx context.Context, id int64) (*expense.Expense, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*expense.Expense, error)
	UpdateDecisionWithTx(ctx context.Context, tx pgx.Tx, e *expense.Expense) error
	List(ctx context.Context, filters *expense.ExpenseListFilters) ([]expense.Expense, int64, error)
	UpsertBudget(ctx context.Context, b *expense.Budget) error
	FindBudgetForUpdate(ctx context.Context, tx pgx.Tx, category expense.Category, period string) (*expense.Budget, error)
	ApplySpendWithTx(ctx context.Context, tx pgx.Tx, budgetID int64, amount decimal.Decimal) error
	ListBudgets(ctx context.Context, period string) ([]expense.Budget, error)
}

// TxBeginner starts database transactions.
type TxBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// Service runs the expense approval workflow. Approval locks both the
// expense and its category budget, rejects the spend when the budget
// cannot absorb it, and moves the amount into the budget atomically with
// the decision.
type Service struct {
	store  ExpenseStore
	db     TxBeginner
	bus    *events.Bus
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store ExpenseStore, db TxBeginner, bus *events.Bus, logger *zap.Logger) *Service {
	return &Service{store: store, db: db, bus: bus, logger: logger, now: time.Now}
}

// Submit records a pending expense.
func (s *Service) Submit(ctx context.Context, req *expense.SubmitExpenseRequest, adminID int64) (*expense.Expense, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, xerrors.Validation("amount", "must be a positive decimal")
	}

	incurredOn, err := time.Parse("2006-01-02", req.IncurredOn)
	if err != nil {
		return nil, xerrors.Validation("incurred_on", "must be a date in YYYY-MM-DD format")
	}

	e := &expense.Expense{
		Category:    req.Category,
		Description: req.Description,
		Amount:      amount,
		IncurredOn:  incurredOn,
		Status:      expense.StatusPending,
		SubmittedBy: adminID,
	}
	if req.ReceiptURL != "" {
		e.ReceiptURL = sql.NullString{String: req.ReceiptURL, Valid: true}
	}

	if err := s.store.Create(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info("expense submitted",
		zap.Int64("expense_id", e.ID),
		zap.String("category", string(e.Category)),
		zap.String("amount", e.Amount.String()),
	)
	return e, nil
}

// Approve accepts a pending expense against its category budget for the
// month it was incurred. No budget row for that category+month means
// nothing to spend from, which blocks the approval.
func (s *Service) Approve(ctx context.Context, expenseID, adminID int64) (*expense.Expense, error) {
	now := s.now()

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	e, err := s.store.FindByIDForUpdate(ctx, tx, expenseID)
	if err != nil {
		return nil, err
	}
	if err := e.Approve(adminID, now); err != nil {
		return nil, xerrors.Conflict(err.Error())
	}

	period := expense.PeriodOf(e.IncurredOn)
	b, err := s.store.FindBudgetForUpdate(ctx, tx, e.Category, period)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.Precondition(fmt.Sprintf("no budget set for %s in %s", e.Category, period))
		}
		return nil, err
	}
	if !b.CanAbsorb(e.Amount) {
		return nil, xerrors.Precondition(fmt.Sprintf(
			"approving would exceed the %s budget for %s: %s remaining, %s requested",
			e.Category, period, b.Remaining().String(), e.Amount.String(),
		))
	}

	if err := s.store.UpdateDecisionWithTx(ctx, tx, e); err != nil {
		return nil, err
	}
	if err := s.store.ApplySpendWithTx(ctx, tx, b.ID, e.Amount); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, xerrors.Wrap(err, "failed to commit transaction")
	}

	s.logger.Info("expense approved",
		zap.Int64("expense_id", e.ID),
		zap.Int64("admin_id", adminID),
		zap.String("amount", e.Amount.String()),
	)
	s.bus.Publish(ctx, events.TypeExpenseApproved, map[string]interface{}{"expense": e})

	return e, nil
}

// Reject declines a pending expense. No budget is touched.
func (s *Service) Reject(ctx context.Context, expenseID, adminID int64, req *expense.RejectExpenseRequest) (*expense.Expense, error) {
	now := s.now()

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	e, err := s.store.FindByIDForUpdate(ctx, tx, expenseID)
	if err != nil {
		return nil, err
	}
	if err := e.Reject(adminID, now, req.Reason); err != nil {
		return nil, xerrors.Conflict(err.Error())
	}

	if err := s.store.UpdateDecisionWithTx(ctx, tx, e); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, xerrors.Wrap(err, "failed to commit transaction")
	}

	s.logger.Info("expense rejected", zap.Int64("expense_id", e.ID), zap.Int64("admin_id", adminID))
	return e, nil
}

// Get returns an expense by ID.
func (s *Service) Get(ctx context.Context, id int64) (*expense.Expense, error) {
	return s.store.FindByID(ctx, id)
}

// List returns expenses matching the filters.
func (s *Service) List(ctx context.Context, filters *expense.ExpenseListFilters) ([]expense.Expense, int64, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}
	return s.store.List(ctx, filters)
}

// SetBudget creates or replaces a category budget for a month.
func (s *Service) SetBudget(ctx context.Context, req *expense.UpsertBudgetRequest) (*expense.Budget, error) {
	amount, err := decimal.NewFromString(req.BudgetAmount)
	if err != nil || amount.IsNegative() {
		return nil, xerrors.Validation("budget_amount", "must be a non-negative decimal")
	}
	if _, err := time.Parse("2006-01", req.PeriodMonth); err != nil {
		return nil, xerrors.Validation("period_month", "must be a month in YYYY-MM format")
	}

	b := &expense.Budget{
		Category:     req.Category,
		PeriodMonth:  req.PeriodMonth,
		BudgetAmount: amount,
		AllowOverrun: req.AllowOverrun,
	}
	if err := s.store.UpsertBudget(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("budget set",
		zap.String("category", string(b.Category)),
		zap.String("period_month", b.PeriodMonth),
		zap.String("budget_amount", b.BudgetAmount.String()),
	)
	return b, nil
}

// ListBudgets returns the budgets for a month.
func (s *Service) ListBudgets(ctx context.Context, period string) ([]expense.Budget, error) {
	return s.store.ListBudgets(ctx, period)
}
