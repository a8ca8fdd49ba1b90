// internal/service/expense/expense_service_test.go
package expense

import (
	"context"
	"testing"

	"takataka-service/internal/domain/expense"
	"takataka-service/internal/events"
	xerrors "takataka-service/internal/pkg/errors"
	"takataka-service/internal/testutil"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeStore struct {
	expenses map[int64]*expense.Expense
	budgets  map[string]*expense.Budget // category/period
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{expenses: map[int64]*expense.Expense{}, budgets: map[string]*expense.Budget{}}
}

func budgetKey(category expense.Category, period string) string {
	return string(category) + "/" + period
}

func (f *fakeStore) Create(ctx context.Context, e *expense.Expense) error {
	f.nextID++
	e.ID = f.nextID
	cp := *e
	f.expenses[e.ID] = &cp
	return nil
}

func (f *fakeStore) FindByID(ctx context.Context, id int64) (*expense.Expense, error) {
	e, ok := f.expenses[id]
	if !ok {
		return nil, xerrors.NotFoundf("expense", id)
	}
	cp := *e
	return &cp, nil
}

func (f *fakeStore) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*expense.Expense, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeStore) UpdateDecisionWithTx(ctx context.Context, tx pgx.Tx, e *expense.Expense) error {
	if _, ok := f.expenses[e.ID]; !ok {
		return xerrors.NotFoundf("expense", e.ID)
	}
	cp := *e
	f.expenses[e.ID] = &cp
	return nil
}

func (f *fakeStore) List(ctx context.Context, filters *expense.ExpenseListFilters) ([]expense.Expense, int64, error) {
	out := []expense.Expense{}
	for _, e := range f.expenses {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) UpsertBudget(ctx context.Context, b *expense.Budget) error {
	key := budgetKey(b.Category, b.PeriodMonth)
	if existing, ok := f.budgets[key]; ok {
		b.ID = existing.ID
		b.SpentAmount = existing.SpentAmount
	} else {
		b.ID = int64(len(f.budgets) + 1)
		b.SpentAmount = decimal.Zero
	}
	cp := *b
	f.budgets[key] = &cp
	return nil
}

func (f *fakeStore) FindBudgetForUpdate(ctx context.Context, tx pgx.Tx, category expense.Category, period string) (*expense.Budget, error) {
	b, ok := f.budgets[budgetKey(category, period)]
	if !ok {
		return nil, xerrors.NotFoundf("budget", budgetKey(category, period))
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) ApplySpendWithTx(ctx context.Context, tx pgx.Tx, budgetID int64, amount decimal.Decimal) error {
	for _, b := range f.budgets {
		if b.ID == budgetID {
			b.ApplySpend(amount)
			return nil
		}
	}
	return xerrors.NotFoundf("budget", budgetID)
}

func (f *fakeStore) ListBudgets(ctx context.Context, period string) ([]expense.Budget, error) {
	out := []expense.Budget{}
	for _, b := range f.budgets {
		if b.PeriodMonth == period {
			out = append(out, *b)
		}
	}
	return out, nil
}

func newTestService(t *testing.T) (*Service, *fakeStore, *testutil.DB) {
	t.Helper()
	store := newFakeStore()
	db := &testutil.DB{}
	svc := NewService(store, db, events.NewBus(nil), zap.NewNop())
	return svc, store, db
}

func submitFuel(t *testing.T, svc *Service, amount string) *expense.Expense {
	t.Helper()
	e, err := svc.Submit(context.Background(), &expense.SubmitExpenseRequest{
		Category:    expense.CategoryFuel,
		Description: "Diesel for KBX 123A",
		Amount:      amount,
		IncurredOn:  "2026-08-20",
	}, 1)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	return e
}

func setFuelBudget(t *testing.T, svc *Service, amount string, allowOverrun bool) *expense.Budget {
	t.Helper()
	b, err := svc.SetBudget(context.Background(), &expense.UpsertBudgetRequest{
		Category:     expense.CategoryFuel,
		PeriodMonth:  "2026-08",
		BudgetAmount: amount,
		AllowOverrun: allowOverrun,
	})
	if err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	return b
}

func TestApprove(t *testing.T) {
	svc, store, db := newTestService(t)
	setFuelBudget(t, svc, "10000", false)
	e := submitFuel(t, svc, "4000")

	approved, err := svc.Approve(context.Background(), e.ID, 2)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if approved.Status != expense.StatusApproved {
		t.Errorf("status = %s, want approved", approved.Status)
	}
	if !approved.ApprovedBy.Valid || approved.ApprovedBy.Int64 != 2 {
		t.Error("approver not recorded")
	}

	b := store.budgets[budgetKey(expense.CategoryFuel, "2026-08")]
	if !b.SpentAmount.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("spent = %s, want 4000", b.SpentAmount)
	}
	if !db.LastTx.Committed {
		t.Error("transaction was not committed")
	}
}

func TestApproveExceedingBudget(t *testing.T) {
	svc, store, _ := newTestService(t)
	setFuelBudget(t, svc, "10000", false)
	first := submitFuel(t, svc, "8000")
	second := submitFuel(t, svc, "3000")

	if _, err := svc.Approve(context.Background(), first.ID, 2); err != nil {
		t.Fatalf("first Approve: %v", err)
	}

	_, err := svc.Approve(context.Background(), second.ID, 2)
	if !xerrors.Is(err, xerrors.ErrPrecondition) {
		t.Fatalf("err = %v, want precondition", err)
	}

	if store.expenses[second.ID].Status != expense.StatusPending {
		t.Error("blocked expense must stay pending")
	}
	b := store.budgets[budgetKey(expense.CategoryFuel, "2026-08")]
	if !b.SpentAmount.Equal(decimal.NewFromInt(8000)) {
		t.Errorf("spent = %s, want 8000 (blocked approval must not spend)", b.SpentAmount)
	}
}

func TestApproveExactFit(t *testing.T) {
	svc, _, _ := newTestService(t)
	setFuelBudget(t, svc, "10000", false)
	e := submitFuel(t, svc, "10000")

	if _, err := svc.Approve(context.Background(), e.ID, 2); err != nil {
		t.Errorf("exact-fit approval failed: %v", err)
	}
}

func TestApproveOverrunAllowed(t *testing.T) {
	svc, _, _ := newTestService(t)
	setFuelBudget(t, svc, "1000", true)
	e := submitFuel(t, svc, "5000")

	if _, err := svc.Approve(context.Background(), e.ID, 2); err != nil {
		t.Errorf("overrun-tolerant budget rejected approval: %v", err)
	}
}

func TestApproveWithoutBudget(t *testing.T) {
	svc, _, _ := newTestService(t)
	e := submitFuel(t, svc, "4000")

	if _, err := svc.Approve(context.Background(), e.ID, 2); !xerrors.Is(err, xerrors.ErrPrecondition) {
		t.Errorf("err = %v, want precondition", err)
	}
}

func TestApproveTwiceConflicts(t *testing.T) {
	svc, _, _ := newTestService(t)
	setFuelBudget(t, svc, "10000", false)
	e := submitFuel(t, svc, "4000")

	if _, err := svc.Approve(context.Background(), e.ID, 2); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := svc.Approve(context.Background(), e.ID, 2); !xerrors.Is(err, xerrors.ErrConflict) {
		t.Errorf("err = %v, want conflict", err)
	}
}

func TestReject(t *testing.T) {
	svc, store, _ := newTestService(t)
	setFuelBudget(t, svc, "10000", false)
	e := submitFuel(t, svc, "4000")

	rejected, err := svc.Reject(context.Background(), e.ID, 2, &expense.RejectExpenseRequest{Reason: "no receipt"})
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != expense.StatusRejected {
		t.Errorf("status = %s, want rejected", rejected.Status)
	}

	b := store.budgets[budgetKey(expense.CategoryFuel, "2026-08")]
	if !b.SpentAmount.IsZero() {
		t.Error("rejection must not spend the budget")
	}
}

func TestBudgetPeriodFollowsIncurredDate(t *testing.T) {
	svc, _, _ := newTestService(t)
	setFuelBudget(t, svc, "10000", false)

	// Incurred in July; only an August budget exists.
	e, err := svc.Submit(context.Background(), &expense.SubmitExpenseRequest{
		Category:    expense.CategoryFuel,
		Description: "Diesel",
		Amount:      "100",
		IncurredOn:  "2026-07-31",
	}, 1)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := svc.Approve(context.Background(), e.ID, 2); !xerrors.Is(err, xerrors.ErrPrecondition) {
		t.Errorf("err = %v, want precondition (no July budget)", err)
	}
}
