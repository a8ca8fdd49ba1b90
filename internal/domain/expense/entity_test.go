package expense

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestApproveOnlyFromPending(t *testing.T) {
	e := &Expense{Status: StatusPending, Amount: decimal.NewFromInt(2000)}
	if err := e.Approve(7, time.Now()); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if err := e.Approve(7, time.Now()); err == nil {
		t.Error("expected error re-approving an approved expense")
	}

	r := &Expense{Status: StatusRejected}
	if err := r.Approve(7, time.Now()); err == nil {
		t.Error("expected error approving a rejected expense")
	}
}

func TestBudgetCanAbsorb(t *testing.T) {
	b := &Budget{
		BudgetAmount: decimal.NewFromInt(10000),
		SpentAmount:  decimal.NewFromInt(8000),
	}

	if !b.CanAbsorb(decimal.NewFromInt(2000)) {
		t.Error("exact fit should be absorbable")
	}
	if b.CanAbsorb(decimal.NewFromInt(2001)) {
		t.Error("overrun should be blocked")
	}

	b.AllowOverrun = true
	if !b.CanAbsorb(decimal.NewFromInt(99999)) {
		t.Error("overrun budget should absorb anything")
	}
}

func TestBudgetApplySpend(t *testing.T) {
	b := &Budget{
		BudgetAmount: decimal.NewFromInt(10000),
		SpentAmount:  decimal.NewFromFloat(1500.50),
	}
	b.ApplySpend(decimal.NewFromFloat(499.50))

	if !b.SpentAmount.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("expected spent 2000, got %s", b.SpentAmount)
	}
	if !b.Remaining().Equal(decimal.NewFromInt(8000)) {
		t.Errorf("expected remaining 8000, got %s", b.Remaining())
	}
}

func TestPeriodOf(t *testing.T) {
	d := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	if got := PeriodOf(d); got != "2026-08" {
		t.Errorf("PeriodOf = %s, want 2026-08", got)
	}
}
