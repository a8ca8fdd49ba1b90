// internal/domain/expense/entity.go
package expense

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type Category string

const (
	CategoryFuel        Category = "fuel"
	CategoryMaintenance Category = "maintenance"
	CategorySalaries    Category = "salaries"
	CategoryEquipment   Category = "equipment"
	CategoryOffice      Category = "office"
	CategoryOther       Category = "other"
)

// Expense is a spend request that must be approved against the category
// budget before it counts as spent.
type Expense struct {
	ID          int64           `json:"id" db:"id"`
	Category    Category        `json:"category" db:"category"`
	Description string          `json:"description" db:"description"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	IncurredOn  time.Time       `json:"incurred_on" db:"incurred_on"`
	ReceiptURL  sql.NullString  `json:"receipt_url,omitempty" db:"receipt_url"`

	Status          Status         `json:"status" db:"status"`
	SubmittedBy     int64          `json:"submitted_by" db:"submitted_by"`
	ApprovedBy      sql.NullInt64  `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt      sql.NullTime   `json:"approved_at,omitempty" db:"approved_at"`
	RejectionReason sql.NullString `json:"rejection_reason,omitempty" db:"rejection_reason"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Approve marks a pending expense approved.
func (e *Expense) Approve(adminID int64, now time.Time) error {
	if e.Status != StatusPending {
		return fmt.Errorf("expense is already %s", e.Status)
	}
	e.Status = StatusApproved
	e.ApprovedBy = sql.NullInt64{Int64: adminID, Valid: true}
	e.ApprovedAt = sql.NullTime{Time: now, Valid: true}
	return nil
}

// Reject marks a pending expense rejected.
func (e *Expense) Reject(adminID int64, now time.Time, reason string) error {
	if e.Status != StatusPending {
		return fmt.Errorf("expense is already %s", e.Status)
	}
	e.Status = StatusRejected
	e.ApprovedBy = sql.NullInt64{Int64: adminID, Valid: true}
	e.ApprovedAt = sql.NullTime{Time: now, Valid: true}
	if reason != "" {
		e.RejectionReason = sql.NullString{String: reason, Valid: true}
	}
	return nil
}

// Budget caps spending for a category in a calendar month. SpentAmount is
// only ever moved by expense approval, inside the approval transaction.
type Budget struct {
	ID           int64           `json:"id" db:"id"`
	Category     Category        `json:"category" db:"category"`
	PeriodMonth  string          `json:"period_month" db:"period_month"` // YYYY-MM
	BudgetAmount decimal.Decimal `json:"budget_amount" db:"budget_amount"`
	SpentAmount  decimal.Decimal `json:"spent_amount" db:"spent_amount"`
	AllowOverrun bool            `json:"allow_overrun" db:"allow_overrun"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// Remaining returns budget minus spend; negative when overrun.
func (b *Budget) Remaining() decimal.Decimal {
	return b.BudgetAmount.Sub(b.SpentAmount)
}

// CanAbsorb reports whether approving an expense of amount keeps the
// budget within its cap, or the budget tolerates overrun.
func (b *Budget) CanAbsorb(amount decimal.Decimal) bool {
	if b.AllowOverrun {
		return true
	}
	return b.SpentAmount.Add(amount).LessThanOrEqual(b.BudgetAmount)
}

// ApplySpend moves approved spend into the budget.
func (b *Budget) ApplySpend(amount decimal.Decimal) {
	b.SpentAmount = b.SpentAmount.Add(amount)
}

// PeriodOf formats t as a budget period key.
func PeriodOf(t time.Time) string {
	return t.Format("2006-01")
}
