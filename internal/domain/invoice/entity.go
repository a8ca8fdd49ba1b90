// internal/domain/invoice/entity.go
package invoice

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeRegistration Type = "registration"
	TypeMonthlyPlan  Type = "monthly_plan"
	TypeOneTime      Type = "one_time"
)

// TypeMarker returns the short marker embedded in invoice numbers.
func (t Type) TypeMarker() string {
	switch t {
	case TypeRegistration:
		return "REG"
	case TypeMonthlyPlan:
		return "PLN"
	default:
		return "ONE"
	}
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// Invoice is a billing obligation, independent of any payment against it.
type Invoice struct {
	ID             int64         `json:"id" db:"id"`
	InvoiceNumber  string        `json:"invoice_number" db:"invoice_number"`
	CustomerID     int64         `json:"customer_id" db:"customer_id"`
	CustomerPlanID sql.NullInt64 `json:"customer_plan_id,omitempty" db:"customer_plan_id"`

	InvoiceType Type            `json:"invoice_type" db:"invoice_type"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	TaxAmount   decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`

	Description sql.NullString `json:"description,omitempty" db:"description"`
	DueDate     time.Time      `json:"due_date" db:"due_date"`
	Status      Status         `json:"status" db:"status"`
	PaidAt      sql.NullTime   `json:"paid_at,omitempty" db:"paid_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// New builds a pending invoice. TotalAmount is always derived here so the
// total = amount + tax invariant cannot drift.
func New(customerID int64, invoiceType Type, amount, taxAmount decimal.Decimal, dueDate time.Time, description string) *Invoice {
	inv := &Invoice{
		CustomerID:  customerID,
		InvoiceType: invoiceType,
		Amount:      amount,
		TaxAmount:   taxAmount,
		TotalAmount: amount.Add(taxAmount),
		DueDate:     dueDate,
		Status:      StatusPending,
	}
	if description != "" {
		inv.Description = sql.NullString{String: description, Valid: true}
	}
	return inv
}

// CanTransitionTo reports whether the invoice may move to the target
// status. Paid and cancelled are terminal; overdue can still be paid or
// cancelled.
func (i *Invoice) CanTransitionTo(target Status) bool {
	switch i.Status {
	case StatusPending:
		return target == StatusPaid || target == StatusOverdue || target == StatusCancelled
	case StatusOverdue:
		return target == StatusPaid || target == StatusCancelled
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are possible.
func (i *Invoice) IsTerminal() bool {
	return i.Status == StatusPaid || i.Status == StatusCancelled
}

// CheckInvariant verifies total = amount + tax.
func (i *Invoice) CheckInvariant() error {
	if !i.TotalAmount.Equal(i.Amount.Add(i.TaxAmount)) {
		return &amountMismatchError{inv: i}
	}
	return nil
}

type amountMismatchError struct{ inv *Invoice }

func (e *amountMismatchError) Error() string {
	return "invoice " + e.inv.InvoiceNumber + ": total_amount does not equal amount + tax_amount"
}
