// internal/domain/payment/entity.go
package payment

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodMpesa        Method = "mpesa"
	MethodBankTransfer Method = "bank_transfer"
	MethodCash         Method = "cash"
	MethodCard         Method = "card"
	MethodAirtelMoney  Method = "airtel_money"
)

// ValidMethod reports whether m is a supported payment method.
func ValidMethod(m Method) bool {
	switch m {
	case MethodMpesa, MethodBankTransfer, MethodCash, MethodCard, MethodAirtelMoney:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Payment records money received against exactly one invoice. CustomerID
// is denormalized from the invoice at creation so customer statements do
// not need a join.
type Payment struct {
	ID               int64  `json:"id" db:"id"`
	PaymentReference string `json:"payment_reference" db:"payment_reference"`
	InvoiceID        int64  `json:"invoice_id" db:"invoice_id"`
	CustomerID       int64  `json:"customer_id" db:"customer_id"`

	Amount decimal.Decimal `json:"amount" db:"amount"`
	Method Method          `json:"payment_method" db:"payment_method"`
	Status Status          `json:"status" db:"status"`

	TransactionReference sql.NullString         `json:"transaction_reference,omitempty" db:"transaction_reference"`
	PaymentDetails       map[string]interface{} `json:"payment_details,omitempty" db:"payment_details"`
	FailureReason        sql.NullString         `json:"failure_reason,omitempty" db:"failure_reason"`

	CompletedAt sql.NullTime `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// CanTransitionTo reports whether the payment may move to the target
// status. Completed, failed and cancelled are terminal.
func (p *Payment) CanTransitionTo(target Status) bool {
	if p.Status != StatusPending {
		return false
	}
	switch target {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the payment has reached a final state.
func (p *Payment) IsTerminal() bool {
	return p.Status != StatusPending
}

// MergeDetails shallow-merges gateway details into the existing bag, later
// keys winning.
func (p *Payment) MergeDetails(details map[string]interface{}) {
	if len(details) == 0 {
		return
	}
	if p.PaymentDetails == nil {
		p.PaymentDetails = make(map[string]interface{}, len(details))
	}
	for k, v := range details {
		p.PaymentDetails[k] = v
	}
}
