// internal/domain/subscription/entity.go
package subscription

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
	StatusSuspended Status = "suspended"
)

// CustomerPlan links a customer to a plan for a billing period. A customer
// accumulates historical rows over time; at most one is active.
type CustomerPlan struct {
	ID         int64 `json:"id" db:"id"`
	CustomerID int64 `json:"customer_id" db:"customer_id"`
	PlanID     int64 `json:"plan_id" db:"plan_id"`

	Status Status `json:"status" db:"status"`

	// MonthlyAmount snapshots the plan price at subscribe time; later plan
	// price changes do not reprice existing subscriptions.
	MonthlyAmount decimal.Decimal `json:"monthly_amount" db:"monthly_amount"`

	StartDate       time.Time    `json:"start_date" db:"start_date"`
	NextBillingDate time.Time    `json:"next_billing_date" db:"next_billing_date"`
	LastBillingDate sql.NullTime `json:"last_billing_date,omitempty" db:"last_billing_date"`
	AutoRenew       bool         `json:"auto_renew" db:"auto_renew"`

	CancelledAt  sql.NullTime   `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CancelReason sql.NullString `json:"cancel_reason,omitempty" db:"cancel_reason"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CanTransitionTo reports whether the subscription may move to the target
// status. Active is the only non-terminal state; a new subscription row is
// created rather than reactivating an old one.
func (s *CustomerPlan) CanTransitionTo(target Status) bool {
	if s.Status != StatusActive {
		return false
	}
	switch target {
	case StatusCancelled, StatusExpired, StatusSuspended:
		return true
	default:
		return false
	}
}

// Cancel transitions an active subscription to cancelled.
func (s *CustomerPlan) Cancel(now time.Time, reason string) bool {
	if !s.CanTransitionTo(StatusCancelled) {
		return false
	}
	s.Status = StatusCancelled
	s.CancelledAt = sql.NullTime{Time: now, Valid: true}
	if reason != "" {
		s.CancelReason = sql.NullString{String: reason, Valid: true}
	}
	return true
}

// Expire transitions an active subscription to expired.
func (s *CustomerPlan) Expire() bool {
	if !s.CanTransitionTo(StatusExpired) {
		return false
	}
	s.Status = StatusExpired
	return true
}
