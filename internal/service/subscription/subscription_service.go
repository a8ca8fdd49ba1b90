// internal/service/subscription/subscription_service.go
package subscription

import (
	"context"
	"fmt"
	"time"

	"takataka-service/internal/domain/customer"
	"takataka-service/internal/domain/invoice"
	"takataka-service/internal/domain/plan"
	"takataka-service/internal/domain/settings"
	"takataka-service/internal/domain/subscription"
	"takataka-service/internal/events"
	xerrors "takataka-service/internal/pkg/errors"
	"takataka-service/internal/pkg/ref"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultDueDays = 7

// CustomerStore locks and reads customers during subscription changes.
type CustomerStore interface {
	FindByID(ctx context.Context, id int64) (*customer.Customer, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*customer.Customer, error)
}

// PlanStore reads service plans.
type PlanStore interface {
	FindByID(ctx context.Context, id int64) (*plan.Plan, error)
}

// SubscriptionStore persists customer_plans rows.
type SubscriptionStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, s *subscription.CustomerPlan) error
	FindByID(ctx context.Context, id int64) (*subscription.CustomerPlan, error)
	FindActiveByCustomer(ctx context.Context, customerID int64) (*subscription.CustomerPlan, error)
	FindActiveByCustomerWithTx(ctx context.Context, tx pgx.Tx, customerID int64) (*subscription.CustomerPlan, error)
	CancelWithTx(ctx context.Context, tx pgx.Tx, id int64, now time.Time, reason string) error
	List(ctx context.Context, filters *subscription.SubscriptionListFilters) ([]subscription.CustomerPlan, int64, error)
}

// InvoiceStore creates the first monthly invoice inside the subscribe
// transaction.
type InvoiceStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, inv *invoice.Invoice) error
}

// SettingsProvider resolves billing parameters.
type SettingsProvider interface {
	Int(ctx context.Context, key string, fallback int) int
}

// TxBeginner starts database transactions.
type TxBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// Service manages plan subscriptions. A customer holds at most one
// active subscription; subscribing again replaces the current one
// atomically.
type Service struct {
	customers CustomerStore
	plans     PlanStore
	subs      SubscriptionStore
	invoices  InvoiceStore
	settings  SettingsProvider
	db        TxBeginner
	bus       *events.Bus
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(customers CustomerStore, plans PlanStore, subs SubscriptionStore, invoices InvoiceStore, settings SettingsProvider, db TxBeginner, bus *events.Bus, logger *zap.Logger) *Service {
	return &Service{
		customers: customers,
		plans:     plans,
		subs:      subs,
		invoices:  invoices,
		settings:  settings,
		db:        db,
		bus:       bus,
		logger:    logger,
		now:       time.Now,
	}
}

// Subscribe puts the customer on a plan. The customer row lock
// serializes concurrent subscribes for the same customer: the loser sees
// the winner's subscription as the current one and replaces it, never
// creating a second active row. The first monthly invoice is raised in
// the same transaction at the plan's current price, which is snapshotted
// onto the subscription.
func (s *Service) Subscribe(ctx context.Context, customerID int64, req *subscription.SubscribeRequest) (*subscription.CustomerPlan, *invoice.Invoice, error) {
	p, err := s.plans.FindByID(ctx, req.PlanID)
	if err != nil {
		return nil, nil, err
	}
	if !p.IsActive {
		return nil, nil, xerrors.Precondition(fmt.Sprintf("plan %s is not open for subscription", p.Code))
	}

	now := s.now()
	dueDays := s.settings.Int(ctx, settings.KeyInvoiceDueDays, defaultDueDays)

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, nil, xerrors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	c, err := s.customers.FindByIDForUpdate(ctx, tx, customerID)
	if err != nil {
		return nil, nil, err
	}
	if !c.RegistrationPaid {
		return nil, nil, xerrors.Precondition("registration fee must be paid before subscribing")
	}
	if c.Status != customer.StatusActive {
		return nil, nil, xerrors.Precondition(fmt.Sprintf("customer is %s and cannot subscribe", c.Status))
	}

	var replaced *subscription.CustomerPlan
	current, err := s.subs.FindActiveByCustomerWithTx(ctx, tx, customerID)
	switch {
	case err == nil:
		if current.PlanID == p.ID {
			return nil, nil, xerrors.Conflictf("customer is already subscribed to plan %s", p.Code)
		}
		if err := s.subs.CancelWithTx(ctx, tx, current.ID, now, "replaced by plan change"); err != nil {
			return nil, nil, err
		}
		replaced = current
	case xerrors.Is(err, xerrors.ErrNotFound):
		// First subscription for this customer.
	default:
		return nil, nil, err
	}

	sub := &subscription.CustomerPlan{
		CustomerID:      customerID,
		PlanID:          p.ID,
		Status:          subscription.StatusActive,
		MonthlyAmount:   p.MonthlyPrice,
		StartDate:       now,
		NextBillingDate: now.AddDate(0, 1, 0),
		AutoRenew:       req.AutoRenew,
	}
	if err := s.subs.CreateWithTx(ctx, tx, sub); err != nil {
		return nil, nil, err
	}

	inv := invoice.New(customerID, invoice.TypeMonthlyPlan, p.MonthlyPrice, decimal.Zero,
		now.AddDate(0, 0, dueDays), fmt.Sprintf("Monthly plan: %s", p.Name))
	inv.InvoiceNumber = ref.Invoice(invoice.TypeMonthlyPlan.TypeMarker())
	inv.CustomerPlanID.Int64 = sub.ID
	inv.CustomerPlanID.Valid = true
	if err := s.invoices.CreateWithTx(ctx, tx, inv); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, xerrors.Wrap(err, "failed to commit transaction")
	}

	s.logger.Info("subscription started",
		zap.String("customer_number", c.CustomerNumber),
		zap.String("plan_code", p.Code),
		zap.String("monthly_amount", sub.MonthlyAmount.String()),
		zap.Bool("replaced_previous", replaced != nil),
	)
	if replaced != nil {
		s.bus.Publish(ctx, events.TypeSubscriptionCancelled, map[string]interface{}{"subscription": replaced})
	}
	s.bus.Publish(ctx, events.TypeSubscriptionStarted, map[string]interface{}{"subscription": sub})
	s.bus.Publish(ctx, events.TypeInvoiceCreated, map[string]interface{}{"invoice": inv})

	return sub, inv, nil
}

// Cancel ends the customer's active subscription. Cancelling when there
// is none is a conflict.
func (s *Service) Cancel(ctx context.Context, customerID int64, req *subscription.CancelSubscriptionRequest) (*subscription.CustomerPlan, error) {
	now := s.now()

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	if _, err := s.customers.FindByIDForUpdate(ctx, tx, customerID); err != nil {
		return nil, err
	}

	current, err := s.subs.FindActiveByCustomerWithTx(ctx, tx, customerID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.Conflict("customer has no active subscription")
		}
		return nil, err
	}

	if err := s.subs.CancelWithTx(ctx, tx, current.ID, now, req.Reason); err != nil {
		return nil, err
	}
	current.Cancel(now, req.Reason)

	if err := tx.Commit(ctx); err != nil {
		return nil, xerrors.Wrap(err, "failed to commit transaction")
	}

	s.logger.Info("subscription cancelled",
		zap.Int64("customer_id", customerID),
		zap.Int64("subscription_id", current.ID),
	)
	s.bus.Publish(ctx, events.TypeSubscriptionCancelled, map[string]interface{}{"subscription": current})

	return current, nil
}

// Current returns the customer's active subscription, if any.
func (s *Service) Current(ctx context.Context, customerID int64) (*subscription.CustomerPlan, error) {
	return s.subs.FindActiveByCustomer(ctx, customerID)
}

// Get returns a subscription by ID.
func (s *Service) Get(ctx context.Context, id int64) (*subscription.CustomerPlan, error) {
	return s.subs.FindByID(ctx, id)
}

// List returns subscriptions matching the filters.
func (s *Service) List(ctx context.Context, filters *subscription.SubscriptionListFilters) (*subscription.SubscriptionListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}

	subs, total, err := s.subs.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	return &subscription.SubscriptionListResponse{
		Subscriptions: subs,
		Total:         total,
		Page:          filters.Page,
		PageSize:      filters.PageSize,
		TotalPages:    int((total + int64(filters.PageSize) - 1) / int64(filters.PageSize)),
	}, nil
}
