// internal/service/subscription/subscription_service_test.go
package subscription

import (
	"context"
	"testing"
	"time"

	"takataka-service/internal/domain/customer"
	"takataka-service/internal/domain/invoice"
	"takataka-service/internal/domain/plan"
	"takataka-service/internal/domain/subscription"
	"takataka-service/internal/events"
	xerrors "takataka-service/internal/pkg/errors"
	"takataka-service/internal/testutil"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeCustomers struct {
	byID map[int64]*customer.Customer
}

func (f *fakeCustomers) FindByID(ctx context.Context, id int64) (*customer.Customer, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, xerrors.NotFoundf("customer", id)
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCustomers) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*customer.Customer, error) {
	return f.FindByID(ctx, id)
}

type fakePlans struct {
	byID map[int64]*plan.Plan
}

func (f *fakePlans) FindByID(ctx context.Context, id int64) (*plan.Plan, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, xerrors.NotFoundf("plan", id)
	}
	cp := *p
	return &cp, nil
}

// fakeSubs mimics the partial unique index: a second active row for the
// same customer is a conflict.
type fakeSubs struct {
	rows   []*subscription.CustomerPlan
	nextID int64
}

func (f *fakeSubs) activeFor(customerID int64) *subscription.CustomerPlan {
	for _, s := range f.rows {
		if s.CustomerID == customerID && s.Status == subscription.StatusActive {
			return s
		}
	}
	return nil
}

func (f *fakeSubs) CreateWithTx(ctx context.Context, tx pgx.Tx, s *subscription.CustomerPlan) error {
	if f.activeFor(s.CustomerID) != nil {
		return xerrors.Conflict("customer already has an active subscription")
	}
	f.nextID++
	s.ID = f.nextID
	cp := *s
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeSubs) FindByID(ctx context.Context, id int64) (*subscription.CustomerPlan, error) {
	for _, s := range f.rows {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, xerrors.NotFoundf("subscription", id)
}

func (f *fakeSubs) FindActiveByCustomer(ctx context.Context, customerID int64) (*subscription.CustomerPlan, error) {
	if s := f.activeFor(customerID); s != nil {
		cp := *s
		return &cp, nil
	}
	return nil, xerrors.NotFoundf("subscription", customerID)
}

func (f *fakeSubs) FindActiveByCustomerWithTx(ctx context.Context, tx pgx.Tx, customerID int64) (*subscription.CustomerPlan, error) {
	return f.FindActiveByCustomer(ctx, customerID)
}

func (f *fakeSubs) CancelWithTx(ctx context.Context, tx pgx.Tx, id int64, now time.Time, reason string) error {
	for _, s := range f.rows {
		if s.ID == id && s.Status == subscription.StatusActive {
			s.Cancel(now, reason)
			return nil
		}
	}
	return xerrors.Conflict("subscription is no longer active")
}

func (f *fakeSubs) List(ctx context.Context, filters *subscription.SubscriptionListFilters) ([]subscription.CustomerPlan, int64, error) {
	out := []subscription.CustomerPlan{}
	for _, s := range f.rows {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

type fakeInvoices struct {
	created []*invoice.Invoice
}

func (f *fakeInvoices) CreateWithTx(ctx context.Context, tx pgx.Tx, inv *invoice.Invoice) error {
	inv.ID = int64(len(f.created) + 1)
	f.created = append(f.created, inv)
	return nil
}

type fakeSettings struct{}

func (fakeSettings) Int(ctx context.Context, key string, fallback int) int { return fallback }

func paidCustomer(id int64) *customer.Customer {
	return &customer.Customer{
		ID:                 id,
		CustomerNumber:     "CUS-TEST",
		RegistrationStatus: customer.RegistrationApproved,
		RegistrationPaid:   true,
		Status:             customer.StatusActive,
	}
}

func newTestService(t *testing.T, customers *fakeCustomers) (*Service, *fakeSubs, *fakeInvoices, *testutil.DB) {
	t.Helper()
	plans := &fakePlans{byID: map[int64]*plan.Plan{
		1: {ID: 1, Code: "BASIC", Name: "Basic", MonthlyPrice: decimal.NewFromInt(1000), IsActive: true},
		2: {ID: 2, Code: "PREMIUM", Name: "Premium", MonthlyPrice: decimal.NewFromInt(2500), IsActive: true},
		3: {ID: 3, Code: "LEGACY", Name: "Legacy", MonthlyPrice: decimal.NewFromInt(800), IsActive: false},
	}}
	subs := &fakeSubs{}
	invoices := &fakeInvoices{}
	db := &testutil.DB{}
	svc := NewService(customers, plans, subs, invoices, fakeSettings{}, db, events.NewBus(nil), zap.NewNop())
	return svc, subs, invoices, db
}

func TestSubscribe(t *testing.T) {
	customers := &fakeCustomers{byID: map[int64]*customer.Customer{7: paidCustomer(7)}}
	svc, subs, invoices, db := newTestService(t, customers)

	sub, inv, err := svc.Subscribe(context.Background(), 7, &subscription.SubscribeRequest{PlanID: 1, AutoRenew: true})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if sub.Status != subscription.StatusActive {
		t.Errorf("status = %s, want active", sub.Status)
	}
	if !sub.MonthlyAmount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("monthly amount = %s, want 1000", sub.MonthlyAmount)
	}
	if !sub.AutoRenew {
		t.Error("auto renew not carried over")
	}

	if inv.InvoiceType != invoice.TypeMonthlyPlan {
		t.Errorf("invoice type = %s, want monthly_plan", inv.InvoiceType)
	}
	if !inv.CustomerPlanID.Valid || inv.CustomerPlanID.Int64 != sub.ID {
		t.Error("invoice not linked to the subscription")
	}
	if len(invoices.created) != 1 {
		t.Fatalf("created %d invoices, want 1", len(invoices.created))
	}
	if subs.activeFor(7) == nil {
		t.Error("no active subscription persisted")
	}
	if db.LastTx == nil || !db.LastTx.Committed {
		t.Error("transaction was not committed")
	}
}

func TestSubscribeRequiresPaidRegistration(t *testing.T) {
	unpaid := paidCustomer(7)
	unpaid.RegistrationPaid = false
	customers := &fakeCustomers{byID: map[int64]*customer.Customer{7: unpaid}}
	svc, subs, invoices, db := newTestService(t, customers)

	_, _, err := svc.Subscribe(context.Background(), 7, &subscription.SubscribeRequest{PlanID: 1})
	if !xerrors.Is(err, xerrors.ErrPrecondition) {
		t.Fatalf("err = %v, want precondition", err)
	}
	if len(subs.rows) != 0 || len(invoices.created) != 0 {
		t.Error("nothing should be persisted")
	}
	if db.LastTx != nil && db.LastTx.Committed {
		t.Error("transaction should not commit")
	}
}

func TestSubscribeSuspendedCustomer(t *testing.T) {
	suspended := paidCustomer(7)
	suspended.Status = customer.StatusSuspended
	customers := &fakeCustomers{byID: map[int64]*customer.Customer{7: suspended}}
	svc, _, _, _ := newTestService(t, customers)

	_, _, err := svc.Subscribe(context.Background(), 7, &subscription.SubscribeRequest{PlanID: 1})
	if !xerrors.Is(err, xerrors.ErrPrecondition) {
		t.Errorf("err = %v, want precondition", err)
	}
}

func TestSubscribeInactivePlan(t *testing.T) {
	customers := &fakeCustomers{byID: map[int64]*customer.Customer{7: paidCustomer(7)}}
	svc, _, _, _ := newTestService(t, customers)

	_, _, err := svc.Subscribe(context.Background(), 7, &subscription.SubscribeRequest{PlanID: 3})
	if !xerrors.Is(err, xerrors.ErrPrecondition) {
		t.Errorf("err = %v, want precondition", err)
	}
}

func TestSubscribeReplacesCurrentPlan(t *testing.T) {
	customers := &fakeCustomers{byID: map[int64]*customer.Customer{7: paidCustomer(7)}}
	svc, subs, invoices, _ := newTestService(t, customers)

	first, _, err := svc.Subscribe(context.Background(), 7, &subscription.SubscribeRequest{PlanID: 1})
	if err != nil {
		t.Fatalf("first Subscribe: %v", err)
	}

	second, _, err := svc.Subscribe(context.Background(), 7, &subscription.SubscribeRequest{PlanID: 2})
	if err != nil {
		t.Fatalf("second Subscribe: %v", err)
	}

	if !second.MonthlyAmount.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("monthly amount = %s, want 2500", second.MonthlyAmount)
	}

	old, err := subs.FindByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if old.Status != subscription.StatusCancelled {
		t.Errorf("old subscription = %s, want cancelled", old.Status)
	}

	active := 0
	for _, s := range subs.rows {
		if s.Status == subscription.StatusActive {
			active++
		}
	}
	if active != 1 {
		t.Errorf("active subscriptions = %d, want 1", active)
	}
	if len(invoices.created) != 2 {
		t.Errorf("created %d invoices, want 2", len(invoices.created))
	}
}

func TestSubscribeSamePlanConflicts(t *testing.T) {
	customers := &fakeCustomers{byID: map[int64]*customer.Customer{7: paidCustomer(7)}}
	svc, _, _, _ := newTestService(t, customers)

	if _, _, err := svc.Subscribe(context.Background(), 7, &subscription.SubscribeRequest{PlanID: 1}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if _, _, err := svc.Subscribe(context.Background(), 7, &subscription.SubscribeRequest{PlanID: 1}); !xerrors.Is(err, xerrors.ErrConflict) {
		t.Errorf("err = %v, want conflict", err)
	}
}

func TestCancel(t *testing.T) {
	customers := &fakeCustomers{byID: map[int64]*customer.Customer{7: paidCustomer(7)}}
	svc, subs, _, _ := newTestService(t, customers)

	if _, _, err := svc.Subscribe(context.Background(), 7, &subscription.SubscribeRequest{PlanID: 1}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	cancelled, err := svc.Cancel(context.Background(), 7, &subscription.CancelSubscriptionRequest{Reason: "moving house"})
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != subscription.StatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
	if !cancelled.CancelReason.Valid || cancelled.CancelReason.String != "moving house" {
		t.Error("cancel reason not recorded")
	}
	if subs.activeFor(7) != nil {
		t.Error("customer still has an active subscription")
	}
}

func TestCancelWithoutSubscription(t *testing.T) {
	customers := &fakeCustomers{byID: map[int64]*customer.Customer{7: paidCustomer(7)}}
	svc, _, _, _ := newTestService(t, customers)

	_, err := svc.Cancel(context.Background(), 7, &subscription.CancelSubscriptionRequest{})
	if !xerrors.Is(err, xerrors.ErrConflict) {
		t.Errorf("err = %v, want conflict", err)
	}
}
