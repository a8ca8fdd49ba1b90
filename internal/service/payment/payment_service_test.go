// internal/service/payment/payment_service_test.go
package payment

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"takataka-service/internal/domain/customer"
	"takataka-service/internal/domain/invoice"
	"takataka-service/internal/domain/payment"
	"takataka-service/internal/events"
	xerrors "takataka-service/internal/pkg/errors"
	invoicesvc "takataka-service/internal/service/invoice"
	"takataka-service/internal/testutil"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakePayments struct {
	byID   map[int64]*payment.Payment
	nextID int64
}

func (f *fakePayments) Create(ctx context.Context, p *payment.Payment) error {
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePayments) FindByID(ctx context.Context, id int64) (*payment.Payment, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, xerrors.NotFoundf("payment", id)
	}
	cp := *p
	return &cp, nil
}

func (f *fakePayments) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*payment.Payment, error) {
	return f.FindByID(ctx, id)
}

func (f *fakePayments) FindByReference(ctx context.Context, reference string) (*payment.Payment, error) {
	for _, p := range f.byID {
		if p.PaymentReference == reference {
			cp := *p
			return &cp, nil
		}
	}
	return nil, xerrors.NotFoundf("payment", reference)
}

func (f *fakePayments) UpdateOutcomeWithTx(ctx context.Context, tx pgx.Tx, p *payment.Payment) error {
	if _, ok := f.byID[p.ID]; !ok {
		return xerrors.NotFoundf("payment", p.ID)
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePayments) List(ctx context.Context, filters *payment.PaymentListFilters) ([]payment.Payment, int64, error) {
	out := []payment.Payment{}
	for _, p := range f.byID {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

type fakeInvoices struct {
	byID   map[int64]*invoice.Invoice
	nextID int64
}

func (f *fakeInvoices) Create(ctx context.Context, inv *invoice.Invoice) error {
	f.nextID++
	inv.ID = f.nextID
	cp := *inv
	f.byID[inv.ID] = &cp
	return nil
}

func (f *fakeInvoices) FindByID(ctx context.Context, id int64) (*invoice.Invoice, error) {
	inv, ok := f.byID[id]
	if !ok {
		return nil, xerrors.NotFoundf("invoice", id)
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeInvoices) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*invoice.Invoice, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeInvoices) FindByNumber(ctx context.Context, number string) (*invoice.Invoice, error) {
	for _, inv := range f.byID {
		if inv.InvoiceNumber == number {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, xerrors.NotFoundf("invoice", number)
}

func (f *fakeInvoices) MarkPaidWithTx(ctx context.Context, tx pgx.Tx, id int64, paidAt time.Time) error {
	inv, ok := f.byID[id]
	if !ok || (inv.Status != invoice.StatusPending && inv.Status != invoice.StatusOverdue) {
		return xerrors.Conflictf("invoice %d is not payable", id)
	}
	inv.Status = invoice.StatusPaid
	inv.PaidAt = sql.NullTime{Time: paidAt, Valid: true}
	return nil
}

func (f *fakeInvoices) Cancel(ctx context.Context, id int64) error {
	inv, ok := f.byID[id]
	if !ok {
		return xerrors.NotFoundf("invoice", id)
	}
	inv.Status = invoice.StatusCancelled
	return nil
}

func (f *fakeInvoices) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) { return 0, nil }

func (f *fakeInvoices) List(ctx context.Context, filters *invoice.InvoiceListFilters) ([]invoice.Invoice, int64, error) {
	return nil, 0, nil
}

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

func (f *fakeCustomers) UpdateRegistrationStateWithTx(ctx context.Context, tx pgx.Tx, c *customer.Customer) error {
	if _, ok := f.byID[c.ID]; !ok {
		return xerrors.NotFoundf("customer", c.ID)
	}
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

type recordedEvents struct {
	types []events.Type
}

func (r *recordedEvents) HandleEvent(ctx context.Context, ev events.Event) {
	r.types = append(r.types, ev.Type)
}

func (r *recordedEvents) has(t events.Type) bool {
	for _, got := range r.types {
		if got == t {
			return true
		}
	}
	return false
}

type fixture struct {
	svc       *Service
	payments  *fakePayments
	invoices  *fakeInvoices
	customers *fakeCustomers
	db        *testutil.DB
	rec       *recordedEvents
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	payments := &fakePayments{byID: map[int64]*payment.Payment{}}
	invoices := &fakeInvoices{byID: map[int64]*invoice.Invoice{}}
	customers := &fakeCustomers{byID: map[int64]*customer.Customer{}}
	db := &testutil.DB{}
	bus := events.NewBus(nil)
	rec := &recordedEvents{}
	bus.Subscribe(rec)

	ledger := invoicesvc.NewService(invoices, customers, db, bus, zap.NewNop())
	svc := NewService(payments, invoices, ledger, customers, db, bus, zap.NewNop())
	return &fixture{svc: svc, payments: payments, invoices: invoices, customers: customers, db: db, rec: rec}
}

// seedRegistration sets up a pending customer with an unpaid registration
// invoice, the state right after registering.
func (fx *fixture) seedRegistration(t *testing.T) (*customer.Customer, *invoice.Invoice) {
	t.Helper()
	c := &customer.Customer{
		ID:                 7,
		CustomerNumber:     "CUS-TEST",
		RegistrationStatus: customer.RegistrationPending,
		RegistrationFee:    decimal.NewFromInt(500),
		Status:             customer.StatusInactive,
	}
	fx.customers.byID[c.ID] = c

	inv := invoice.New(c.ID, invoice.TypeRegistration, decimal.NewFromInt(500), decimal.Zero,
		time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC), "Registration fee")
	inv.InvoiceNumber = "INV-REG-TEST"
	if err := fx.invoices.Create(context.Background(), inv); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	return c, inv
}

func (fx *fixture) record(t *testing.T, invoiceID int64) *payment.Payment {
	t.Helper()
	p, err := fx.svc.Record(context.Background(), &payment.RecordPaymentRequest{
		InvoiceID:      invoiceID,
		Amount:         "500",
		Method:         payment.MethodMpesa,
		PaymentDetails: map[string]interface{}{"msisdn": "+254712345678"},
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	return p
}

func TestRecord(t *testing.T) {
	fx := newFixture(t)
	c, inv := fx.seedRegistration(t)

	p := fx.record(t, inv.ID)

	if p.Status != payment.StatusPending {
		t.Errorf("status = %s, want pending", p.Status)
	}
	if p.CustomerID != c.ID {
		t.Errorf("customer = %d, want %d (denormalized from invoice)", p.CustomerID, c.ID)
	}
	if !strings.HasPrefix(p.PaymentReference, "PAY-") {
		t.Errorf("reference %q missing PAY- prefix", p.PaymentReference)
	}
}

func TestRecordAgainstSettledInvoice(t *testing.T) {
	fx := newFixture(t)
	_, inv := fx.seedRegistration(t)
	fx.invoices.byID[inv.ID].Status = invoice.StatusPaid

	_, err := fx.svc.Record(context.Background(), &payment.RecordPaymentRequest{
		InvoiceID: inv.ID, Amount: "500", Method: payment.MethodCash,
	})
	if !xerrors.Is(err, xerrors.ErrConflict) {
		t.Errorf("err = %v, want conflict", err)
	}
}

func TestRecordRejectsBadInput(t *testing.T) {
	fx := newFixture(t)
	_, inv := fx.seedRegistration(t)

	cases := []*payment.RecordPaymentRequest{
		{InvoiceID: inv.ID, Amount: "500", Method: "cheque"},
		{InvoiceID: inv.ID, Amount: "0", Method: payment.MethodCash},
		{InvoiceID: inv.ID, Amount: "-10", Method: payment.MethodCash},
		{InvoiceID: inv.ID, Amount: "abc", Method: payment.MethodCash},
	}
	for i, req := range cases {
		if _, err := fx.svc.Record(context.Background(), req); !xerrors.Is(err, xerrors.ErrInvalidInput) {
			t.Errorf("case %d: err = %v, want invalid input", i, err)
		}
	}
}

func TestConfirmCompletedActivatesRegistration(t *testing.T) {
	fx := newFixture(t)
	c, inv := fx.seedRegistration(t)
	p := fx.record(t, inv.ID)

	confirmed, err := fx.svc.Confirm(context.Background(), p.ID, &payment.ConfirmPaymentRequest{
		Outcome:              payment.StatusCompleted,
		TransactionReference: "QHX12345",
	})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if confirmed.Status != payment.StatusCompleted || !confirmed.CompletedAt.Valid {
		t.Errorf("payment status = %s, completed_at valid = %v", confirmed.Status, confirmed.CompletedAt.Valid)
	}
	if fx.invoices.byID[inv.ID].Status != invoice.StatusPaid {
		t.Error("invoice not marked paid")
	}

	got := fx.customers.byID[c.ID]
	if !got.RegistrationPaid {
		t.Error("customer registration not marked paid")
	}
	if got.RegistrationStatus != customer.RegistrationApproved {
		t.Errorf("registration status = %s, want approved", got.RegistrationStatus)
	}
	if got.Status != customer.StatusActive {
		t.Errorf("customer status = %s, want active", got.Status)
	}
	if err := got.CheckInvariant(); err != nil {
		t.Errorf("invariant violated: %v", err)
	}

	if !fx.db.LastTx.Committed {
		t.Error("transaction was not committed")
	}
	for _, want := range []events.Type{events.TypePaymentCompleted, events.TypeInvoicePaid, events.TypeRegistrationActivated} {
		if !fx.rec.has(want) {
			t.Errorf("event %s not published", want)
		}
	}
}

func TestConfirmCompletedMonthlyLeavesCustomerAlone(t *testing.T) {
	fx := newFixture(t)
	c, _ := fx.seedRegistration(t)

	inv := invoice.New(c.ID, invoice.TypeMonthlyPlan, decimal.NewFromInt(1000), decimal.Zero,
		time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC), "Monthly plan")
	inv.InvoiceNumber = "INV-PLN-TEST"
	if err := fx.invoices.Create(context.Background(), inv); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	p := fx.record(t, inv.ID)

	if _, err := fx.svc.Confirm(context.Background(), p.ID, &payment.ConfirmPaymentRequest{
		Outcome: payment.StatusCompleted,
	}); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if fx.invoices.byID[inv.ID].Status != invoice.StatusPaid {
		t.Error("invoice not marked paid")
	}
	if fx.customers.byID[c.ID].RegistrationPaid {
		t.Error("monthly invoice must not touch registration state")
	}
	if fx.rec.has(events.TypeRegistrationActivated) {
		t.Error("registration.activated should not fire for a monthly invoice")
	}
}

func TestConfirmFailedLeavesInvoiceOpen(t *testing.T) {
	fx := newFixture(t)
	c, inv := fx.seedRegistration(t)
	p := fx.record(t, inv.ID)

	failed, err := fx.svc.Confirm(context.Background(), p.ID, &payment.ConfirmPaymentRequest{
		Outcome:       payment.StatusFailed,
		FailureReason: "insufficient funds",
	})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if failed.Status != payment.StatusFailed {
		t.Errorf("payment status = %s, want failed", failed.Status)
	}
	if !failed.FailureReason.Valid || failed.FailureReason.String != "insufficient funds" {
		t.Error("failure reason not recorded")
	}
	if fx.invoices.byID[inv.ID].Status != invoice.StatusPending {
		t.Error("failed payment must leave the invoice pending")
	}
	if fx.customers.byID[c.ID].RegistrationPaid {
		t.Error("failed payment must not touch the customer")
	}
	if !fx.rec.has(events.TypePaymentFailed) {
		t.Error("payment.failed not published")
	}
}

func TestConfirmTerminalPaymentConflicts(t *testing.T) {
	fx := newFixture(t)
	_, inv := fx.seedRegistration(t)
	p := fx.record(t, inv.ID)

	if _, err := fx.svc.Confirm(context.Background(), p.ID, &payment.ConfirmPaymentRequest{
		Outcome: payment.StatusCompleted,
	}); err != nil {
		t.Fatalf("first Confirm: %v", err)
	}

	_, err := fx.svc.Confirm(context.Background(), p.ID, &payment.ConfirmPaymentRequest{
		Outcome: payment.StatusCompleted,
	})
	if !xerrors.Is(err, xerrors.ErrConflict) {
		t.Errorf("second confirm: err = %v, want conflict", err)
	}
}

func TestConfirmMergesGatewayDetails(t *testing.T) {
	fx := newFixture(t)
	_, inv := fx.seedRegistration(t)
	p := fx.record(t, inv.ID)

	confirmed, err := fx.svc.Confirm(context.Background(), p.ID, &payment.ConfirmPaymentRequest{
		Outcome:        payment.StatusCompleted,
		PaymentDetails: map[string]interface{}{"receipt": "QHX12345"},
	})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if confirmed.PaymentDetails["msisdn"] != "+254712345678" {
		t.Error("details recorded at capture time were lost")
	}
	if confirmed.PaymentDetails["receipt"] != "QHX12345" {
		t.Error("gateway details were not merged")
	}
}

func TestRetryAfterFailedPayment(t *testing.T) {
	fx := newFixture(t)
	c, inv := fx.seedRegistration(t)

	first := fx.record(t, inv.ID)
	if _, err := fx.svc.Confirm(context.Background(), first.ID, &payment.ConfirmPaymentRequest{
		Outcome: payment.StatusFailed, FailureReason: "timeout",
	}); err != nil {
		t.Fatalf("Confirm(failed): %v", err)
	}

	second := fx.record(t, inv.ID)
	if _, err := fx.svc.Confirm(context.Background(), second.ID, &payment.ConfirmPaymentRequest{
		Outcome: payment.StatusCompleted,
	}); err != nil {
		t.Fatalf("Confirm(completed): %v", err)
	}

	if fx.invoices.byID[inv.ID].Status != invoice.StatusPaid {
		t.Error("invoice not settled by the retry")
	}
	if !fx.customers.byID[c.ID].RegistrationPaid {
		t.Error("registration not activated by the retry")
	}
}
