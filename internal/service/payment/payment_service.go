// internal/service/payment/payment_service.go
package payment

import (
	"context"
	"database/sql"
	"time"

	"takataka-service/internal/domain/customer"
	"takataka-service/internal/domain/invoice"
	"takataka-service/internal/domain/payment"
	"takataka-service/internal/events"
	xerrors "takataka-service/internal/pkg/errors"
	"takataka-service/internal/pkg/ref"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentStore persists payments.
type PaymentStore interface {
	Create(ctx context.Context, p *payment.Payment) error
	FindByID(ctx context.Context, id int64) (*payment.Payment, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*payment.Payment, error)
	FindByReference(ctx context.Context, reference string) (*payment.Payment, error)
	UpdateOutcomeWithTx(ctx context.Context, tx pgx.Tx, p *payment.Payment) error
	List(ctx context.Context, filters *payment.PaymentListFilters) ([]payment.Payment, int64, error)
}

// InvoiceStore reads invoices when recording a payment.
type InvoiceStore interface {
	FindByID(ctx context.Context, id int64) (*invoice.Invoice, error)
}

// InvoiceLedger settles invoices inside the reconciler's transaction.
type InvoiceLedger interface {
	MarkPaidTx(ctx context.Context, tx pgx.Tx, invoiceID int64, paidAt time.Time) (*invoice.Invoice, bool, error)
}

// CustomerStore flips registration state when a registration invoice is
// settled.
type CustomerStore interface {
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*customer.Customer, error)
	UpdateRegistrationStateWithTx(ctx context.Context, tx pgx.Tx, c *customer.Customer) error
}

// TxBeginner starts database transactions.
type TxBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// Service is the payment reconciler. Recording a payment creates a
// pending row; confirmation settles it and, in the same transaction,
// cascades through the invoice and, for registration fees, the customer
// record. Events go out only after the transaction commits.
type Service struct {
	payments  PaymentStore
	invoices  InvoiceStore
	ledger    InvoiceLedger
	customers CustomerStore
	db        TxBeginner
	bus       *events.Bus
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(payments PaymentStore, invoices InvoiceStore, ledger InvoiceLedger, customers CustomerStore, db TxBeginner, bus *events.Bus, logger *zap.Logger) *Service {
	return &Service{
		payments:  payments,
		invoices:  invoices,
		ledger:    ledger,
		customers: customers,
		db:        db,
		bus:       bus,
		logger:    logger,
		now:       time.Now,
	}
}

// Record creates a pending payment against an invoice. The customer ID
// is denormalized from the invoice. Payments against settled or
// cancelled invoices are rejected up front.
func (s *Service) Record(ctx context.Context, req *payment.RecordPaymentRequest) (*payment.Payment, error) {
	if !payment.ValidMethod(req.Method) {
		return nil, xerrors.Validation("payment_method", "unsupported payment method")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, xerrors.Validation("amount", "must be a positive decimal")
	}

	inv, err := s.invoices.FindByID(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if inv.IsTerminal() {
		return nil, xerrors.Conflictf("invoice %s is %s and does not accept payments", inv.InvoiceNumber, inv.Status)
	}

	p := &payment.Payment{
		PaymentReference: ref.New(ref.PrefixPayment),
		InvoiceID:        inv.ID,
		CustomerID:       inv.CustomerID,
		Amount:           amount,
		Method:           req.Method,
		Status:           payment.StatusPending,
		PaymentDetails:   req.PaymentDetails,
	}
	if req.TransactionReference != "" {
		p.TransactionReference = sql.NullString{String: req.TransactionReference, Valid: true}
	}

	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("payment_reference", p.PaymentReference),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("amount", p.Amount.String()),
		zap.String("method", string(p.Method)),
	)
	return p, nil
}

// Confirm settles a pending payment with its gateway outcome. The payment
// row lock serializes concurrent confirmations; a second confirmation of
// a terminal payment is a conflict. On completion the invoice is marked
// paid in the same transaction, and a registration invoice additionally
// flags the customer's registration as paid, approved and active. A
// failed outcome leaves the invoice untouched so another payment can be
// recorded against it.
func (s *Service) Confirm(ctx context.Context, paymentID int64, req *payment.ConfirmPaymentRequest) (*payment.Payment, error) {
	if req.Outcome != payment.StatusCompleted && req.Outcome != payment.StatusFailed {
		return nil, xerrors.Validation("outcome", "must be completed or failed")
	}

	now := s.now()

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	p, err := s.payments.FindByIDForUpdate(ctx, tx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.IsTerminal() {
		return nil, xerrors.Conflictf("payment %s is already %s", p.PaymentReference, p.Status)
	}

	p.MergeDetails(req.PaymentDetails)
	if req.TransactionReference != "" {
		p.TransactionReference = sql.NullString{String: req.TransactionReference, Valid: true}
	}

	var (
		inv            *invoice.Invoice
		invoiceSettled bool
		activated      *customer.Customer
	)

	switch req.Outcome {
	case payment.StatusCompleted:
		p.Status = payment.StatusCompleted
		p.CompletedAt = sql.NullTime{Time: now, Valid: true}

		inv, invoiceSettled, err = s.ledger.MarkPaidTx(ctx, tx, p.InvoiceID, now)
		if err != nil {
			return nil, err
		}

		if inv.InvoiceType == invoice.TypeRegistration {
			c, err := s.customers.FindByIDForUpdate(ctx, tx, inv.CustomerID)
			if err != nil {
				return nil, err
			}
			if !c.RegistrationPaid {
				c.MarkRegistrationPaid(now)
				if err := s.customers.UpdateRegistrationStateWithTx(ctx, tx, c); err != nil {
					return nil, err
				}
				activated = c
			}
		}

	case payment.StatusFailed:
		p.Status = payment.StatusFailed
		if req.FailureReason != "" {
			p.FailureReason = sql.NullString{String: req.FailureReason, Valid: true}
		}
	}

	if err := s.payments.UpdateOutcomeWithTx(ctx, tx, p); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, xerrors.Wrap(err, "failed to commit transaction")
	}

	if p.Status == payment.StatusCompleted {
		s.logger.Info("payment completed",
			zap.String("payment_reference", p.PaymentReference),
			zap.String("invoice_number", inv.InvoiceNumber),
			zap.Bool("registration_activated", activated != nil),
		)
		s.bus.Publish(ctx, events.TypePaymentCompleted, map[string]interface{}{"payment": p})
		if invoiceSettled {
			s.bus.Publish(ctx, events.TypeInvoicePaid, map[string]interface{}{"invoice": inv})
		}
		if activated != nil {
			s.bus.Publish(ctx, events.TypeRegistrationActivated, map[string]interface{}{"customer": activated})
		}
	} else {
		s.logger.Info("payment failed",
			zap.String("payment_reference", p.PaymentReference),
			zap.String("failure_reason", req.FailureReason),
		)
		s.bus.Publish(ctx, events.TypePaymentFailed, map[string]interface{}{"payment": p})
	}

	return p, nil
}

// Get returns a payment by ID.
func (s *Service) Get(ctx context.Context, id int64) (*payment.Payment, error) {
	return s.payments.FindByID(ctx, id)
}

// GetByReference returns a payment by its reference.
func (s *Service) GetByReference(ctx context.Context, reference string) (*payment.Payment, error) {
	return s.payments.FindByReference(ctx, reference)
}

// List returns payments matching the filters.
func (s *Service) List(ctx context.Context, filters *payment.PaymentListFilters) (*payment.PaymentListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}

	payments, total, err := s.payments.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	return &payment.PaymentListResponse{
		Payments:   payments,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: int((total + int64(filters.PageSize) - 1) / int64(filters.PageSize)),
	}, nil
}
