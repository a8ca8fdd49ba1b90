// Package events is the in-process domain event bus. Services publish
// events after their transaction commits; subscribers (the websocket feed,
// an external notifier) consume them without the core knowing about
// delivery channels.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Type string

const (
	TypeCustomerRegistered    Type = "customer.registered"
	TypeCustomerApproved      Type = "customer.approved"
	TypeCustomerRejected      Type = "customer.rejected"
	TypeRegistrationActivated Type = "registration.activated"
	TypeSubscriptionStarted   Type = "subscription.started"
	TypeSubscriptionCancelled Type = "subscription.cancelled"
	TypeInvoiceCreated        Type = "invoice.created"
	TypeInvoicePaid           Type = "invoice.paid"
	TypePaymentCompleted      Type = "payment.completed"
	TypePaymentFailed         Type = "payment.failed"
	TypeComplaintOpened       Type = "complaint.opened"
	TypeExpenseApproved       Type = "expense.approved"
)

// Event is a single domain occurrence. Payload holds JSON-serializable
// entity snapshots keyed by entity name.
type Event struct {
	ID         string                 `json:"id"`
	Type       Type                   `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}

// Handler receives published events. Handlers must not block; slow
// consumers should buffer on their side.
type Handler interface {
	HandleEvent(ctx context.Context, ev Event)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, ev Event)

func (f HandlerFunc) HandleEvent(ctx context.Context, ev Event) { f(ctx, ev) }

// Bus fans published events out to all subscribers.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	logger   *zap.Logger
}

func NewBus(logger *zap.Logger) *Bus {
	return &Bus{logger: logger}
}

// Subscribe registers a handler for all subsequent events.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish delivers the event to every subscriber synchronously, in
// subscription order. Publish must only be called after the state change
// it describes has committed.
func (b *Bus) Publish(ctx context.Context, typ Type, payload map[string]interface{}) {
	ev := Event{
		ID:         uuid.NewString(),
		Type:       typ,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}

	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h.HandleEvent(ctx, ev)
	}

	if b.logger != nil {
		b.logger.Debug("event published",
			zap.String("event_id", ev.ID),
			zap.String("event_type", string(ev.Type)),
		)
	}
}
