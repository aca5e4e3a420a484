package event

import (
	"context"

	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
)

type EventType string

const (
	PatientCreated  EventType = "patient.created"
	PatientUpdated  EventType = "patient.updated"
	PatientArchived EventType = "patient.archived"
	PaymentCreated  EventType = "payment.created"
	PaymentUpdated  EventType = "payment.updated"
	PaymentArchived EventType = "payment.archived"
)

// Emitter publishes domain events after a successful write. Delivery is
// best effort: failures are logged and never returned.
type Emitter struct {
	publisher messaging.Publisher
}

func NewEmitter(publisher messaging.Publisher) *Emitter {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &Emitter{publisher: publisher}
}

func (e *Emitter) Emit(ctx context.Context, eventType EventType, payload interface{}) {
	if e == nil {
		return
	}
	if err := e.publisher.Publish(ctx, string(eventType), payload); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("event_type", string(eventType)).Msg("failed to publish event")
	}
}
