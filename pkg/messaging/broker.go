package messaging

import (
	"context"
	"time"

	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Close() error
}

// Publisher defines the interface for publishing messages
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

type Message struct {
	Type       string      `json:"type"`
	Payload    interface{} `json:"payload"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// EventPublisher wraps domain events in a Message and sends them to one
// broker channel.
type EventPublisher struct {
	broker  Broker
	channel string
	metrics *metrics.Metrics
}

func NewEventPublisher(broker Broker, channel string, m *metrics.Metrics) *EventPublisher {
	return &EventPublisher{broker: broker, channel: channel, metrics: m}
}

func (p *EventPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	err := p.broker.Publish(ctx, p.channel, Message{
		Type:       eventType,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	})
	p.metrics.ObserveEvent(eventType, err)
	return err
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
