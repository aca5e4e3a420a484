package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBroker struct {
	channel  string
	messages []interface{}
	err      error
}

func (b *recordingBroker) Publish(_ context.Context, channel string, message interface{}) error {
	b.channel = channel
	b.messages = append(b.messages, message)
	return b.err
}

func (b *recordingBroker) Close() error { return nil }

func TestEventPublisherWrapsPayload(t *testing.T) {
	broker := &recordingBroker{}
	pub := NewEventPublisher(broker, "hms.events", nil)

	require.NoError(t, pub.Publish(context.Background(), "patient.created", map[string]int{"id": 1}))

	assert.Equal(t, "hms.events", broker.channel)
	require.Len(t, broker.messages, 1)
	msg := broker.messages[0].(Message)
	assert.Equal(t, "patient.created", msg.Type)
	assert.Equal(t, map[string]int{"id": 1}, msg.Payload)
	assert.False(t, msg.OccurredAt.IsZero())
}

func TestEventPublisherReturnsBrokerError(t *testing.T) {
	broker := &recordingBroker{err: errors.New("down")}
	pub := NewEventPublisher(broker, "hms.events", nil)

	assert.Error(t, pub.Publish(context.Background(), "payment.created", nil))
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), "payment.created", nil))
}
