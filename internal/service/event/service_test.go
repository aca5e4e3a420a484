package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubPublisher struct {
	types []string
	err   error
}

func (p *stubPublisher) Publish(_ context.Context, eventType string, _ interface{}) error {
	p.types = append(p.types, eventType)
	return p.err
}

func TestEmitSwallowsPublishErrors(t *testing.T) {
	pub := &stubPublisher{err: errors.New("redis down")}
	e := NewEmitter(pub)

	assert.NotPanics(t, func() { e.Emit(context.Background(), PatientCreated, nil) })
	assert.Equal(t, []string{"patient.created"}, pub.types)
}

func TestNilEmitterIsNoop(t *testing.T) {
	var e *Emitter
	assert.NotPanics(t, func() { e.Emit(context.Background(), PaymentArchived, nil) })
	assert.NotPanics(t, func() { NewEmitter(nil).Emit(context.Background(), PaymentArchived, nil) })
}
