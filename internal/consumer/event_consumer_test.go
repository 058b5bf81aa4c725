package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Eursukkul/eventosu/internal/models"
	"github.com/Eursukkul/eventosu/internal/service"
	"github.com/Eursukkul/eventosu/pkg/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

// --- Mock EventSyncer ---

type mockSyncer struct {
	synced []models.Event
	err    error
}

func (m *mockSyncer) SyncEvent(ctx context.Context, ev models.Event) error {
	m.synced = append(m.synced, ev)
	return m.err
}

// --- Tests ---

func TestHandle_Success(t *testing.T) {
	svc := &mockSyncer{}
	ec := NewEventConsumer(svc)

	err := ec.handle([]byte(`{"id":"evento77","title":"Congreso de Redes","type":"congreso","capacity":40}`))

	assert.NoError(t, err)
	assert.Len(t, svc.synced, 1)
	assert.Equal(t, "evento77", svc.synced[0].ID)
	assert.Equal(t, models.EventTypeCongreso, svc.synced[0].Type)
}

func TestHandle_MalformedJSON(t *testing.T) {
	svc := &mockSyncer{}

	err := NewEventConsumer(svc).handle([]byte(`{not json`))

	assert.ErrorIs(t, err, errMalformed)
	assert.Empty(t, svc.synced)
}

func TestHandle_InvalidEventIsNotRequeued(t *testing.T) {
	svc := &mockSyncer{err: &service.ValidationError{Fields: map[string]string{"id": "El identificador es obligatorio"}}}

	err := NewEventConsumer(svc).handle([]byte(`{"title":"sin id"}`))

	assert.ErrorIs(t, err, errMalformed)
}

func TestHandle_StoreFailureIsRetryable(t *testing.T) {
	boom := errors.New("connection reset")
	svc := &mockSyncer{err: boom}

	err := NewEventConsumer(svc).handle([]byte(`{"id":"evento1"}`))

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, errMalformed)
}

// --- Fake acknowledger ---

type recordingAck struct {
	acks    int
	nacks   int
	requeue bool
}

func (r *recordingAck) Ack(tag uint64, multiple bool) error { r.acks++; return nil }
func (r *recordingAck) Nack(tag uint64, multiple, requeue bool) error {
	r.nacks++
	r.requeue = requeue
	return nil
}
func (r *recordingAck) Reject(tag uint64, requeue bool) error { return nil }

func TestHandleMessage_Outcomes(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		err         error
		wantAcks    int
		wantNacks   int
		wantRequeue bool
	}{
		{"synced", `{"id":"evento77"}`, nil, 1, 0, false},
		{"malformed", `{nope`, nil, 0, 1, false},
		{"store down", `{"id":"evento77"}`, errors.New("connection reset"), 0, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &recordingAck{}
			ec := NewEventConsumer(&mockSyncer{err: tt.err})

			ec.handleMessage(amqp.Delivery{Acknowledger: ack, AppId: "booking-service", Body: []byte(tt.body)})

			assert.Equal(t, tt.wantAcks, ack.acks)
			assert.Equal(t, tt.wantNacks, ack.nacks)
			assert.Equal(t, tt.wantRequeue, ack.requeue)
		})
	}
}

func TestHandleMessage_SkipsOwnAnnouncements(t *testing.T) {
	svc := &mockSyncer{}
	ack := &recordingAck{}
	msg, err := rabbitmq.NewMessage("event.created", models.Event{ID: "evento77"}, time.Now())
	assert.NoError(t, err)

	NewEventConsumer(svc).handleMessage(amqp.Delivery{
		Acknowledger: ack,
		AppId:        msg.AppId,
		Headers:      msg.Headers,
		Body:         msg.Body,
	})

	assert.Equal(t, 1, ack.acks)
	assert.Empty(t, svc.synced)
}
