package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/Eursukkul/eventosu/internal/models"
	"github.com/Eursukkul/eventosu/internal/service"
	"github.com/Eursukkul/eventosu/pkg/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
)

const syncTimeout = 10 * time.Second

// EventSyncer is the part of service.EventService the consumer needs.
type EventSyncer interface {
	SyncEvent(ctx context.Context, event models.Event) error
}

type EventConsumer struct {
	svc EventSyncer
}

func NewEventConsumer(svc EventSyncer) *EventConsumer {
	return &EventConsumer{svc: svc}
}

// Start imports events announced on the broker into the local catalog.
func (ec *EventConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			ec.handleMessage(msg)
		}
		log.Println("[EventConsumer] channel closed, stopping consumer")
	}()
}

func (ec *EventConsumer) handleMessage(msg amqp.Delivery) {
	if rabbitmq.FromThisInstance(msg) {
		msg.Ack(false)
		return
	}
	err := ec.handle(msg.Body)
	switch {
	case err == nil:
		msg.Ack(false)
	case errors.Is(err, errMalformed):
		msg.Nack(false, false)
	default:
		msg.Nack(false, true) // requeue
	}
}

var errMalformed = errors.New("malformed event message")

func (ec *EventConsumer) handle(body []byte) error {
	var event models.Event
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("[EventConsumer] failed to unmarshal: %v", err)
		return errMalformed
	}

	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	if err := ec.svc.SyncEvent(ctx, event); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			log.Printf("[EventConsumer] rejected event: %v", err)
			return errMalformed
		}
		log.Printf("[EventConsumer] failed to sync event %s: %v", event.ID, err)
		return err
	}

	log.Printf("[EventConsumer] synced event %s: %s", event.ID, event.Title)
	return nil
}
