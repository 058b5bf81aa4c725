package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "events"
	ExchangeKind = "topic"

	// AppID marks every message published by EventosU.
	AppID = "eventosu"

	instanceHeader = "x-eventosu-instance"
	publishTimeout = 5 * time.Second
)

// InstanceID identifies this process on the exchange, so the catalog sync
// can drop the event.created messages it published itself.
var InstanceID = uuid.NewString()

type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewPublisher(url string) (*Publisher, error) {
	conn, ch, err := open(url)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, channel: ch}, nil
}

// open dials the broker and declares the shared topic exchange.
func open(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, ExchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq exchange declare %s: %w", ExchangeName, err)
	}
	return conn, ch, nil
}

// NewMessage wraps payload as a persistent JSON message. Type carries the
// routing key and the instance header carries InstanceID.
func NewMessage(routingKey string, payload any, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal %s payload: %w", routingKey, err)
	}

	return amqp.Publishing{
		ContentType:     "application/json",
		ContentEncoding: "utf-8",
		DeliveryMode:    amqp.Persistent,
		AppId:           AppID,
		MessageId:       uuid.NewString(),
		Type:            routingKey,
		Timestamp:       now.UTC(),
		Headers:         amqp.Table{instanceHeader: InstanceID},
		Body:            body,
	}, nil
}

// Publish sends one catalog or attendee notification to the events exchange.
func (p *Publisher) Publish(routingKey string, payload any) error {
	msg, err := NewMessage(routingKey, payload, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.channel.PublishWithContext(ctx, ExchangeName, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	log.Printf("[RabbitMQ] published %s id=%s (%d bytes)", routingKey, msg.MessageId, len(msg.Body))
	return nil
}

// FromThisInstance reports whether d was published by this process.
func FromThisInstance(d amqp.Delivery) bool {
	if d.AppId != AppID {
		return false
	}
	id, _ := d.Headers[instanceHeader].(string)
	return id == InstanceID
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
