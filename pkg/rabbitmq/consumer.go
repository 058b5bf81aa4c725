package rabbitmq

import (
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	QueueName  = "eventosu.catalog-sync"
	BindingKey = "event.*"

	// PrefetchCount bounds the unacked imports held by one instance.
	PrefetchCount = 10
)

// Consumer feeds event announcements from other services into the catalog.
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewConsumer(url string) (*Consumer, error) {
	conn, ch, err := open(url)
	if err != nil {
		return nil, err
	}

	fail := func(step string, err error) (*Consumer, error) {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq %s: %w", step, err)
	}

	if err := ch.Qos(PrefetchCount, 0, false); err != nil {
		return fail("qos", err)
	}

	q, err := ch.QueueDeclare(QueueName, true, false, false, false, nil)
	if err != nil {
		return fail("queue declare", err)
	}

	if err := ch.QueueBind(q.Name, BindingKey, ExchangeName, false, nil); err != nil {
		return fail("queue bind", err)
	}

	return &Consumer{conn: conn, channel: ch}, nil
}

// ConsumerTag names this instance's subscription in the management UI.
func ConsumerTag() string {
	return AppID + "-sync-" + InstanceID[:8]
}

func (c *Consumer) Consume() (<-chan amqp.Delivery, error) {
	msgs, err := c.channel.Consume(
		QueueName,
		ConsumerTag(),
		false, // acked after the store write
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq consume %s: %w", QueueName, err)
	}

	log.Printf("[RabbitMQ] consuming %s from queue %s as %s", BindingKey, QueueName, ConsumerTag())
	return msgs, nil
}

func (c *Consumer) Close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
