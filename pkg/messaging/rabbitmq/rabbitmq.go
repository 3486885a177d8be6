package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jwalitptl/agenda-api/pkg/circuitbreaker"
	"github.com/jwalitptl/agenda-api/pkg/messaging"
)

// Broker publishes to a durable queue named after the channel, so
// notifications survive a worker restart.
type Broker struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	cb   *circuitbreaker.CircuitBreaker
}

var _ messaging.Broker = (*Broker)(nil)

func NewBroker(amqpURL string) (*Broker, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return &Broker{
		conn: conn,
		ch:   ch,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "rabbitmq-publisher",
			MaxRequests: 3,
			Interval:    10 * time.Second,
			Timeout:     30 * time.Second,
		}),
	}, nil
}

func (b *Broker) declare(queue string) error {
	_, err := b.ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	return err
}

func (b *Broker) Publish(ctx context.Context, channel string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := b.declare(channel); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	return b.cb.Execute(func() error {
		return b.ch.PublishWithContext(ctx,
			"",      // default exchange
			channel, // routing key == queue name
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
			},
		)
	})
}

func (b *Broker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	if err := b.declare(channel); err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	deliveries, err := b.ch.ConsumeWithContext(ctx, channel, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to consume %s: %w", channel, err)
	}

	out := make(chan []byte, 100)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				select {
				case out <- d.Body:
					d.Ack(false)
				case <-ctx.Done():
					d.Nack(false, true)
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *Broker) Close() error {
	if b.ch != nil {
		if err := b.ch.Close(); err != nil {
			return err
		}
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}
