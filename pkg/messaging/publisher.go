package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/agenda-api/pkg/metrics"
)

// EventPublisher wraps payloads in a Message and sends them on one channel.
type EventPublisher struct {
	broker  Broker
	channel string
	name    string
	metrics *metrics.Metrics
}

// NewEventPublisher publishes on channel through broker. name labels the
// broker in metrics.
func NewEventPublisher(broker Broker, channel, name string, m *metrics.Metrics) *EventPublisher {
	return &EventPublisher{broker: broker, channel: channel, name: name, metrics: m}
}

func (p *EventPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	err := p.broker.Publish(ctx, p.channel, Message{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if p.metrics != nil {
		p.metrics.EventsPublished.WithLabelValues(p.name, metrics.Status(err)).Inc()
	}
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}

// Envelope is a received Message whose payload is still raw JSON.
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// Consume decodes every message from channel and hands it to handler until
// ctx is cancelled or the broker closes the subscription. Handler errors
// are logged and do not stop consumption.
func Consume(ctx context.Context, broker Broker, channel string, handler func(context.Context, Envelope) error) error {
	msgs, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-msgs:
			if !ok {
				return nil
			}
			var env Envelope
			if err := json.Unmarshal(raw, &env); err != nil {
				log.Error().Err(err).Str("channel", channel).Msg("discarding malformed message")
				continue
			}
			if err := handler(ctx, env); err != nil {
				log.Error().Err(err).Str("channel", channel).Str("type", env.Type).Msg("message handler failed")
			}
		}
	}
}
