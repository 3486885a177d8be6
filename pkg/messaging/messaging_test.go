package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/agenda-api/pkg/metrics"
)

type payload struct {
	CitaID int64 `json:"citaId"`
}

func TestEventPublisher_DeliversEnvelope(t *testing.T) {
	broker := NewLocalBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Envelope, 1)
	go func() {
		_ = Consume(ctx, broker, "cita.asignada", func(_ context.Context, env Envelope) error {
			got <- env
			return nil
		})
	}()

	// Wait for the subscription to register.
	require.Eventually(t, func() bool {
		broker.mu.RLock()
		defer broker.mu.RUnlock()
		return len(broker.subs["cita.asignada"]) == 1
	}, time.Second, 5*time.Millisecond)

	pub := NewEventPublisher(broker, "cita.asignada", "local", metrics.NewNop())
	require.NoError(t, pub.Publish(ctx, "cita.asignada", payload{CitaID: 9}))

	select {
	case env := <-got:
		assert.Equal(t, "cita.asignada", env.Type)
		var p payload
		require.NoError(t, json.Unmarshal(env.Payload, &p))
		assert.Equal(t, int64(9), p.CitaID)
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

type failingBroker struct{}

func (failingBroker) Publish(context.Context, string, interface{}) error {
	return errors.New("down")
}
func (failingBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, errors.New("down")
}
func (failingBroker) Close() error { return nil }

func TestEventPublisher_WrapsBrokerErrors(t *testing.T) {
	pub := NewEventPublisher(failingBroker{}, "c", "test", nil)
	err := pub.Publish(context.Background(), "cita.asignada", payload{})
	assert.ErrorContains(t, err, "cita.asignada")
}

func TestConsume_SubscribeFailure(t *testing.T) {
	err := Consume(context.Background(), failingBroker{}, "c", nil)
	assert.Error(t, err)
}

func TestLocalBroker_ClosedRejectsPublish(t *testing.T) {
	b := NewLocalBroker()
	require.NoError(t, b.Close())
	assert.Error(t, b.Publish(context.Background(), "c", payload{}))
}
