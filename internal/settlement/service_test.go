package settlement

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"

	kafkax "github.com/hakimbdev/tonstoremarketspot/internal/kafka"
	"github.com/hakimbdev/tonstoremarketspot/internal/market"
)

type fakeCompleter struct{ completed []string }

func (f *fakeCompleter) MarkCompleted(ctx context.Context, orderID string) error {
	f.completed = append(f.completed, orderID)
	return nil
}

type fakePublisher struct{ envelopes []market.Envelope }

func (f *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	var env market.Envelope
	_ = json.Unmarshal(value, &env)
	f.envelopes = append(f.envelopes, env)
}

func createdMessage(t *testing.T, orderID string) kafkago.Message {
	t.Helper()
	env := market.Envelope{
		EventID:       "ev-1",
		EventType:     market.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      "test-api",
		CorrelationID: orderID,
		Payload: kafkax.MustMarshal(market.OrderCreatedPayload{
			OrderID: orderID, UserID: "u-1", ProductID: "5",
			AmountNano: 50_000_000_000, TransactionID: "0xabc",
		}),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestHandleOrderCreatedSettlesAndPublishes(t *testing.T) {
	orders := &fakeCompleter{}
	pub := &fakePublisher{}
	svc := &Service{Orders: orders, Producer: pub, ServiceName: "test-settlement"}

	err := svc.HandleOrderCreated(context.Background(), createdMessage(t, "o-1"))
	assert.NoError(t, err)
	assert.Equal(t, []string{"o-1"}, orders.completed)

	if assert.Len(t, pub.envelopes, 1) {
		env := pub.envelopes[0]
		assert.Equal(t, market.EventOrderSettled, env.EventType)
		assert.Equal(t, "o-1", env.CorrelationID)
		p, err := kafkax.UnwrapPayload[market.OrderSettledPayload](env.Payload)
		assert.NoError(t, err)
		assert.Equal(t, "completed", p.FinalStatus)
	}
}

func TestHandleIgnoresForeignEvents(t *testing.T) {
	orders := &fakeCompleter{}
	svc := &Service{Orders: orders}

	env := market.Envelope{EventID: "ev-2", EventType: market.EventOrderSettled}
	err := svc.HandleOrderCreated(context.Background(), kafkago.Message{Value: kafkax.MustMarshal(env)})
	assert.NoError(t, err)
	assert.Empty(t, orders.completed)
}
