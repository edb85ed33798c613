package settlement

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/hakimbdev/tonstoremarketspot/internal/kafka"
	"github.com/hakimbdev/tonstoremarketspot/internal/market"
	"github.com/hakimbdev/tonstoremarketspot/internal/redisx"
)

type OrderCompleter interface {
	MarkCompleted(ctx context.Context, orderID string) error
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Service is the settlement process the gateway defers to: it consumes
// order.created events and drives pending -> completed. The transaction
// reference is taken at face value; there is no ledger lookup here, so
// settlement timing is decoupled from any chain-confirmation guarantee.
type Service struct {
	Orders      OrderCompleter
	Redis       *redis.Client
	Producer    Publisher
	ServiceName string
}

func (s *Service) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	var env market.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != market.EventOrderCreated {
		return nil
	}

	// dedup by event_id
	if s.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, "settlement", env.EventID)
		if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
			return nil
		}
		_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}

	p, err := kafkax.UnwrapPayload[market.OrderCreatedPayload](env.Payload)
	if err != nil {
		return err
	}

	if err := s.Orders.MarkCompleted(ctx, p.OrderID); err != nil {
		return err
	}
	slog.Info("order settled", "order_id", p.OrderID, "transaction_id", p.TransactionID)

	if s.Redis != nil {
		skey := fmt.Sprintf(redisx.KeyOrderStatus, p.OrderID)
		_ = s.Redis.Set(ctx, skey, fmt.Sprintf(`{"status":%d}`, market.OrderCompleted), redisx.TTLStatusCache).Err()
	}

	s.publishSettled(p.OrderID, env.TraceID)
	return nil
}

func (s *Service) publishSettled(orderID, trace string) {
	if s.Producer == nil {
		return
	}
	ev := market.Envelope{
		EventID:       uuid.NewString(),
		EventType:     market.EventOrderSettled,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       trace,
		CorrelationID: orderID,
		Payload: kafkax.MustMarshal(market.OrderSettledPayload{
			OrderID:     orderID,
			FinalStatus: market.OrderCompleted.String(),
		}),
	}
	s.Producer.Publish(market.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(market.EventOrderSettled)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
