package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/hakimbdev/tonstoremarketspot/internal/kafka"
	"github.com/hakimbdev/tonstoremarketspot/internal/market"
	"github.com/hakimbdev/tonstoremarketspot/internal/redisx"
	"github.com/hakimbdev/tonstoremarketspot/internal/store"
)

type OrderStore interface {
	Create(ctx context.Context, req market.OrderRequest) (market.Order, error)
	Get(ctx context.Context, id string) (market.Order, error)
	ListByUser(ctx context.Context, userID string) ([]market.Order, error)
	List(ctx context.Context) ([]market.Order, error)
}

// Publisher is the slice of the kafka producer the handler needs.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type OrdersHandler struct {
	Orders   OrderStore
	Producer Publisher
	Redis    *redis.Client
	Guard    Guard
	Service  string
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(h.Guard.RequireAny)
		r.Get("/orders", h.list)
		r.Get("/orders/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.Guard.RequireUser)
		r.Post("/orders", h.create)
	})
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req market.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	// an order always belongs to the authenticated purchaser,
	// whatever user_id the body claims
	user, _ := userFrom(r.Context())
	req.UserID = user.ID

	if fields := orderFieldErrors(req); len(fields) > 0 {
		writeFieldErrors(w, "validation failed", fields)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.Orders.Create(ctx, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.cacheStatus(ctx, order)
	h.publishCreated(order, r.Header.Get("X-Request-Id"))

	writeJSON(w, http.StatusCreated, orderResponse{Message: "order created", Status: http.StatusCreated, Order: order})
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, o market.Order) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	_ = h.Redis.Set(ctx, key, fmt.Sprintf(`{"status":%d}`, o.Status), redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) publishCreated(o market.Order, traceID string) {
	if h.Producer == nil {
		return
	}
	ev := market.Envelope{
		EventID:       uuid.NewString(),
		EventType:     market.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       traceID,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(market.OrderCreatedPayload{
			OrderID:       o.ID,
			UserID:        o.UserID,
			ProductID:     o.ProductID,
			AmountNano:    o.Amount.Nano(),
			TransactionID: o.TransactionID,
		}),
	}
	h.Producer.Publish(market.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(market.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var (
		out []market.Order
		err error
	)
	if user, ok := userFrom(ctx); ok {
		out, err = h.Orders.ListByUser(ctx, user.ID)
	} else {
		// admin sees everything
		out, err = h.Orders.List(ctx)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if out == nil {
		out = []market.Order{}
	}
	writeJSON(w, http.StatusOK, orderResponse{Message: "ok", Status: http.StatusOK, Order: out})
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	order, err := h.Orders.Get(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if user, ok := userFrom(ctx); ok && order.UserID != user.ID {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{Message: "ok", Status: http.StatusOK, Order: order})
}

func orderFieldErrors(req market.OrderRequest) map[string][]string {
	fields := map[string][]string{}
	if req.ProductID == "" {
		fields["product_id"] = append(fields["product_id"], "required")
	}
	if req.Amount <= 0 {
		fields["amount"] = append(fields["amount"], "must be positive")
	}
	if req.TransactionID == "" {
		fields["transaction_id"] = append(fields["transaction_id"], "required")
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
