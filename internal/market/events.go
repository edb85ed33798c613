package market

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated = "OrderCreated"
	EventOrderSettled = "OrderSettled"
)

// Envelope wraps every event on the bus. CorrelationID is the order_id
// so all events for one order share a partition.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID       string `json:"order_id"`
	UserID        string `json:"user_id"`
	ProductID     string `json:"product_id"`
	AmountNano    int64  `json:"amount_nano"`
	TransactionID string `json:"transaction_id"`
}

type OrderSettledPayload struct {
	OrderID     string `json:"order_id"`
	FinalStatus string `json:"final_status"` // completed
}
