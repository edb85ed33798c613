package market

import (
	"errors"
	"time"

	"github.com/hakimbdev/tonstoremarketspot/internal/ton"
)

// OrderStatus follows the gateway's numeric encoding.
type OrderStatus int

const (
	OrderPending   OrderStatus = 0
	OrderCompleted OrderStatus = 1
)

func (s OrderStatus) String() string {
	switch s {
	case OrderPending:
		return "pending"
	case OrderCompleted:
		return "completed"
	}
	return "unknown"
}

var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderPending:   {OrderCompleted: true},
	OrderCompleted: {},
}

func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// ProductRef is the denormalized product summary attached to orders
// on the wire.
type ProductRef struct {
	Name string      `json:"name"`
	Type ProductType `json:"type"`
}

// Order links a purchaser, a product, and a settlement reference.
// The status transition pending -> completed is driven by the
// settlement worker, never by the purchasing client.
type Order struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	ProductID     string      `json:"product_id"`
	Amount        ton.Amount  `json:"amount"`
	Status        OrderStatus `json:"status"`
	TransactionID string      `json:"transaction_id"`
	Product       *ProductRef `json:"product,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// OrderRequest is the create-order submission. Amount is caller-supplied
// and deliberately not checked against the product price here; the
// gateway trusts the caller (a known weakness of the upstream contract).
type OrderRequest struct {
	UserID        string     `json:"user_id"`
	ProductID     string     `json:"product_id"`
	Amount        ton.Amount `json:"amount"`
	TransactionID string     `json:"transaction_id"`
}

func (r OrderRequest) Validate() error {
	switch {
	case r.UserID == "":
		return errors.New("user_id required")
	case r.ProductID == "":
		return errors.New("product_id required")
	case r.Amount <= 0:
		return errors.New("amount must be positive")
	case r.TransactionID == "":
		return errors.New("transaction_id required")
	}
	return nil
}
