// Package purchase coordinates the buy flow: wallet connection state,
// the transfer authorization, and the gateway order record.
package purchase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/hakimbdev/tonstoremarketspot/internal/client"
	"github.com/hakimbdev/tonstoremarketspot/internal/market"
	"github.com/hakimbdev/tonstoremarketspot/internal/ton"
	"github.com/hakimbdev/tonstoremarketspot/internal/wallet"
)

// Gateway is the slice of the SDK the coordinator needs.
type Gateway interface {
	CreateOrder(ctx context.Context, sess client.Session, req market.OrderRequest) (market.Order, error)
	GetOrders(ctx context.Context, sess client.Session) ([]market.Order, error)
}

type Status int

const (
	// StatusPurchased: transfer accepted and order recorded.
	StatusPurchased Status = iota
	// StatusConnectPrompt: wallet disconnected; the connection prompt
	// was shown and the flow stopped. Not an error, re-invoke after
	// connecting.
	StatusConnectPrompt
	// StatusAuthRequired: no gateway session. The gateway was not
	// called; the caller must authenticate first.
	StatusAuthRequired
	// StatusBusy: a purchase for this product is already in flight on
	// this session.
	StatusBusy
	// StatusRejected: the wallet declined or failed. Nothing was
	// transferred and no order exists.
	StatusRejected
	// StatusRecordFailed: the wallet accepted the transfer but the
	// order record could not be written. Payment may be on chain with
	// no matching order; the receipt in Result is the reconciliation
	// handle.
	StatusRecordFailed
)

func (s Status) String() string {
	switch s {
	case StatusPurchased:
		return "purchased"
	case StatusConnectPrompt:
		return "connect-prompt"
	case StatusAuthRequired:
		return "auth-required"
	case StatusBusy:
		return "busy"
	case StatusRejected:
		return "rejected"
	case StatusRecordFailed:
		return "record-failed"
	}
	return "unknown"
}

// Result is the outcome of one purchase invocation. Receipt is set
// whenever the transfer left the wallet, including the record-failed
// case.
type Result struct {
	Status  Status
	Order   *market.Order
	Receipt string
	Err     error
}

var ErrInFlight = errors.New("purchase already in flight for this product")

// Coordinator runs the purchase flow against one wallet session.
// Safe for concurrent use; concurrent purchases of the same product on
// the same session are refused rather than doubled.
//
// Known limitation, inherited from the gateway contract: wallet
// acceptance is treated as proof of settlement. The flow does not wait
// for ledger confirmation before recording the order.
type Coordinator struct {
	Wallet   wallet.Session
	Gateway  Gateway
	Receiver string
	Validity time.Duration
	Log      *slog.Logger

	mu        sync.Mutex
	inflight  map[string]struct{}
	purchased map[string]bool
}

func New(w wallet.Session, g Gateway, receiver string, validity time.Duration) *Coordinator {
	return &Coordinator{
		Wallet:    w,
		Gateway:   g,
		Receiver:  receiver,
		Validity:  validity,
		Log:       slog.Default(),
		inflight:  make(map[string]struct{}),
		purchased: make(map[string]bool),
	}
}

// Purchase runs the whole flow for one product. The charged amount is
// the product's current price; the gateway does not cross-check it.
func (c *Coordinator) Purchase(ctx context.Context, sess client.Session, p market.Product) Result {
	if !c.Wallet.Connected() {
		c.Wallet.RequestConnect()
		return Result{Status: StatusConnectPrompt}
	}
	if !sess.Valid() {
		// never reach the gateway without a credential
		return Result{Status: StatusAuthRequired, Err: client.ErrNoSession}
	}

	key := sess.Token + "|" + p.ID
	if !c.acquire(key) {
		return Result{Status: StatusBusy, Err: ErrInFlight}
	}
	defer c.release(key)

	intent := ton.NewIntent(c.Validity, ton.Transfer{
		Address: c.Receiver,
		Amount:  p.Price,
	})

	receipt, err := c.Wallet.SendTransaction(ctx, intent)
	if err != nil {
		// user rejection and wallet failure land here; no transfer
		// happened and no record is made
		return Result{Status: StatusRejected, Err: err}
	}

	order, err := c.Gateway.CreateOrder(ctx, sess, market.OrderRequest{
		ProductID:     p.ID,
		Amount:        p.Price,
		TransactionID: receipt.BOC,
	})
	if err != nil {
		// payment sent, record failed: distinct from full failure so a
		// support path can reconcile against the receipt
		c.Log.Error("payment sent but order recording failed",
			"product_id", p.ID, "amount", p.Price.String(), "receipt", receipt.BOC, "err", err)
		return Result{Status: StatusRecordFailed, Receipt: receipt.BOC, Err: err}
	}

	c.mu.Lock()
	c.purchased[p.ID] = true
	c.mu.Unlock()

	return Result{Status: StatusPurchased, Order: &order, Receipt: receipt.BOC}
}

// Purchased reports whether this session has seen a recorded order for
// the product.
func (c *Coordinator) Purchased(productID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.purchased[productID]
}

// RefreshPurchased reloads the purchased set from the gateway's order
// list. A missing session is reported, not silently ignored.
func (c *Coordinator) RefreshPurchased(ctx context.Context, sess client.Session) error {
	orders, err := c.Gateway.GetOrders(ctx, sess)
	if err != nil {
		return err
	}
	next := make(map[string]bool, len(orders))
	for _, o := range orders {
		next[o.ProductID] = true
	}
	c.mu.Lock()
	c.purchased = next
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) acquire(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[key]; busy {
		return false
	}
	c.inflight[key] = struct{}{}
	return true
}

func (c *Coordinator) release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, key)
}
