package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hakimbdev/tonstoremarketspot/internal/market"
	"github.com/hakimbdev/tonstoremarketspot/internal/ton"
)

type OrderRepo struct{ DB *pgxpool.Pool }

var ErrBadTransition = errors.New("illegal order status transition")

const orderCols = `o.id, o.user_id, o.product_id, o.amount_nano, o.status, o.transaction_id,
       p.name, p.type, o.created_at, o.updated_at`

func scanOrder(row pgx.Row) (market.Order, error) {
	var (
		o          market.Order
		amountNano int64
		status     int
		ref        market.ProductRef
	)
	err := row.Scan(&o.ID, &o.UserID, &o.ProductID, &amountNano, &status, &o.TransactionID,
		&ref.Name, &ref.Type, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return o, ErrNotFound
	}
	if err != nil {
		return o, err
	}
	o.Amount = ton.Amount(amountNano)
	o.Status = market.OrderStatus(status)
	o.Product = &ref
	return o, nil
}

// Create records a pending order. Creation is deliberately NOT
// idempotent on transaction_id: repeated submissions make repeated
// orders. A reused transaction reference is logged so duplicates stay
// observable for reconciliation.
func (r *OrderRepo) Create(ctx context.Context, req market.OrderRequest) (market.Order, error) {
	if err := req.Validate(); err != nil {
		return market.Order{}, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return market.Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var ref market.ProductRef
	err = tx.QueryRow(ctx, `SELECT name, type FROM products WHERE id=$1`, req.ProductID).
		Scan(&ref.Name, &ref.Type)
	if errors.Is(err, pgx.ErrNoRows) {
		return market.Order{}, fmt.Errorf("product not found: %s", req.ProductID)
	}
	if err != nil {
		return market.Order{}, err
	}

	var dups int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE transaction_id=$1`,
		req.TransactionID).Scan(&dups); err != nil {
		return market.Order{}, err
	}
	if dups > 0 {
		slog.Warn("duplicate transaction reference on order create",
			"transaction_id", req.TransactionID, "existing", dups)
	}

	now := time.Now().UTC()
	o := market.Order{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		ProductID:     req.ProductID,
		Amount:        req.Amount,
		Status:        market.OrderPending,
		TransactionID: req.TransactionID,
		Product:       &ref,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, user_id, product_id, amount_nano, status, transaction_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		o.ID, o.UserID, o.ProductID, o.Amount.Nano(), int(o.Status), o.TransactionID, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return market.Order{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return market.Order{}, err
	}
	return o, nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (market.Order, error) {
	return scanOrder(r.DB.QueryRow(ctx, `
		SELECT `+orderCols+` FROM orders o JOIN products p ON p.id=o.product_id
		WHERE o.id=$1`, id))
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]market.Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+orderCols+` FROM orders o JOIN products p ON p.id=o.product_id
		WHERE o.user_id=$1 ORDER BY o.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *OrderRepo) List(ctx context.Context) ([]market.Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+orderCols+` FROM orders o JOIN products p ON p.id=o.product_id
		ORDER BY o.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]market.Order, error) {
	var out []market.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// MarkCompleted moves a pending order to completed under a row lock.
// Re-settling an already completed order is a no-op, any other
// transition is rejected.
func (r *OrderRepo) MarkCompleted(ctx context.Context, orderID string) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status int
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, orderID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	from := market.OrderStatus(status)
	if from == market.OrderCompleted {
		return nil
	}
	if !market.CanTransition(from, market.OrderCompleted) {
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, from, market.OrderCompleted)
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=$3 WHERE id=$1`,
		orderID, int(market.OrderCompleted), time.Now().UTC()); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
