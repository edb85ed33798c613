// Package console is the operator-side product table with the
// single-outstanding-edit price flow.
package console

import (
	"context"
	"errors"
	"fmt"

	"github.com/hakimbdev/tonstoremarketspot/internal/client"
	"github.com/hakimbdev/tonstoremarketspot/internal/market"
	"github.com/hakimbdev/tonstoremarketspot/internal/ton"
)

type Gateway interface {
	GetProducts(ctx context.Context, sess client.Session) ([]market.Product, error)
	UpdateProductPrice(ctx context.Context, sess client.Session, id string, price ton.Amount) (market.Product, error)
}

// Edit is a proposed, uncommitted price change. At most one exists at
// a time; commit and discard are the only transitions out.
type Edit struct {
	ProductID string
	Price     ton.Amount
}

var ErrNoEdit = errors.New("no edit in progress")

type Console struct {
	Gateway Gateway

	sess     client.Session
	products []market.Product
	edit     *Edit
}

func New(g Gateway, sess client.Session) *Console {
	return &Console{Gateway: g, sess: sess}
}

// Refresh reloads the cached product table through the gateway.
func (c *Console) Refresh(ctx context.Context) error {
	ps, err := c.Gateway.GetProducts(ctx, c.sess)
	if err != nil {
		return err
	}
	c.products = ps
	return nil
}

func (c *Console) Products() []market.Product {
	out := make([]market.Product, len(c.products))
	copy(out, c.products)
	return out
}

// StartEdit enters edit state on a product, seeded with its current
// price. Any uncommitted edit on another product is abandoned silently,
// matching the console's historical behavior.
func (c *Console) StartEdit(productID string) error {
	p, ok := c.find(productID)
	if !ok {
		return fmt.Errorf("product not in table: %s", productID)
	}
	c.edit = &Edit{ProductID: productID, Price: p.Price}
	return nil
}

// SetPrice updates the proposed price of the edit in progress.
func (c *Console) SetPrice(price ton.Amount) error {
	if c.edit == nil {
		return ErrNoEdit
	}
	c.edit.Price = price
	return nil
}

// Edit returns a copy of the in-progress edit, if any.
func (c *Console) Edit() (Edit, bool) {
	if c.edit == nil {
		return Edit{}, false
	}
	return *c.edit, true
}

// Commit pushes the proposed price through the gateway, replaces the
// cached product, and clears edit state. On gateway rejection the edit
// stays open so the operator can correct and retry.
func (c *Console) Commit(ctx context.Context) (market.Product, error) {
	if c.edit == nil {
		return market.Product{}, ErrNoEdit
	}
	updated, err := c.Gateway.UpdateProductPrice(ctx, c.sess, c.edit.ProductID, c.edit.Price)
	if err != nil {
		return market.Product{}, err
	}
	for i := range c.products {
		if c.products[i].ID == updated.ID {
			c.products[i] = updated
			break
		}
	}
	c.edit = nil
	return updated, nil
}

// Discard drops the proposed price. The cached value is untouched and
// no call is made.
func (c *Console) Discard() {
	c.edit = nil
}

func (c *Console) find(id string) (market.Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return market.Product{}, false
}
