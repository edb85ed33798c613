// Package catalog holds the client-local product list, grouped by
// category for the storefront sections.
package catalog

import (
	"context"

	"github.com/hakimbdev/tonstoremarketspot/internal/client"
	"github.com/hakimbdev/tonstoremarketspot/internal/market"
	"github.com/hakimbdev/tonstoremarketspot/internal/ton"
)

type Lister interface {
	GetProducts(ctx context.Context, sess client.Session) ([]market.Product, error)
}

type Catalog struct {
	products []market.Product
}

func New(products []market.Product) *Catalog {
	return &Catalog{products: products}
}

// Sample is the built-in demo set shown before the gateway answers.
func Sample() *Catalog {
	return New([]market.Product{
		{ID: "1", Name: "Telegram Stars (50)", Type: market.TypeStars, Price: 2 * ton.NanosPerTON, Meta: market.StarsPack{Stars: 50}},
		{ID: "2", Name: "Telegram Stars (100)", Type: market.TypeStars, Price: 3_500_000_000, Meta: market.StarsPack{Stars: 100}},
		{ID: "3", Name: "Telegram Stars (150)", Type: market.TypeStars, Price: 5 * ton.NanosPerTON, Meta: market.StarsPack{Stars: 150}},
		{ID: "4", Name: "Premium Account", Type: market.TypePremium, Price: 5 * ton.NanosPerTON, Meta: market.PremiumPlan{DurationMonths: 1}},
		{ID: "5", Name: "Rare Username", Type: market.TypeUsername, Price: 50 * ton.NanosPerTON, Meta: market.UsernameClaim{Username: "@ton_god"}},
		{ID: "6", Name: "Virtual Number", Type: market.TypeNumber, Price: 15 * ton.NanosPerTON, Meta: market.VirtualNumber{}},
	})
}

func (c *Catalog) Products() []market.Product {
	out := make([]market.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) ByType(t market.ProductType) []market.Product {
	var out []market.Product
	for _, p := range c.products {
		if p.Type == t {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) Get(id string) (market.Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return market.Product{}, false
}

// Refresh replaces the cached list with the gateway's.
func (c *Catalog) Refresh(ctx context.Context, g Lister, sess client.Session) error {
	ps, err := g.GetProducts(ctx, sess)
	if err != nil {
		return err
	}
	c.products = ps
	return nil
}
