package console

import (
	"context"
	"errors"
	"testing"

	"github.com/hakimbdev/tonstoremarketspot/internal/client"
	"github.com/hakimbdev/tonstoremarketspot/internal/market"
	"github.com/hakimbdev/tonstoremarketspot/internal/ton"
)

type fakeGateway struct {
	products []market.Product
	updates  int
	fail     error
}

func (g *fakeGateway) GetProducts(ctx context.Context, sess client.Session) ([]market.Product, error) {
	return g.products, nil
}

func (g *fakeGateway) UpdateProductPrice(ctx context.Context, sess client.Session, id string, price ton.Amount) (market.Product, error) {
	g.updates++
	if g.fail != nil {
		return market.Product{}, g.fail
	}
	for _, p := range g.products {
		if p.ID == id {
			p.Price = price
			return p, nil
		}
	}
	return market.Product{}, errors.New("not found")
}

func table() []market.Product {
	return []market.Product{
		{ID: "x", Name: "Premium Account", Type: market.TypePremium, Price: 5 * ton.NanosPerTON, Meta: market.PremiumPlan{DurationMonths: 1}},
		{ID: "y", Name: "Rare Username", Type: market.TypeUsername, Price: 50 * ton.NanosPerTON, Meta: market.UsernameClaim{Username: "@ton_god"}},
	}
}

func loaded(t *testing.T, g *fakeGateway) *Console {
	t.Helper()
	c := New(g, client.Session{Token: "admin-tok"})
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	return c
}

func priceOf(t *testing.T, c *Console, id string) ton.Amount {
	t.Helper()
	for _, p := range c.Products() {
		if p.ID == id {
			return p.Price
		}
	}
	t.Fatalf("product %s not in table", id)
	return 0
}

func TestCommitUpdatesCacheAndClearsEdit(t *testing.T) {
	g := &fakeGateway{products: table()}
	c := loaded(t, g)

	if err := c.StartEdit("x"); err != nil {
		t.Fatalf("start edit: %v", err)
	}
	newPrice := ton.Amount(7 * ton.NanosPerTON)
	if err := c.SetPrice(newPrice); err != nil {
		t.Fatalf("set price: %v", err)
	}

	updated, err := c.Commit(context.Background())
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if updated.Price != newPrice {
		t.Fatalf("updated price = %s, want %s", updated.Price, newPrice)
	}
	if got := priceOf(t, c, "x"); got != newPrice {
		t.Fatalf("cached price = %s, want %s", got, newPrice)
	}
	if _, open := c.Edit(); open {
		t.Fatal("edit state must be cleared after commit")
	}
	if g.updates != 1 {
		t.Fatalf("gateway updates = %d, want 1", g.updates)
	}
}

func TestDiscardLeavesCacheUntouched(t *testing.T) {
	g := &fakeGateway{products: table()}
	c := loaded(t, g)
	before := priceOf(t, c, "x")

	_ = c.StartEdit("x")
	_ = c.SetPrice(999 * ton.NanosPerTON)
	c.Discard()

	if got := priceOf(t, c, "x"); got != before {
		t.Fatalf("cached price changed on discard: %s -> %s", before, got)
	}
	if _, open := c.Edit(); open {
		t.Fatal("edit state must be cleared after discard")
	}
	if g.updates != 0 {
		t.Fatal("discard must not call the gateway")
	}
}

func TestSecondEditSilentlyAbandonsFirst(t *testing.T) {
	g := &fakeGateway{products: table()}
	c := loaded(t, g)

	_ = c.StartEdit("x")
	_ = c.SetPrice(999 * ton.NanosPerTON)

	// entering edit on y drops x's uncommitted value with no warning
	if err := c.StartEdit("y"); err != nil {
		t.Fatalf("start second edit: %v", err)
	}
	e, open := c.Edit()
	if !open || e.ProductID != "y" {
		t.Fatalf("current edit = %+v, want product y", e)
	}
	if e.Price != priceOf(t, c, "y") {
		t.Fatalf("edit seeded with %s, want y's current price", e.Price)
	}

	if _, err := c.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got, want := priceOf(t, c, "x"), table()[0].Price; got != want {
		t.Fatalf("x's price changed although its edit was abandoned: %s", got)
	}
}

func TestCommitFailureKeepsEditOpen(t *testing.T) {
	g := &fakeGateway{products: table(), fail: errors.New("price must be positive")}
	c := loaded(t, g)

	_ = c.StartEdit("x")
	_ = c.SetPrice(0)
	if _, err := c.Commit(context.Background()); err == nil {
		t.Fatal("expected commit error")
	}
	if _, open := c.Edit(); !open {
		t.Fatal("edit should stay open after a gateway rejection")
	}
}

func TestStartEditUnknownProduct(t *testing.T) {
	c := loaded(t, &fakeGateway{products: table()})
	if err := c.StartEdit("nope"); err == nil {
		t.Fatal("expected error for unknown product")
	}
}
