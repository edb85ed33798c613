package catalog

import (
	"context"
	"testing"

	"github.com/hakimbdev/tonstoremarketspot/internal/client"
	"github.com/hakimbdev/tonstoremarketspot/internal/market"
	"github.com/hakimbdev/tonstoremarketspot/internal/ton"
)

func TestSampleGroupsByCategory(t *testing.T) {
	c := Sample()

	if got := len(c.ByType(market.TypeStars)); got != 3 {
		t.Fatalf("stars products = %d, want 3", got)
	}
	for _, typ := range []market.ProductType{market.TypePremium, market.TypeUsername, market.TypeNumber} {
		if got := len(c.ByType(typ)); got != 1 {
			t.Fatalf("%s products = %d, want 1", typ, got)
		}
	}

	p, ok := c.Get("5")
	if !ok {
		t.Fatal("product 5 missing")
	}
	if p.Price != 50*ton.NanosPerTON {
		t.Fatalf("price = %s TON, want 50", p.Price)
	}
	if p.Meta != (market.UsernameClaim{Username: "@ton_god"}) {
		t.Fatalf("meta = %#v", p.Meta)
	}
}

type staticLister struct{ products []market.Product }

func (s staticLister) GetProducts(ctx context.Context, sess client.Session) ([]market.Product, error) {
	return s.products, nil
}

func TestRefreshReplacesCache(t *testing.T) {
	c := Sample()
	fresh := []market.Product{{ID: "9", Name: "New Thing", Type: market.TypeNumber, Price: ton.NanosPerTON}}

	if err := c.Refresh(context.Background(), staticLister{products: fresh}, client.Session{Token: "tok"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("1"); ok {
		t.Fatal("old products must be gone after refresh")
	}
	if _, ok := c.Get("9"); !ok {
		t.Fatal("refreshed product missing")
	}
}
