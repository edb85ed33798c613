package market

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/hakimbdev/tonstoremarketspot/internal/ton"
)

func TestProductWireRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		p    Product
		want string // fragment that must appear on the wire
	}{
		{
			name: "stars pack uses value",
			p:    Product{ID: "1", Name: "Telegram Stars (50)", Type: TypeStars, Price: 2 * ton.NanosPerTON, Meta: StarsPack{Stars: 50}},
			want: `"value":50`,
		},
		{
			name: "premium plan uses extra_data",
			p:    Product{ID: "4", Name: "Premium Account", Type: TypePremium, Price: 5 * ton.NanosPerTON, Meta: PremiumPlan{DurationMonths: 1}},
			want: `"extra_data":{"duration_months":1}`,
		},
		{
			name: "username claim uses extra_data",
			p:    Product{ID: "5", Name: "Rare Username", Type: TypeUsername, Price: 50 * ton.NanosPerTON, Meta: UsernameClaim{Username: "@ton_god"}},
			want: `"extra_data":{"username":"@ton_god"}`,
		},
		{
			name: "virtual number may carry nothing",
			p:    Product{ID: "6", Name: "Virtual Number", Type: TypeNumber, Price: 15 * ton.NanosPerTON, Meta: VirtualNumber{}},
			want: `"type":"number"`,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b, err := json.Marshal(c.p)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if !strings.Contains(string(b), c.want) {
				t.Fatalf("wire %s missing %s", b, c.want)
			}

			var got Product
			if err := json.Unmarshal(b, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Meta != c.p.Meta {
				t.Fatalf("meta round trip: %#v != %#v", got.Meta, c.p.Meta)
			}
			if got.Price != c.p.Price {
				t.Fatalf("price round trip: %d != %d", got.Price, c.p.Price)
			}
		})
	}
}

func TestMetaMustMatchType(t *testing.T) {
	p := Product{
		ID:    "odd",
		Name:  "Mislabeled",
		Type:  TypeStars,
		Price: 1,
		Meta:  UsernameClaim{Username: "@x"},
	}
	if err := p.Validate(); !errors.Is(err, ErrMetaMismatch) {
		t.Fatalf("err = %v, want ErrMetaMismatch", err)
	}
}

func TestUnknownTypeRejected(t *testing.T) {
	var p Product
	err := json.Unmarshal([]byte(`{"id":"z","name":"?","type":"nft","price":1}`), &p)
	if !errors.Is(err, ErrBadProductType) {
		t.Fatalf("err = %v, want ErrBadProductType", err)
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	if !CanTransition(OrderPending, OrderCompleted) {
		t.Fatal("pending -> completed must be legal")
	}
	if CanTransition(OrderCompleted, OrderPending) {
		t.Fatal("completed -> pending must be illegal")
	}
}

func TestOrderRequestValidate(t *testing.T) {
	ok := OrderRequest{UserID: "u", ProductID: "5", Amount: 50 * ton.NanosPerTON, TransactionID: "0xabc"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
	bad := ok
	bad.TransactionID = ""
	if err := bad.Validate(); err == nil {
		t.Fatal("missing transaction_id accepted")
	}
}
