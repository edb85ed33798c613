package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"

	"github.com/hakimbdev/tonstoremarketspot/internal/auth"
	"github.com/hakimbdev/tonstoremarketspot/internal/market"
	"github.com/hakimbdev/tonstoremarketspot/internal/store"
	"github.com/hakimbdev/tonstoremarketspot/internal/ton"
)

type fakeSessions struct {
	admins map[string]market.Admin
	users  map[string]market.User
}

func (f *fakeSessions) AdminFromToken(ctx context.Context, token string) (market.Admin, error) {
	if a, ok := f.admins[token]; ok {
		return a, nil
	}
	return market.Admin{}, auth.ErrSessionNotFound
}

func (f *fakeSessions) UserFromToken(ctx context.Context, token string) (market.User, error) {
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return market.User{}, auth.ErrSessionNotFound
}

type fakeProducts struct {
	byID map[string]market.Product
}

func (f *fakeProducts) List(ctx context.Context) ([]market.Product, error) {
	var out []market.Product
	for _, p := range f.byID {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProducts) Get(ctx context.Context, id string) (market.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return market.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeProducts) Create(ctx context.Context, p market.Product) (market.Product, error) {
	if p.ID == "" {
		p.ID = "new"
	}
	f.byID[p.ID] = p
	return p, nil
}

func (f *fakeProducts) Update(ctx context.Context, p market.Product) (market.Product, error) {
	cur, ok := f.byID[p.ID]
	if !ok {
		return market.Product{}, store.ErrNotFound
	}
	cur.Price = p.Price
	f.byID[p.ID] = cur
	return cur, nil
}

func (f *fakeProducts) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeOrders struct {
	created []market.OrderRequest
	fail    error
}

func (f *fakeOrders) Create(ctx context.Context, req market.OrderRequest) (market.Order, error) {
	if f.fail != nil {
		return market.Order{}, f.fail
	}
	f.created = append(f.created, req)
	return market.Order{
		ID: "o-1", UserID: req.UserID, ProductID: req.ProductID,
		Amount: req.Amount, Status: market.OrderPending, TransactionID: req.TransactionID,
	}, nil
}

func (f *fakeOrders) Get(ctx context.Context, id string) (market.Order, error) {
	return market.Order{}, store.ErrNotFound
}
func (f *fakeOrders) ListByUser(ctx context.Context, userID string) ([]market.Order, error) {
	return nil, nil
}
func (f *fakeOrders) List(ctx context.Context) ([]market.Order, error) { return nil, nil }

type fakePublisher struct{ published int }

func (f *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) { f.published++ }

func newTestServer(products *fakeProducts, orders *fakeOrders, pub *fakePublisher) http.Handler {
	guard := Guard{Sessions: &fakeSessions{
		admins: map[string]market.Admin{"admin-tok": {ID: 1, Email: "ops@example.com", Name: "Ops"}},
		users:  map[string]market.User{"user-tok": {ID: "u-1", TelegramID: "777", Username: "buyer"}},
	}}
	r := NewRouter()
	(&ProductsHandler{Products: products, Guard: guard}).Register(r)
	(&OrdersHandler{Orders: orders, Producer: pub, Guard: guard, Service: "test-api"}).Register(r)
	return r
}

func TestProductListRequiresBearerToken(t *testing.T) {
	srv := newTestServer(&fakeProducts{byID: map[string]market.Product{}}, &fakeOrders{}, &fakePublisher{})

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var e apiError
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, "missing bearer token", e.Message)
}

func TestProductListWithUserToken(t *testing.T) {
	products := &fakeProducts{byID: map[string]market.Product{
		"5": {ID: "5", Name: "Rare Username", Type: market.TypeUsername, Price: 50 * ton.NanosPerTON, Meta: market.UsernameClaim{Username: "@ton_god"}},
	}}
	srv := newTestServer(products, &fakeOrders{}, &fakePublisher{})

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Authorization", "Bearer user-tok")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"@ton_god"`)
}

func TestProductMutationsAreAdminOnly(t *testing.T) {
	products := &fakeProducts{byID: map[string]market.Product{
		"5": {ID: "5", Name: "Rare Username", Type: market.TypeUsername, Price: 50 * ton.NanosPerTON},
	}}
	srv := newTestServer(products, &fakeOrders{}, &fakePublisher{})

	body := bytes.NewBufferString(`{"price": 60}`)
	req := httptest.NewRequest(http.MethodPut, "/products/5", body)
	req.Header.Set("Authorization", "Bearer user-tok")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	body = bytes.NewBufferString(`{"price": 60}`)
	req = httptest.NewRequest(http.MethodPut, "/products/5", body)
	req.Header.Set("Authorization", "Bearer admin-tok")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ton.Amount(60*ton.NanosPerTON), products.byID["5"].Price)
}

func TestCreateOrderBindsToAuthenticatedUser(t *testing.T) {
	orders := &fakeOrders{}
	pub := &fakePublisher{}
	srv := newTestServer(&fakeProducts{byID: map[string]market.Product{}}, orders, pub)

	body := bytes.NewBufferString(`{"user_id":"someone-else","product_id":"5","amount":50,"transaction_id":"0xabc"}`)
	req := httptest.NewRequest(http.MethodPost, "/orders", body)
	req.Header.Set("Authorization", "Bearer user-tok")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	if assert.Len(t, orders.created, 1) {
		assert.Equal(t, "u-1", orders.created[0].UserID, "body user_id must be overridden")
		assert.Equal(t, "5", orders.created[0].ProductID)
		assert.Equal(t, ton.Amount(50*ton.NanosPerTON), orders.created[0].Amount)
	}
	assert.Equal(t, 1, pub.published, "order creation publishes one event")
}

func TestCreateOrderValidationErrorsPerField(t *testing.T) {
	srv := newTestServer(&fakeProducts{byID: map[string]market.Product{}}, &fakeOrders{}, &fakePublisher{})

	body := bytes.NewBufferString(`{"product_id":"","amount":0,"transaction_id":""}`)
	req := httptest.NewRequest(http.MethodPost, "/orders", body)
	req.Header.Set("Authorization", "Bearer user-tok")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var e apiError
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Contains(t, e.Errors, "product_id")
	assert.Contains(t, e.Errors, "amount")
	assert.Contains(t, e.Errors, "transaction_id")
}

func TestCreateOrderRequiresUserPrincipal(t *testing.T) {
	srv := newTestServer(&fakeProducts{byID: map[string]market.Product{}}, &fakeOrders{}, &fakePublisher{})

	body := bytes.NewBufferString(`{"product_id":"5","amount":50,"transaction_id":"0xabc"}`)
	req := httptest.NewRequest(http.MethodPost, "/orders", body)
	req.Header.Set("Authorization", "Bearer admin-tok")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

var errBoom = errors.New("boom")

func TestCreateOrderStoreFailureSurfaced(t *testing.T) {
	orders := &fakeOrders{fail: errBoom}
	pub := &fakePublisher{}
	srv := newTestServer(&fakeProducts{byID: map[string]market.Product{}}, orders, pub)

	body := bytes.NewBufferString(`{"product_id":"5","amount":50,"transaction_id":"0xabc"}`)
	req := httptest.NewRequest(http.MethodPost, "/orders", body)
	req.Header.Set("Authorization", "Bearer user-tok")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, pub.published, "no event when the record was not written")
}
