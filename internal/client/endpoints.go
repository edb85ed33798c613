package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hakimbdev/tonstoremarketspot/internal/auth"
	"github.com/hakimbdev/tonstoremarketspot/internal/market"
	"github.com/hakimbdev/tonstoremarketspot/internal/ton"
)

type productEnvelope struct {
	Message string          `json:"message"`
	Status  int             `json:"status"`
	Product json.RawMessage `json:"product"`
}

type orderEnvelope struct {
	Message string          `json:"message"`
	Status  int             `json:"status"`
	Order   json.RawMessage `json:"order"`
}

type adminEnvelope struct {
	Message string        `json:"message"`
	Token   string        `json:"token"`
	Admin   *market.Admin `json:"admin"`
}

type telegramEnvelope struct {
	Message string      `json:"message"`
	Status  int         `json:"status"`
	User    market.User `json:"user"`
	Token   string      `json:"token"`
}

// --- Products ---

func (c *Client) GetProducts(ctx context.Context, sess Session) ([]market.Product, error) {
	var env productEnvelope
	if err := c.do(ctx, http.MethodGet, "/products", &sess, nil, &env); err != nil {
		return nil, err
	}
	return decodeOneOrMany[market.Product](env.Product)
}

func (c *Client) GetProduct(ctx context.Context, sess Session, id string) (market.Product, error) {
	var env productEnvelope
	if err := c.do(ctx, http.MethodGet, "/products/"+id, &sess, nil, &env); err != nil {
		return market.Product{}, err
	}
	var p market.Product
	return p, json.Unmarshal(env.Product, &p)
}

func (c *Client) CreateProduct(ctx context.Context, sess Session, p market.Product) (market.Product, error) {
	var env productEnvelope
	if err := c.do(ctx, http.MethodPost, "/products", &sess, p, &env); err != nil {
		return market.Product{}, err
	}
	var out market.Product
	return out, json.Unmarshal(env.Product, &out)
}

func (c *Client) UpdateProduct(ctx context.Context, sess Session, p market.Product) (market.Product, error) {
	var env productEnvelope
	if err := c.do(ctx, http.MethodPut, "/products/"+p.ID, &sess, p, &env); err != nil {
		return market.Product{}, err
	}
	var out market.Product
	return out, json.Unmarshal(env.Product, &out)
}

// UpdateProductPrice sends a price-only update; every other field is
// left as stored.
func (c *Client) UpdateProductPrice(ctx context.Context, sess Session, id string, price ton.Amount) (market.Product, error) {
	var env productEnvelope
	body := map[string]ton.Amount{"price": price}
	if err := c.do(ctx, http.MethodPut, "/products/"+id, &sess, body, &env); err != nil {
		return market.Product{}, err
	}
	var out market.Product
	return out, json.Unmarshal(env.Product, &out)
}

func (c *Client) DeleteProduct(ctx context.Context, sess Session, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+id, &sess, nil, nil)
}

// --- Orders ---

func (c *Client) GetOrders(ctx context.Context, sess Session) ([]market.Order, error) {
	var env orderEnvelope
	if err := c.do(ctx, http.MethodGet, "/orders", &sess, nil, &env); err != nil {
		return nil, err
	}
	return decodeOneOrMany[market.Order](env.Order)
}

func (c *Client) GetOrder(ctx context.Context, sess Session, id string) (market.Order, error) {
	var env orderEnvelope
	if err := c.do(ctx, http.MethodGet, "/orders/"+id, &sess, nil, &env); err != nil {
		return market.Order{}, err
	}
	var o market.Order
	return o, json.Unmarshal(env.Order, &o)
}

func (c *Client) CreateOrder(ctx context.Context, sess Session, req market.OrderRequest) (market.Order, error) {
	var env orderEnvelope
	if err := c.do(ctx, http.MethodPost, "/orders", &sess, req, &env); err != nil {
		return market.Order{}, err
	}
	var o market.Order
	return o, json.Unmarshal(env.Order, &o)
}

// --- Auth ---

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) AdminLogin(ctx context.Context, email, password string) (Session, market.Admin, error) {
	var env adminEnvelope
	err := c.do(ctx, http.MethodPost, "/admin/login", nil, adminLoginRequest{Email: email, Password: password}, &env)
	if err != nil {
		return Session{}, market.Admin{}, err
	}
	if env.Token == "" || env.Admin == nil {
		return Session{}, market.Admin{}, fmt.Errorf("gateway: %s", env.Message)
	}
	return Session{Token: env.Token}, *env.Admin, nil
}

func (c *Client) AdminLogout(ctx context.Context, sess Session) error {
	return c.do(ctx, http.MethodPost, "/admin/logout", &sess, nil, nil)
}

func (c *Client) AdminUser(ctx context.Context, sess Session) (market.Admin, error) {
	var env adminEnvelope
	if err := c.do(ctx, http.MethodGet, "/admin/user", &sess, nil, &env); err != nil {
		return market.Admin{}, err
	}
	if env.Admin == nil {
		return market.Admin{}, fmt.Errorf("gateway: %s", env.Message)
	}
	return *env.Admin, nil
}

func (c *Client) TelegramLogin(ctx context.Context, req auth.TelegramAuthRequest) (Session, market.User, error) {
	var env telegramEnvelope
	if err := c.do(ctx, http.MethodPost, "/auth/telegram", nil, req, &env); err != nil {
		return Session{}, market.User{}, err
	}
	return Session{Token: env.Token}, env.User, nil
}

// decodeOneOrMany tolerates the gateway's habit of answering with a
// single object where a list is expected.
func decodeOneOrMany[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '[' {
		var many []T
		return many, json.Unmarshal(raw, &many)
	}
	var one T
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, err
	}
	return []T{one}, nil
}
