// Package client is the typed SDK over the gateway's authenticated
// JSON API. Sessions are explicit values passed per call; there is no
// ambient token storage, and a call with an empty session fails before
// any request is sent.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrNoSession marks a caller error: the operation needs a bearer
// credential and none is present. The caller should route to its
// authentication entry point, not retry.
var ErrNoSession = errors.New("no session token; authenticate first")

// Session is an authenticated principal's bearer credential.
type Session struct {
	Token string
}

func (s Session) Valid() bool { return s.Token != "" }

// APIError is a gateway rejection, surfaced verbatim: a message and,
// for validation failures, per-field errors.
type APIError struct {
	StatusCode int
	Message    string              `json:"message"`
	Fields     map[string][]string `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("gateway: %s (http %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("gateway: %s (http %d, %d field errors)", e.Message, e.StatusCode, len(e.Fields))
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// do issues one call. A nil session means the endpoint is public;
// otherwise the session must carry a token.
func (c *Client) do(ctx context.Context, method, path string, sess *Session, body, out any) error {
	if sess != nil && !sess.Valid() {
		return ErrNoSession
	}

	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if sess != nil {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
