package server

import (
	"encoding/json"
	"net/http"

	"github.com/hakimbdev/tonstoremarketspot/internal/market"
)

// Response envelopes match the legacy gateway wire format: a message,
// a numeric status, and the resource under its own key.

type productResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Product any    `json:"product"`
}

type orderResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Order   any    `json:"order"`
}

type adminResponse struct {
	Message string        `json:"message"`
	Token   string        `json:"token,omitempty"`
	Admin   *market.Admin `json:"admin,omitempty"`
}

type authResponse struct {
	Message string      `json:"message"`
	Status  int         `json:"status"`
	User    market.User `json:"user"`
	Token   string      `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// apiError carries the gateway rejection shape: a message and, for
// validation failures, a per-field error list. Handlers surface it
// verbatim, no retries, no local cleanup.
type apiError struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, apiError{Message: msg})
}

func writeFieldErrors(w http.ResponseWriter, msg string, fields map[string][]string) {
	writeJSON(w, http.StatusUnprocessableEntity, apiError{Message: msg, Errors: fields})
}
