package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hakimbdev/tonstoremarketspot/internal/auth"
	"github.com/hakimbdev/tonstoremarketspot/internal/market"
)

// Authenticator is the login/logout surface of the auth service.
type Authenticator interface {
	AdminLogin(ctx context.Context, email, password string) (string, market.Admin, error)
	AdminLogout(ctx context.Context, token string) error
	TelegramLogin(ctx context.Context, req auth.TelegramAuthRequest) (string, market.User, error)
}

type AdminHandler struct {
	Auth  Authenticator
	Guard Guard
}

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AdminHandler) Register(r *chi.Mux) {
	r.Post("/admin/login", h.login)
	r.Post("/auth/telegram", h.telegramLogin)
	r.Group(func(r chi.Router) {
		r.Use(h.Guard.RequireAdmin)
		r.Post("/admin/logout", h.logout)
		r.Get("/admin/user", h.me)
	})
}

func (h *AdminHandler) login(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	token, admin, err := h.Auth.AdminLogin(ctx, req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		// message-only body on failure, no field errors
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, adminResponse{Message: "login successful", Token: token, Admin: &admin})
}

func (h *AdminHandler) logout(w http.ResponseWriter, r *http.Request) {
	admin, _ := adminFrom(r.Context())
	if err := h.Auth.AdminLogout(r.Context(), bearerToken(r)); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, adminResponse{Message: "logged out", Admin: &admin})
}

func (h *AdminHandler) me(w http.ResponseWriter, r *http.Request) {
	admin, _ := adminFrom(r.Context())
	writeJSON(w, http.StatusOK, adminResponse{Message: "ok", Admin: &admin})
}

func (h *AdminHandler) telegramLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.TelegramAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	token, user, err := h.Auth.TelegramLogin(ctx, req)
	if errors.Is(err, auth.ErrBadTelegramHash) || errors.Is(err, auth.ErrStaleAuth) {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Message: "login successful", Status: http.StatusOK, User: user, Token: token})
}
