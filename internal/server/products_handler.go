package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hakimbdev/tonstoremarketspot/internal/market"
	"github.com/hakimbdev/tonstoremarketspot/internal/store"
)

type ProductStore interface {
	List(ctx context.Context) ([]market.Product, error)
	Get(ctx context.Context, id string) (market.Product, error)
	Create(ctx context.Context, p market.Product) (market.Product, error)
	Update(ctx context.Context, p market.Product) (market.Product, error)
	Delete(ctx context.Context, id string) error
}

type ProductsHandler struct {
	Products ProductStore
	Guard    Guard
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(h.Guard.RequireAny)
		r.Get("/products", h.list)
		r.Get("/products/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.Guard.RequireAdmin)
		r.Post("/products", h.create)
		r.Put("/products/{id}", h.update)
		r.Delete("/products/{id}", h.remove)
	})
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Products.List(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if ps == nil {
		ps = []market.Product{}
	}
	writeJSON(w, http.StatusOK, productResponse{Message: "ok", Status: http.StatusOK, Product: ps})
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Products.Get(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, productResponse{Message: "ok", Status: http.StatusOK, Product: p})
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var p market.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if fields := productFieldErrors(p); len(fields) > 0 {
		writeFieldErrors(w, "validation failed", fields)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	created, err := h.Products.Create(ctx, p)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, productResponse{Message: "product created", Status: http.StatusCreated, Product: created})
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	var p market.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	p.ID = chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	updated, err := h.Products.Update(ctx, p)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, productResponse{Message: "product updated", Status: http.StatusOK, Product: updated})
}

func (h *ProductsHandler) remove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.Products.Delete(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "product deleted", Status: http.StatusOK})
}

func productFieldErrors(p market.Product) map[string][]string {
	fields := map[string][]string{}
	if p.Name == "" {
		fields["name"] = append(fields["name"], "required")
	}
	if !p.Type.Valid() {
		fields["type"] = append(fields["type"], "must be one of stars, premium, username, number")
	}
	if p.Price < 0 {
		fields["price"] = append(fields["price"], "must not be negative")
	}
	if p.Meta != nil && p.Type.Valid() && p.Meta.Kind() != p.Type {
		fields["extra_data"] = append(fields["extra_data"], "does not match product type")
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
