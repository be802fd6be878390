package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vendinglab/vending-machine/internal/users"
	"github.com/vendinglab/vending-machine/internal/vending"
)

type ProductHandler struct {
	Machine *vending.Service
	Auth    func(http.Handler) http.Handler
}

type ProductReq struct {
	Name      string `json:"name"`
	CostCents int    `json:"cost_cents"`
	Available int    `json:"available"`
}

func (h *ProductHandler) Register(r *chi.Mux) {
	r.Get("/api/products", h.listProducts)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth, RequireRole(string(users.RoleSeller)))
		r.Get("/api/products/{id}", h.getProduct)
		r.Post("/api/products", h.createProduct)
		r.Put("/api/products/{id}", h.updateProduct)
		r.Delete("/api/products/{id}", h.deleteProduct)
	})
}

func (h *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	products := h.Machine.ListProducts()
	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, FromProduct(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	product := h.Machine.GetProduct(chi.URLParam(r, "id"))
	if product == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}
	writeJSON(w, http.StatusOK, FromProduct(*product))
}

func (h *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sellerID := ClaimsFrom(r.Context()).Subject
	product := vending.NewProduct(uuid.NewString(), req.Name, req.CostCents, req.Available, sellerID)
	if err := h.Machine.LoadProduct(ctx, product); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, FromProduct(*product))
}

func (h *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.ownedByCaller(w, r, id) {
		return
	}

	var req ProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Machine.UpdateProduct(ctx, id, req.Name, req.CostCents, req.Available); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.ownedByCaller(w, r, id) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	product, err := h.Machine.UnloadProduct(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if product == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownedByCaller rejects sellers touching products they did not load.
func (h *ProductHandler) ownedByCaller(w http.ResponseWriter, r *http.Request, productID string) bool {
	product := h.Machine.GetProduct(productID)
	if product == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return false
	}
	if product.SellerID != ClaimsFrom(r.Context()).Subject {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "not the product owner"})
		return false
	}
	return true
}
