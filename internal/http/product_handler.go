package http

import (
	"context"
	"net/http"
	"time"

	"github.com/digitaldudes/ottcart/internal/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	catalog catalog.Reader
	timeout time.Duration
}

func NewProductHandler(products catalog.Reader, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: products,
		timeout: timeout,
	}
}

type ProductResponse struct {
	*catalog.Product
	MinPrice decimal.Decimal `json:"minPrice"`
}

type ProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

// GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.catalog.ListProducts(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}

	products := make([]ProductResponse, len(res))
	for i, p := range res {
		products[i] = ProductResponse{Product: p, MinPrice: p.MinPrice()}
	}
	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}

// GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ProductResponse{Product: p, MinPrice: p.MinPrice()})
}
