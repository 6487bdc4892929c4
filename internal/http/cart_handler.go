package http

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/digitaldudes/ottcart/internal/cartstore"
	"github.com/digitaldudes/ottcart/internal/catalog"
	"github.com/digitaldudes/ottcart/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const maxQuantity = 99

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Carts interface {
	Get(ctx context.Context, sessionID string) (*cartstore.Store, error)
}

type CartHandler struct {
	carts   Carts
	catalog catalog.Reader
	timeout time.Duration
}

func NewCartHandler(carts Carts, products catalog.Reader, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: products,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID     string `json:"productId"`
	ProfileID     string `json:"profileId"`
	PricingIndex  int    `json:"pricingIndex"`
	CustomerEmail string `json:"customerEmail"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type UpdateEmailRequestDTO struct {
	CustomerEmail string `json:"customerEmail"`
}

type CartResponse struct {
	Items          []domain.LineItem `json:"items"`
	Total          decimal.Decimal   `json:"total"`
	FormattedTotal string            `json:"formattedTotal"`
	ItemCount      int               `json:"itemCount"`
}

func newCartResponse(cart domain.Cart) CartResponse {
	items := cart.Items
	if items == nil {
		items = []domain.LineItem{}
	}
	total := cart.Total()
	return CartResponse{
		Items:          items,
		Total:          total,
		FormattedTotal: domain.FormatINR(total),
		ItemCount:      cart.ItemCount(),
	}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(store.Snapshot()))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}
	if req.ProfileID == "" {
		respondError(w, http.StatusBadRequest, "invalid_profile", "profileId is required")
		return
	}

	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	item, err := catalog.Selection(product, req.ProfileID, req.PricingIndex)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if item.RequiresEmail() {
		if !emailPattern.MatchString(req.CustomerEmail) {
			respondError(w, http.StatusBadRequest, "invalid_email",
				"a valid customerEmail is required for this profile")
			return
		}
		item.CustomerEmail = req.CustomerEmail
	}

	store, ok := h.store(w, r)
	if !ok {
		return
	}
	if existing, found := store.Snapshot().Find(item.ID); found && existing.Quantity >= maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}
	respondJSON(w, http.StatusCreated, newCartResponse(store.AddItemUpTo(ctx, item, maxQuantity)))
}

// PUT /api/v1/cart/items/{id}/quantity
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return
	}
	if *req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	store, ok := h.store(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(store.SetQuantity(r.Context(), id, *req.Quantity)))
}

// PUT /api/v1/cart/items/{id}/email
func (h *CartHandler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateEmailRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if !emailPattern.MatchString(req.CustomerEmail) {
		respondError(w, http.StatusBadRequest, "invalid_email", "customerEmail is not a valid email address")
		return
	}

	store, ok := h.store(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(store.SetEmail(r.Context(), id, req.CustomerEmail)))
}

// DELETE /api/v1/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(store.RemoveItem(r.Context(), chi.URLParam(r, "id"))))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(store.Clear(r.Context())))
}

func (h *CartHandler) store(w http.ResponseWriter, r *http.Request) (*cartstore.Store, bool) {
	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "X-Session-ID header is required")
		return nil, false
	}

	store, err := h.carts.Get(r.Context(), sessionID)
	if err != nil {
		respondErrorDetails(w, http.StatusServiceUnavailable, "storage_unavailable",
			"cart storage is unavailable", err.Error())
		return nil, false
	}
	return store, true
}
