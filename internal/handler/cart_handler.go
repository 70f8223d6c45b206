package handler

import (
	"context"
	"errors"
	"net/http"

	"shopstream/internal/model"
	"shopstream/internal/pricing"
	"shopstream/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Cart is the cart store as seen by the HTTP layer.
type Cart interface {
	Lines() []model.CartLine
	TotalItemCount() int
	TotalPrice() decimal.Decimal
	Contains(productID string) bool
	AddItem(ctx context.Context, product model.Product) error
	SetQuantity(ctx context.Context, productID string, quantity int) error
	RemoveItem(ctx context.Context, productID string) error
	Clear(ctx context.Context) error
}

// CartResponse is the body of GET /api/cart.
type CartResponse struct {
	Items     []model.CartLine `json:"items"`
	ItemCount int              `json:"itemCount"`
	Subtotal  decimal.Decimal  `json:"subtotal"`
}

type addItemRequest struct {
	ProductID string `json:"productId"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// CartHandler handles cart HTTP requests.
type CartHandler struct {
	cart     Cart
	products service.ProductService
	promos   pricing.RateLookup
	logger   zerolog.Logger
}

// NewCartHandler creates a cart handler. Products are resolved through the
// product service so the cart snapshots catalogue data.
func NewCartHandler(cart Cart, products service.ProductService, promos pricing.RateLookup, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		cart:     cart,
		products: products,
		promos:   promos,
		logger:   logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.snapshot(), h.logger)
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "productId is required", h.logger)
		return
	}

	product, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, model.ErrCodeProductNotFound, "product not found", h.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to retrieve product", h.logger)
		return
	}

	if err := h.cart.AddItem(r.Context(), *product); err != nil {
		h.logger.Warn().Err(err).Str("product_id", product.ID).Msg("cart not persisted")
	}

	writeJSON(w, http.StatusOK, h.snapshot(), h.logger)
}

// SetQuantity handles PUT /api/cart/items/{id}. A quantity of zero or less
// removes the line.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")

	var req setQuantityRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.Quantity == nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "quantity is required", h.logger)
		return
	}
	if !h.cart.Contains(productID) {
		writeError(w, http.StatusNotFound, model.ErrCodeProductNotFound, "product not in cart", h.logger)
		return
	}

	if err := h.cart.SetQuantity(r.Context(), productID, *req.Quantity); err != nil {
		h.logger.Warn().Err(err).Str("product_id", productID).Msg("cart not persisted")
	}

	writeJSON(w, http.StatusOK, h.snapshot(), h.logger)
}

// RemoveItem handles DELETE /api/cart/items/{id}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")
	if err := h.cart.RemoveItem(r.Context(), productID); err != nil {
		h.logger.Warn().Err(err).Str("product_id", productID).Msg("cart not persisted")
	}
	writeJSON(w, http.StatusOK, h.snapshot(), h.logger)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("cart not persisted")
	}
	writeJSON(w, http.StatusOK, h.snapshot(), h.logger)
}

// Summary handles GET /api/cart/summary?promo=CODE.
func (h *CartHandler) Summary(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("promo")
	writeJSON(w, http.StatusOK, pricing.Calculate(h.cart.TotalPrice(), h.promos, code), h.logger)
}

func (h *CartHandler) snapshot() CartResponse {
	lines := h.cart.Lines()
	if lines == nil {
		lines = []model.CartLine{}
	}
	return CartResponse{
		Items:     lines,
		ItemCount: h.cart.TotalItemCount(),
		Subtotal:  h.cart.TotalPrice(),
	}
}
