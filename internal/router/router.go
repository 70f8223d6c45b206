package router

import (
	"net/http"

	"shopstream/internal/handler"
	"shopstream/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Product       *handler.ProductHandler
	Order         *handler.OrderHandler
	Cart          *handler.CartHandler
	Checkout      *handler.CheckoutHandler
	Notifications *handler.NotificationHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, apiKey string, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.HandleFunc("GET /api/products", h.Product.GetAll)
	mux.HandleFunc("GET /api/products/{id}", h.Product.GetByID)

	mux.HandleFunc("GET /api/cart", h.Cart.Get)
	mux.HandleFunc("DELETE /api/cart", h.Cart.Clear)
	mux.HandleFunc("GET /api/cart/summary", h.Cart.Summary)
	mux.HandleFunc("POST /api/cart/items", h.Cart.AddItem)
	mux.HandleFunc("PUT /api/cart/items/{id}", h.Cart.SetQuantity)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.Cart.RemoveItem)

	mux.HandleFunc("GET /api/checkout", h.Checkout.Get)
	mux.HandleFunc("PATCH /api/checkout/shipping", h.Checkout.UpdateShipping)
	mux.HandleFunc("PATCH /api/checkout/payment", h.Checkout.UpdatePayment)
	mux.HandleFunc("POST /api/checkout/promo", h.Checkout.ApplyPromo)
	mux.HandleFunc("POST /api/checkout/next", h.Checkout.Next)
	mux.HandleFunc("POST /api/checkout/back", h.Checkout.Back)
	mux.HandleFunc("POST /api/checkout/submit", h.Checkout.Submit)
	mux.HandleFunc("POST /api/checkout/reset", h.Checkout.Reset)

	mux.HandleFunc("POST /api/orders", h.Order.Create)
	mux.HandleFunc("GET /api/orders/{id}", h.Order.GetByID)

	mux.HandleFunc("GET /api/notifications", h.Notifications.List)

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS -> APIKeyAuth
	var handler http.Handler = mux
	handler = middleware.APIKeyAuth(apiKey, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
