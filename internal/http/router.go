package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	Carts       *CartHandler
	Products    *ProductHandler
	Checkout    *CheckoutHandler
	App         *AppHandler
	Logger      *slog.Logger
	Timeout     time.Duration
	ServiceName string
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", cfg.Products.List)
		r.Get("/products/{id}", cfg.Products.Get)
		r.Get("/app/version", cfg.App.Version)

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cfg.Carts.GetCart)
				r.Delete("/", cfg.Carts.ClearCart)
				r.Post("/items", cfg.Carts.AddItem)
				r.Put("/items/{id}/quantity", cfg.Carts.UpdateQuantity)
				r.Put("/items/{id}/email", cfg.Carts.UpdateEmail)
				r.Delete("/items/{id}", cfg.Carts.RemoveItem)
			})
			r.Post("/checkout", cfg.Checkout.Checkout)
		})
	})

	name := cfg.ServiceName
	if name == "" {
		name = "cart-service"
	}
	return otelhttp.NewHandler(r, name)
}
