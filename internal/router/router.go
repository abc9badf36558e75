package router

import (
	"net/http"

	"tillpoint/internal/auth"
	"tillpoint/internal/handler"
	"tillpoint/internal/middleware"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Sales      *handler.SaleHandler
	Products   *handler.ProductHandler
	Categories *handler.CategoryHandler
	Coupons    *handler.CouponHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, tokens *auth.TokenManager, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)

	protected := middleware.BearerAuth(tokens, logger)
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, protected(fn))
	}

	handle("GET /api/auth/me", h.Auth.Me)

	handle("POST /api/sales", h.Sales.Create)
	handle("GET /api/sales", h.Sales.List)
	handle("GET /api/sales/{id}", h.Sales.GetByID)

	handle("GET /api/products", h.Products.List)
	handle("POST /api/products", h.Products.Create)
	handle("GET /api/products/{id}", h.Products.GetByID)
	handle("PUT /api/products/{id}", h.Products.Update)
	handle("DELETE /api/products/{id}", h.Products.Delete)

	handle("GET /api/categories", h.Categories.List)
	handle("POST /api/categories", h.Categories.Create)
	handle("DELETE /api/categories/{id}", h.Categories.Delete)

	handle("GET /api/coupons", h.Coupons.List)
	handle("POST /api/coupons", h.Coupons.Create)
	handle("GET /api/coupons/{id}", h.Coupons.GetByID)
	handle("PUT /api/coupons/{id}", h.Coupons.Update)
	handle("DELETE /api/coupons/{id}", h.Coupons.Delete)

	// Apply middleware in order: Recovery -> Logging -> Metrics -> CORS
	var handler http.Handler = mux
	handler = middleware.CORS(handler)
	handler = middleware.Metrics(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
