package api

import (
	"net/http"

	"dscommerce-be/internal/apperror"
	"dscommerce-be/internal/auth"
	"dscommerce-be/internal/category"
	"dscommerce-be/internal/logger"
	"dscommerce-be/internal/metrics"
	"dscommerce-be/internal/middleware"
	"dscommerce-be/internal/order"
	"dscommerce-be/internal/product"

	"github.com/go-chi/chi/v5"
)

// Deps are the collaborators wired into the router. Webhook and DB are
// optional.
type Deps struct {
	Categories    category.Service
	Products      product.Service
	Orders        order.Service
	Webhook       http.Handler
	Authenticator middleware.Authenticator
	Limiter       *middleware.RateLimiter
	CORSOrigin    string
	DB            Pinger
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(logger.RequestIDMiddleware)
	r.Use(middleware.Recovery)
	r.Use(metrics.Middleware)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions(d.CORSOrigin)))
	r.Use(middleware.AuthMiddleware(d.Authenticator))
	r.Use(middleware.LoggingMiddleware)
	if d.Limiter != nil {
		r.Use(d.Limiter.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperror.WriteJSON(w, r, apperror.ErrNotFound)
	})

	r.Get("/health", healthHandler(d.DB))
	r.Handle("/metrics", metrics.Handler())

	categories := &categoryHandler{svc: d.Categories}
	r.Get("/categories", categories.list)

	products := &productHandler{svc: d.Products, guard: auth.NewGuard()}
	r.Route("/products", func(r chi.Router) {
		r.Get("/", products.list)
		r.Get("/{id}", products.get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/", products.create)
			r.Put("/{id}", products.update)
			r.Delete("/{id}", products.delete)
		})
	})

	orders := &orderHandler{svc: d.Orders}
	r.Route("/orders", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/{id}", orders.get)
		r.Post("/", orders.create)
	})

	if d.Webhook != nil {
		r.Method(http.MethodPost, "/webhook/payment", d.Webhook)
	}

	return r
}
