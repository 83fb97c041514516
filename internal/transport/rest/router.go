package rest

import (
	"net/http"
	"time"

	"github.com/chunwon/market/services/recommendation-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterDeps struct {
	Cache   domain.RecommendationCache
	Handler *Handler

	RateLimitEnabled bool
	RateLimit        int
	RateLimitWindow  time.Duration
}

func NewRouter(d RouterDeps) http.Handler {
	if d.Cache == nil {
		panic("rest.NewRouter: nil cache")
	}
	if d.Handler == nil {
		panic("rest.NewRouter: nil handler")
	}

	r := chi.NewRouter()

	// Request ID + structured access log
	r.Use(RequestID)
	r.Use(HTTPLogger)

	// Panic recovery
	r.Use(middleware.Recoverer)

	// Cross-cutting
	if d.RateLimitEnabled {
		r.Use(RateLimitMiddleware(d.Cache, d.RateLimit, d.RateLimitWindow))
	}
	r.Use(SecurityHeaders)

	r.Get("/healthz", d.Handler.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/recommendations/personalized", d.Handler.Personalized)
		r.Get("/recommendations/similar/{productID}", d.Handler.Similar)
		r.Post("/interactions", d.Handler.RecordInteraction)

		// catalog collaborator surface
		r.Get("/products", d.Handler.ListProducts)
		r.Get("/products/{productID}", d.Handler.GetProduct)
		r.Post("/products/batch", d.Handler.BatchProducts)
	})

	return r
}
