package routes

import (
	"github.com/davidbraun/portfolio-api/internal/handlers"
	"github.com/davidbraun/portfolio-api/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// Register registers all application routes. The contact endpoint carries its
// own limiter inside the handler; the read-only blog surface gets the shared
// per-IP middleware limit instead.
func Register(
	router chi.Router,
	contactHandler *handlers.ContactHandler,
	blogHandler *handlers.BlogHandler,
) {
	apiLimit := middleware.DefaultAPIRateLimit()

	router.Route("/api", func(r chi.Router) {
		r.Post("/contact", contactHandler.Submit)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(apiLimit))
			r.Get("/blog", blogHandler.ListPosts)
			r.Get("/blog/{slug}", blogHandler.GetPost)
		})
	})
}
