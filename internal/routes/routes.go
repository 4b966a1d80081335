package routes

import (
	"log/slog"

	"github.com/BradenHooton/marquee/internal/auth"
	"github.com/BradenHooton/marquee/internal/handlers"
	"github.com/BradenHooton/marquee/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// Handlers groups the HTTP handlers mounted under /api/v1
type Handlers struct {
	Auth   *handlers.AuthHandler
	Search *handlers.SearchHandler
	Movies *handlers.CatalogHandler
	TV     *handlers.CatalogHandler
	User   *handlers.UserHandler
}

// RegisterRoutes registers all application routes on an /api/v1 subrouter
func RegisterRoutes(
	router chi.Router,
	h Handlers,
	tokenManager *auth.TokenManager,
	users auth.UserLookup,
	rateLimitConfig middleware.RateLimitConfig,
	logger *slog.Logger,
) {
	router.Route("/api/v1", func(api chi.Router) {
		authLimit := middleware.RateLimitByIP(rateLimitConfig)

		// Public routes
		api.With(authLimit).Post("/auth/signup", h.Auth.Signup)
		api.With(authLimit).Post("/auth/login", h.Auth.Login)
		api.With(authLimit).Post("/auth/refresh-token", h.Auth.RefreshToken)
		api.Post("/auth/logout", h.Auth.Logout) // verifies its own bearer token

		h.Movies.RegisterRoutes(api)
		h.TV.RegisterRoutes(api)
		h.User.RegisterPublicRoutes(api)

		// Protected routes
		api.Group(func(r chi.Router) {
			r.Use(auth.SessionMiddleware(tokenManager, users, logger))

			r.Get("/auth/auth-check", h.Auth.AuthCheck)
			h.Search.RegisterRoutes(r)
			h.User.RegisterProtectedRoutes(r)
		})
	})
}
