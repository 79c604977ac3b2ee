package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/favorite-board/internal/api/http/handlers"
	"github.com/spec-kit/favorite-board/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Subscriptions  *handlers.SubscriptionsHandler
	Favorites      *handlers.FavoritesHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/healthz", cfg.Health.Healthz)

	app.Use(cfg.AuthMiddleware.Handle)

	authGroup := app.Group("/auth")
	authGroup.Post("/magic-link", cfg.Auth.RequestMagicLink)
	authGroup.Get("/magic/:token", cfg.Auth.MagicLogin)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/me", auth.RequireAuthenticated(), cfg.Auth.Me)

	app.Post("/subscribe", cfg.Subscriptions.Subscribe)
	app.Get("/unsubscribe/:email", cfg.Subscriptions.Unsubscribe)

	app.Get("/favorite", cfg.Favorites.Overview)
	app.Get("/history", cfg.Favorites.History)

	admin := app.Group("/admin", auth.RequireEditor())
	admin.Post("/favorite", cfg.Favorites.SetFavorite)
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Post("/users", auth.RequireAdmin(), cfg.Admin.AddUser)
	admin.Get("/metrics", cfg.Admin.Metrics)
}
