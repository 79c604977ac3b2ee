package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/favorite-board/pkg/util"
)

// RequireAuthenticated ensures a session is present.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := SessionFromContext(c); !ok {
			return apperrors.NewUnauthorized("login required")
		}
		return c.Next()
	}
}

// RequireEditor ensures the session may change the favorite (admin or editor).
func RequireEditor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("login required")
		}
		if !session.CanEdit() {
			return apperrors.NewForbidden("editor or admin role required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the session carries the admin flag.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("login required")
		}
		if !session.IsAdmin {
			return apperrors.NewForbidden("admin role required")
		}
		return c.Next()
	}
}
