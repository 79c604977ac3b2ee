package handlers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/favorite-board/internal/api/dto"
	"github.com/spec-kit/favorite-board/internal/auth"
	"github.com/spec-kit/favorite-board/internal/domain"
	"github.com/spec-kit/favorite-board/internal/service"
	apperrors "github.com/spec-kit/favorite-board/pkg/util"
)

// AuthHandler exposes the magic link login flow.
type AuthHandler struct {
	auth         *service.AuthService
	cookieSecure bool
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: authService, cookieSecure: cookieSecure}
}

// RequestMagicLink handles POST /auth/magic-link. The response is the same whether
// or not the address is known, and whether or not the mail goes out.
func (h *AuthHandler) RequestMagicLink(c *fiber.Ctx) error {
	var req dto.MagicLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !domain.ValidEmail(domain.NormalizeEmail(req.Email)) {
		return apperrors.NewValidationError("a valid email address is required", nil)
	}

	if err := h.auth.RequestMagicLink(c.UserContext(), req.Email); err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"data": fiber.Map{"message": "Check your email for the login link!"},
	})
}

// MagicLogin handles GET /auth/magic/:token.
func (h *AuthHandler) MagicLogin(c *fiber.Ctx) error {
	token, err := url.PathUnescape(c.Params("token"))
	if err != nil {
		return apperrors.NewInvalidOrExpiredToken()
	}

	principal, session, exp, err := h.auth.Login(c.UserContext(), token)
	if err != nil {
		return toHTTPError(err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookie,
		Value:    session,
		Path:     "/",
		Expires:  exp,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.SessionResponse{
				Email:    principal.Email,
				IsAdmin:  principal.IsAdmin,
				IsEditor: principal.IsEditor,
			},
			"auth": dto.AuthResponse{Token: session, ExpiresAt: exp},
		},
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}
	return c.JSON(fiber.Map{"data": dto.SessionResponse{
		Email:    session.Email,
		IsAdmin:  session.IsAdmin,
		IsEditor: session.IsEditor,
	}})
}
