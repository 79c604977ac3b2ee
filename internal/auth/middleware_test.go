package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/favorite-board/internal/domain"
	apperrors "github.com/spec-kit/favorite-board/pkg/util"
)

func newGuardedApp(tm *TokenManager) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	app.Use(NewAuthMiddleware(tm, zap.NewNop()).Handle)

	ok := func(c *fiber.Ctx) error { return c.SendString("ok") }
	app.Get("/open", func(c *fiber.Ctx) error {
		if s, found := SessionFromContext(c); found {
			return c.SendString(s.Email)
		}
		return c.SendString("anonymous")
	})
	app.Get("/me", RequireAuthenticated(), ok)
	app.Get("/edit", RequireEditor(), ok)
	app.Get("/admin", RequireAdmin(), ok)
	return app
}

func sessionToken(t *testing.T, tm *TokenManager, s domain.Session) string {
	t.Helper()
	token, _, err := tm.GenerateToken(s)
	require.NoError(t, err)
	return token
}

func TestAuthMiddlewareGuards(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	app := newGuardedApp(tm)

	viewer := sessionToken(t, tm, domain.Session{Email: "v@example.com"})
	editor := sessionToken(t, tm, domain.Session{Email: "e@example.com", IsEditor: true})
	admin := sessionToken(t, tm, domain.Session{Email: "a@example.com", IsAdmin: true})

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"anonymous me", "/me", "", http.StatusUnauthorized},
		{"viewer me", "/me", viewer, http.StatusOK},
		{"viewer edit", "/edit", viewer, http.StatusForbidden},
		{"editor edit", "/edit", editor, http.StatusOK},
		{"admin edit", "/edit", admin, http.StatusOK},
		{"editor admin", "/admin", editor, http.StatusForbidden},
		{"admin admin", "/admin", admin, http.StatusOK},
		{"garbage token", "/me", "not-a-jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAuthMiddlewareReadsCookie(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	app := newGuardedApp(tm)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sessionToken(t, tm, domain.Session{Email: "c@example.com"})})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc"))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken(""))
}
