package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/favorite-board/internal/api/dto"
	"github.com/spec-kit/favorite-board/internal/domain"
	"github.com/spec-kit/favorite-board/internal/observability"
	"github.com/spec-kit/favorite-board/internal/service"
	apperrors "github.com/spec-kit/favorite-board/pkg/util"
)

// AdminHandler exposes user management and counters to privileged sessions.
type AdminHandler struct {
	users   *service.UserService
	metrics *observability.Metrics
}

// NewAdminHandler constructs handler.
func NewAdminHandler(users *service.UserService, metrics *observability.Metrics) *AdminHandler {
	return &AdminHandler{users: users, metrics: metrics}
}

// ListUsers GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	principals, err := h.users.ListUsers(c.UserContext())
	if err != nil {
		return toHTTPError(err)
	}
	items := make([]dto.UserResponse, 0, len(principals))
	for _, p := range principals {
		items = append(items, userResponse(p))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddUser POST /admin/users.
func (h *AdminHandler) AddUser(c *fiber.Ctx) error {
	var req dto.AddUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	principal, err := h.users.AddUser(c.UserContext(), service.UserInput{
		Email:        req.Email,
		IsAdmin:      req.IsAdmin,
		IsEditor:     req.IsEditor,
		IsSubscribed: req.IsSubscribed,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": userResponse(principal)})
}

// Metrics GET /admin/metrics.
func (h *AdminHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}

func userResponse(p *domain.Principal) dto.UserResponse {
	return dto.UserResponse{
		Email:        p.Email,
		IsAdmin:      p.IsAdmin,
		IsEditor:     p.IsEditor,
		IsSubscribed: p.IsSubscribed,
		LoginPending: p.TokenDigest != nil,
		CreatedAt:    p.CreatedAt,
	}
}
