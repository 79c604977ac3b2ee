package handlers

import (
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/favorite-board/internal/api/dto"
	"github.com/spec-kit/favorite-board/internal/domain"
	"github.com/spec-kit/favorite-board/internal/service"
	apperrors "github.com/spec-kit/favorite-board/pkg/util"
)

// SubscriptionsHandler manages the announcement mailing list.
type SubscriptionsHandler struct {
	service *service.SubscriptionService
}

// NewSubscriptionsHandler constructs handler.
func NewSubscriptionsHandler(subscriptions *service.SubscriptionService) *SubscriptionsHandler {
	return &SubscriptionsHandler{service: subscriptions}
}

// Subscribe POST /subscribe.
func (h *SubscriptionsHandler) Subscribe(c *fiber.Ctx) error {
	var req dto.SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	outcome, err := h.service.Subscribe(c.UserContext(), req.Email)
	if err != nil {
		return toHTTPError(err)
	}

	status := http.StatusOK
	if outcome == domain.SubscribeCreated {
		status = http.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"data": dto.SubscriptionResponse{
		Email:      domain.NormalizeEmail(req.Email),
		Subscribed: true,
		Outcome:    string(outcome),
	}})
}

// Unsubscribe GET /unsubscribe/:email. Unknown addresses get the same answer.
func (h *SubscriptionsHandler) Unsubscribe(c *fiber.Ctx) error {
	email, err := url.PathUnescape(c.Params("email"))
	if err != nil {
		return apperrors.NewValidationError("invalid email", nil)
	}
	if err := h.service.Unsubscribe(c.UserContext(), email); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(fiber.Map{"data": dto.SubscriptionResponse{
		Email:      domain.NormalizeEmail(email),
		Subscribed: false,
	}})
}
