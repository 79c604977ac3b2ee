package handlers

import (
	"errors"

	"github.com/spec-kit/favorite-board/internal/service"
	apperrors "github.com/spec-kit/favorite-board/pkg/util"
)

// toHTTPError maps service sentinels onto the API error shape.
func toHTTPError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrInvalidOrExpired):
		return apperrors.NewInvalidOrExpiredToken()
	case errors.Is(err, service.ErrStoreUnavailable):
		return apperrors.NewServiceUnavailable(err)
	case errors.Is(err, service.ErrTooManyRequests):
		return apperrors.NewTooManyRequests("too many login link requests; try again later")
	case errors.Is(err, service.ErrInvalidEmail):
		return apperrors.NewValidationError("a valid email address is required", nil)
	case errors.Is(err, service.ErrFavoriteIncomplete):
		return apperrors.NewValidationError("name and reason are required", nil)
	case errors.Is(err, service.ErrForbidden):
		return apperrors.NewForbidden("editor or admin role required")
	default:
		return apperrors.NewInternalError(err)
	}
}
