package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOrExpired covers both unknown and expired login tokens.
	ErrInvalidOrExpired = errors.New("invalid or expired token")
	// ErrStoreUnavailable wraps any credential or history store failure.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrTooManyRequests is returned when an identifier exhausted its login link budget.
	ErrTooManyRequests = errors.New("too many login link requests")
	// ErrInvalidEmail is returned for identifiers that are empty or lack an @.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrFavoriteIncomplete is returned when name or reason is blank.
	ErrFavoriteIncomplete = errors.New("name and reason are required")
	// ErrForbidden is returned when the session lacks the required role.
	ErrForbidden = errors.New("insufficient role")
)

func storeUnavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
