package domain

import (
	"strings"
	"time"
)

// Principal is a board member keyed by a normalized email address.
type Principal struct {
	Email          string
	IsAdmin        bool
	IsEditor       bool
	IsSubscribed   bool
	TokenDigest    *string
	TokenExpiresAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewPrincipal returns a record carrying the default flags for a first-time email.
func NewPrincipal(email string) *Principal {
	return &Principal{Email: NormalizeEmail(email), IsSubscribed: true}
}

// CanEdit reports whether the principal may change the announced favorite.
func (p *Principal) CanEdit() bool {
	return p != nil && (p.IsAdmin || p.IsEditor)
}

// HasPendingToken reports whether a token is stored and has not yet expired at now.
func (p *Principal) HasPendingToken(now time.Time) bool {
	return p != nil && p.TokenDigest != nil && p.TokenExpiresAt != nil && p.TokenExpiresAt.After(now)
}

// NormalizeEmail trims and lower-cases an identifier.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail is the loose shape check applied at the request layer.
func ValidEmail(email string) bool {
	return email != "" && strings.Contains(email, "@")
}

// SubscribeOutcome describes what a subscribe request changed.
type SubscribeOutcome string

const (
	SubscribeCreated       SubscribeOutcome = "CREATED"
	SubscribeResubscribed  SubscribeOutcome = "RESUBSCRIBED"
	SubscribeAlreadyActive SubscribeOutcome = "ALREADY_ACTIVE"
)
