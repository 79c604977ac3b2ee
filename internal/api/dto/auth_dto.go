package dto

import "time"

// MagicLinkRequest asks for a login link.
type MagicLinkRequest struct {
	Email string `json:"email" form:"email"`
}

// SessionResponse describes the caller's elevated session.
type SessionResponse struct {
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
	IsEditor bool   `json:"is_editor"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
