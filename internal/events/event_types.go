package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventFavoriteChanged    EventType = "favorite_changed"
	EventMagicLinkRequested EventType = "magic_link_requested"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh ID.
func NewEvent(eventType EventType, actor string, at time.Time, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: at,
		Payload:   payload,
	}
}

// FavoriteChangedPayload payload.
type FavoriteChangedPayload struct {
	FavoriteID int64  `json:"favorite_id"`
	Name       string `json:"name"`
	Reason     string `json:"reason"`
}

// MagicLinkRequestedPayload payload. The login URL is a secret and stays out of logs.
type MagicLinkRequestedPayload struct {
	Email     string    `json:"email"`
	LoginURL  string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}
