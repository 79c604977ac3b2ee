package dto

import "time"

// AddUserRequest payload for admin user management.
type AddUserRequest struct {
	Email        string `json:"email" form:"email"`
	IsAdmin      bool   `json:"is_admin" form:"is_admin"`
	IsEditor     bool   `json:"is_editor" form:"is_editor"`
	IsSubscribed bool   `json:"is_subscribed" form:"is_subscribed"`
}

// UserResponse is a principal as shown to admins. Token material never leaves the store.
type UserResponse struct {
	Email        string    `json:"email"`
	IsAdmin      bool      `json:"is_admin"`
	IsEditor     bool      `json:"is_editor"`
	IsSubscribed bool      `json:"is_subscribed"`
	LoginPending bool      `json:"login_pending"`
	CreatedAt    time.Time `json:"created_at"`
}
