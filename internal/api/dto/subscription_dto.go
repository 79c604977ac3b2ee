package dto

// SubscribeRequest payload for POST /subscribe.
type SubscribeRequest struct {
	Email string `json:"email" form:"email"`
}

// SubscriptionResponse reports the resulting state.
type SubscriptionResponse struct {
	Email      string `json:"email"`
	Subscribed bool   `json:"subscribed"`
	Outcome    string `json:"outcome,omitempty"`
}
