// Package events defines the payloads the dashboard publishes.
package events

import "time"

// UserUpdatedType is the outbox event type for UserUpdated.
const UserUpdatedType = "user.updated"

// UserUpdated is emitted after a user record was replaced through the dashboard.
type UserUpdated struct {
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Team       string    `json:"team"`
	UpdatedBy  string    `json:"updated_by,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
