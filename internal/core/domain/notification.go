package domain

import "time"

// Notification is an append-only message addressed to a user.
type Notification struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
