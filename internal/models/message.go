package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is an anonymous note left in a user's inbox. No sender is recorded.
type Message struct {
	ID        uuid.UUID `json:"id"`
	UserID    int       `json:"-"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
