package domain

import "time"

// ChatMessage is a persisted chat line. ID and CreatedAt are assigned by the store.
type ChatMessage struct {
	ID        uint      `json:"id"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Before reports whether m sorts before o in chat history: by CreatedAt, then ID.
func (m ChatMessage) Before(o ChatMessage) bool {
	if !m.CreatedAt.Equal(o.CreatedAt) {
		return m.CreatedAt.Before(o.CreatedAt)
	}
	return m.ID < o.ID
}

// EnrichedMessage is a ChatMessage joined with its author. User is nil when the
// author could not be resolved.
type EnrichedMessage struct {
	ChatMessage
	User *Author `json:"user"`
}
