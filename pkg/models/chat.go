package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatRole identifies who produced a conversation turn.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one immutable turn in a session's conversation history.
// Turns are append-only; retrieval is ordered by CreatedAt ascending.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	SessionID string    `json:"session_id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
