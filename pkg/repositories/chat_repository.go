package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/balcao-digital/gestor-engine/pkg/database"
	"github.com/balcao-digital/gestor-engine/pkg/models"
)

// ChatRepository is the conversation history store: append-only turns per
// session, retrieved in chronological order. Content is never validated or
// rewritten here; bounding history for prompts is the caller's concern.
type ChatRepository interface {
	SaveMessage(ctx context.Context, message *models.ChatMessage) error
	// History returns up to limit most recent turns for the session, in
	// non-decreasing created_at order. limit <= 0 applies a default.
	History(ctx context.Context, sessionID string, limit int) ([]*models.ChatMessage, error)
}

type chatRepository struct {
	db *database.DB
}

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(db *database.DB) ChatRepository {
	return &chatRepository{db: db}
}

var _ ChatRepository = (*chatRepository)(nil)

func (r *chatRepository) SaveMessage(ctx context.Context, message *models.ChatMessage) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	message.CreatedAt = time.Now()

	query := `
		INSERT INTO chat_messages (id, session_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		message.ID, message.SessionID, message.Role, message.Content, message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save chat message: %w", err)
	}
	return nil
}

func (r *chatRepository) History(ctx context.Context, sessionID string, limit int) ([]*models.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	// Most recent N, then reversed into chronological order.
	query := `
		SELECT id, session_id, role, content, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat history: %w", err)
	}
	defer rows.Close()

	messages := make([]*models.ChatMessage, 0)
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat messages: %w", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
