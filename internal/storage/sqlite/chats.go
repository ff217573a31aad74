package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/triplan/internal/models"
)

// CreateChatMessage appends a message to a project's chat.
func (s *SQLiteStore) CreateChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt == 0 {
		msg.CreatedAt = time.Now().UnixMilli()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO chats (id, project_id, user_email, message, created_at) VALUES (?, ?, ?, ?, ?)",
		msg.ID, msg.ProjectID, msg.User, msg.Message, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

// ListChatMessages returns a project's messages oldest first.
func (s *SQLiteStore) ListChatMessages(ctx context.Context, projectID string) ([]models.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, project_id, user_email, message, created_at FROM chats WHERE project_id = ? ORDER BY created_at, rowid",
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	messages := []models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.User, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat messages: %w", err)
	}
	return messages, nil
}
