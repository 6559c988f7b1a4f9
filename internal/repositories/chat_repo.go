package repositories

import (
	"tienda/internal/models"
)

// ChatRepository defines the interface for conversation memory access.
// All listings are returned in chronological order, oldest first.
type ChatRepository interface {
	// SaveMessage persists a message and returns the stored copy with its ID.
	SaveMessage(message *models.ChatMessage) (*models.ChatMessage, error)
	// GetSessionHistory returns a session's history; a positive limit keeps
	// only the last `limit` messages (the suffix, still chronological).
	GetSessionHistory(sessionID string, limit int) ([]models.ChatMessage, error)
	// DeleteSessionHistory removes every message of a session and returns the
	// number of messages deleted.
	DeleteSessionHistory(sessionID string) (int64, error)
	// GetRecentMessages returns at most `count` of the session's most recent
	// messages, in chronological order.
	GetRecentMessages(sessionID string, count int) ([]models.ChatMessage, error)
}
