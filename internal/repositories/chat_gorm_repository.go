package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"tienda/internal/models"
)

// GORMChatRepository is a GORM implementation of ChatRepository.
type GORMChatRepository struct {
	db *gorm.DB
}

// NewGORMChatRepository creates a new instance of GORMChatRepository.
func NewGORMChatRepository(db *gorm.DB) *GORMChatRepository {
	return &GORMChatRepository{
		db: db,
	}
}

// SaveMessage persists a chat message and returns it with its assigned ID.
func (r *GORMChatRepository) SaveMessage(message *models.ChatMessage) (*models.ChatMessage, error) {
	if err := r.db.Create(message).Error; err != nil {
		return nil, fmt.Errorf("failed to save chat message: %w", err)
	}
	return message, nil
}

// GetSessionHistory returns a session's messages oldest first. A positive
// limit keeps only the last `limit` entries.
func (r *GORMChatRepository) GetSessionHistory(sessionID string, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.
		Where("session_id = ?", sessionID).
		Order("timestamp asc, id asc").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get session history for %s: %w", sessionID, err)
	}
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

// DeleteSessionHistory removes every message of a session and returns how
// many were deleted. Deleting an empty session is not an error.
func (r *GORMChatRepository) DeleteSessionHistory(sessionID string) (int64, error) {
	res := r.db.Where("session_id = ?", sessionID).Delete(&models.ChatMessage{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete session history for %s: %w", sessionID, res.Error)
	}
	return res.RowsAffected, nil
}

// GetRecentMessages returns the most recent `count` messages of a session in
// chronological order.
func (r *GORMChatRepository) GetRecentMessages(sessionID string, count int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.
		Where("session_id = ?", sessionID).
		Order("timestamp desc, id desc").
		Limit(count).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recent messages for %s: %w", sessionID, err)
	}
	// Fetched newest first for the limit; flip back to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
