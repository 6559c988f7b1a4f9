package repositories

import (
	"sync"

	"tienda/internal/models"
)

// MockChatRepository is an in-memory implementation of ChatRepository.
// Messages are kept per session in insertion order, which doubles as the
// chronological order for the tests.
type MockChatRepository struct {
	sessions map[string][]models.ChatMessage
	nextID   uint
	mu       sync.RWMutex
}

// NewMockChatRepository creates a new instance of MockChatRepository.
func NewMockChatRepository() *MockChatRepository {
	return &MockChatRepository{
		sessions: make(map[string][]models.ChatMessage),
		nextID:   1,
	}
}

// SaveMessage appends a message to its session and assigns an ID.
func (r *MockChatRepository) SaveMessage(message *models.ChatMessage) (*models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if message.ID == 0 {
		message.ID = r.nextID
		r.nextID++
	}
	r.sessions[message.SessionID] = append(r.sessions[message.SessionID], *message)

	stored := *message
	return &stored, nil
}

// GetSessionHistory returns a session's messages oldest first, optionally
// truncated to the last `limit` entries.
func (r *MockChatRepository) GetSessionHistory(sessionID string, limit int) ([]models.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := r.sessions[sessionID]
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]models.ChatMessage, len(history))
	copy(out, history)
	return out, nil
}

// DeleteSessionHistory removes a session's messages and returns the count.
func (r *MockChatRepository) DeleteSessionHistory(sessionID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := int64(len(r.sessions[sessionID]))
	delete(r.sessions, sessionID)
	return deleted, nil
}

// GetRecentMessages returns the last `count` messages of a session in
// chronological order.
func (r *MockChatRepository) GetRecentMessages(sessionID string, count int) ([]models.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := r.sessions[sessionID]
	if count > 0 && len(history) > count {
		history = history[len(history)-count:]
	}
	out := make([]models.ChatMessage, len(history))
	copy(out, history)
	return out, nil
}
