package models

import (
	"fmt"
	"strings"
	"time"
)

// Chat message roles. The role column is a closed set.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultContextWindow is how many recent messages a conversation context
// keeps when no explicit window is given.
const DefaultContextWindow = 6

// ChatMessage represents one message of a chat session. Messages are
// immutable once persisted; they are only ever deleted in bulk per session.
type ChatMessage struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	SessionID string    `json:"session_id" gorm:"type:varchar(100);index;not null" validate:"required"`
	Role      string    `json:"role" gorm:"type:varchar(20);not null" validate:"required,oneof=user assistant"`
	Message   string    `json:"message" gorm:"type:text;not null" validate:"required"`
	Timestamp time.Time `json:"timestamp" gorm:"not null"`
}

// NewChatMessage builds a ChatMessage and enforces the domain invariants:
// role must be "user" or "assistant", message and session id must be non-blank.
func NewChatMessage(id uint, sessionID, role, message string, timestamp time.Time) (*ChatMessage, error) {
	if role != RoleUser && role != RoleAssistant {
		return nil, fmt.Errorf("chat role must be %q or %q, got %q", RoleUser, RoleAssistant, role)
	}
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("chat message must not be empty")
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("chat session id must not be empty")
	}
	return &ChatMessage{
		ID:        id,
		SessionID: sessionID,
		Role:      role,
		Message:   message,
		Timestamp: timestamp,
	}, nil
}

// IsFromUser reports whether the message was written by the user.
func (m *ChatMessage) IsFromUser() bool {
	return m.Role == RoleUser
}

// IsFromAssistant reports whether the message was written by the assistant.
func (m *ChatMessage) IsFromAssistant() bool {
	return m.Role == RoleAssistant
}

// TableName keeps the table name aligned with the conversation memory schema.
func (ChatMessage) TableName() string {
	return "chat_memory"
}

// ChatContext is a transient view over a session's message history used to
// build the generation prompt. It is never persisted.
type ChatContext struct {
	Messages    []ChatMessage
	MaxMessages int
}

// NewChatContext builds a context over messages with the default window size.
func NewChatContext(messages []ChatMessage) ChatContext {
	return ChatContext{Messages: messages, MaxMessages: DefaultContextWindow}
}

// RecentMessages returns the last MaxMessages entries in chronological order.
// A window of 0 (or negative) means the full history.
func (c ChatContext) RecentMessages() []ChatMessage {
	if c.MaxMessages <= 0 || len(c.Messages) <= c.MaxMessages {
		return c.Messages
	}
	return c.Messages[len(c.Messages)-c.MaxMessages:]
}

// roleAliases maps localized or oddly-cased role tokens onto canonical ones.
var roleAliases = map[string]string{
	"user":      RoleUser,
	"assistant": RoleAssistant,
	"usuario":   RoleUser,
	"asistente": RoleAssistant,
}

// FormatForPrompt renders the recent window as "role: message" lines joined
// with newlines, oldest first. Unrecognized role tokens fall back to "user"
// so that formatting stays total even on malformed history rows.
func (c ChatContext) FormatForPrompt() string {
	recent := c.RecentMessages()
	if len(recent) == 0 {
		return ""
	}

	lines := make([]string, 0, len(recent))
	for _, m := range recent {
		role, ok := roleAliases[strings.ToLower(strings.TrimSpace(m.Role))]
		if !ok {
			role = RoleUser
		}
		lines = append(lines, role+": "+m.Message)
	}
	return strings.Join(lines, "\n")
}
