package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"tienda/internal/models"
	"tienda/internal/repositories"
)

// ChatService orchestrates a chat turn: it gathers the catalog and the
// recent conversation, calls the external generator and persists both sides
// of the exchange.
type ChatService struct {
	productRepo repositories.ProductRepository
	chatRepo    repositories.ChatRepository
	generator   Generator
	publisher   EventPublisher
}

// NewChatService creates a new ChatService. The publisher may be nil, in
// which case no events are emitted.
func NewChatService(productRepo repositories.ProductRepository, chatRepo repositories.ChatRepository, generator Generator, publisher EventPublisher) *ChatService {
	return &ChatService{
		productRepo: productRepo,
		chatRepo:    chatRepo,
		generator:   generator,
		publisher:   publisher,
	}
}

// ProcessMessage runs one complete chat turn:
//
//  1. fetch the full catalog (generation context, unfiltered)
//  2. fetch the session's last 6 messages, oldest first
//  3. render them into the prompt context
//  4. call the external generator
//  5. persist the user message
//  6. persist the assistant message
//
// If the generator fails nothing is persisted and the failure propagates. A
// persistence failure after generation propagates without rolling back the
// other write: the two messages of a turn are deliberately not wrapped in one
// transaction.
func (s *ChatService) ProcessMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error) {
	products, err := s.productRepo.GetAll()
	if err != nil {
		return nil, &models.ChatServiceError{Op: "load catalog", Err: err}
	}

	recent, err := s.chatRepo.GetRecentMessages(request.SessionID, models.DefaultContextWindow)
	if err != nil {
		return nil, &models.ChatServiceError{Op: "load history", Err: err}
	}
	contextText := models.NewChatContext(recent).FormatForPrompt()

	assistantText, err := s.generator.GenerateResponse(ctx, request.Message, products, contextText)
	if err != nil {
		return nil, &models.ChatServiceError{Op: "generate response", Err: err}
	}

	userMsg, err := models.NewChatMessage(0, request.SessionID, models.RoleUser, request.Message, time.Now().UTC())
	if err != nil {
		return nil, &models.ChatServiceError{Op: "build user message", Err: err}
	}
	if _, err := s.chatRepo.SaveMessage(userMsg); err != nil {
		return nil, &models.ChatServiceError{Op: "save user message", Err: err}
	}

	assistantMsg, err := models.NewChatMessage(0, request.SessionID, models.RoleAssistant, assistantText, time.Now().UTC())
	if err != nil {
		return nil, &models.ChatServiceError{Op: "build assistant message", Err: err}
	}
	if _, err := s.chatRepo.SaveMessage(assistantMsg); err != nil {
		return nil, &models.ChatServiceError{Op: "save assistant message", Err: err}
	}

	s.publishTurnCompleted(request.SessionID)

	return &ChatResponse{
		SessionID:        request.SessionID,
		UserMessage:      request.Message,
		AssistantMessage: assistantText,
		Timestamp:        time.Now().UTC(),
	}, nil
}

// GetSessionHistory returns a session's messages oldest first; a positive
// limit keeps only the last `limit` entries.
func (s *ChatService) GetSessionHistory(sessionID string, limit int) ([]models.ChatMessage, error) {
	return s.chatRepo.GetSessionHistory(sessionID, limit)
}

// ClearSessionHistory removes every message of a session and returns how
// many there were. An empty session yields 0, not an error.
func (s *ChatService) ClearSessionHistory(sessionID string) (int64, error) {
	return s.chatRepo.DeleteSessionHistory(sessionID)
}

// publishTurnCompleted emits a chat.turn.completed event. Publication is
// best-effort: a broker failure is logged, never surfaced to the caller.
func (s *ChatService) publishTurnCompleted(sessionID string) {
	if s.publisher == nil {
		return
	}

	event := map[string]interface{}{
		"event_id":   uuid.New().String(),
		"session_id": sessionID,
		"at":         time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal chat turn event: %v", err)
		return
	}
	if err := s.publisher.Publish("chat", "chat.turn.completed", body); err != nil {
		log.Printf("Warning: Failed to publish chat turn event for session %s: %v", sessionID, err)
	}
}
