package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tienda/internal/models"
	"tienda/internal/services"
)

// defaultHistoryLimit bounds GET /chat/history responses when the caller
// gives no limit.
const defaultHistoryLimit = 10

// ChatHandler handles HTTP requests for the conversational assistant.
type ChatHandler struct {
	service  *services.ChatService
	validate *validator.Validate
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the chat routes with the Fiber app.
func (h *ChatHandler) RegisterRoutes(router fiber.Router) {
	chatRoutes := router.Group("/chat")
	chatRoutes.Post("/", h.HandleChat)
	chatRoutes.Post("/session", h.HandleNewSession)
	chatRoutes.Get("/history/:session_id", h.HandleGetHistory)
	chatRoutes.Delete("/history/:session_id", h.HandleClearHistory)
}

// HandleChat runs one chat turn.
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var req services.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing chat request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErrorMessages(err),
		})
	}
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "session_id and message must not be blank",
		})
	}

	response, err := h.service.ProcessMessage(c.Context(), req)
	if err != nil {
		log.Printf("Error processing chat message for session %s: %v", req.SessionID, err)
		var chatErr *models.ChatServiceError
		if errors.As(err, &chatErr) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not process chat message",
				"error":   chatErr.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not process chat message",
			"error":   err.Error(),
		})
	}
	return c.JSON(response)
}

// HandleNewSession mints a fresh session ID for a new conversation.
func (h *ChatHandler) HandleNewSession(c *fiber.Ctx) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session_id": uuid.New().String(),
	})
}

// HandleGetHistory returns a session's recent messages, oldest first.
func (h *ChatHandler) HandleGetHistory(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	limit := c.QueryInt("limit", defaultHistoryLimit)

	history, err := h.service.GetSessionHistory(sessionID, limit)
	if err != nil {
		log.Printf("Error getting history for session %s: %v", sessionID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve chat history",
			"error":   err.Error(),
		})
	}

	entries := make([]services.ChatHistoryEntry, 0, len(history))
	for _, m := range history {
		entries = append(entries, services.ChatHistoryEntry{
			ID:        m.ID,
			Role:      m.Role,
			Message:   m.Message,
			Timestamp: m.Timestamp,
		})
	}
	return c.JSON(entries)
}

// HandleClearHistory deletes all messages of a session.
func (h *ChatHandler) HandleClearHistory(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")

	deleted, err := h.service.ClearSessionHistory(sessionID)
	if err != nil {
		log.Printf("Error clearing history for session %s: %v", sessionID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not clear chat history",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"deleted": deleted,
	})
}
