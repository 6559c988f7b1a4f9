package services

import "time"

// ProductDTO carries product fields across the service boundary. The
// validate tags re-assert the domain constraints independently of entity
// validation so a malformed payload never reaches entity construction.
type ProductDTO struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name" validate:"required"`
	Brand       string  `json:"brand"`
	Category    string  `json:"category"`
	Size        string  `json:"size"`
	Color       string  `json:"color"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Description string  `json:"description"`
}

// ProductFilters holds the optional search criteria. Brand and category are
// resolved through the repository's indexed lookups; the remaining fields are
// refined in memory. Nil price bounds impose no restriction.
type ProductFilters struct {
	Brand    string
	Category string
	Size     string
	Color    string
	MinPrice *float64
	MaxPrice *float64
}

// ChatRequest is the inbound payload of a chat turn.
type ChatRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

// ChatResponse is the outbound payload of a completed chat turn.
type ChatResponse struct {
	SessionID        string    `json:"session_id"`
	UserMessage      string    `json:"user_message"`
	AssistantMessage string    `json:"assistant_message"`
	Timestamp        time.Time `json:"timestamp"`
}

// ChatHistoryEntry is one message of a session's history as exposed upward.
type ChatHistoryEntry struct {
	ID        uint      `json:"id"`
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
