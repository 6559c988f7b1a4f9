package services

import (
	"context"

	"tienda/internal/models"
)

// Generator is the external assistant the chat service calls to produce a
// reply. Implementations talk to a remote provider, so the call takes a
// context and is where timeouts belong. Any failure is treated uniformly as
// a failed turn.
type Generator interface {
	GenerateResponse(ctx context.Context, userMessage string, products []models.Product, contextText string) (string, error)
}

// EventPublisher publishes domain events to a message broker. A nil
// publisher is tolerated by the services: event publication is best-effort
// and never fails a request.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}
