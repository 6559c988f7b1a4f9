package models

import "fmt"

// ProductNotFoundError is returned when a product lookup, update or delete
// references an ID that does not exist in the repository.
type ProductNotFoundError struct {
	ID uint
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with ID %d not found", e.ID)
}

// InvalidProductDataError wraps an entity validation failure at the service
// boundary so callers never see the raw domain error.
type InvalidProductDataError struct {
	Err error
}

func (e *InvalidProductDataError) Error() string {
	return fmt.Sprintf("invalid product data: %v", e.Err)
}

func (e *InvalidProductDataError) Unwrap() error {
	return e.Err
}

// ChatServiceError wraps a failure of the chat turn protocol, whether it came
// from the external generator or from persisting a message.
type ChatServiceError struct {
	Op  string
	Err error
}

func (e *ChatServiceError) Error() string {
	return fmt.Sprintf("chat service: %s: %v", e.Op, e.Err)
}

func (e *ChatServiceError) Unwrap() error {
	return e.Err
}
