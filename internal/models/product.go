package models

import (
	"fmt"
	"strings"
)

// Product represents a product in the catalog.
// An ID of 0 means the product has not been persisted yet; the repository
// assigns the ID on save.
type Product struct {
	ID          uint    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string  `json:"name" gorm:"type:varchar(120);not null" validate:"required"`
	Brand       string  `json:"brand" gorm:"type:varchar(60)"`
	Category    string  `json:"category" gorm:"type:varchar(60)"`
	Size        string  `json:"size" gorm:"type:varchar(20)"`
	Color       string  `json:"color" gorm:"type:varchar(30)"`
	Price       float64 `json:"price" gorm:"not null" validate:"required,gt=0"`
	Stock       int     `json:"stock" gorm:"not null" validate:"gte=0"`
	Description string  `json:"description" gorm:"type:text"`
}

// NewProduct builds a Product and enforces the domain invariants:
// non-blank name, price greater than zero, non-negative stock.
func NewProduct(id uint, name, brand, category, size, color string, price float64, stock int, description string) (*Product, error) {
	p := &Product{
		ID:          id,
		Name:        name,
		Brand:       brand,
		Category:    category,
		Size:        size,
		Color:       color,
		Price:       price,
		Stock:       stock,
		Description: description,
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Product) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name must not be empty")
	}
	if p.Price <= 0 {
		return fmt.Errorf("product price must be greater than 0")
	}
	if p.Stock < 0 {
		return fmt.Errorf("product stock must not be negative")
	}
	return nil
}

// IsAvailable reports whether the product has stock left.
func (p *Product) IsAvailable() bool {
	return p.Stock > 0
}

// ReduceStock decrements stock by quantity. The quantity must be positive
// and must not exceed the current stock.
func (p *Product) ReduceStock(quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity to reduce must be positive, got %d", quantity)
	}
	if quantity > p.Stock {
		return fmt.Errorf("insufficient stock: requested %d, available %d", quantity, p.Stock)
	}
	p.Stock -= quantity
	return nil
}

// IncreaseStock increments stock by quantity. The quantity must be positive.
func (p *Product) IncreaseStock(quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity to increase must be positive, got %d", quantity)
	}
	p.Stock += quantity
	return nil
}

// TableName keeps the table name aligned with the catalog schema.
func (Product) TableName() string {
	return "products"
}
