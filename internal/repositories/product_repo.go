package repositories

import (
	"tienda/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	// GetByID returns (nil, nil) when no product carries the given ID.
	GetByID(id uint) (*models.Product, error)
	GetByBrand(brand string) ([]models.Product, error)
	GetByCategory(category string) ([]models.Product, error)
	// Save upserts: a product without an ID is inserted and gets one assigned,
	// a product with an ID replaces the matching record (or is inserted as new
	// if no record matches). The stored copy is returned.
	Save(product *models.Product) (*models.Product, error)
	// Delete removes a product and reports whether a record existed.
	Delete(id uint) (bool, error)
}
