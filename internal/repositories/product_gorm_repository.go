package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tienda/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID, or nil if it does not exist.
func (r *GORMProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// GetByBrand retrieves all products of the given brand.
func (r *GORMProductRepository) GetByBrand(brand string) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Where("brand = ?", brand).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products by brand %s: %w", brand, err)
	}
	return products, nil
}

// GetByCategory retrieves all products of the given category.
func (r *GORMProductRepository) GetByCategory(category string) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Where("category = ?", category).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products by category %s: %w", category, err)
	}
	return products, nil
}

// Save upserts a product: without an ID the record is inserted and gets one
// assigned; with an ID the matching record is replaced, or the record is
// inserted as new when nothing matches.
func (r *GORMProductRepository) Save(product *models.Product) (*models.Product, error) {
	if product.ID == 0 {
		if err := r.db.Create(product).Error; err != nil {
			return nil, fmt.Errorf("failed to create product: %w", err)
		}
		return product, nil
	}

	res := r.db.Save(product)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to save product %d: %w", product.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		// No record carried this ID; insert it as new. GORM's Save only
		// updates when the primary key is set.
		if err := r.db.Create(product).Error; err != nil {
			return nil, fmt.Errorf("failed to save product %d: %w", product.ID, err)
		}
	}
	return product, nil
}

// Delete removes a product by its ID and reports whether a record existed.
func (r *GORMProductRepository) Delete(id uint) (bool, error) {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete product %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}
