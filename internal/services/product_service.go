package services

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"

	"tienda/internal/models"
	"tienda/internal/repositories"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
}

// NewProductService creates a new ProductService. The publisher may be nil,
// in which case no events are emitted.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
	}
}

// GetAllProducts retrieves the full catalog.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &models.ProductNotFoundError{ID: id}
	}
	return product, nil
}

// SearchProducts resolves brand/category through the repository's indexed
// lookups (intersecting by ID when both are given) and then refines the
// result in memory with the remaining criteria. The repository contract only
// guarantees indexed lookup by brand and category; size, color and price are
// expected to be low-selectivity and are applied post-hoc.
func (s *ProductService) SearchProducts(filters ProductFilters) ([]models.Product, error) {
	var (
		result []models.Product
		err    error
	)

	switch {
	case filters.Brand != "" && filters.Category != "":
		var byBrand, byCategory []models.Product
		if byBrand, err = s.repo.GetByBrand(filters.Brand); err != nil {
			return nil, err
		}
		if byCategory, err = s.repo.GetByCategory(filters.Category); err != nil {
			return nil, err
		}
		brandIDs := make(map[uint]struct{}, len(byBrand))
		for _, p := range byBrand {
			brandIDs[p.ID] = struct{}{}
		}
		result = make([]models.Product, 0)
		for _, p := range byCategory {
			if _, ok := brandIDs[p.ID]; ok {
				result = append(result, p)
			}
		}
	case filters.Brand != "":
		if result, err = s.repo.GetByBrand(filters.Brand); err != nil {
			return nil, err
		}
	case filters.Category != "":
		if result, err = s.repo.GetByCategory(filters.Category); err != nil {
			return nil, err
		}
	default:
		if result, err = s.repo.GetAll(); err != nil {
			return nil, err
		}
	}

	matched := make([]models.Product, 0, len(result))
	for _, p := range result {
		if filters.Size != "" && p.Size != filters.Size {
			continue
		}
		if filters.Color != "" && p.Color != filters.Color {
			continue
		}
		if filters.MinPrice != nil && p.Price < *filters.MinPrice {
			continue
		}
		if filters.MaxPrice != nil && p.Price > *filters.MaxPrice {
			continue
		}
		matched = append(matched, p)
	}
	return matched, nil
}

// CreateProduct builds a new product from the DTO and persists it. Entity
// validation failures surface as InvalidProductDataError.
func (s *ProductService) CreateProduct(dto ProductDTO) (*models.Product, error) {
	product, err := models.NewProduct(0, dto.Name, dto.Brand, dto.Category, dto.Size, dto.Color, dto.Price, dto.Stock, dto.Description)
	if err != nil {
		return nil, &models.InvalidProductDataError{Err: err}
	}

	stored, err := s.repo.Save(product)
	if err != nil {
		return nil, err
	}

	s.publishProductCreated(stored)
	return stored, nil
}

// UpdateProduct replaces an existing product with the DTO fields. This is
// whole-record replacement, not a partial patch.
func (s *ProductService) UpdateProduct(id uint, dto ProductDTO) (*models.Product, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, &models.ProductNotFoundError{ID: id}
	}

	updated, err := models.NewProduct(id, dto.Name, dto.Brand, dto.Category, dto.Size, dto.Color, dto.Price, dto.Stock, dto.Description)
	if err != nil {
		return nil, &models.InvalidProductDataError{Err: err}
	}
	return s.repo.Save(updated)
}

// DeleteProduct removes a product by its ID.
func (s *ProductService) DeleteProduct(id uint) error {
	existed, err := s.repo.Delete(id)
	if err != nil {
		return err
	}
	if !existed {
		return &models.ProductNotFoundError{ID: id}
	}
	return nil
}

// GetAvailableProducts returns only the products with stock left.
func (s *ProductService) GetAvailableProducts() ([]models.Product, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	available := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.IsAvailable() {
			available = append(available, p)
		}
	}
	return available, nil
}

// publishProductCreated emits a product.created event. Publication is
// best-effort: a broker failure is logged, never surfaced to the caller.
func (s *ProductService) publishProductCreated(product *models.Product) {
	if s.publisher == nil {
		return
	}

	event := map[string]interface{}{
		"event_id":   uuid.New().String(),
		"product_id": product.ID,
		"name":       product.Name,
		"brand":      product.Brand,
		"price":      product.Price,
		"stock":      product.Stock,
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal product created event: %v", err)
		return
	}
	if err := s.publisher.Publish("catalog", "product.created", body); err != nil {
		log.Printf("Warning: Failed to publish product created event for product %d: %v", product.ID, err)
	}
}
