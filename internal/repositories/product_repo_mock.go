package repositories

import (
	"sort"
	"sync"

	"tienda/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[uint]models.Product
	nextID   uint
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[uint]models.Product),
		nextID:   1,
	}
}

// GetAll returns all products, ordered by ID for stable listings.
func (r *MockProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	sort.Slice(productList, func(i, j int) bool { return productList[i].ID < productList[j].ID })
	return productList, nil
}

// GetByID returns a product by its ID, or nil if it does not exist.
func (r *MockProductRepository) GetByID(id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &product, nil
}

// GetByBrand returns all products of the given brand.
func (r *MockProductRepository) GetByBrand(brand string) ([]models.Product, error) {
	return r.filter(func(p models.Product) bool { return p.Brand == brand })
}

// GetByCategory returns all products of the given category.
func (r *MockProductRepository) GetByCategory(category string) ([]models.Product, error) {
	return r.filter(func(p models.Product) bool { return p.Category == category })
}

func (r *MockProductRepository) filter(keep func(models.Product) bool) ([]models.Product, error) {
	all, _ := r.GetAll()
	matched := make([]models.Product, 0)
	for _, p := range all {
		if keep(p) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// Save upserts a product, assigning an ID when it has none.
func (r *MockProductRepository) Save(product *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == 0 {
		product.ID = r.nextID
		r.nextID++
	} else if product.ID >= r.nextID {
		r.nextID = product.ID + 1
	}
	r.products[product.ID] = *product

	stored := r.products[product.ID]
	return &stored, nil
}

// Delete removes a product by its ID and reports whether it existed.
func (r *MockProductRepository) Delete(id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[id]
	if !ok {
		return false, nil
	}
	delete(r.products, id)
	return true, nil
}
