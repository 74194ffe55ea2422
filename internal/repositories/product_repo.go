package repositories

import (
	"fmt"

	"goldlegacy/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductFilter narrows and paginates catalog queries. Zero values mean
// "no constraint".
type ProductFilter struct {
	Type         models.ProductType
	Material     string
	CategoryID   string
	MinPrice     float64
	MaxPrice     float64
	FeaturedOnly bool
	Page         int
	PageSize     int
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(filter ProductFilter) ([]models.Product, int64, error)
	GetByID(id string) (*models.Product, error)
	GetBySlug(slug string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	AllSlugs() ([]string, error)
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{db: db}
}

// List returns a page of products matching the filter plus the total count.
func (r *GORMProductRepository) List(filter ProductFilter) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{})

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Material != "" {
		query = query.Where("LOWER(material) LIKE ?", "%"+toLower(filter.Material)+"%")
	}
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.MinPrice > 0 {
		query = query.Where("price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		query = query.Where("price <= ?", filter.MaxPrice)
	}
	if filter.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize, 12)

	var products []models.Product
	err := query.
		Preload("Category").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product with ID %s: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// GetBySlug retrieves a single product by its slug.
func (r *GORMProductRepository) GetBySlug(slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Category").First(&product, "slug = ?", slug).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product with slug %s: %w", slug, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get product by slug %s: %w", slug, err)
	}
	return &product, nil
}

// Create creates a new product, generating an ID when absent.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update updates an existing product.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Save(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", product.ID, gorm.ErrRecordNotFound)
	}
	return nil
}

// Delete deletes a product by its ID.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// AllSlugs returns every product slug; the bulk importer seeds its
// collision set from this.
func (r *GORMProductRepository) AllSlugs() ([]string, error) {
	var slugs []string
	if err := r.db.Model(&models.Product{}).Pluck("slug", &slugs).Error; err != nil {
		return nil, fmt.Errorf("failed to list product slugs: %w", err)
	}
	return slugs, nil
}
