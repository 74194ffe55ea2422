package services

import (
	"strings"

	"goldlegacy/internal/models"
	"goldlegacy/internal/repositories"
)

// ProductQuery is the public catalog filter, as parsed from the query string.
type ProductQuery struct {
	Type         string
	Material     string
	CategorySlug string
	MinPrice     float64
	MaxPrice     float64
	FeaturedOnly bool
	Page         int
	PageSize     int
}

// ProductPage is one page of catalog results.
type ProductPage struct {
	Items    []models.Product `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

// ProductInput is the admin create/update request body.
type ProductInput struct {
	Name        string   `json:"name" validate:"required,min=2"`
	Slug        string   `json:"slug" validate:"required,min=2"`
	Description string   `json:"description" validate:"required,min=10"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Material    string   `json:"material" validate:"required,min=2"`
	Type        string   `json:"type" validate:"required"`
	Images      []string `json:"images" validate:"required,min=1,dive,url"`
	Stock       int      `json:"stock" validate:"gte=0"`
	IsFeatured  bool     `json:"isFeatured"`
	CategoryID  *string  `json:"categoryId"`
}

// CategoryInput is the admin category create/update request body.
type CategoryInput struct {
	Name     string `json:"name" validate:"required,min=1"`
	Slug     string `json:"slug" validate:"required,min=1"`
	IsActive *bool  `json:"isActive"`
}

// CatalogService serves the storefront catalog and the admin product and
// category management.
type CatalogService struct {
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	audit        *AuditService
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(productRepo repositories.ProductRepository, categoryRepo repositories.CategoryRepository, audit *AuditService) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		audit:        audit,
	}
}

// ListProducts returns a filtered, paginated catalog page. An unknown
// category slug yields an empty page, not an error.
func (s *CatalogService) ListProducts(q ProductQuery) (*ProductPage, error) {
	page, pageSize := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 12
	}

	filter := repositories.ProductFilter{
		Material:     q.Material,
		MinPrice:     q.MinPrice,
		MaxPrice:     q.MaxPrice,
		FeaturedOnly: q.FeaturedOnly,
		Page:         page,
		PageSize:     pageSize,
	}

	if q.Type != "" {
		t := models.ProductType(strings.ToUpper(q.Type))
		if models.ValidProductTypes[t] {
			filter.Type = t
		}
	}

	if q.CategorySlug != "" {
		category, err := s.categoryRepo.GetBySlug(q.CategorySlug)
		if err != nil {
			if isNotFound(err) {
				return &ProductPage{Items: []models.Product{}, Page: page, PageSize: pageSize}, nil
			}
			return nil, err
		}
		filter.CategoryID = category.ID
	}

	items, total, err := s.productRepo.List(filter)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// GetProductBySlug retrieves a single product for the detail page.
func (s *CatalogService) GetProductBySlug(slug string) (*models.Product, error) {
	product, err := s.productRepo.GetBySlug(slug)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// CreateProduct creates a product on behalf of an admin.
func (s *CatalogService) CreateProduct(adminID string, input ProductInput) (*models.Product, error) {
	product, err := s.productFromInput(input)
	if err != nil {
		return nil, err
	}

	if _, err := s.productRepo.GetBySlug(product.Slug); err == nil {
		return nil, ErrDuplicateSlug
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	s.audit.Record("PRODUCT_CREATE", &adminID, "product", &product.ID, map[string]any{
		"name": product.Name,
		"slug": product.Slug,
	})
	return product, nil
}

// UpdateProduct replaces a product's fields on behalf of an admin.
func (s *CatalogService) UpdateProduct(adminID, id string, input ProductInput) (*models.Product, error) {
	existing, err := s.productRepo.GetByID(id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	updated, err := s.productFromInput(input)
	if err != nil {
		return nil, err
	}

	if updated.Slug != existing.Slug {
		if _, err := s.productRepo.GetBySlug(updated.Slug); err == nil {
			return nil, ErrDuplicateSlug
		}
	}

	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if err := s.productRepo.Update(updated); err != nil {
		return nil, err
	}

	s.audit.Record("PRODUCT_UPDATE", &adminID, "product", &updated.ID, map[string]any{
		"name": updated.Name,
		"slug": updated.Slug,
	})
	return updated, nil
}

// DeleteProduct removes a product on behalf of an admin.
func (s *CatalogService) DeleteProduct(adminID, id string) error {
	if err := s.productRepo.Delete(id); err != nil {
		if isNotFound(err) {
			return ErrProductNotFound
		}
		return err
	}

	s.audit.Record("PRODUCT_DELETE", &adminID, "product", &id, nil)
	return nil
}

func (s *CatalogService) productFromInput(input ProductInput) (*models.Product, error) {
	t := models.ProductType(strings.ToUpper(input.Type))
	if !models.ValidProductTypes[t] {
		return nil, ErrInvalidProductType
	}

	if input.CategoryID != nil && *input.CategoryID != "" {
		if _, err := s.categoryRepo.GetByID(*input.CategoryID); err != nil {
			if isNotFound(err) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
	} else {
		input.CategoryID = nil
	}

	return &models.Product{
		Name:        strings.TrimSpace(input.Name),
		Slug:        strings.TrimSpace(input.Slug),
		Description: input.Description,
		Price:       input.Price,
		Material:    strings.TrimSpace(input.Material),
		Type:        t,
		Images:      input.Images,
		Stock:       input.Stock,
		IsFeatured:  input.IsFeatured,
		CategoryID:  input.CategoryID,
	}, nil
}

// ListCategories returns categories; the storefront passes activeOnly=true,
// the admin back-office sees everything.
func (s *CatalogService) ListCategories(activeOnly bool) ([]models.Category, error) {
	return s.categoryRepo.List(activeOnly)
}

// CreateCategory creates a category on behalf of an admin. Slugs are unique.
func (s *CatalogService) CreateCategory(adminID string, input CategoryInput) (*models.Category, error) {
	slug := strings.TrimSpace(input.Slug)
	if _, err := s.categoryRepo.GetBySlug(slug); err == nil {
		return nil, ErrDuplicateSlug
	}

	category := &models.Category{
		Name:     strings.TrimSpace(input.Name),
		Slug:     slug,
		IsActive: true,
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}

	s.audit.Record("CATEGORY_CREATE", &adminID, "category", &category.ID, map[string]any{
		"name": category.Name,
		"slug": category.Slug,
	})
	return category, nil
}

// UpdateCategory updates a category on behalf of an admin.
func (s *CatalogService) UpdateCategory(adminID, id string, input CategoryInput) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	slug := strings.TrimSpace(input.Slug)
	if slug != category.Slug {
		if _, err := s.categoryRepo.GetBySlug(slug); err == nil {
			return nil, ErrDuplicateSlug
		}
	}

	category.Name = strings.TrimSpace(input.Name)
	category.Slug = slug
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}

	s.audit.Record("CATEGORY_UPDATE", &adminID, "category", &category.ID, map[string]any{
		"name": category.Name,
		"slug": category.Slug,
	})
	return category, nil
}
