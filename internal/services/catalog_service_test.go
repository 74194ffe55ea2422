package services_test

import (
	"testing"

	"goldlegacy/internal/models"
	"goldlegacy/internal/repositories"
	"goldlegacy/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCatalogService(db *gorm.DB) *services.CatalogService {
	productRepo := repositories.NewGORMProductRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	audit := services.NewAuditService(repositories.NewGORMAuditLogRepository(db))
	return services.NewCatalogService(productRepo, categoryRepo, audit)
}

func productInput(name, slug string) services.ProductInput {
	return services.ProductInput{
		Name:        name,
		Slug:        slug,
		Description: "Pieza artesanal hecha a mano en oro",
		Price:       250000,
		Material:    "Oro 18k",
		Type:        "RING",
		Images:      []string{"https://cdn.example.com/p.jpg"},
		Stock:       5,
	}
}

func TestCatalogService_ListProducts_Filters(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db)

	ring := seedProduct(t, db, "Anillo", 250000, 5)
	chain := seedProduct(t, db, "Cadena", 480000, 3)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", chain.ID).
		Updates(map[string]any{"type": models.ProductTypeChain, "is_featured": true}).Error)

	// Type filter, case-insensitive.
	page, err := svc.ListProducts(services.ProductQuery{Type: "chain"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, chain.ID, page.Items[0].ID)

	// Price band.
	page, err = svc.ListProducts(services.ProductQuery{MinPrice: 300000})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, chain.ID, page.Items[0].ID)

	// Featured only.
	page, err = svc.ListProducts(services.ProductQuery{FeaturedOnly: true})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	// No filter returns everything with the total count.
	page, err = svc.ListProducts(services.ProductQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	_ = ring
}

func TestCatalogService_ListProducts_UnknownCategory(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db)

	seedProduct(t, db, "Anillo", 250000, 5)

	page, err := svc.ListProducts(services.ProductQuery{CategorySlug: "no-existe"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Total)
}

func TestCatalogService_CreateProduct(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db)
	adminID := uuid.New().String()

	product, err := svc.CreateProduct(adminID, productInput("Anillo Clásico", "anillo-clasico"))
	require.NoError(t, err)
	assert.NotEmpty(t, product.ID)
	assert.Equal(t, models.ProductTypeRing, product.Type)

	// Duplicate slug
	_, err = svc.CreateProduct(adminID, productInput("Otro Anillo", "anillo-clasico"))
	assert.ErrorIs(t, err, services.ErrDuplicateSlug)

	// Unknown type
	bad := productInput("Collar", "collar")
	bad.Type = "NECKLACE"
	_, err = svc.CreateProduct(adminID, bad)
	assert.ErrorIs(t, err, services.ErrInvalidProductType)

	// Unknown category
	ghost := uuid.New().String()
	bad = productInput("Dije", "dije")
	bad.CategoryID = &ghost
	_, err = svc.CreateProduct(adminID, bad)
	assert.ErrorIs(t, err, services.ErrCategoryNotFound)
}

func TestCatalogService_UpdateProduct(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db)
	adminID := uuid.New().String()

	product, err := svc.CreateProduct(adminID, productInput("Anillo Clásico", "anillo-clasico"))
	require.NoError(t, err)
	_, err = svc.CreateProduct(adminID, productInput("Cadena Fina", "cadena-fina"))
	require.NoError(t, err)

	// Keeping one's own slug is not a collision.
	input := productInput("Anillo Clásico Oro", "anillo-clasico")
	updated, err := svc.UpdateProduct(adminID, product.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "Anillo Clásico Oro", updated.Name)

	// Moving onto another product's slug is.
	input.Slug = "cadena-fina"
	_, err = svc.UpdateProduct(adminID, product.ID, input)
	assert.ErrorIs(t, err, services.ErrDuplicateSlug)

	_, err = svc.UpdateProduct(adminID, uuid.New().String(), productInput("X", "x-slug"))
	assert.ErrorIs(t, err, services.ErrProductNotFound)
}

func TestCatalogService_DeleteProduct(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db)
	adminID := uuid.New().String()

	product, err := svc.CreateProduct(adminID, productInput("Anillo Clásico", "anillo-clasico"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(adminID, product.ID))
	assert.ErrorIs(t, svc.DeleteProduct(adminID, product.ID), services.ErrProductNotFound)

	_, err = svc.GetProductBySlug("anillo-clasico")
	assert.ErrorIs(t, err, services.ErrProductNotFound)
}

func TestCatalogService_Categories(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db)
	adminID := uuid.New().String()

	anillos, err := svc.CreateCategory(adminID, services.CategoryInput{Name: "Anillos", Slug: "anillos"})
	require.NoError(t, err)
	assert.True(t, anillos.IsActive)

	inactive := false
	_, err = svc.CreateCategory(adminID, services.CategoryInput{Name: "Descontinuados", Slug: "descontinuados", IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.CreateCategory(adminID, services.CategoryInput{Name: "Más Anillos", Slug: "anillos"})
	assert.ErrorIs(t, err, services.ErrDuplicateSlug)

	// The storefront only sees active categories; the back office sees all.
	active, err := svc.ListCategories(true)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := svc.ListCategories(false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Deactivation goes through update, never deletion.
	updated, err := svc.UpdateCategory(adminID, anillos.ID, services.CategoryInput{Name: "Anillos", Slug: "anillos", IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	active, err = svc.ListCategories(true)
	require.NoError(t, err)
	assert.Empty(t, active)
}
