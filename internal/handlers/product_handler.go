package handlers

import (
	"goldlegacy/internal/middleware"
	"goldlegacy/internal/services"
	"goldlegacy/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service *services.CatalogService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.CatalogService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes registers the public catalog routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleList)
	router.Get("/products/:slug", h.HandleGetBySlug)
}

// RegisterAdminRoutes registers the product management routes. The caller is
// expected to pass a router that already enforces the ADMIN role.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Post("/products", h.HandleCreate)
	router.Put("/products/:id", h.HandleUpdate)
	router.Delete("/products/:id", h.HandleDelete)
}

// HandleList serves the filtered, paginated storefront catalog.
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	query := services.ProductQuery{
		Type:         c.Query("type"),
		Material:     c.Query("material"),
		CategorySlug: c.Query("category"),
		MinPrice:     c.QueryFloat("minPrice"),
		MaxPrice:     c.QueryFloat("maxPrice"),
		FeaturedOnly: c.QueryBool("featured"),
		Page:         c.QueryInt("page", 1),
		PageSize:     c.QueryInt("pageSize", 12),
	}

	page, err := h.service.ListProducts(query)
	if err != nil {
		return respondError(c, err, "Error al cargar los productos")
	}
	return c.JSON(page)
}

// HandleGetBySlug serves one product detail page.
func (h *ProductHandler) HandleGetBySlug(c *fiber.Ctx) error {
	product, err := h.service.GetProductBySlug(c.Params("slug"))
	if err != nil {
		return respondError(c, err, "Error al cargar el producto")
	}
	return c.JSON(product)
}

// HandleCreate creates a product.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	var input services.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if errs := validator.ValidateStruct(input); errs != nil {
		return respondValidation(c, errs)
	}

	admin := middleware.UserFromContext(c)
	product, err := h.service.CreateProduct(admin.ID, input)
	if err != nil {
		return respondError(c, err, "Error al crear el producto")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdate replaces a product's editable fields.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	var input services.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if errs := validator.ValidateStruct(input); errs != nil {
		return respondValidation(c, errs)
	}

	admin := middleware.UserFromContext(c)
	product, err := h.service.UpdateProduct(admin.ID, c.Params("id"), input)
	if err != nil {
		return respondError(c, err, "Error al actualizar el producto")
	}
	return c.JSON(product)
}

// HandleDelete removes a product.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	admin := middleware.UserFromContext(c)
	if err := h.service.DeleteProduct(admin.ID, c.Params("id")); err != nil {
		return respondError(c, err, "Error al eliminar el producto")
	}
	return c.JSON(fiber.Map{"ok": true})
}
