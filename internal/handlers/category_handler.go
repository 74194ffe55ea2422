package handlers

import (
	"goldlegacy/internal/middleware"
	"goldlegacy/internal/services"
	"goldlegacy/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// CategoryHandler handles HTTP requests for product categories.
type CategoryHandler struct {
	service *services.CatalogService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service *services.CatalogService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// RegisterRoutes registers the public category routes with the Fiber app.
func (h *CategoryHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/categories", h.HandleListActive)
}

// RegisterAdminRoutes registers the category management routes. Categories
// are never deleted, only deactivated, so there is no delete route.
func (h *CategoryHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/categories", h.HandleListAll)
	router.Post("/categories", h.HandleCreate)
	router.Put("/categories/:id", h.HandleUpdate)
}

// HandleListActive serves the active categories shown on the storefront.
func (h *CategoryHandler) HandleListActive(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(true)
	if err != nil {
		return respondError(c, err, "Error al cargar las categorías")
	}
	return c.JSON(categories)
}

// HandleListAll serves every category, active or not, for the back office.
func (h *CategoryHandler) HandleListAll(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(false)
	if err != nil {
		return respondError(c, err, "Error al cargar las categorías")
	}
	return c.JSON(categories)
}

// HandleCreate creates a category.
func (h *CategoryHandler) HandleCreate(c *fiber.Ctx) error {
	var input services.CategoryInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if errs := validator.ValidateStruct(input); errs != nil {
		return respondValidation(c, errs)
	}

	admin := middleware.UserFromContext(c)
	category, err := h.service.CreateCategory(admin.ID, input)
	if err != nil {
		return respondError(c, err, "Error al crear la categoría")
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleUpdate updates a category's name, slug or active flag.
func (h *CategoryHandler) HandleUpdate(c *fiber.Ctx) error {
	var input services.CategoryInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if errs := validator.ValidateStruct(input); errs != nil {
		return respondValidation(c, errs)
	}

	admin := middleware.UserFromContext(c)
	category, err := h.service.UpdateCategory(admin.ID, c.Params("id"), input)
	if err != nil {
		return respondError(c, err, "Error al actualizar la categoría")
	}
	return c.JSON(category)
}
