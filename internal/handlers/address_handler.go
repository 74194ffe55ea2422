package handlers

import (
	"goldlegacy/internal/middleware"
	"goldlegacy/internal/services"
	"goldlegacy/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// AddressHandler handles HTTP requests for saved shipping addresses.
type AddressHandler struct {
	service *services.AddressService
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(service *services.AddressService) *AddressHandler {
	return &AddressHandler{service: service}
}

// RegisterRoutes registers the address routes. Every route requires a
// session.
func (h *AddressHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/user/addresses", middleware.AuthRequired(), h.HandleList)
	router.Post("/user/addresses", middleware.AuthRequired(), h.HandleCreate)
	router.Delete("/user/addresses/:id", middleware.AuthRequired(), h.HandleDelete)
}

// HandleList serves the caller's saved addresses.
func (h *AddressHandler) HandleList(c *fiber.Ctx) error {
	user := middleware.UserFromContext(c)
	addresses, err := h.service.List(user.ID)
	if err != nil {
		return respondError(c, err, "Error al cargar las direcciones")
	}
	return c.JSON(addresses)
}

// HandleCreate saves an address for the caller.
func (h *AddressHandler) HandleCreate(c *fiber.Ctx) error {
	var input services.AddressInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if errs := validator.ValidateStruct(input); errs != nil {
		return respondValidation(c, errs)
	}

	user := middleware.UserFromContext(c)
	address, err := h.service.Create(user.ID, input)
	if err != nil {
		return respondError(c, err, "Error al guardar la dirección")
	}
	return c.Status(fiber.StatusCreated).JSON(address)
}

// HandleDelete removes one of the caller's addresses. Addresses belonging
// to other users are indistinguishable from missing ones.
func (h *AddressHandler) HandleDelete(c *fiber.Ctx) error {
	user := middleware.UserFromContext(c)
	if err := h.service.Delete(user.ID, c.Params("id")); err != nil {
		return respondError(c, err, "Error al eliminar la dirección")
	}
	return c.JSON(fiber.Map{"ok": true})
}
