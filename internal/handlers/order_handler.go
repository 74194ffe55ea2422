package handlers

import (
	"goldlegacy/internal/middleware"
	"goldlegacy/internal/models"
	"goldlegacy/internal/services"
	"goldlegacy/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for order placement and management.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes registers the storefront order routes. Placement is open to
// guests; reading requires a session and is scoped per caller.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/orders", h.HandleCreate)
	router.Get("/orders", middleware.AuthRequired(), h.HandleList)
	router.Get("/orders/:id", middleware.AuthRequired(), h.HandleGet)
}

// RegisterAdminRoutes registers the order management routes.
func (h *OrderHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Patch("/orders/:id/status", h.HandleUpdateStatus)
}

// HandleCreate places an order by manual checkout. Guests may order; when a
// session exists the order is attached to the user.
func (h *OrderHandler) HandleCreate(c *fiber.Ctx) error {
	var input services.CheckoutInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if errs := validator.ValidateStruct(input); errs != nil {
		return respondValidation(c, errs)
	}

	var userID *string
	if user := middleware.UserFromContext(c); user != nil {
		userID = &user.ID
	}

	order, err := h.service.CreateOrder(input, userID)
	if err != nil {
		return respondError(c, err, "Error al crear la orden")
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleList serves the caller's orders, or every order for admins.
func (h *OrderHandler) HandleList(c *fiber.Ctx) error {
	user := middleware.UserFromContext(c)
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 20)

	orders, total, err := h.service.ListOrders(user, page, pageSize)
	if err != nil {
		return respondError(c, err, "Error al cargar las órdenes")
	}
	return c.JSON(fiber.Map{
		"items":    orders,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// HandleGet serves one order. Users may only read their own orders; admins
// may read any.
func (h *OrderHandler) HandleGet(c *fiber.Ctx) error {
	user := middleware.UserFromContext(c)

	order, err := h.service.GetOrder(c.Params("id"))
	if err != nil {
		return respondError(c, err, "Error al cargar la orden")
	}
	if user.Role != models.RoleAdmin && (order.UserID == nil || *order.UserID != user.ID) {
		return respondError(c, services.ErrOrderNotFound, "Error al cargar la orden")
	}
	return c.JSON(order)
}

// HandleUpdateStatus moves an order through its lifecycle.
func (h *OrderHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var input struct {
		Status models.OrderStatus `json:"status" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if errs := validator.ValidateStruct(input); errs != nil {
		return respondValidation(c, errs)
	}

	admin := middleware.UserFromContext(c)
	order, err := h.service.UpdateStatus(admin.ID, c.Params("id"), input.Status)
	if err != nil {
		return respondError(c, err, "Error al actualizar la orden")
	}
	return c.JSON(order)
}
