package handlers

import (
	"log"

	"goldlegacy/internal/middleware"
	"goldlegacy/internal/services"
	"goldlegacy/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles HTTP requests for the Mercado Pago checkout flow.
type PaymentHandler struct {
	service *services.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes registers the payment routes with the Fiber app. The
// webhook is unauthenticated: Mercado Pago calls it server to server, and
// the notification is verified by fetching the payment from the API.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	payments := router.Group("/payments/mercadopago")
	payments.Get("/status", h.HandleStatus)
	payments.Post("/preference", h.HandleCreatePreference)
	payments.Post("/webhook", h.HandleWebhook)
}

// HandleStatus reports whether gateway checkout is available, so the
// storefront can hide the Mercado Pago button when it is not.
func (h *PaymentHandler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"enabled": h.service.Configured()})
}

// HandleCreatePreference creates a pending order and a gateway checkout
// preference, returning the redirect URL.
func (h *PaymentHandler) HandleCreatePreference(c *fiber.Ctx) error {
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

	result, err := h.service.CreatePreference(input, userID)
	if err != nil {
		return respondError(c, err, "Error al iniciar el pago")
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleWebhook receives payment notifications. Malformed or irrelevant
// bodies are acknowledged with 200 so the gateway stops retrying; only an
// internal failure returns 500, which triggers a retry.
func (h *PaymentHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload services.WebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Ignoring malformed webhook body: %v", err)
		return c.JSON(fiber.Map{"ok": true})
	}

	if err := h.service.HandleWebhook(payload); err != nil {
		log.Printf("Webhook processing failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error interno",
		})
	}
	return c.JSON(fiber.Map{"ok": true})
}
