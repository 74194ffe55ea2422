package handlers

import (
	"errors"
	"log"

	"goldlegacy/internal/services"
	"goldlegacy/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

type domainError struct {
	status  int
	code    string
	message string
}

// Domain errors map to 4xx with a stable code and a human-readable message;
// anything unmapped is an infrastructure failure and becomes a generic 500.
var domainErrors = map[error]domainError{
	services.ErrProductNotFound:    {fiber.StatusBadRequest, "PRODUCT_NOT_FOUND", "Uno o más productos no existen"},
	services.ErrInsufficientStock:  {fiber.StatusBadRequest, "INSUFFICIENT_STOCK", "No hay stock suficiente para algún producto"},
	services.ErrEmptyItems:         {fiber.StatusBadRequest, "EMPTY_ITEMS", "Agrega al menos un producto"},
	services.ErrQuantityInvalid:    {fiber.StatusBadRequest, "INVALID_QUANTITY", "La cantidad debe ser al menos 1"},
	services.ErrInvalidStatus:      {fiber.StatusBadRequest, "INVALID_STATUS", "Estado de orden inválido"},
	services.ErrInvalidProductType: {fiber.StatusBadRequest, "INVALID_TYPE", "Tipo de producto inválido"},
	services.ErrDuplicateSlug:      {fiber.StatusBadRequest, "DUPLICATE_SLUG", "Ya existe un registro con ese slug"},
	services.ErrLastAdmin:          {fiber.StatusBadRequest, "LAST_ADMIN", "No se puede quitar el último administrador"},
	services.ErrEmailTaken:         {fiber.StatusConflict, "EMAIL_TAKEN", "Ya existe una cuenta con este email"},
	services.ErrInvalidCredentials: {fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "Credenciales inválidas"},
	services.ErrUnauthorized:       {fiber.StatusUnauthorized, "UNAUTHORIZED", "No autorizado"},
	services.ErrOrderNotFound:      {fiber.StatusNotFound, "ORDER_NOT_FOUND", "Orden no encontrada"},
	services.ErrCategoryNotFound:   {fiber.StatusNotFound, "CATEGORY_NOT_FOUND", "Categoría no encontrada"},
	services.ErrUserNotFound:       {fiber.StatusNotFound, "USER_NOT_FOUND", "Usuario no encontrado"},
	services.ErrAddressNotFound:    {fiber.StatusNotFound, "ADDRESS_NOT_FOUND", "Dirección no encontrada"},
	services.ErrGatewayUnavailable: {fiber.StatusServiceUnavailable, "GATEWAY_UNAVAILABLE", "Pagos con Mercado Pago no están configurados"},
	services.ErrBadSpreadsheet:     {fiber.StatusBadRequest, "BAD_SPREADSHEET", "Archivo inválido o sin filas de datos"},
}

// respondError maps a service error to the right HTTP response. fallback is
// the generic message returned for infrastructure failures, which are logged
// but never leaked.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	for sentinel, de := range domainErrors {
		if errors.Is(err, sentinel) {
			return c.Status(de.status).JSON(fiber.Map{
				"error": de.message,
				"code":  de.code,
			})
		}
	}

	log.Printf("Internal error on %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fallback,
	})
}

// respondValidation returns field-level validation failures as a 400.
func respondValidation(c *fiber.Ctx, errs []validator.FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "Datos inválidos",
		"issues": errs,
	})
}
