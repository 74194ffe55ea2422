package handlers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"goldlegacy/internal/middleware"
	"goldlegacy/internal/services"
	"goldlegacy/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

const spreadsheetMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler handles the back-office routes that do not belong to a
// single catalog resource: user management, audit logs, the dashboard
// summary and the spreadsheet import/export flows.
type AdminHandler struct {
	auth    *services.AuthService
	audit   *services.AuditService
	summary *services.SummaryService
	importS *services.ImportService
	exportS *services.ExportService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(auth *services.AuthService, audit *services.AuditService, summary *services.SummaryService, importS *services.ImportService, exportS *services.ExportService) *AdminHandler {
	return &AdminHandler{
		auth:    auth,
		audit:   audit,
		summary: summary,
		importS: importS,
		exportS: exportS,
	}
}

// RegisterRoutes registers the back-office routes. The caller is expected
// to pass a router that already enforces the ADMIN role.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/users", h.HandleListUsers)
	router.Patch("/users/:id", h.HandleUpdateUser)
	router.Get("/logs", h.HandleListLogs)
	router.Get("/summary", h.HandleSummary)
	router.Get("/orders/export", h.HandleExportOrders)
	router.Post("/products/bulk", h.HandleImportProducts)
	router.Get("/products/bulk/template", h.HandleImportTemplate)
}

// HandleListUsers serves the paginated user list.
func (h *AdminHandler) HandleListUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 20)

	users, total, err := h.auth.ListUsers(page, pageSize)
	if err != nil {
		return respondError(c, err, "Error al cargar los usuarios")
	}
	return c.JSON(fiber.Map{
		"items":    users,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// HandleUpdateUser changes a user's role or name.
func (h *AdminHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var input services.UserUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if errs := validator.ValidateStruct(input); errs != nil {
		return respondValidation(c, errs)
	}

	admin := middleware.UserFromContext(c)
	user, err := h.auth.UpdateUser(admin.ID, c.Params("id"), input)
	if err != nil {
		return respondError(c, err, "Error al actualizar el usuario")
	}
	return c.JSON(user)
}

// HandleListLogs serves the audit trail, newest first.
func (h *AdminHandler) HandleListLogs(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 50)

	logs, total, err := h.audit.List(page, pageSize)
	if err != nil {
		return respondError(c, err, "Error al cargar el historial")
	}
	return c.JSON(fiber.Map{
		"items":    logs,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// HandleSummary serves the dashboard aggregates.
func (h *AdminHandler) HandleSummary(c *fiber.Ctx) error {
	summary, err := h.summary.Build()
	if err != nil {
		return respondError(c, err, "Error al cargar el resumen")
	}
	return c.JSON(summary)
}

// HandleExportOrders streams every order as a spreadsheet download.
func (h *AdminHandler) HandleExportOrders(c *fiber.Ctx) error {
	buf, err := h.exportS.ExportOrders()
	if err != nil {
		return respondError(c, err, "Error al exportar las órdenes")
	}

	filename := fmt.Sprintf("ordenes-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, spreadsheetMIME)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(buf.Bytes())
}

// HandleImportProducts ingests a spreadsheet of products uploaded as the
// multipart field "file". Row failures are reported per row; valid rows are
// created regardless.
func (h *AdminHandler) HandleImportProducts(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Archivo no recibido. Usa el campo 'file'",
		})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".xlsx" && ext != ".xls" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Formato no soportado. Sube un archivo .xlsx",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No se pudo leer el archivo",
		})
	}
	defer file.Close()

	admin := middleware.UserFromContext(c)
	result, err := h.importS.Import(admin.ID, file)
	if err != nil {
		return respondError(c, err, "Error al procesar el archivo")
	}
	return c.JSON(result)
}

// HandleImportTemplate streams a ready-to-fill import spreadsheet with the
// expected headers, an example row and dropdowns for type and category.
func (h *AdminHandler) HandleImportTemplate(c *fiber.Ctx) error {
	buf, err := h.exportS.BuildImportTemplate()
	if err != nil {
		return respondError(c, err, "Error al generar la plantilla")
	}

	c.Set(fiber.HeaderContentType, spreadsheetMIME)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="plantilla-productos.xlsx"`)
	return c.Send(buf.Bytes())
}
