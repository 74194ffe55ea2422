package services

import (
	"bytes"
	"fmt"

	"goldlegacy/internal/repositories"

	"github.com/xuri/excelize/v2"
)

const (
	detailSheet  = "Detalle ítems"
	summarySheet = "Resumen órdenes"

	templateSheet = "Productos"
	optionsSheet  = "Opciones"
)

// Localized labels offered in the template's type dropdown.
var templateTypeLabels = []string{"Cadena", "Anillo", "Pulsera", "Arete", "Dije"}

// ExportService builds the admin spreadsheets: the two-sheet order report and
// the bulk-import template.
type ExportService struct {
	orderRepo    repositories.OrderRepository
	categoryRepo repositories.CategoryRepository
}

// NewExportService creates a new ExportService.
func NewExportService(orderRepo repositories.OrderRepository, categoryRepo repositories.CategoryRepository) *ExportService {
	return &ExportService{orderRepo: orderRepo, categoryRepo: categoryRepo}
}

// ExportOrders renders every order into a workbook with a line-item detail
// sheet and a per-order summary sheet.
func (s *ExportService) ExportOrders() (*bytes.Buffer, error) {
	orders, err := s.orderRepo.All()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), detailSheet)
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to add summary sheet: %w", err)
	}

	detailHeaders := []interface{}{
		"Fecha", "Hora", "ID Orden", "Cliente", "Email", "Teléfono",
		"Dirección", "Ciudad", "Estado", "Total orden (COP)",
		"Producto", "Cantidad", "Precio unit. (COP)", "Subtotal (COP)",
	}
	if err := f.SetSheetRow(detailSheet, "A1", &detailHeaders); err != nil {
		return nil, fmt.Errorf("failed to write detail headers: %w", err)
	}

	detailRow := 2
	for _, order := range orders {
		for _, item := range order.Items {
			productName := item.ProductID
			if item.Product != nil {
				productName = item.Product.Name
			}
			phone := ""
			if order.CustomerPhone != nil {
				phone = *order.CustomerPhone
			}
			row := []interface{}{
				order.CreatedAt.Format("02/01/2006"),
				order.CreatedAt.Format("15:04"),
				order.ID,
				order.CustomerName,
				order.CustomerEmail,
				phone,
				order.ShippingAddress,
				order.ShippingCity,
				string(order.Status),
				order.Total,
				productName,
				item.Quantity,
				item.UnitPrice,
				item.UnitPrice * float64(item.Quantity),
			}
			cell, _ := excelize.CoordinatesToCellName(1, detailRow)
			if err := f.SetSheetRow(detailSheet, cell, &row); err != nil {
				return nil, fmt.Errorf("failed to write detail row: %w", err)
			}
			detailRow++
		}
	}

	summaryHeaders := []interface{}{
		"ID Orden", "Fecha", "Hora", "Cliente", "Email", "Teléfono",
		"Dirección", "Ciudad", "Estado", "Total (COP)", "Nº ítems",
	}
	if err := f.SetSheetRow(summarySheet, "A1", &summaryHeaders); err != nil {
		return nil, fmt.Errorf("failed to write summary headers: %w", err)
	}

	for i, order := range orders {
		itemCount := 0
		for _, item := range order.Items {
			itemCount += item.Quantity
		}
		phone := ""
		if order.CustomerPhone != nil {
			phone = *order.CustomerPhone
		}
		row := []interface{}{
			order.ID,
			order.CreatedAt.Format("02/01/2006"),
			order.CreatedAt.Format("15:04"),
			order.CustomerName,
			order.CustomerEmail,
			phone,
			order.ShippingAddress,
			order.ShippingCity,
			string(order.Status),
			order.Total,
			itemCount,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render order export: %w", err)
	}
	return buf, nil
}

// BuildImportTemplate renders the bulk-import template: a Productos sheet
// with the expected headers and an example row, plus an Opciones sheet
// feeding dropdown validations for the type and category columns.
func (s *ExportService) BuildImportTemplate() (*bytes.Buffer, error) {
	categories, err := s.categoryRepo.List(true)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), templateSheet)
	if _, err := f.NewSheet(optionsSheet); err != nil {
		return nil, fmt.Errorf("failed to add options sheet: %w", err)
	}

	if err := f.SetCellValue(optionsSheet, "A1", "Tipo (columna tipo en Productos)"); err != nil {
		return nil, fmt.Errorf("failed to write options sheet: %w", err)
	}
	for i, label := range templateTypeLabels {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetCellValue(optionsSheet, cell, label); err != nil {
			return nil, fmt.Errorf("failed to write type option: %w", err)
		}
	}

	if err := f.SetCellValue(optionsSheet, "C1", "Categoría - slug (columna categoria en Productos)"); err != nil {
		return nil, fmt.Errorf("failed to write options sheet: %w", err)
	}
	for i, c := range categories {
		slugCell, _ := excelize.CoordinatesToCellName(3, i+2)
		nameCell, _ := excelize.CoordinatesToCellName(4, i+2)
		if err := f.SetCellValue(optionsSheet, slugCell, c.Slug); err != nil {
			return nil, fmt.Errorf("failed to write category option: %w", err)
		}
		if err := f.SetCellValue(optionsSheet, nameCell, c.Name); err != nil {
			return nil, fmt.Errorf("failed to write category option: %w", err)
		}
	}

	headers := []interface{}{
		"nombre", "slug", "descripcion", "precio", "material", "tipo",
		"stock", "destacado", "categoria", "imagen1", "imagen2",
	}
	if err := f.SetSheetRow(templateSheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write template headers: %w", err)
	}

	firstCategorySlug := ""
	if len(categories) > 0 {
		firstCategorySlug = categories[0].Slug
	}
	example := []interface{}{
		"Cadena Oro 18K", "cadena-oro-18k", "Pieza en oro de 18 kilates.",
		760000, "Oro 18K", "Cadena", 5, false, firstCategorySlug,
		"https://ejemplo.com/img1.jpg", "https://ejemplo.com/img2.jpg",
	}
	if err := f.SetSheetRow(templateSheet, "A2", &example); err != nil {
		return nil, fmt.Errorf("failed to write example row: %w", err)
	}

	lastCategoryRow := len(categories) + 1
	if lastCategoryRow < 2 {
		lastCategoryRow = 2
	}

	typeDV := excelize.NewDataValidation(true)
	typeDV.Sqref = "F2:F500"
	typeDV.SetSqrefDropList(fmt.Sprintf("%s!$A$2:$A$%d", optionsSheet, len(templateTypeLabels)+1))
	if err := f.AddDataValidation(templateSheet, typeDV); err != nil {
		return nil, fmt.Errorf("failed to add type dropdown: %w", err)
	}

	categoryDV := excelize.NewDataValidation(true)
	categoryDV.Sqref = "I2:I500"
	categoryDV.SetSqrefDropList(fmt.Sprintf("%s!$C$2:$C$%d", optionsSheet, lastCategoryRow))
	if err := f.AddDataValidation(templateSheet, categoryDV); err != nil {
		return nil, fmt.Errorf("failed to add category dropdown: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render import template: %w", err)
	}
	return buf, nil
}
