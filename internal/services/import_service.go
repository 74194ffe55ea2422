package services

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"goldlegacy/internal/models"
	"goldlegacy/internal/repositories"
	"goldlegacy/pkg/slug"

	"github.com/xuri/excelize/v2"
)

// RowError is one failed spreadsheet row. Row numbers are 1-indexed as
// displayed in the spreadsheet, so the first data row is 2.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarizes a bulk import run.
type ImportResult struct {
	Created int        `json:"created"`
	Total   int        `json:"total"`
	Errors  []RowError `json:"errors"`
}

// Accepted header synonyms per logical column, in priority order. Resolved
// once against the header row, not per data row.
var importHeaderAliases = map[string][]string{
	"name":        {"name", "nombre"},
	"slug":        {"slug"},
	"description": {"description", "descripcion"},
	"price":       {"price", "precio"},
	"material":    {"material"},
	"type":        {"type", "tipo"},
	"stock":       {"stock"},
	"featured":    {"isfeatured", "destacado"},
	"category":    {"categoryslug", "categoria", "categoría"},
	"image1":      {"image1", "imagen1"},
	"image2":      {"image2", "imagen2"},
}

// Localized type labels accepted alongside the canonical enum tokens.
var typeLabelsES = map[string]models.ProductType{
	"cadena":  models.ProductTypeChain,
	"anillo":  models.ProductTypeRing,
	"pulsera": models.ProductTypeBracelet,
	"arete":   models.ProductTypeEarring,
	"aretes":  models.ProductTypeEarring,
	"dije":    models.ProductTypePendant,
	"dijes":   models.ProductTypePendant,
}

// Truthy tokens for the featured flag column.
var truthyTokens = map[string]bool{
	"1": true, "true": true, "si": true, "sí": true, "yes": true,
}

// ImportService creates products in bulk from an uploaded spreadsheet. Rows
// are validated independently; one bad row never aborts its siblings.
type ImportService struct {
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	audit        *AuditService
}

// NewImportService creates a new ImportService.
func NewImportService(productRepo repositories.ProductRepository, categoryRepo repositories.CategoryRepository, audit *AuditService) *ImportService {
	return &ImportService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		audit:        audit,
	}
}

// importSheet is a parsed spreadsheet: the resolved column index per logical
// field plus the data rows.
type importSheet struct {
	columns map[string]int
	rows    [][]string
}

func (sh *importSheet) cell(row []string, field string) string {
	idx, ok := sh.columns[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseSheet reads the first worksheet and resolves the header aliases.
func parseSheet(r io.Reader) (*importSheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSpreadsheet, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no worksheets", ErrBadSpreadsheet)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("could not read worksheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: no data rows", ErrBadSpreadsheet)
	}

	columns := make(map[string]int)
	for idx, header := range rows[0] {
		normalized := strings.ToLower(strings.TrimSpace(header))
		for field, aliases := range importHeaderAliases {
			if _, taken := columns[field]; taken {
				continue
			}
			for _, alias := range aliases {
				if normalized == alias {
					columns[field] = idx
					break
				}
			}
		}
	}

	return &importSheet{columns: columns, rows: rows[1:]}, nil
}

// Import runs the bulk import. The returned error is reserved for file-level
// failures; per-row problems land in the result's Errors list.
func (s *ImportService) Import(adminID string, r io.Reader) (*ImportResult, error) {
	sheet, err := parseSheet(r)
	if err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.List(false)
	if err != nil {
		return nil, err
	}
	categoryBySlug := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryBySlug[strings.ToLower(c.Slug)] = c.ID
	}

	existingSlugs, err := s.productRepo.AllSlugs()
	if err != nil {
		return nil, err
	}
	slugs := make(map[string]bool, len(existingSlugs))
	for _, sl := range existingSlugs {
		slugs[sl] = true
	}

	result := &ImportResult{Total: len(sheet.rows), Errors: []RowError{}}

	for i, row := range sheet.rows {
		rowNum := i + 2 // first data row displays as row 2, after the header

		name := sheet.cell(row, "name")
		if len([]rune(name)) < 2 {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: "Nombre vacío o muy corto"})
			continue
		}

		// The slug is claimed before the remaining checks, matching how
		// collisions were resolved when these rows were written.
		slugVal := sheet.cell(row, "slug")
		if slugVal == "" {
			slugVal = slug.Make(name)
		}
		if slugVal == "" {
			slugVal = fmt.Sprintf("producto-%d", i+1)
		}
		if slugs[slugVal] {
			suffix := 1
			for slugs[fmt.Sprintf("%s-%d", slugVal, suffix)] {
				suffix++
			}
			slugVal = fmt.Sprintf("%s-%d", slugVal, suffix)
		}
		slugs[slugVal] = true

		description := sheet.cell(row, "description")
		if len([]rune(description)) < 10 {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: "Descripción vacía o muy corta (mín. 10 caracteres)"})
			continue
		}

		price, ok := parsePrice(sheet.cell(row, "price"))
		if !ok || price <= 0 {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: "Precio inválido o faltante"})
			continue
		}

		material := sheet.cell(row, "material")
		if len([]rune(material)) < 2 {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: "Material vacío o muy corto"})
			continue
		}

		productType, ok := resolveType(sheet.cell(row, "type"))
		if !ok {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: "Tipo inválido. Usa: Cadena, Anillo, Pulsera, Arete, Dije (o CHAIN, RING, etc.)"})
			continue
		}

		stock := parseStock(sheet.cell(row, "stock"))

		isFeatured := truthyTokens[strings.ToLower(sheet.cell(row, "featured"))]

		var categoryID *string
		if catSlug := sheet.cell(row, "category"); catSlug != "" {
			// Unresolved categories are silently null, not a row error.
			if id, found := categoryBySlug[strings.ToLower(catSlug)]; found {
				categoryID = &id
			}
		}

		images := collectImages(sheet.cell(row, "image1"), sheet.cell(row, "image2"))
		if len(images) == 0 {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: "Al menos una imagen (image1) con URL válida"})
			continue
		}

		product := &models.Product{
			Name:        name,
			Slug:        slugVal,
			Description: description,
			Price:       price,
			Material:    material,
			Type:        productType,
			Images:      images,
			Stock:       stock,
			IsFeatured:  isFeatured,
			CategoryID:  categoryID,
		}

		if err := s.productRepo.Create(product); err != nil {
			// Store-level failures are row errors too; the batch goes on.
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		result.Created++
	}

	s.audit.Record("BULK_IMPORT", &adminID, "product", nil, map[string]any{
		"created": result.Created,
		"total":   result.Total,
		"errors":  len(result.Errors),
	})

	return result, nil
}

// parsePrice accepts decimals written with either comma or dot.
func parsePrice(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseStock defaults to 0 for missing, non-integer or negative values.
func parseStock(raw string) int {
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// resolveType accepts the canonical enum token or a localized label.
func resolveType(raw string) (models.ProductType, bool) {
	if raw == "" {
		return "", false
	}
	if t := models.ProductType(strings.ToUpper(raw)); models.ValidProductTypes[t] {
		return t, true
	}
	if t, ok := typeLabelsES[strings.ToLower(raw)]; ok {
		return t, true
	}
	return "", false
}

// collectImages keeps only well-formed absolute http(s) URLs.
func collectImages(urls ...string) []string {
	var images []string
	for _, u := range urls {
		if u == "" {
			continue
		}
		if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
			images = append(images, u)
		}
	}
	return images
}
