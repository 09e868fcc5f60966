package handlers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"catalog-service/internal/importer"
	"catalog-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// CatalogImporter runs one catalog import for a tenant
type CatalogImporter interface {
	ImportCatalog(ctx context.Context, fileBytes []byte, isSpreadsheet bool, selectedSheets []string, options models.ImportOptions, tenantID, userID string) (*models.ImportResponse, error)
}

type ImportHandler struct {
	importer     CatalogImporter
	maxFileBytes int64
	logger       *logrus.Logger
}

func NewImportHandler(imp CatalogImporter, maxFileBytes int64, logger *logrus.Logger) *ImportHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ImportHandler{
		importer:     imp,
		maxFileBytes: maxFileBytes,
		logger:       logger,
	}
}

func errorJSON(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    code,
			Message: message,
		},
	})
}

// GetImportTemplate returns the import template definition or file
// GET /api/v1/products/import/template?format=json|csv|xlsx&lang=en|vi
func (h *ImportHandler) GetImportTemplate(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	localized := strings.EqualFold(c.Query("lang"), "vi")

	template := models.ProductImportTemplate()

	switch format {
	case "csv":
		h.generateCSVTemplate(c, template, localized)
	case "xlsx":
		h.generateXLSXTemplate(c, template, localized)
	default:
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"template": template,
		})
	}
}

func headerLabel(col models.ImportTemplateColumn, localized bool) string {
	if localized && col.LocalName != "" {
		return col.LocalName
	}
	return col.Name
}

// generateCSVTemplate writes the header row only
func (h *ImportHandler) generateCSVTemplate(c *gin.Context, template models.ImportTemplate, localized bool) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename=catalog_import_template.csv")

	// BOM so spreadsheet apps open Vietnamese headers as UTF-8
	c.Writer.WriteString("\ufeff")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	headers := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = headerLabel(col, localized)
	}
	if err := writer.Write(headers); err != nil {
		h.logger.WithError(err).Warn("Failed to write CSV template")
	}
}

// generateXLSXTemplate writes a Products sheet with styled headers and an Instructions sheet
func (h *ImportHandler) generateXLSXTemplate(c *gin.Context, template models.ImportTemplate, localized bool) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Products"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, col := range template.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		headerText := headerLabel(col, localized)
		style := headerStyle
		if col.Required {
			headerText += " *"
			style = requiredStyle
		}
		f.SetCellValue(sheetName, cell, headerText)
		f.SetCellStyle(sheetName, cell, cell, style)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	f.NewSheet("Instructions")
	f.SetCellValue("Instructions", "A1", "Catalog Import Instructions")
	f.SetCellValue("Instructions", "A3", "VARIANTS:")
	f.SetCellValue("Instructions", "A4", "Rows sharing name, sku, category, brand and images become one product. Give each row a variantSku and attributes such as Color:Red, Size:M.")
	f.SetCellValue("Instructions", "A5", "Variant price, stock and status fall back to the product columns of the same row.")
	f.SetCellValue("Instructions", "A7", "CATEGORIES AND BRANDS:")
	f.SetCellValue("Instructions", "A8", "Use either ids (categoryId, brandId) or names (categoryName, brandName). Unknown names are created.")
	f.SetCellValue("Instructions", "A9", "When categoryName is empty, the sheet name is used as the category.")
	f.SetCellValue("Instructions", "A10", "This sheet is ignored during import.")

	f.SetCellValue("Instructions", "A12", "Column")
	f.SetCellValue("Instructions", "B12", "Vietnamese header")
	f.SetCellValue("Instructions", "C12", "Description")
	f.SetCellValue("Instructions", "D12", "Required")
	f.SetCellValue("Instructions", "E12", "Type")
	f.SetCellValue("Instructions", "F12", "Example")

	for i, col := range template.Columns {
		row := i + 13
		required := "Optional"
		if col.Required {
			required = "Required"
		}
		f.SetSheetRow("Instructions", fmt.Sprintf("A%d", row), &[]interface{}{
			col.Name, col.LocalName, col.Description, required, col.Type, col.Example,
		})
	}

	f.SetColWidth("Instructions", "A", "B", 25)
	f.SetColWidth("Instructions", "C", "C", 60)
	f.SetColWidth("Instructions", "D", "E", 15)
	f.SetColWidth("Instructions", "F", "F", 40)

	sheetIdx, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(sheetIdx)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=catalog_import_template.xlsx")

	if err := f.Write(c.Writer); err != nil {
		h.logger.WithError(err).Warn("Failed to write XLSX template")
	}
}

// ImportProducts imports a CSV or Excel catalog file
// POST /api/v1/products/import
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	userID := c.GetString("user_id")
	if tenantID == "" {
		errorJSON(c, http.StatusUnauthorized, "TENANT_REQUIRED", "Tenant ID is required")
		return
	}

	options, err := parseImportOptions(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_OPTION", err.Error())
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "FILE_REQUIRED", "Please upload a CSV or Excel file")
		return
	}
	defer file.Close()

	format, ok := detectFormat(header.Filename)
	if !ok {
		errorJSON(c, http.StatusBadRequest, "INVALID_FORMAT", "Only CSV and XLSX files are supported")
		return
	}

	tooLarge := fmt.Sprintf("File exceeds the %d MB limit", h.maxFileBytes/(1024*1024))
	if h.maxFileBytes > 0 && header.Size > h.maxFileBytes {
		errorJSON(c, http.StatusBadRequest, "FILE_TOO_LARGE", tooLarge)
		return
	}
	reader := io.Reader(file)
	if h.maxFileBytes > 0 {
		reader = io.LimitReader(file, h.maxFileBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "PARSE_ERROR", "Failed to read uploaded file")
		return
	}
	if h.maxFileBytes > 0 && int64(len(data)) > h.maxFileBytes {
		errorJSON(c, http.StatusBadRequest, "FILE_TOO_LARGE", tooLarge)
		return
	}

	resp, err := h.importer.ImportCatalog(c.Request.Context(), data, format == models.ImportFormatXLSX, splitSheets(c.PostForm("sheets")), options, tenantID, userID)
	if err != nil {
		if errors.Is(err, importer.ErrEmptyFile) {
			errorJSON(c, http.StatusBadRequest, "EMPTY_FILE", "The file contains no data rows")
			return
		}
		h.logger.WithError(err).WithFields(logrus.Fields{
			"tenantID": tenantID,
			"filename": header.Filename,
		}).Warn("Failed to parse import file")
		errorJSON(c, http.StatusBadRequest, "PARSE_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, resp)
}

func detectFormat(filename string) (models.ImportFormat, bool) {
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".csv"):
		return models.ImportFormatCSV, true
	case strings.HasSuffix(name, ".xlsx"):
		return models.ImportFormatXLSX, true
	}
	return "", false
}

// parseImportOptions reads the optional "options" JSON field, then lets the
// individual form fields override it. Unset axes keep their defaults.
func parseImportOptions(c *gin.Context) (models.ImportOptions, error) {
	opts := models.DefaultImportOptions()
	if raw := strings.TrimSpace(c.PostForm("options")); raw != "" {
		var fromJSON struct {
			DuplicateSkuAction         string `json:"duplicateSkuAction"`
			DuplicateBarcodeAction     string `json:"duplicateBarcodeAction"`
			DuplicateVariantSkuAction  string `json:"duplicateVariantSkuAction"`
			DuplicateCategoryAction    string `json:"duplicateCategoryAction"`
			DuplicateBrandAction       string `json:"duplicateBrandAction"`
			MissingRequiredFieldAction string `json:"missingRequiredFieldAction"`
			InvalidImageURLAction      string `json:"invalidImageUrlAction"`
			ValidateOnly               bool   `json:"validateOnly"`
		}
		if err := json.Unmarshal([]byte(raw), &fromJSON); err != nil {
			return opts, fmt.Errorf("options is not valid JSON: %w", err)
		}
		if err := applyOptions(&opts, map[string]string{
			"duplicateSkuAction":         fromJSON.DuplicateSkuAction,
			"duplicateBarcodeAction":     fromJSON.DuplicateBarcodeAction,
			"duplicateVariantSkuAction":  fromJSON.DuplicateVariantSkuAction,
			"duplicateCategoryAction":    fromJSON.DuplicateCategoryAction,
			"duplicateBrandAction":       fromJSON.DuplicateBrandAction,
			"missingRequiredFieldAction": fromJSON.MissingRequiredFieldAction,
			"invalidImageUrlAction":      fromJSON.InvalidImageURLAction,
		}); err != nil {
			return opts, err
		}
		opts.ValidateOnly = fromJSON.ValidateOnly
	}

	fields := make(map[string]string)
	for _, key := range optionFields {
		fields[key] = c.PostForm(key)
	}
	if err := applyOptions(&opts, fields); err != nil {
		return opts, err
	}
	if v := c.PostForm("validateOnly"); v != "" {
		opts.ValidateOnly = strings.EqualFold(v, "true")
	}
	return opts, nil
}

var optionFields = []string{
	"duplicateSkuAction",
	"duplicateBarcodeAction",
	"duplicateVariantSkuAction",
	"duplicateCategoryAction",
	"duplicateBrandAction",
	"missingRequiredFieldAction",
	"invalidImageUrlAction",
}

// applyOptions overrides opts with every non-empty value in fields
func applyOptions(opts *models.ImportOptions, fields map[string]string) error {
	var err error

	if opts.DuplicateSkuAction, err = models.ParseDuplicateAction(fields["duplicateSkuAction"], opts.DuplicateSkuAction); err != nil {
		return fmt.Errorf("duplicateSkuAction: %w", err)
	}
	if opts.DuplicateBarcodeAction, err = models.ParseDuplicateAction(fields["duplicateBarcodeAction"], opts.DuplicateBarcodeAction); err != nil {
		return fmt.Errorf("duplicateBarcodeAction: %w", err)
	}
	if opts.DuplicateVariantSkuAction, err = models.ParseDuplicateAction(fields["duplicateVariantSkuAction"], opts.DuplicateVariantSkuAction); err != nil {
		return fmt.Errorf("duplicateVariantSkuAction: %w", err)
	}
	if opts.DuplicateCategoryAction, err = models.ParseDimensionAction(fields["duplicateCategoryAction"], opts.DuplicateCategoryAction); err != nil {
		return fmt.Errorf("duplicateCategoryAction: %w", err)
	}
	if opts.DuplicateBrandAction, err = models.ParseDimensionAction(fields["duplicateBrandAction"], opts.DuplicateBrandAction); err != nil {
		return fmt.Errorf("duplicateBrandAction: %w", err)
	}
	if opts.MissingRequiredFieldAction, err = models.ParseViolationAction(fields["missingRequiredFieldAction"], opts.MissingRequiredFieldAction); err != nil {
		return fmt.Errorf("missingRequiredFieldAction: %w", err)
	}
	if opts.InvalidImageURLAction, err = models.ParseViolationAction(fields["invalidImageUrlAction"], opts.InvalidImageURLAction); err != nil {
		return fmt.Errorf("invalidImageUrlAction: %w", err)
	}
	return nil
}

// splitSheets parses a comma separated sheet list
func splitSheets(raw string) []string {
	var sheets []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			sheets = append(sheets, s)
		}
	}
	return sheets
}
