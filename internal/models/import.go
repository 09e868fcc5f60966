package models

import (
	"fmt"
	"strings"
)

// ImportFormat represents the file format for import
type ImportFormat string

const (
	ImportFormatCSV  ImportFormat = "csv"
	ImportFormatXLSX ImportFormat = "xlsx"
)

// DuplicateAction decides what happens when a SKU or barcode collides.
type DuplicateAction string

const (
	DuplicateActionStop    DuplicateAction = "stop"
	DuplicateActionSkip    DuplicateAction = "skip"
	DuplicateActionReplace DuplicateAction = "replace"
)

// DimensionAction decides whether a matching category/brand is reused or duplicated.
type DimensionAction string

const (
	DimensionActionLink   DimensionAction = "link"
	DimensionActionCreate DimensionAction = "create"
)

// ViolationAction decides whether a row-level violation aborts the import.
type ViolationAction string

const (
	ViolationActionStop ViolationAction = "stop"
	ViolationActionSkip ViolationAction = "skip"
)

// ImportOptions is the per-run policy configuration
type ImportOptions struct {
	DuplicateSkuAction         DuplicateAction `json:"duplicateSkuAction"`
	DuplicateBarcodeAction     DuplicateAction `json:"duplicateBarcodeAction"`
	DuplicateVariantSkuAction  DuplicateAction `json:"duplicateVariantSkuAction"`
	DuplicateCategoryAction    DimensionAction `json:"duplicateCategoryAction"`
	DuplicateBrandAction       DimensionAction `json:"duplicateBrandAction"`
	MissingRequiredFieldAction ViolationAction `json:"missingRequiredFieldAction"`
	InvalidImageURLAction      ViolationAction `json:"invalidImageUrlAction"`
	ValidateOnly               bool            `json:"validateOnly"`
}

// DefaultImportOptions returns the options used when a request leaves an axis unset
func DefaultImportOptions() ImportOptions {
	return ImportOptions{
		DuplicateSkuAction:         DuplicateActionSkip,
		DuplicateBarcodeAction:     DuplicateActionSkip,
		DuplicateVariantSkuAction:  DuplicateActionSkip,
		DuplicateCategoryAction:    DimensionActionLink,
		DuplicateBrandAction:       DimensionActionLink,
		MissingRequiredFieldAction: ViolationActionSkip,
		InvalidImageURLAction:      ViolationActionSkip,
	}
}

// ParseDuplicateAction parses a duplicate action, returning def for an empty value
func ParseDuplicateAction(value string, def DuplicateAction) (DuplicateAction, error) {
	switch a := DuplicateAction(strings.ToLower(strings.TrimSpace(value))); a {
	case "":
		return def, nil
	case DuplicateActionStop, DuplicateActionSkip, DuplicateActionReplace:
		return a, nil
	default:
		return "", fmt.Errorf("invalid duplicate action %q (expected stop, skip or replace)", value)
	}
}

// ParseDimensionAction parses a category/brand action, returning def for an empty value
func ParseDimensionAction(value string, def DimensionAction) (DimensionAction, error) {
	switch a := DimensionAction(strings.ToLower(strings.TrimSpace(value))); a {
	case "":
		return def, nil
	case DimensionActionLink, DimensionActionCreate:
		return a, nil
	default:
		return "", fmt.Errorf("invalid dimension action %q (expected link or create)", value)
	}
}

// ParseViolationAction parses a violation action, returning def for an empty value
func ParseViolationAction(value string, def ViolationAction) (ViolationAction, error) {
	switch a := ViolationAction(strings.ToLower(strings.TrimSpace(value))); a {
	case "":
		return def, nil
	case ViolationActionStop, ViolationActionSkip:
		return a, nil
	default:
		return "", fmt.Errorf("invalid violation action %q (expected stop or skip)", value)
	}
}

// ImportedProduct is one committed product in an import result
type ImportedProduct struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	SKU           string `json:"sku"`
	VariantsCount *int   `json:"variantsCount,omitempty"`
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	Total    int               `json:"total"`
	Success  int               `json:"success"`
	Failed   int               `json:"failed"`
	Errors   []string          `json:"errors"`
	Products []ImportedProduct `json:"products"`
}

// ImportResponse is the document returned for every import run.
// Success is false only when a stop policy ended the run early.
type ImportResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    ImportResult `json:"data"`
}

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	LocalName   string `json:"localName"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // string, number, boolean, uuid, url
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity     string                 `json:"entity"`
	Version    string                 `json:"version"`
	Columns    []ImportTemplateColumn `json:"columns"`
	SampleData []map[string]string    `json:"sampleData,omitempty"`
}

// ProductImportColumns returns the column definitions for catalog import
func ProductImportColumns() []ImportTemplateColumn {
	return []ImportTemplateColumn{
		{Name: "name", LocalName: "Tên sản phẩm", Description: "Product name", Required: true, Type: "string", Example: "Cotton T-Shirt"},
		{Name: "sku", LocalName: "Mã hàng", Description: "Product SKU, shared by every variant row of the same product", Required: true, Type: "string", Example: "TSH-001"},
		{Name: "categoryName", LocalName: "Danh mục", Description: "Category name - created if it does not exist", Required: false, Type: "string", Example: "Apparel"},
		{Name: "categoryId", LocalName: "Mã danh mục", Description: "Category UUID (overrides categoryName)", Required: false, Type: "uuid", Example: ""},
		{Name: "parentCategoryName", LocalName: "Danh mục cha", Description: "Parent category name", Required: false, Type: "string", Example: ""},
		{Name: "parentCategoryId", LocalName: "Mã danh mục cha", Description: "Parent category UUID", Required: false, Type: "uuid", Example: ""},
		{Name: "brandName", LocalName: "Thương hiệu", Description: "Brand name - created if it does not exist", Required: false, Type: "string", Example: "Acme"},
		{Name: "brandId", LocalName: "Mã thương hiệu", Description: "Brand UUID (overrides brandName)", Required: false, Type: "uuid", Example: ""},
		{Name: "description", LocalName: "Mô tả", Description: "Product description", Required: false, Type: "string", Example: ""},
		{Name: "mainImage", LocalName: "Ảnh chính", Description: "Primary image URL (http/https)", Required: false, Type: "url", Example: "https://cdn.example.com/tsh-001.jpg"},
		{Name: "image2", LocalName: "Ảnh 2", Description: "Additional image URL", Required: false, Type: "url", Example: ""},
		{Name: "image3", LocalName: "Ảnh 3", Description: "Additional image URL", Required: false, Type: "url", Example: ""},
		{Name: "image4", LocalName: "Ảnh 4", Description: "Additional image URL", Required: false, Type: "url", Example: ""},
		{Name: "image5", LocalName: "Ảnh 5", Description: "Additional image URL", Required: false, Type: "url", Example: ""},
		{Name: "barcode", LocalName: "Mã vạch", Description: "Product barcode (ignored for variant rows)", Required: false, Type: "string", Example: "8930000000011"},
		{Name: "costPrice", LocalName: "Giá vốn", Description: "Cost price", Required: false, Type: "number", Example: "80000"},
		{Name: "salePrice", LocalName: "Giá bán", Description: "Sale price", Required: false, Type: "number", Example: "150000"},
		{Name: "stockOnHand", LocalName: "Tồn kho", Description: "Initial stock quantity", Required: false, Type: "number", Example: "10"},
		{Name: "allowSellOutOfStock", LocalName: "Cho phép bán khi hết hàng", Description: "true to keep selling at zero stock", Required: false, Type: "boolean", Example: "false"},
		{Name: "status", LocalName: "Trạng thái", Description: "draft, active or inactive", Required: false, Type: "string", Example: "active"},
		{Name: "variantSku", LocalName: "Mã biến thể", Description: "Variant SKU - rows with the same product columns become one product", Required: false, Type: "string", Example: "TSH-001-RED-M"},
		{Name: "variantBarcode", LocalName: "Mã vạch biến thể", Description: "Variant barcode", Required: false, Type: "string", Example: ""},
		{Name: "attributes", LocalName: "Thuộc tính", Description: "Color:Red, Size:M or a JSON list of {attributeName, valueName}", Required: false, Type: "string", Example: "Color:Red, Size:M"},
		{Name: "variantCostPrice", LocalName: "Giá vốn biến thể", Description: "Variant cost price", Required: false, Type: "number", Example: ""},
		{Name: "variantSalePrice", LocalName: "Giá bán biến thể", Description: "Variant sale price", Required: false, Type: "number", Example: ""},
		{Name: "variantStockOnHand", LocalName: "Tồn kho biến thể", Description: "Variant stock quantity", Required: false, Type: "number", Example: ""},
		{Name: "variantStatus", LocalName: "Trạng thái biến thể", Description: "draft, active or inactive", Required: false, Type: "string", Example: ""},
	}
}

// ProductImportTemplate returns the template definition for products
func ProductImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "products",
		Version: "2.0",
		Columns: ProductImportColumns(),
	}
}
