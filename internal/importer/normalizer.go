package importer

import (
	"regexp"
	"strings"

	"catalog-service/internal/models"
	"catalog-service/internal/textnorm"

	"github.com/shopspring/decimal"
)

// MaxProductImages caps the images kept per product.
const MaxProductImages = 5

type DraftImage struct {
	URL       string
	IsPrimary bool
}

type Pricing struct {
	Cost decimal.Decimal
	Sale decimal.Decimal
}

// VariantData is populated only for rows that declare a variant SKU.
type VariantData struct {
	SKU           string
	Barcode       string
	AttributesRaw string
	Cost          decimal.Decimal
	Sale          decimal.Decimal
	StockOnHand   int
	Status        models.ProductStatus
}

// ProductDraft is the canonical form of one input row.
type ProductDraft struct {
	RowIndex int
	Sheet    string

	Name               string
	SKU                string
	CategoryName       string
	CategoryID         string
	ParentCategoryName string
	ParentCategoryID   string
	BrandName          string
	BrandID            string
	Description        string
	Images             []DraftImage
	BaseBarcode        string

	BasePricing         Pricing
	StockOnHand         int
	AllowSellOutOfStock bool
	Status              models.ProductStatus

	Variant *VariantData

	// InvalidImageURLs holds image cells dropped for not being http(s) URLs.
	InvalidImageURLs []string
}

// Normalize maps a raw row onto a ProductDraft.
func Normalize(row RawRow) *ProductDraft {
	cells := newCellLookup(row.Cells)

	d := &ProductDraft{
		RowIndex:           row.Index,
		Sheet:              row.Sheet,
		Name:               cells.get(fieldName),
		SKU:                cells.get(fieldSKU),
		CategoryName:       cells.get(fieldCategoryName),
		CategoryID:         cells.get(fieldCategoryID),
		ParentCategoryName: cells.get(fieldParentCategoryName),
		ParentCategoryID:   cells.get(fieldParentCategoryID),
		BrandName:          cells.get(fieldBrandName),
		BrandID:            cells.get(fieldBrandID),
		Description:        cells.get(fieldDescription),
		BaseBarcode:        cells.get(fieldBarcode),
		BasePricing: Pricing{
			Cost: parseNumber(cells.get(fieldCostPrice)),
			Sale: parseNumber(cells.get(fieldSalePrice)),
		},
		StockOnHand:         parseStock(cells.get(fieldStockOnHand)),
		AllowSellOutOfStock: parseBool(cells.get(fieldAllowSellOutOfStock)),
		Status:              parseStatus(cells.get(fieldStatus)),
	}

	if d.CategoryName == "" && d.CategoryID == "" && !isGenericSheetName(row.Sheet) {
		d.CategoryName = strings.TrimSpace(row.Sheet)
	}

	d.Images, d.InvalidImageURLs = extractImages(cells)

	if variantSKU := cells.get(fieldVariantSKU); variantSKU != "" {
		v := &VariantData{
			SKU:           variantSKU,
			Barcode:       cells.get(fieldVariantBarcode),
			AttributesRaw: cells.get(fieldAttributes),
			Cost:          d.BasePricing.Cost,
			Sale:          d.BasePricing.Sale,
			StockOnHand:   d.StockOnHand,
			Status:        d.Status,
		}
		// Variant columns override the product-level values of the same row.
		if raw := cells.get(fieldVariantCostPrice); raw != "" {
			v.Cost = parseNumber(raw)
		}
		if raw := cells.get(fieldVariantSalePrice); raw != "" {
			v.Sale = parseNumber(raw)
		}
		if raw := cells.get(fieldVariantStock); raw != "" {
			v.StockOnHand = parseStock(raw)
		}
		if raw := cells.get(fieldVariantStatus); raw != "" {
			v.Status = parseStatus(raw)
		}
		d.Variant = v
	}

	return d
}

func extractImages(cells cellLookup) ([]DraftImage, []string) {
	var images []DraftImage
	var invalid []string
	seen := make(map[string]bool)

	for i, f := range imageFields {
		url := cells.get(f)
		if url == "" {
			continue
		}
		if !strings.HasPrefix(url, "http") {
			invalid = append(invalid, url)
			continue
		}
		if seen[url] {
			continue
		}
		seen[url] = true
		images = append(images, DraftImage{URL: url, IsPrimary: i == 0})
	}

	if len(images) > MaxProductImages {
		images = images[:MaxProductImages]
	}
	if len(images) > 0 && !images[0].IsPrimary {
		images[0].IsPrimary = true
	}
	return images, invalid
}

var (
	numberPrefix     = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?`)
	groupedThousands = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)
)

// parseNumber reads the leading numeric prefix of s; anything unparsable is zero.
func parseNumber(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if groupedThousands.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	m := numberPrefix.FindString(s)
	if m == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseStock(s string) int {
	return int(parseNumber(s).IntPart())
}

func parseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

var statusLabels = map[string]models.ProductStatus{
	"draft":            models.ProductStatusDraft,
	"nhap":             models.ProductStatusDraft,
	"ban nhap":         models.ProductStatusDraft,
	"active":           models.ProductStatusActive,
	"dang ban":         models.ProductStatusActive,
	"hoat dong":        models.ProductStatusActive,
	"inactive":         models.ProductStatusInactive,
	"ngung ban":        models.ProductStatusInactive,
	"ngung kinh doanh": models.ProductStatusInactive,
}

func parseStatus(s string) models.ProductStatus {
	if status, ok := statusLabels[textnorm.Fold(s)]; ok {
		return status
	}
	return models.ProductStatusActive
}

var genericSheetName = regexp.MustCompile(`^(sheet|trang tinh|data|import|products?|san pham|hang hoa)\s*\d*$`)

func isGenericSheetName(sheet string) bool {
	folded := textnorm.Fold(sheet)
	return folded == "" || genericSheetName.MatchString(folded)
}
