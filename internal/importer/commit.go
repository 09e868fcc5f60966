package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"catalog-service/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// importRun carries the state of one ImportCatalog call.
type importRun struct {
	ctx       context.Context
	stores    Stores
	publisher EventPublisher
	opts      models.ImportOptions
	tenantID  string
	userID    string
	suffix    func() string
	sets      *runningSets
	agg       *resultAggregator
	resolver  *dimensionResolver
	log       *logrus.Entry
}

func (r *importRun) skuExists(ctx context.Context, sku string) (bool, error) {
	p, err := r.stores.Products.FindBySKU(ctx, r.tenantID, sku)
	return p != nil, err
}

func (r *importRun) barcodeExists(ctx context.Context, code string) (bool, error) {
	m, err := r.stores.Products.FindByBarcode(ctx, r.tenantID, code)
	return m != nil, err
}

// commitStandalone imports one draft without variants. Returns true when a
// stop policy ended the run.
func (r *importRun) commitStandalone(d *ProductDraft) bool {
	rows := []int{d.RowIndex}
	label := rowsLabel(rows)

	res, err := checkAndResolve(r.ctx, identityCheck{
		kind:   "SKU",
		value:  d.SKU,
		sets:   []identitySet{r.sets.skus},
		exists: r.skuExists,
		action: r.opts.DuplicateSkuAction,
	}, r.suffix)
	if err != nil {
		r.agg.fail(1, fmt.Sprintf("%s: %v", label, err))
		return false
	}
	switch res.outcome {
	case outcomeHalt:
		r.agg.halt(rows, res.reason)
		return true
	case outcomeSkip:
		r.agg.fail(1, fmt.Sprintf("%s: skipped, %s", label, res.reason))
		return false
	}
	d.SKU = res.value

	if d.BaseBarcode != "" {
		res, err := checkAndResolve(r.ctx, identityCheck{
			kind:   "barcode",
			value:  d.BaseBarcode,
			sets:   []identitySet{r.sets.barcodes},
			exists: r.barcodeExists,
			action: r.opts.DuplicateBarcodeAction,
		}, r.suffix)
		if err != nil {
			r.agg.fail(1, fmt.Sprintf("%s: %v", label, err))
			return false
		}
		switch res.outcome {
		case outcomeHalt:
			r.agg.halt(rows, res.reason)
			return true
		case outcomeSkip:
			r.agg.fail(1, fmt.Sprintf("%s: skipped, %s", label, res.reason))
			return false
		}
		d.BaseBarcode = res.value
	}

	categoryID, brandID, err := r.resolveDimensions(d)
	if err != nil {
		r.agg.fail(1, fmt.Sprintf("%s: %v", label, err))
		return false
	}

	product := newProduct(d, r.tenantID, r.userID, categoryID, brandID, time.Now())
	if d.BaseBarcode != "" {
		product.BaseBarcodes = models.StringArray{d.BaseBarcode}
	}
	if err := r.stores.Products.Create(r.ctx, product); err != nil {
		r.log.WithError(err).WithField("row", d.RowIndex).Error("Failed to create imported product")
		r.agg.fail(1, fmt.Sprintf("%s: failed to create product: %v", label, err))
		return false
	}

	r.sets.skus.add(product.SKU)
	r.sets.barcodes.add(d.BaseBarcode)
	r.agg.succeed(1, models.ImportedProduct{ID: product.ID.String(), Name: product.Name, SKU: product.SKU})
	r.publish(product)
	return false
}

// commitGroup imports the rows of one variant group as a single product.
// Returns true when a stop policy ended the run.
func (r *importRun) commitGroup(g VariantGroup) bool {
	rows := g.RowIndices()
	label := rowsLabel(rows)
	base := g.Drafts[0]

	res, err := checkAndResolve(r.ctx, identityCheck{
		kind:   "SKU",
		value:  base.SKU,
		sets:   []identitySet{r.sets.skus},
		exists: r.skuExists,
		action: r.opts.DuplicateSkuAction,
	}, r.suffix)
	if err != nil {
		r.agg.fail(len(rows), fmt.Sprintf("%s: %v", label, err))
		return false
	}
	switch res.outcome {
	case outcomeHalt:
		r.agg.halt(rows, res.reason)
		return true
	case outcomeSkip:
		r.agg.fail(len(rows), fmt.Sprintf("%s: skipped, %s", label, res.reason))
		return false
	}
	productSKU := res.value

	categoryID, brandID, err := r.resolveDimensions(base)
	if err != nil {
		r.agg.fail(len(rows), fmt.Sprintf("%s: %v", label, err))
		return false
	}

	pendingSkus := identitySet{}
	pendingBarcodes := identitySet{}
	var variants []*models.ProductVariant
	failedRows := 0

	for _, d := range g.Drafts {
		rowLabel := rowsLabel([]int{d.RowIndex})
		v := d.Variant

		res, err := checkAndResolve(r.ctx, identityCheck{
			kind:   "variant SKU",
			value:  v.SKU,
			sets:   []identitySet{r.sets.variantSkus, pendingSkus},
			exists: r.skuExists,
			action: r.opts.DuplicateVariantSkuAction,
		}, r.suffix)
		if err != nil {
			failedRows++
			r.agg.fail(1, fmt.Sprintf("%s: %v", rowLabel, err))
			continue
		}
		switch res.outcome {
		case outcomeHalt:
			r.agg.halt([]int{d.RowIndex}, res.reason)
			return true
		case outcomeSkip:
			failedRows++
			r.agg.fail(1, fmt.Sprintf("%s: skipped, %s", rowLabel, res.reason))
			continue
		}
		variantSKU := res.value

		barcode := v.Barcode
		if barcode != "" {
			res, err := checkAndResolve(r.ctx, identityCheck{
				kind:   "barcode",
				value:  barcode,
				sets:   []identitySet{r.sets.barcodes, pendingBarcodes},
				exists: r.barcodeExists,
				action: r.opts.DuplicateBarcodeAction,
			}, r.suffix)
			if err != nil {
				failedRows++
				r.agg.fail(1, fmt.Sprintf("%s: %v", rowLabel, err))
				continue
			}
			switch res.outcome {
			case outcomeHalt:
				r.agg.halt([]int{d.RowIndex}, res.reason)
				return true
			case outcomeSkip:
				failedRows++
				r.agg.fail(1, fmt.Sprintf("%s: skipped, %s", rowLabel, res.reason))
				continue
			}
			barcode = res.value
		}

		spec := ParseAttributes(v.AttributesRaw)
		attrs, attrErrs := r.resolver.resolveVariantAttributes(r.ctx, spec.Pairs)
		for _, e := range attrErrs {
			r.log.WithError(e).WithField("row", d.RowIndex).Warn("Failed to resolve variant attribute")
		}
		if len(attrs) == 0 {
			msg := fmt.Sprintf("%s: variant '%s' must have at least one attribute", rowLabel, variantSKU)
			if spec.Format == AttributesInvalid {
				msg = fmt.Sprintf("%s: variant '%s' has unreadable attributes '%s', must have at least one attribute", rowLabel, variantSKU, v.AttributesRaw)
			}
			failedRows++
			r.agg.fail(1, msg)
			continue
		}

		pendingSkus.add(variantSKU)
		pendingBarcodes.add(barcode)
		variants = append(variants, newVariant(base.Name, v, variantSKU, barcode, attrs))
	}

	remaining := len(rows) - failedRows
	if len(variants) == 0 {
		r.agg.fail(remaining, fmt.Sprintf("%s: product '%s' has no valid variants and was not created", label, productSKU))
		return false
	}

	product := newProduct(base, r.tenantID, r.userID, categoryID, brandID, time.Now())
	product.SKU = productSKU
	product.HasVariants = true
	product.BaseBarcodes = models.StringArray{}
	product.Variants = variants

	if err := r.stores.Products.Create(r.ctx, product); err != nil {
		r.log.WithError(err).WithField("rows", label).Error("Failed to create imported product with variants")
		r.agg.fail(remaining, fmt.Sprintf("%s: failed to create product: %v", label, err))
		return false
	}

	r.sets.skus.add(product.SKU)
	for _, v := range variants {
		r.sets.variantSkus.add(v.SKU)
		if v.Barcode != nil {
			r.sets.barcodes.add(*v.Barcode)
		}
	}
	count := len(variants)
	r.agg.succeed(remaining, models.ImportedProduct{
		ID:            product.ID.String(),
		Name:          product.Name,
		SKU:           product.SKU,
		VariantsCount: &count,
	})
	r.publish(product)
	return false
}

func (r *importRun) resolveDimensions(d *ProductDraft) (*uuid.UUID, *uuid.UUID, error) {
	categoryID, err := r.resolver.resolveCategory(r.ctx, d, r.opts.DuplicateCategoryAction)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve category: %w", err)
	}
	brandID, err := r.resolver.resolveBrand(r.ctx, d.BrandName, d.BrandID, r.opts.DuplicateBrandAction)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve brand: %w", err)
	}
	return categoryID, brandID, nil
}

func (r *importRun) publish(product *models.Product) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.PublishProductImported(r.ctx, product, r.tenantID, r.userID); err != nil {
		r.log.WithError(err).WithField("productID", product.ID.String()).Warn("Failed to publish product event")
	}
}

// newProduct builds the persisted form of a draft with explicit timestamps.
func newProduct(d *ProductDraft, tenantID, userID string, categoryID, brandID *uuid.UUID, now time.Time) *models.Product {
	images := make(models.ProductImages, len(d.Images))
	for i, img := range d.Images {
		images[i] = models.ProductImage{URL: img.URL, IsPrimary: img.IsPrimary, Position: i}
	}

	product := &models.Product{
		ID:                  uuid.New(),
		TenantID:            tenantID,
		CategoryID:          categoryID,
		BrandID:             brandID,
		Name:                d.Name,
		SKU:                 d.SKU,
		Images:              images,
		BaseBarcodes:        models.StringArray{},
		CostPrice:           d.BasePricing.Cost,
		Price:               d.BasePricing.Sale,
		StockOnHand:         d.StockOnHand,
		AllowSellOutOfStock: d.AllowSellOutOfStock,
		Status:              d.Status,
		Variants:            []*models.ProductVariant{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if d.Description != "" {
		desc := d.Description
		product.Description = &desc
	}
	if userID != "" {
		createdBy := userID
		product.CreatedBy = &createdBy
	}
	return product
}

func newVariant(productName string, v *VariantData, sku, barcode string, attrs models.VariantAttributes) *models.ProductVariant {
	values := make([]string, len(attrs))
	for i, a := range attrs {
		values[i] = a.Value
	}

	variant := &models.ProductVariant{
		ID:          uuid.New(),
		SKU:         sku,
		Name:        fmt.Sprintf("%s - %s", productName, strings.Join(values, " / ")),
		Attributes:  attrs,
		CostPrice:   v.Cost,
		Price:       v.Sale,
		StockOnHand: v.StockOnHand,
		Status:      v.Status,
	}
	if barcode != "" {
		variant.Barcode = &barcode
	}
	return variant
}
