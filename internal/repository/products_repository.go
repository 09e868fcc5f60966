package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"catalog-service/internal/models"
	"catalog-service/internal/textnorm"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductsRepository struct {
	db *gorm.DB
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{db: db}
}

// FindBySKU returns the product owning sku, either as its own SKU or as the
// SKU of one of its variants. Returns nil, nil when no product matches.
func (r *ProductsRepository) FindBySKU(ctx context.Context, tenantID, sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sku = ?", tenantID, sku).
		First(&product).Error
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to lookup product by sku: %w", err)
	}

	var variant models.ProductVariant
	err = r.db.WithContext(ctx).
		Where("tenant_id = ? AND sku = ?", tenantID, sku).
		First(&variant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lookup variant by sku: %w", err)
	}
	return r.findByID(ctx, tenantID, variant.ProductID)
}

// FindByBarcode looks a code up in product base barcodes first, then in variant
// barcodes. Returns nil, nil when no product carries the code.
func (r *ProductsRepository) FindByBarcode(ctx context.Context, tenantID, code string) (*models.BarcodeMatch, error) {
	needle, err := json.Marshal([]string{code})
	if err != nil {
		return nil, err
	}

	var product models.Product
	err = r.db.WithContext(ctx).
		Where("tenant_id = ? AND base_barcodes @> CAST(? AS jsonb)", tenantID, string(needle)).
		First(&product).Error
	if err == nil {
		return &models.BarcodeMatch{Product: &product, IsBase: true}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to lookup product by barcode: %w", err)
	}

	var variant models.ProductVariant
	err = r.db.WithContext(ctx).
		Where("tenant_id = ? AND barcode = ?", tenantID, code).
		First(&variant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lookup variant by barcode: %w", err)
	}

	owner, err := r.findByID(ctx, tenantID, variant.ProductID)
	if err != nil {
		return nil, err
	}
	return &models.BarcodeMatch{Product: owner, Variant: &variant}, nil
}

// Create persists a product together with its variants in one statement batch.
func (r *ProductsRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.Slug == "" {
		// Ensure slug uniqueness by appending first 8 chars of product ID
		product.Slug = fmt.Sprintf("%s-%s", textnorm.Slugify(product.Name), product.ID.String()[:8])
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = product.CreatedAt
	for _, v := range product.Variants {
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		v.ProductID = product.ID
		v.TenantID = product.TenantID
		v.CreatedAt = product.CreatedAt
		v.UpdatedAt = product.CreatedAt
	}

	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product '%s': %w", product.SKU, err)
	}
	return nil
}

func (r *ProductsRepository) findByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return &product, nil
}
