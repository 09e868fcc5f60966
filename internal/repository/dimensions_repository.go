package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog-service/internal/models"
	"catalog-service/internal/textnorm"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DimensionCacheTTL bounds how long a tenant's dimension list may be served from cache.
const DimensionCacheTTL = 5 * time.Minute

// NewDimensionCache builds the two-level cache shared by the dimension repositories.
// Returns nil when redis is nil so repositories fall back to direct queries.
func NewDimensionCache(redisClient *redis.Client, ttl time.Duration) *cache.CacheLayer {
	if redisClient == nil {
		return nil
	}
	return cache.NewCacheLayerFromClient(redisClient, cache.CacheConfig{
		L1Enabled:  true,
		L1MaxItems: 2000,
		L1TTL:      30 * time.Second,
		DefaultTTL: cacheTTL(ttl),
		KeyPrefix:  "tesseract:catalog:",
	})
}

func cacheTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DimensionCacheTTL
	}
	return ttl
}

// cachedList serves key from the cache layer, loading through load on a miss.
func cachedList[T any](ctx context.Context, c *cache.CacheLayer, key string, ttl time.Duration, load func() ([]T, error)) ([]T, error) {
	if c == nil {
		return load()
	}
	var out []T
	err := c.GetOrSetJSON(ctx, key, &out, ttl, func() (any, error) {
		return load()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func invalidate(ctx context.Context, c *cache.CacheLayer, keys ...string) {
	if c == nil {
		return
	}
	for _, key := range keys {
		_ = c.Delete(ctx, key)
	}
}

// CategoryRepository

type CategoryRepository struct {
	db    *gorm.DB
	cache *cache.CacheLayer
	ttl   time.Duration
}

func NewCategoryRepository(db *gorm.DB, c *cache.CacheLayer, ttl time.Duration) *CategoryRepository {
	return &CategoryRepository{db: db, cache: c, ttl: cacheTTL(ttl)}
}

func categoryListKey(tenantID string) string {
	return fmt.Sprintf("categories:list:%s", tenantID)
}

// List returns every category of the tenant ordered by creation.
func (r *CategoryRepository) List(ctx context.Context, tenantID string) ([]models.Category, error) {
	return cachedList(ctx, r.cache, categoryListKey(tenantID), r.ttl, func() ([]models.Category, error) {
		var categories []models.Category
		if err := r.db.WithContext(ctx).
			Where("tenant_id = ?", tenantID).
			Order("created_at ASC").
			Find(&categories).Error; err != nil {
			return nil, fmt.Errorf("failed to list categories: %w", err)
		}
		return categories, nil
	})
}

// FindByID looks a category up by id across tenants; callers check ownership.
func (r *CategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if category.Slug == "" {
		category.Slug = textnorm.Slugify(category.Name)
	}
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category '%s': %w", category.Name, err)
	}
	invalidate(ctx, r.cache, categoryListKey(category.TenantID))
	return nil
}

// Update applies a partial update to one tenant category.
func (r *CategoryRepository) Update(ctx context.Context, tenantID string, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	invalidate(ctx, r.cache, categoryListKey(tenantID))
	return nil
}

// BrandRepository

type BrandRepository struct {
	db    *gorm.DB
	cache *cache.CacheLayer
	ttl   time.Duration
}

func NewBrandRepository(db *gorm.DB, c *cache.CacheLayer, ttl time.Duration) *BrandRepository {
	return &BrandRepository{db: db, cache: c, ttl: cacheTTL(ttl)}
}

func brandListKey(tenantID string) string {
	return fmt.Sprintf("brands:list:%s", tenantID)
}

func (r *BrandRepository) List(ctx context.Context, tenantID string) ([]models.Brand, error) {
	return cachedList(ctx, r.cache, brandListKey(tenantID), r.ttl, func() ([]models.Brand, error) {
		var brands []models.Brand
		if err := r.db.WithContext(ctx).
			Where("tenant_id = ?", tenantID).
			Order("created_at ASC").
			Find(&brands).Error; err != nil {
			return nil, fmt.Errorf("failed to list brands: %w", err)
		}
		return brands, nil
	})
}

func (r *BrandRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	var brand models.Brand
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&brand).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	return &brand, nil
}

func (r *BrandRepository) Create(ctx context.Context, brand *models.Brand) error {
	if brand.ID == uuid.Nil {
		brand.ID = uuid.New()
	}
	if brand.Slug == "" {
		brand.Slug = textnorm.Slugify(brand.Name)
	}
	now := time.Now()
	brand.CreatedAt = now
	brand.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(brand).Error; err != nil {
		return fmt.Errorf("failed to create brand '%s': %w", brand.Name, err)
	}
	invalidate(ctx, r.cache, brandListKey(brand.TenantID))
	return nil
}

// AttributeRepository serves both attributes and their values.

type AttributeRepository struct {
	db    *gorm.DB
	cache *cache.CacheLayer
	ttl   time.Duration
}

func NewAttributeRepository(db *gorm.DB, c *cache.CacheLayer, ttl time.Duration) *AttributeRepository {
	return &AttributeRepository{db: db, cache: c, ttl: cacheTTL(ttl)}
}

func attributeListKey(tenantID string) string {
	return fmt.Sprintf("attributes:list:%s", tenantID)
}

func attributeValueListKey(tenantID string, attributeID uuid.UUID) string {
	return fmt.Sprintf("attribute_values:list:%s:%s", tenantID, attributeID.String())
}

func (r *AttributeRepository) List(ctx context.Context, tenantID string) ([]models.Attribute, error) {
	return cachedList(ctx, r.cache, attributeListKey(tenantID), r.ttl, func() ([]models.Attribute, error) {
		var attributes []models.Attribute
		if err := r.db.WithContext(ctx).
			Where("tenant_id = ?", tenantID).
			Order("created_at ASC").
			Find(&attributes).Error; err != nil {
			return nil, fmt.Errorf("failed to list attributes: %w", err)
		}
		return attributes, nil
	})
}

func (r *AttributeRepository) Create(ctx context.Context, attribute *models.Attribute) error {
	if attribute.ID == uuid.Nil {
		attribute.ID = uuid.New()
	}
	now := time.Now()
	attribute.CreatedAt = now
	attribute.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(attribute).Error; err != nil {
		return fmt.Errorf("failed to create attribute '%s': %w", attribute.Name, err)
	}
	invalidate(ctx, r.cache, attributeListKey(attribute.TenantID))
	return nil
}

func (r *AttributeRepository) ListValues(ctx context.Context, tenantID string, attributeID uuid.UUID) ([]models.AttributeValue, error) {
	return cachedList(ctx, r.cache, attributeValueListKey(tenantID, attributeID), r.ttl, func() ([]models.AttributeValue, error) {
		var values []models.AttributeValue
		if err := r.db.WithContext(ctx).
			Where("tenant_id = ? AND attribute_id = ?", tenantID, attributeID).
			Order("created_at ASC").
			Find(&values).Error; err != nil {
			return nil, fmt.Errorf("failed to list attribute values: %w", err)
		}
		return values, nil
	})
}

func (r *AttributeRepository) CreateValue(ctx context.Context, value *models.AttributeValue) error {
	if value.ID == uuid.Nil {
		value.ID = uuid.New()
	}
	now := time.Now()
	value.CreatedAt = now
	value.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(value).Error; err != nil {
		return fmt.Errorf("failed to create attribute value '%s': %w", value.Value, err)
	}
	invalidate(ctx, r.cache, attributeValueListKey(value.TenantID, value.AttributeID))
	return nil
}
