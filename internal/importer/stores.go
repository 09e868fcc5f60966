package importer

import (
	"context"

	"catalog-service/internal/models"

	"github.com/google/uuid"
)

// Finders return nil, nil when nothing matches.

type ProductStore interface {
	FindBySKU(ctx context.Context, tenantID, sku string) (*models.Product, error)
	FindByBarcode(ctx context.Context, tenantID, code string) (*models.BarcodeMatch, error)
	Create(ctx context.Context, product *models.Product) error
}

type CategoryStore interface {
	List(ctx context.Context, tenantID string) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, tenantID string, id uuid.UUID, updates map[string]interface{}) error
}

type BrandStore interface {
	List(ctx context.Context, tenantID string) ([]models.Brand, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Brand, error)
	Create(ctx context.Context, brand *models.Brand) error
}

type AttributeStore interface {
	List(ctx context.Context, tenantID string) ([]models.Attribute, error)
	Create(ctx context.Context, attribute *models.Attribute) error
}

type AttributeValueStore interface {
	ListValues(ctx context.Context, tenantID string, attributeID uuid.UUID) ([]models.AttributeValue, error)
	CreateValue(ctx context.Context, value *models.AttributeValue) error
}

// EventPublisher is notified of every committed product. Failures never affect the import.
type EventPublisher interface {
	PublishProductImported(ctx context.Context, product *models.Product, tenantID, actorID string) error
}

// Stores groups the persistence collaborators of an import.
type Stores struct {
	Products        ProductStore
	Categories      CategoryStore
	Brands          BrandStore
	Attributes      AttributeStore
	AttributeValues AttributeValueStore
}
