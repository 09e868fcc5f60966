package events

import (
	"context"
	"testing"

	"catalog-service/internal/models"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBuildProductEvent(t *testing.T) {
	categoryID := uuid.New()
	product := &models.Product{
		ID:         uuid.New(),
		Name:       "Shirt",
		SKU:        "S1",
		Status:     models.ProductStatusActive,
		Price:      decimal.RequireFromString("199.90"),
		CategoryID: &categoryID,
	}

	event := BuildProductEvent(product, "tenant-1", "user-1")

	assert.Equal(t, events.ProductCreated, event.EventType)
	assert.Equal(t, "tenant-1", event.TenantID)
	assert.Equal(t, product.ID.String(), event.ProductID)
	assert.Equal(t, "S1", event.SKU)
	assert.Equal(t, "active", event.Status)
	assert.InDelta(t, 199.9, event.Price, 0.0001)
	assert.Equal(t, categoryID.String(), event.CategoryID)
	assert.Equal(t, "user-1", event.ActorID)
	assert.Equal(t, "imported", event.ChangeType)
	assert.NotEmpty(t, event.SourceID)
}

func TestPublisher_NilIsNoop(t *testing.T) {
	var p *Publisher
	assert.NoError(t, p.PublishProductImported(context.Background(), &models.Product{}, "tenant-1", ""))
	assert.NotPanics(t, p.Close)
}
