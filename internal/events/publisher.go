package events

import (
	"context"
	"fmt"
	"time"

	"catalog-service/internal/models"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultNATSURL is the in-cluster NATS service.
const DefaultNATSURL = "nats://nats.nats.svc.cluster.local:4222"

// Publisher wraps the go-shared events publisher for imported products
type Publisher struct {
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewPublisher connects to NATS and makes sure the products stream exists
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	if natsURL == "" {
		natsURL = DefaultNATSURL
	}

	config := events.DefaultPublisherConfig(natsURL)
	config.Name = "catalog-service"

	publisher, err := events.NewPublisher(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create events publisher: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := publisher.EnsureStream(ctx, events.StreamProducts, []string{"product.>"}); err != nil {
		logger.WithError(err).Warn("Failed to ensure products stream (may already exist)")
	}

	return &Publisher{
		publisher: publisher,
		logger:    logger.WithField("component", "catalog-events"),
	}, nil
}

// Close closes the NATS connection
func (p *Publisher) Close() {
	if p != nil && p.publisher != nil {
		p.publisher.Close()
	}
}

// PublishProductImported publishes a product.created event for a product
// committed by a catalog import. A nil Publisher is a no-op.
func (p *Publisher) PublishProductImported(ctx context.Context, product *models.Product, tenantID, actorID string) error {
	if p == nil || p.publisher == nil {
		return nil
	}
	event := BuildProductEvent(product, tenantID, actorID)
	p.publish(event)
	return nil
}

// BuildProductEvent maps an imported product onto the shared product event
func BuildProductEvent(product *models.Product, tenantID, actorID string) *events.ProductEvent {
	event := events.NewProductEvent(events.ProductCreated, tenantID)
	event.SourceID = uuid.New().String()
	event.ProductID = product.ID.String()
	event.ProductName = product.Name
	event.SKU = product.SKU
	event.Status = string(product.Status)
	event.Price, _ = product.Price.Float64()
	event.ActorID = actorID
	event.ChangeType = "imported"

	if product.CategoryID != nil {
		event.CategoryID = product.CategoryID.String()
	}
	return event
}

// publish sends the event in the background with its own timeout
func (p *Publisher) publish(event *events.ProductEvent) {
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := p.publisher.PublishProduct(pubCtx, event); err != nil {
			p.logger.WithFields(logrus.Fields{
				"eventType": event.EventType,
				"productID": event.ProductID,
				"tenantID":  event.TenantID,
			}).WithError(err).Error("Failed to publish product event")
			return
		}
		p.logger.WithFields(logrus.Fields{
			"eventType":   event.EventType,
			"productID":   event.ProductID,
			"productName": event.ProductName,
			"tenantID":    event.TenantID,
		}).Debug("Product event published")
	}()
}
