package importer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"catalog-service/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

// memStore is an in-memory catalog shared by the fake stores below.
type memStore struct {
	products   []*models.Product
	categories []models.Category
	brands     []models.Brand
	attributes []models.Attribute
	values     []models.AttributeValue
	updates    int
}

func newMemStore() *memStore {
	return &memStore{}
}

func (s *memStore) stores() Stores {
	return Stores{
		Products:        memProducts{s},
		Categories:      memCategories{s},
		Brands:          memBrands{s},
		Attributes:      memAttributes{s},
		AttributeValues: memAttributes{s},
	}
}

func (s *memStore) seedProduct(tenantID, sku string, barcodes ...string) *models.Product {
	p := &models.Product{ID: uuid.New(), TenantID: tenantID, Name: sku, SKU: sku, BaseBarcodes: barcodes}
	s.products = append(s.products, p)
	return p
}

func (s *memStore) productBySKU(sku string) *models.Product {
	for _, p := range s.products {
		if p.SKU == sku {
			return p
		}
	}
	return nil
}

func (s *memStore) categoryNames() []string {
	names := make([]string, len(s.categories))
	for i, c := range s.categories {
		names[i] = c.Name
	}
	return names
}

type memProducts struct{ s *memStore }

func (m memProducts) FindBySKU(_ context.Context, tenantID, sku string) (*models.Product, error) {
	for _, p := range m.s.products {
		if p.TenantID != tenantID {
			continue
		}
		if p.SKU == sku {
			return p, nil
		}
		for _, v := range p.Variants {
			if v.SKU == sku {
				return p, nil
			}
		}
	}
	return nil, nil
}

func (m memProducts) FindByBarcode(_ context.Context, tenantID, code string) (*models.BarcodeMatch, error) {
	for _, p := range m.s.products {
		if p.TenantID != tenantID {
			continue
		}
		for _, b := range p.BaseBarcodes {
			if b == code {
				return &models.BarcodeMatch{Product: p, IsBase: true}, nil
			}
		}
		for _, v := range p.Variants {
			if v.Barcode != nil && *v.Barcode == code {
				return &models.BarcodeMatch{Product: p, Variant: v}, nil
			}
		}
	}
	return nil, nil
}

func (m memProducts) Create(_ context.Context, product *models.Product) error {
	m.s.products = append(m.s.products, product)
	return nil
}

type memCategories struct{ s *memStore }

func (m memCategories) List(_ context.Context, tenantID string) ([]models.Category, error) {
	var out []models.Category
	for _, c := range m.s.categories {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m memCategories) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	for i := range m.s.categories {
		if m.s.categories[i].ID == id {
			c := m.s.categories[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (m memCategories) Create(_ context.Context, category *models.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	m.s.categories = append(m.s.categories, *category)
	return nil
}

func (m memCategories) Update(_ context.Context, tenantID string, id uuid.UUID, updates map[string]interface{}) error {
	for i := range m.s.categories {
		c := &m.s.categories[i]
		if c.ID != id || c.TenantID != tenantID {
			continue
		}
		if parentID, ok := updates["parent_id"].(uuid.UUID); ok {
			c.ParentID = &parentID
		}
		if level, ok := updates["level"].(int); ok {
			c.Level = level
		}
		m.s.updates++
		return nil
	}
	return fmt.Errorf("category %s not found", id)
}

type memBrands struct{ s *memStore }

func (m memBrands) List(_ context.Context, tenantID string) ([]models.Brand, error) {
	var out []models.Brand
	for _, b := range m.s.brands {
		if b.TenantID == tenantID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m memBrands) FindByID(_ context.Context, id uuid.UUID) (*models.Brand, error) {
	for i := range m.s.brands {
		if m.s.brands[i].ID == id {
			b := m.s.brands[i]
			return &b, nil
		}
	}
	return nil, nil
}

func (m memBrands) Create(_ context.Context, brand *models.Brand) error {
	if brand.ID == uuid.Nil {
		brand.ID = uuid.New()
	}
	m.s.brands = append(m.s.brands, *brand)
	return nil
}

type memAttributes struct{ s *memStore }

func (m memAttributes) List(_ context.Context, tenantID string) ([]models.Attribute, error) {
	var out []models.Attribute
	for _, a := range m.s.attributes {
		if a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m memAttributes) Create(_ context.Context, attribute *models.Attribute) error {
	if attribute.ID == uuid.Nil {
		attribute.ID = uuid.New()
	}
	m.s.attributes = append(m.s.attributes, *attribute)
	return nil
}

func (m memAttributes) ListValues(_ context.Context, tenantID string, attributeID uuid.UUID) ([]models.AttributeValue, error) {
	var out []models.AttributeValue
	for _, v := range m.s.values {
		if v.TenantID == tenantID && v.AttributeID == attributeID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m memAttributes) CreateValue(_ context.Context, value *models.AttributeValue) error {
	if value.ID == uuid.Nil {
		value.ID = uuid.New()
	}
	m.s.values = append(m.s.values, *value)
	return nil
}

// MockProductStore is a testify mock of ProductStore used for failure injection
type MockProductStore struct {
	mock.Mock
}

var _ ProductStore = (*MockProductStore)(nil)

func (m *MockProductStore) FindBySKU(ctx context.Context, tenantID, sku string) (*models.Product, error) {
	args := m.Called(ctx, tenantID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductStore) FindByBarcode(ctx context.Context, tenantID, code string) (*models.BarcodeMatch, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BarcodeMatch), args.Error(1)
}

func (m *MockProductStore) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// recordingPublisher collects published product SKUs.
type recordingPublisher struct {
	mu   sync.Mutex
	skus []string
}

func (p *recordingPublisher) PublishProductImported(_ context.Context, product *models.Product, _, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.skus = append(p.skus, product.SKU)
	return nil
}

// sequenceSuffix returns a suffix generator yielding 000001, 000002, ...
func sequenceSuffix() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%06d", n)
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func csvFile(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}
