package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductStatus represents the status of a product or variant
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// JSON type for PostgreSQL JSONB (object/map)
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// StringArray is a JSONB array of strings
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal([]string(s))
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// ProductImage represents a product image
type ProductImage struct {
	URL       string `json:"url"`
	IsPrimary bool   `json:"isPrimary"`
	Position  int    `json:"position"`
}

// ProductImages is stored as a JSONB array
type ProductImages []ProductImage

func (p ProductImages) Value() (driver.Value, error) {
	if p == nil {
		return json.Marshal([]ProductImage{})
	}
	return json.Marshal([]ProductImage(p))
}

func (p *ProductImages) Scan(value interface{}) error {
	if value == nil {
		*p = ProductImages{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, p)
}

// VariantAttribute is one resolved attribute/value pair on a variant
type VariantAttribute struct {
	AttributeID   uuid.UUID `json:"attributeId"`
	AttributeName string    `json:"attributeName"`
	ValueID       uuid.UUID `json:"valueId"`
	Value         string    `json:"value"`
}

// VariantAttributes is stored as a JSONB array
type VariantAttributes []VariantAttribute

func (v VariantAttributes) Value() (driver.Value, error) {
	if v == nil {
		return json.Marshal([]VariantAttribute{})
	}
	return json.Marshal([]VariantAttribute(v))
}

func (v *VariantAttributes) Scan(value interface{}) error {
	if value == nil {
		*v = VariantAttributes{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, v)
}

type Product struct {
	ID                  uuid.UUID         `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID            string            `json:"tenantId" gorm:"not null;index:idx_products_tenant_id;index:idx_products_tenant_sku,unique;index:idx_products_tenant_slug,unique"`
	CategoryID          *uuid.UUID        `json:"categoryId,omitempty" gorm:"type:uuid;index"`
	BrandID             *uuid.UUID        `json:"brandId,omitempty" gorm:"type:uuid;index"`
	Name                string            `json:"name" gorm:"not null"`
	Slug                string            `json:"slug" gorm:"not null;index:idx_products_tenant_slug,unique"`
	SKU                 string            `json:"sku" gorm:"not null;index:idx_products_tenant_sku,unique"`
	Description         *string           `json:"description,omitempty"`
	Images              ProductImages     `json:"images" gorm:"type:jsonb"`
	BaseBarcodes        StringArray       `json:"baseBarcodes" gorm:"type:jsonb"`
	CostPrice           decimal.Decimal   `json:"costPrice" gorm:"type:numeric(15,2);not null;default:0"`
	Price               decimal.Decimal   `json:"price" gorm:"type:numeric(15,2);not null;default:0"`
	StockOnHand         int               `json:"stockOnHand" gorm:"not null;default:0"`
	AllowSellOutOfStock bool              `json:"allowSellOutOfStock" gorm:"not null;default:false"`
	Status              ProductStatus     `json:"status" gorm:"not null;default:'active'"`
	HasVariants         bool              `json:"hasVariants" gorm:"not null;default:false"`
	Variants            []*ProductVariant `json:"variants" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedBy           *string           `json:"createdBy,omitempty"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
	DeletedAt           *gorm.DeletedAt   `json:"deletedAt,omitempty" gorm:"index"`
}

// ProductVariant represents a product variant
type ProductVariant struct {
	ID          uuid.UUID         `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID   uuid.UUID         `json:"productId" gorm:"type:uuid;not null;index"`
	TenantID    string            `json:"tenantId" gorm:"not null;index:idx_variants_tenant_sku,unique;index:idx_variants_tenant_barcode"`
	SKU         string            `json:"sku" gorm:"not null;index:idx_variants_tenant_sku,unique"`
	Barcode     *string           `json:"barcode,omitempty" gorm:"index:idx_variants_tenant_barcode"`
	Name        string            `json:"name" gorm:"not null"`
	Attributes  VariantAttributes `json:"attributes" gorm:"type:jsonb"`
	CostPrice   decimal.Decimal   `json:"costPrice" gorm:"type:numeric(15,2);not null;default:0"`
	Price       decimal.Decimal   `json:"price" gorm:"type:numeric(15,2);not null;default:0"`
	StockOnHand int               `json:"stockOnHand" gorm:"not null;default:0"`
	Status      ProductStatus     `json:"status" gorm:"not null;default:'active'"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	DeletedAt   *gorm.DeletedAt   `json:"deletedAt,omitempty" gorm:"index"`
}

// Category represents a product category
type Category struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  string          `json:"tenantId" gorm:"column:tenant_id;not null;index"`
	Name      string          `json:"name" gorm:"not null"`
	Slug      string          `json:"slug" gorm:"not null"`
	ParentID  *uuid.UUID      `json:"parentId,omitempty" gorm:"column:parent_id;type:uuid"`
	Level     int             `json:"level" gorm:"not null;default:0"`
	CreatedBy *string         `json:"createdBy,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

type Brand struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  string          `json:"tenantId" gorm:"not null;index"`
	Name      string          `json:"name" gorm:"not null"`
	Slug      string          `json:"slug" gorm:"not null"`
	CreatedBy *string         `json:"createdBy,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// Attribute is a variant dimension such as "Color" or "Size"
type Attribute struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  string    `json:"tenantId" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AttributeValue is one allowed value of an Attribute, scoped to (tenant, attribute)
type AttributeValue struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    string    `json:"tenantId" gorm:"not null;index:idx_attribute_values_scope"`
	AttributeID uuid.UUID `json:"attributeId" gorm:"type:uuid;not null;index:idx_attribute_values_scope"`
	Value       string    `json:"value" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BarcodeMatch is the result of a barcode lookup. Variant is nil when the
// code matched one of the product's base barcodes.
type BarcodeMatch struct {
	Product *Product
	Variant *ProductVariant
	IsBase  bool
}

// Response types
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     Error  `json:"error"`
	Timestamp string `json:"timestamp,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details *JSON  `json:"details,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

func (ProductVariant) TableName() string {
	return "product_variants"
}

func (Category) TableName() string {
	return "categories"
}

func (Brand) TableName() string {
	return "brands"
}

func (Attribute) TableName() string {
	return "attributes"
}

func (AttributeValue) TableName() string {
	return "attribute_values"
}
