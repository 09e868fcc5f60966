package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog-service/internal/models"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrBrandNotFound    = errors.New("brand not found")
)

// dimensionResolver finds or creates the category, brand, attribute and
// attribute value entities a product refers to. Entities are created as soon
// as they are needed, so they survive a later failure of the owning product.
type dimensionResolver struct {
	stores   Stores
	tenantID string
	userID   string
	suffix   func() string
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *dimensionResolver) createdBy() *string {
	if r.userID == "" {
		return nil
	}
	id := r.userID
	return &id
}

// resolveCategory returns the category id for a draft, or nil when the draft
// names no category. The parent, when given, is always linked rather than duplicated.
func (r *dimensionResolver) resolveCategory(ctx context.Context, d *ProductDraft, action models.DimensionAction) (*uuid.UUID, error) {
	var parent *models.Category
	if d.ParentCategoryName != "" || d.ParentCategoryID != "" {
		p, err := r.resolveCategoryNode(ctx, d.ParentCategoryName, d.ParentCategoryID, nil, models.DimensionActionLink)
		if err != nil {
			return nil, fmt.Errorf("parent %w", err)
		}
		parent = p
	}

	category, err := r.resolveCategoryNode(ctx, d.CategoryName, d.CategoryID, parent, action)
	if err != nil || category == nil {
		return nil, err
	}
	return &category.ID, nil
}

func (r *dimensionResolver) resolveCategoryNode(ctx context.Context, name, explicitID string, parent *models.Category, action models.DimensionAction) (*models.Category, error) {
	name = strings.TrimSpace(name)

	if explicitID != "" {
		if id, err := uuid.Parse(strings.TrimSpace(explicitID)); err == nil {
			found, err := r.stores.Categories.FindByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if found != nil && found.TenantID == r.tenantID {
				return found, nil
			}
		}
		if name == "" {
			return nil, fmt.Errorf("%w: '%s'", ErrCategoryNotFound, explicitID)
		}
	}
	if name == "" {
		return nil, nil
	}

	var parentID *uuid.UUID
	level := 0
	if parent != nil {
		parentID = &parent.ID
		level = parent.Level + 1
	}

	categories, err := r.stores.Categories.List(ctx, r.tenantID)
	if err != nil {
		return nil, err
	}

	for i := range categories {
		c := &categories[i]
		if !sameName(c.Name, name) || !sameParent(c.ParentID, parentID) {
			continue
		}
		if action == models.DimensionActionCreate {
			return r.createCategory(ctx, fmt.Sprintf("%s (%s)", name, r.suffix()), parentID, level)
		}
		return c, nil
	}

	// Same name elsewhere in the tree: move it under the requested parent.
	if action == models.DimensionActionLink && parentID != nil {
		for i := range categories {
			c := &categories[i]
			if !sameName(c.Name, name) || c.ID == *parentID {
				continue
			}
			if err := r.stores.Categories.Update(ctx, r.tenantID, c.ID, map[string]interface{}{
				"parent_id": *parentID,
				"level":     level,
			}); err != nil {
				return nil, fmt.Errorf("failed to move category '%s': %w", c.Name, err)
			}
			c.ParentID = parentID
			c.Level = level
			return c, nil
		}
	}

	return r.createCategory(ctx, name, parentID, level)
}

func (r *dimensionResolver) createCategory(ctx context.Context, name string, parentID *uuid.UUID, level int) (*models.Category, error) {
	category := &models.Category{
		TenantID:  r.tenantID,
		Name:      name,
		ParentID:  parentID,
		Level:     level,
		CreatedBy: r.createdBy(),
	}
	if err := r.stores.Categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// resolveBrand mirrors resolveCategory without the parent dimension.
func (r *dimensionResolver) resolveBrand(ctx context.Context, name, explicitID string, action models.DimensionAction) (*uuid.UUID, error) {
	name = strings.TrimSpace(name)

	if explicitID != "" {
		if id, err := uuid.Parse(strings.TrimSpace(explicitID)); err == nil {
			found, err := r.stores.Brands.FindByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if found != nil && found.TenantID == r.tenantID {
				return &found.ID, nil
			}
		}
		if name == "" {
			return nil, fmt.Errorf("%w: '%s'", ErrBrandNotFound, explicitID)
		}
	}
	if name == "" {
		return nil, nil
	}

	brands, err := r.stores.Brands.List(ctx, r.tenantID)
	if err != nil {
		return nil, err
	}
	for i := range brands {
		if !sameName(brands[i].Name, name) {
			continue
		}
		if action == models.DimensionActionCreate {
			return r.createBrand(ctx, fmt.Sprintf("%s (%s)", name, r.suffix()))
		}
		return &brands[i].ID, nil
	}
	return r.createBrand(ctx, name)
}

func (r *dimensionResolver) createBrand(ctx context.Context, name string) (*uuid.UUID, error) {
	brand := &models.Brand{
		TenantID:  r.tenantID,
		Name:      name,
		CreatedBy: r.createdBy(),
	}
	if err := r.stores.Brands.Create(ctx, brand); err != nil {
		return nil, err
	}
	return &brand.ID, nil
}

func (r *dimensionResolver) resolveAttribute(ctx context.Context, name string) (*models.Attribute, error) {
	attributes, err := r.stores.Attributes.List(ctx, r.tenantID)
	if err != nil {
		return nil, err
	}
	for i := range attributes {
		if sameName(attributes[i].Name, name) {
			return &attributes[i], nil
		}
	}

	attribute := &models.Attribute{TenantID: r.tenantID, Name: strings.TrimSpace(name)}
	if err := r.stores.Attributes.Create(ctx, attribute); err != nil {
		return nil, err
	}
	return attribute, nil
}

func (r *dimensionResolver) resolveAttributeValue(ctx context.Context, attributeID uuid.UUID, value string) (*models.AttributeValue, error) {
	values, err := r.stores.AttributeValues.ListValues(ctx, r.tenantID, attributeID)
	if err != nil {
		return nil, err
	}
	for i := range values {
		if sameName(values[i].Value, value) {
			return &values[i], nil
		}
	}

	v := &models.AttributeValue{TenantID: r.tenantID, AttributeID: attributeID, Value: strings.TrimSpace(value)}
	if err := r.stores.AttributeValues.CreateValue(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// resolveVariantAttributes resolves every pair, dropping the ones that fail.
// The returned errors describe the dropped pairs.
func (r *dimensionResolver) resolveVariantAttributes(ctx context.Context, pairs []AttributePair) (models.VariantAttributes, []error) {
	var resolved models.VariantAttributes
	var errs []error
	for _, pair := range pairs {
		attribute, err := r.resolveAttribute(ctx, pair.Name)
		if err != nil {
			errs = append(errs, fmt.Errorf("attribute '%s': %w", pair.Name, err))
			continue
		}
		value, err := r.resolveAttributeValue(ctx, attribute.ID, pair.Value)
		if err != nil {
			errs = append(errs, fmt.Errorf("attribute value '%s:%s': %w", pair.Name, pair.Value, err))
			continue
		}
		resolved = append(resolved, models.VariantAttribute{
			AttributeID:   attribute.ID,
			AttributeName: attribute.Name,
			ValueID:       value.ID,
			Value:         value.Value,
		})
	}
	return resolved, errs
}
