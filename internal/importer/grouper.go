package importer

import (
	"fmt"
	"sort"
	"strings"

	"catalog-service/internal/textnorm"
)

// VariantGroup is the set of rows that describe one product with variants.
type VariantGroup struct {
	Key    string
	Drafts []*ProductDraft
}

// RowIndices returns the source row numbers of the group in file order.
func (g VariantGroup) RowIndices() []int {
	rows := make([]int, len(g.Drafts))
	for i, d := range g.Drafts {
		rows[i] = d.RowIndex
	}
	return rows
}

// GroupKey derives the product identity shared by the variant rows of one product.
// Raw names are compared, not resolved ids: two spellings of the same category
// produce two products.
func GroupKey(d *ProductDraft) string {
	urls := make([]string, 0, len(d.Images))
	for _, img := range d.Images {
		urls = append(urls, strings.TrimSpace(img.URL))
	}
	sort.Strings(urls)

	return strings.Join([]string{
		textnorm.Fold(d.Name),
		textnorm.Fold(d.SKU),
		textnorm.Fold(d.CategoryName),
		textnorm.Fold(d.ParentCategoryName),
		textnorm.Fold(d.BrandName),
		strings.Join(urls, ","),
	}, "|")
}

// Group splits drafts into standalone drafts and variant groups. Groups keep
// the order in which their first row appears.
func Group(drafts []*ProductDraft) ([]*ProductDraft, []VariantGroup) {
	var standalone []*ProductDraft
	var groups []VariantGroup
	index := make(map[string]int)

	for _, d := range drafts {
		if d.Variant == nil {
			standalone = append(standalone, d)
			continue
		}
		key := GroupKey(d)
		if i, ok := index[key]; ok {
			groups[i].Drafts = append(groups[i].Drafts, d)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, VariantGroup{Key: key, Drafts: []*ProductDraft{d}})
	}
	return standalone, groups
}

func rowsLabel(rows []int) string {
	if len(rows) == 1 {
		return fmt.Sprintf("Row %d", rows[0])
	}
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = fmt.Sprint(r)
	}
	return "Rows " + strings.Join(parts, ", ")
}
