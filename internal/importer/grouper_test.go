package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func variantDraft(row int, name, sku, variantSKU string, images ...string) *ProductDraft {
	d := &ProductDraft{RowIndex: row, Name: name, SKU: sku, Variant: &VariantData{SKU: variantSKU}}
	for i, url := range images {
		d.Images = append(d.Images, DraftImage{URL: url, IsPrimary: i == 0})
	}
	return d
}

func TestGroupKey_IgnoresCaseAccentsAndImageOrder(t *testing.T) {
	a := variantDraft(2, "Áo Thun  Trắng", "AT1", "AT1-S", "https://x/1.jpg", "https://x/2.jpg")
	b := variantDraft(3, "ao thun trang", "at1", "AT1-M", "https://x/2.jpg", "https://x/1.jpg")
	assert.Equal(t, GroupKey(a), GroupKey(b))

	c := variantDraft(4, "Áo Thun Trắng", "AT2", "AT2-S")
	assert.NotEqual(t, GroupKey(a), GroupKey(c))

	d := variantDraft(5, "Áo Thun Trắng", "AT1", "AT1-L", "https://x/1.jpg", "https://x/2.jpg")
	d.BrandName = "Acme"
	assert.NotEqual(t, GroupKey(a), GroupKey(d))
}

func TestGroup_FirstAppearanceOrder(t *testing.T) {
	drafts := []*ProductDraft{
		variantDraft(2, "Pants", "P1", "P1-S"),
		{RowIndex: 3, Name: "Cap", SKU: "C1"},
		variantDraft(4, "Shirt", "S1", "S1-S"),
		variantDraft(5, "Pants", "P1", "P1-M"),
		{RowIndex: 6, Name: "Belt", SKU: "B1"},
	}

	standalone, groups := Group(drafts)

	require.Len(t, standalone, 2)
	assert.Equal(t, "C1", standalone[0].SKU)
	assert.Equal(t, "B1", standalone[1].SKU)
	require.Len(t, groups, 2)
	assert.Equal(t, []int{2, 5}, groups[0].RowIndices())
	assert.Equal(t, []int{4}, groups[1].RowIndices())
}

func TestRowsLabel(t *testing.T) {
	assert.Equal(t, "Row 3", rowsLabel([]int{3}))
	assert.Equal(t, "Rows 2, 5, 9", rowsLabel([]int{2, 5, 9}))
}
