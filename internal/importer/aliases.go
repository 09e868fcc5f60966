package importer

import (
	"sort"
	"strings"
)

type field string

const (
	fieldName                field = "name"
	fieldSKU                 field = "sku"
	fieldCategoryName        field = "categoryName"
	fieldCategoryID          field = "categoryId"
	fieldParentCategoryName  field = "parentCategoryName"
	fieldParentCategoryID    field = "parentCategoryId"
	fieldBrandName           field = "brandName"
	fieldBrandID             field = "brandId"
	fieldDescription         field = "description"
	fieldMainImage           field = "mainImage"
	fieldImage2              field = "image2"
	fieldImage3              field = "image3"
	fieldImage4              field = "image4"
	fieldImage5              field = "image5"
	fieldBarcode             field = "barcode"
	fieldCostPrice           field = "costPrice"
	fieldSalePrice           field = "salePrice"
	fieldStockOnHand         field = "stockOnHand"
	fieldAllowSellOutOfStock field = "allowSellOutOfStock"
	fieldStatus              field = "status"
	fieldVariantSKU          field = "variantSku"
	fieldVariantBarcode      field = "variantBarcode"
	fieldAttributes          field = "attributes"
	fieldVariantCostPrice    field = "variantCostPrice"
	fieldVariantSalePrice    field = "variantSalePrice"
	fieldVariantStock        field = "variantStockOnHand"
	fieldVariantStatus       field = "variantStatus"
)

type fieldAlias struct {
	field   field
	aliases []string
}

// fieldAliases lists the accepted header spellings per canonical field, in
// priority order. Exact matches are tried before case-insensitive ones.
var fieldAliases = []fieldAlias{
	{fieldName, []string{"name", "Name", "Product Name", "productName", "Tên sản phẩm", "Tên hàng", "Tên"}},
	{fieldSKU, []string{"sku", "SKU", "Product SKU", "Mã hàng", "Mã sản phẩm", "Mã SKU"}},
	{fieldCategoryName, []string{"categoryName", "category", "Category", "Category Name", "Danh mục", "Nhóm hàng", "Loại hàng"}},
	{fieldCategoryID, []string{"categoryId", "Category ID", "Mã danh mục"}},
	{fieldParentCategoryName, []string{"parentCategoryName", "parentCategory", "Parent Category", "Danh mục cha", "Nhóm hàng cha"}},
	{fieldParentCategoryID, []string{"parentCategoryId", "Parent Category ID", "Mã danh mục cha"}},
	{fieldBrandName, []string{"brandName", "brand", "Brand", "Brand Name", "Thương hiệu", "Nhãn hiệu"}},
	{fieldBrandID, []string{"brandId", "Brand ID", "Mã thương hiệu"}},
	{fieldDescription, []string{"description", "Description", "Mô tả", "Mô tả sản phẩm"}},
	{fieldMainImage, []string{"mainImage", "image", "imageUrl", "Main Image", "Image", "Image URL", "Ảnh chính", "Hình ảnh chính", "Hình ảnh"}},
	{fieldImage2, []string{"image2", "imageUrl2", "Image 2", "Ảnh 2", "Hình ảnh 2"}},
	{fieldImage3, []string{"image3", "imageUrl3", "Image 3", "Ảnh 3", "Hình ảnh 3"}},
	{fieldImage4, []string{"image4", "imageUrl4", "Image 4", "Ảnh 4", "Hình ảnh 4"}},
	{fieldImage5, []string{"image5", "imageUrl5", "Image 5", "Ảnh 5", "Hình ảnh 5"}},
	{fieldBarcode, []string{"barcode", "Barcode", "baseBarcode", "Mã vạch"}},
	{fieldCostPrice, []string{"costPrice", "cost", "Cost Price", "Giá vốn", "Giá nhập"}},
	{fieldSalePrice, []string{"salePrice", "price", "Price", "Sale Price", "Giá bán"}},
	{fieldStockOnHand, []string{"stockOnHand", "stock", "quantity", "Stock", "Quantity", "Tồn kho", "Số lượng"}},
	{fieldAllowSellOutOfStock, []string{"allowSellOutOfStock", "Allow Sell Out Of Stock", "Cho phép bán khi hết hàng", "Bán khi hết hàng"}},
	{fieldStatus, []string{"status", "Status", "Trạng thái"}},
	{fieldVariantSKU, []string{"variantSku", "Variant SKU", "Mã biến thể", "Mã hàng biến thể"}},
	{fieldVariantBarcode, []string{"variantBarcode", "Variant Barcode", "Mã vạch biến thể"}},
	{fieldAttributes, []string{"attributes", "variantAttributes", "Attributes", "Thuộc tính", "Thuộc tính biến thể"}},
	{fieldVariantCostPrice, []string{"variantCostPrice", "Variant Cost Price", "Giá vốn biến thể"}},
	{fieldVariantSalePrice, []string{"variantSalePrice", "variantPrice", "Variant Price", "Giá bán biến thể"}},
	{fieldVariantStock, []string{"variantStockOnHand", "variantStock", "Variant Stock", "Tồn kho biến thể"}},
	{fieldVariantStatus, []string{"variantStatus", "Variant Status", "Trạng thái biến thể"}},
}

var aliasIndex = func() map[field][]string {
	idx := make(map[field][]string, len(fieldAliases))
	for _, fa := range fieldAliases {
		idx[fa.field] = fa.aliases
	}
	return idx
}()

// imageFields are consulted in order; the first is the primary image group.
var imageFields = []field{fieldMainImage, fieldImage2, fieldImage3, fieldImage4, fieldImage5}

// cellLookup resolves canonical fields against one row's cells.
type cellLookup struct {
	exact map[string]string
	lower map[string]string
}

func newCellLookup(cells map[string]string) cellLookup {
	labels := make([]string, 0, len(cells))
	for label := range cells {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	lower := make(map[string]string, len(cells))
	for _, label := range labels {
		key := strings.ToLower(label)
		if lower[key] == "" {
			lower[key] = cells[label]
		}
	}
	return cellLookup{exact: cells, lower: lower}
}

// get returns the value of the first alias present with a non-empty cell.
func (l cellLookup) get(f field) string {
	aliases := aliasIndex[f]
	for _, alias := range aliases {
		if v := l.exact[alias]; v != "" {
			return v
		}
	}
	for _, alias := range aliases {
		if v := l.lower[strings.ToLower(alias)]; v != "" {
			return v
		}
	}
	return ""
}
