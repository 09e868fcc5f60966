package importer

import "fmt"

// Validate reports the required-field violations of a draft. An empty result means valid.
func Validate(d *ProductDraft, rowIndex int) []string {
	var errs []string
	if d.Name == "" {
		errs = append(errs, fmt.Sprintf("Row %d: product name is required", rowIndex))
	}
	if d.SKU == "" {
		errs = append(errs, fmt.Sprintf("Row %d: SKU is required", rowIndex))
	}
	if len(d.Images) > MaxProductImages {
		errs = append(errs, fmt.Sprintf("Row %d: at most %d images are allowed", rowIndex, MaxProductImages))
	}
	if d.Variant != nil && d.Variant.SKU == "" {
		errs = append(errs, fmt.Sprintf("Row %d: variant SKU is required", rowIndex))
	}
	return errs
}

// invalidImageErrors describes the image cells Normalize discarded.
func invalidImageErrors(d *ProductDraft) []string {
	errs := make([]string, 0, len(d.InvalidImageURLs))
	for _, url := range d.InvalidImageURLs {
		errs = append(errs, fmt.Sprintf("Row %d: invalid image URL '%s' (must start with http)", d.RowIndex, url))
	}
	return errs
}
