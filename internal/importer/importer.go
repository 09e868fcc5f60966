// Package importer reconciles a catalog spreadsheet or CSV against a tenant's
// existing products, categories, brands and attributes.
//
// Rows are normalized and validated up front, then grouped into standalone
// products and products with variants, then committed one unit at a time.
// Each commit is independent: a failure or a stop never rolls back earlier work.
package importer

import (
	"context"
	"fmt"
	"time"

	"catalog-service/internal/models"

	"github.com/sirupsen/logrus"
)

type Importer struct {
	stores    Stores
	publisher EventPublisher
	logger    *logrus.Logger
	suffix    func() string
}

type Option func(*Importer)

// WithSuffixFunc overrides the generator of the six-digit suffix used for
// replaced identifiers and duplicated dimension names.
func WithSuffixFunc(fn func() string) Option {
	return func(i *Importer) {
		i.suffix = fn
	}
}

// New creates an Importer. publisher may be nil.
func New(stores Stores, publisher EventPublisher, logger *logrus.Logger, opts ...Option) *Importer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	imp := &Importer{
		stores:    stores,
		publisher: publisher,
		logger:    logger,
		suffix:    timestampSuffix,
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// ImportCatalog imports every row of the file for one tenant. An error is
// returned only when the file itself cannot be read; row-level problems are
// reported in the response.
func (imp *Importer) ImportCatalog(
	ctx context.Context,
	fileBytes []byte,
	isSpreadsheet bool,
	selectedSheets []string,
	options models.ImportOptions,
	tenantID, userID string,
) (*models.ImportResponse, error) {
	var rows []RawRow
	var err error
	if isSpreadsheet {
		rows, err = ParseSpreadsheet(fileBytes, selectedSheets)
	} else {
		rows, err = ParseCSV(fileBytes)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	log := imp.logger.WithFields(logrus.Fields{
		"component": "catalog-import",
		"tenantID":  tenantID,
		"userID":    userID,
	})
	run := &importRun{
		ctx:       ctx,
		stores:    imp.stores,
		publisher: imp.publisher,
		opts:      options,
		tenantID:  tenantID,
		userID:    userID,
		suffix:    imp.suffix,
		sets:      newRunningSets(),
		agg:       newResultAggregator(len(rows)),
		resolver: &dimensionResolver{
			stores:   imp.stores,
			tenantID: tenantID,
			userID:   userID,
			suffix:   imp.suffix,
		},
		log: log,
	}

	start := time.Now()
	log.WithField("rows", len(rows)).Info("Catalog import started")

	resp := run.execute(rows)

	entry := log.WithFields(logrus.Fields{
		"total":      resp.Data.Total,
		"success":    resp.Data.Success,
		"failed":     resp.Data.Failed,
		"products":   len(resp.Data.Products),
		"durationMs": time.Since(start).Milliseconds(),
	})
	if resp.Success {
		entry.Info("Catalog import completed")
	} else {
		entry.WithField("reason", resp.Message).Warn("Catalog import stopped")
	}
	return resp, nil
}

func (r *importRun) execute(rows []RawRow) *models.ImportResponse {
	drafts := make([]*ProductDraft, 0, len(rows))
	for _, row := range rows {
		d := Normalize(row)

		if errs := Validate(d, d.RowIndex); len(errs) > 0 {
			if r.opts.MissingRequiredFieldAction == models.ViolationActionStop {
				r.agg.addError(errs...)
				r.agg.halt([]int{d.RowIndex}, "missing required fields")
				return r.agg.response()
			}
			r.agg.fail(1, errs...)
			continue
		}

		if len(d.InvalidImageURLs) > 0 && r.opts.InvalidImageURLAction == models.ViolationActionStop {
			r.agg.addError(invalidImageErrors(d)...)
			r.agg.halt([]int{d.RowIndex}, "invalid image URL")
			return r.agg.response()
		}

		drafts = append(drafts, d)
	}

	standalone, groups := Group(drafts)

	if r.opts.ValidateOnly {
		r.agg.result.Success = len(drafts)
		resp := r.agg.response()
		resp.Message = fmt.Sprintf("Validation completed: %d valid, %d invalid", resp.Data.Success, resp.Data.Failed)
		return resp
	}

	if r.haltOnInFileDuplicates(standalone, groups) {
		return r.agg.response()
	}

	for _, d := range standalone {
		if r.commitStandalone(d) {
			return r.agg.response()
		}
	}
	for _, g := range groups {
		if r.commitGroup(g) {
			return r.agg.response()
		}
	}
	return r.agg.response()
}

// haltOnInFileDuplicates applies stop policies to collisions between rows of
// the same file before anything is committed. Returns true when the run stopped.
func (r *importRun) haltOnInFileDuplicates(standalone []*ProductDraft, groups []VariantGroup) bool {
	type scan struct {
		kind   string
		action models.DuplicateAction
		ids    []idOccurrence
	}

	var skus, barcodes, variantSkus []idOccurrence
	for _, d := range standalone {
		skus = append(skus, idOccurrence{value: d.SKU, row: d.RowIndex})
		barcodes = append(barcodes, idOccurrence{value: d.BaseBarcode, row: d.RowIndex})
	}
	for _, g := range groups {
		skus = append(skus, idOccurrence{value: g.Drafts[0].SKU, row: g.Drafts[0].RowIndex})
		for _, d := range g.Drafts {
			variantSkus = append(variantSkus, idOccurrence{value: d.Variant.SKU, row: d.RowIndex})
			barcodes = append(barcodes, idOccurrence{value: d.Variant.Barcode, row: d.RowIndex})
		}
	}

	for _, s := range []scan{
		{kind: "SKU", action: r.opts.DuplicateSkuAction, ids: skus},
		{kind: "barcode", action: r.opts.DuplicateBarcodeAction, ids: barcodes},
		{kind: "variant SKU", action: r.opts.DuplicateVariantSkuAction, ids: variantSkus},
	} {
		if s.action != models.DuplicateActionStop {
			continue
		}
		if dup, firstRow, found := firstInFileDuplicate(s.ids); found {
			r.agg.halt([]int{dup.row}, fmt.Sprintf("duplicate %s '%s' in file (first seen on row %d)", s.kind, dup.value, firstRow))
			return true
		}
	}
	return false
}
