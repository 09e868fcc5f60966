// Command catalog-import runs one catalog import from a file on disk against
// the configured database, printing the import response as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"catalog-service/internal/config"
	"catalog-service/internal/importer"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const (
	fileFlag   = "file"
	tenantFlag = "tenant"
)

type flags struct {
	file         string
	tenant       string
	user         string
	sheets       []string
	validateOnly bool
	actions      map[string]*string
}

func main() {
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stderr)

	f := getFlagsValues()
	opts, err := f.importOptions()
	if err != nil {
		logger.WithError(err).Error("Invalid flags")
		os.Exit(2)
	}

	data, err := os.ReadFile(f.file)
	if err != nil {
		logger.WithError(err).WithField("file", f.file).Error("Failed to read import file")
		os.Exit(2)
	}

	cfg := config.Load()
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to database")
		os.Exit(2)
	}

	attributeRepo := repository.NewAttributeRepository(db, nil, 0)
	imp := importer.New(importer.Stores{
		Products:        repository.NewProductsRepository(db),
		Categories:      repository.NewCategoryRepository(db, nil, 0),
		Brands:          repository.NewBrandRepository(db, nil, 0),
		Attributes:      attributeRepo,
		AttributeValues: attributeRepo,
	}, nil, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	isSpreadsheet := strings.HasSuffix(strings.ToLower(f.file), ".xlsx")
	resp, err := imp.ImportCatalog(ctx, data, isSpreadsheet, f.sheets, opts, f.tenant, f.user)
	if err != nil {
		logger.WithError(err).Error("Import failed")
		os.Exit(2)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		logger.WithError(err).Error("Failed to write result")
		os.Exit(2)
	}
	if !resp.Success {
		os.Exit(1)
	}
}

func getFlagsValues() flags {
	f := flags{actions: make(map[string]*string)}
	pflag.StringVarP(&f.file, fileFlag, "f", "", "CSV or XLSX file to import")
	pflag.StringVarP(&f.tenant, tenantFlag, "t", "", "tenant id")
	pflag.StringVarP(&f.user, "user", "u", "", "acting user id")
	pflag.StringSliceVar(&f.sheets, "sheets", nil, "spreadsheet sheets to import (default: all data sheets)")
	pflag.BoolVar(&f.validateOnly, "validate-only", false, "validate rows without writing anything")

	for _, a := range []struct{ name, usage string }{
		{"duplicate-sku", "stop|skip|replace"},
		{"duplicate-barcode", "stop|skip|replace"},
		{"duplicate-variant-sku", "stop|skip|replace"},
		{"duplicate-category", "link|create"},
		{"duplicate-brand", "link|create"},
		{"missing-required-field", "stop|skip"},
		{"invalid-image-url", "stop|skip"},
	} {
		f.actions[a.name] = pflag.String(a.name, "", a.usage)
	}
	pflag.Parse()
	return f
}

func (f flags) importOptions() (models.ImportOptions, error) {
	var errs []error
	if f.file == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", fileFlag))
	}
	if f.tenant == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", tenantFlag))
	}

	opts := models.DefaultImportOptions()
	opts.ValidateOnly = f.validateOnly

	var err error
	if opts.DuplicateSkuAction, err = models.ParseDuplicateAction(*f.actions["duplicate-sku"], opts.DuplicateSkuAction); err != nil {
		errs = append(errs, err)
	}
	if opts.DuplicateBarcodeAction, err = models.ParseDuplicateAction(*f.actions["duplicate-barcode"], opts.DuplicateBarcodeAction); err != nil {
		errs = append(errs, err)
	}
	if opts.DuplicateVariantSkuAction, err = models.ParseDuplicateAction(*f.actions["duplicate-variant-sku"], opts.DuplicateVariantSkuAction); err != nil {
		errs = append(errs, err)
	}
	if opts.DuplicateCategoryAction, err = models.ParseDimensionAction(*f.actions["duplicate-category"], opts.DuplicateCategoryAction); err != nil {
		errs = append(errs, err)
	}
	if opts.DuplicateBrandAction, err = models.ParseDimensionAction(*f.actions["duplicate-brand"], opts.DuplicateBrandAction); err != nil {
		errs = append(errs, err)
	}
	if opts.MissingRequiredFieldAction, err = models.ParseViolationAction(*f.actions["missing-required-field"], opts.MissingRequiredFieldAction); err != nil {
		errs = append(errs, err)
	}
	if opts.InvalidImageURLAction, err = models.ParseViolationAction(*f.actions["invalid-image-url"], opts.InvalidImageURLAction); err != nil {
		errs = append(errs, err)
	}
	return opts, errors.Join(errs...)
}
