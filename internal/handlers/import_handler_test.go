package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog-service/internal/importer"
	"catalog-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// MockCatalogImporter is a mock implementation of CatalogImporter
type MockCatalogImporter struct {
	mock.Mock
}

func (m *MockCatalogImporter) ImportCatalog(ctx context.Context, fileBytes []byte, isSpreadsheet bool, selectedSheets []string, options models.ImportOptions, tenantID, userID string) (*models.ImportResponse, error) {
	args := m.Called(ctx, fileBytes, isSpreadsheet, selectedSheets, options, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImportResponse), args.Error(1)
}

func setupTestRouter(h *ImportHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if tenant := c.GetHeader("X-Tenant-ID"); tenant != "" {
			c.Set("tenant_id", tenant)
		}
		c.Set("user_id", "user-1")
		c.Next()
	})
	r.POST("/import", h.ImportProducts)
	r.GET("/import/template", h.GetImportTemplate)
	return r
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func uploadRequest(t *testing.T, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/import", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Tenant-ID", "tenant-1")
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestImportProducts_Success(t *testing.T) {
	mockImporter := new(MockCatalogImporter)
	handler := NewImportHandler(mockImporter, 1024*1024, quietLogger())
	router := setupTestRouter(handler)

	content := []byte("name,sku\nShirt,S1\n")
	expectedOpts := models.DefaultImportOptions()
	expectedOpts.DuplicateSkuAction = models.DuplicateActionReplace
	expectedOpts.DuplicateCategoryAction = models.DimensionActionCreate

	mockImporter.On("ImportCatalog", mock.Anything, content, false, []string(nil), expectedOpts, "tenant-1", "user-1").
		Return(&models.ImportResponse{
			Success: true,
			Message: "Import completed: 1 succeeded, 0 failed",
			Data: models.ImportResult{
				Total:    1,
				Success:  1,
				Errors:   []string{},
				Products: []models.ImportedProduct{{ID: "p-1", Name: "Shirt", SKU: "S1"}},
			},
		}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "catalog.csv", content, map[string]string{
		"duplicateSkuAction":      "replace",
		"duplicateCategoryAction": "create",
	}))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.ImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Data.Success)
	assert.Equal(t, "S1", resp.Data.Products[0].SKU)
	mockImporter.AssertExpectations(t)
}

func TestImportProducts_SpreadsheetWithOptionsJSONAndSheets(t *testing.T) {
	mockImporter := new(MockCatalogImporter)
	handler := NewImportHandler(mockImporter, 1024*1024, quietLogger())
	router := setupTestRouter(handler)

	expectedOpts := models.DefaultImportOptions()
	expectedOpts.MissingRequiredFieldAction = models.ViolationActionStop
	expectedOpts.DuplicateBarcodeAction = models.DuplicateActionStop
	expectedOpts.ValidateOnly = true

	mockImporter.On("ImportCatalog", mock.Anything, mock.Anything, true, []string{"Shoes", "Bags"}, expectedOpts, "tenant-1", "user-1").
		Return(&models.ImportResponse{Success: true, Message: "Validation completed: 0 valid, 0 invalid"}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "Catalog.XLSX", []byte("xlsx"), map[string]string{
		"options":                `{"missingRequiredFieldAction":"stop","duplicateBarcodeAction":"skip","validateOnly":true}`,
		"duplicateBarcodeAction": "STOP",
		"sheets":                 " Shoes, ,Bags ",
	}))

	assert.Equal(t, http.StatusOK, w.Code)
	mockImporter.AssertExpectations(t)
}

func TestImportProducts_StoppedRunIsStillOK(t *testing.T) {
	mockImporter := new(MockCatalogImporter)
	handler := NewImportHandler(mockImporter, 0, quietLogger())
	router := setupTestRouter(handler)

	mockImporter.On("ImportCatalog", mock.Anything, mock.Anything, false, mock.Anything, mock.Anything, "tenant-1", "user-1").
		Return(&models.ImportResponse{Success: false, Message: "Import stopped at row 3: SKU 'A' already exists"}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "catalog.csv", []byte("name,sku\nA,A\n"), nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestImportProducts_Errors(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		content     []byte
		fields      map[string]string
		importErr   error
		maxBytes    int64
		expectCode  int
		expectError string
	}{
		{
			name:        "missing file",
			expectCode:  http.StatusBadRequest,
			expectError: "FILE_REQUIRED",
		},
		{
			name:        "unsupported extension",
			filename:    "catalog.xls",
			content:     []byte("x"),
			expectCode:  http.StatusBadRequest,
			expectError: "INVALID_FORMAT",
		},
		{
			name:        "unknown action",
			filename:    "catalog.csv",
			content:     []byte("name,sku\n"),
			fields:      map[string]string{"duplicateSkuAction": "overwrite"},
			expectCode:  http.StatusBadRequest,
			expectError: "INVALID_OPTION",
		},
		{
			name:        "broken options json",
			filename:    "catalog.csv",
			content:     []byte("name,sku\n"),
			fields:      map[string]string{"options": "{"},
			expectCode:  http.StatusBadRequest,
			expectError: "INVALID_OPTION",
		},
		{
			name:        "too large",
			filename:    "catalog.csv",
			content:     bytes.Repeat([]byte("a"), 2048),
			maxBytes:    1024,
			expectCode:  http.StatusBadRequest,
			expectError: "FILE_TOO_LARGE",
		},
		{
			name:        "no rows",
			filename:    "catalog.csv",
			content:     []byte("name,sku\n"),
			importErr:   importer.ErrEmptyFile,
			expectCode:  http.StatusBadRequest,
			expectError: "EMPTY_FILE",
		},
		{
			name:        "unreadable",
			filename:    "catalog.xlsx",
			content:     []byte("not a workbook"),
			importErr:   errors.New("failed to open Excel file: zip: not a valid zip file"),
			expectCode:  http.StatusBadRequest,
			expectError: "PARSE_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockImporter := new(MockCatalogImporter)
			if tt.importErr != nil {
				mockImporter.On("ImportCatalog", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, tt.importErr)
			}
			handler := NewImportHandler(mockImporter, tt.maxBytes, quietLogger())
			router := setupTestRouter(handler)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, uploadRequest(t, tt.filename, tt.content, tt.fields))

			assert.Equal(t, tt.expectCode, w.Code)
			resp := decodeError(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectError, resp.Error.Code)
			if tt.importErr == nil {
				mockImporter.AssertNumberOfCalls(t, "ImportCatalog", 0)
			}
		})
	}
}

func TestImportProducts_RequiresTenant(t *testing.T) {
	handler := NewImportHandler(new(MockCatalogImporter), 0, quietLogger())
	router := setupTestRouter(handler)

	req := uploadRequest(t, "catalog.csv", []byte("name,sku\n"), nil)
	req.Header.Del("X-Tenant-ID")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TENANT_REQUIRED", decodeError(t, w).Error.Code)
}

func TestGetImportTemplate(t *testing.T) {
	router := setupTestRouter(NewImportHandler(new(MockCatalogImporter), 0, quietLogger()))

	t.Run("json", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/import/template", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Success  bool                  `json:"success"`
			Template models.ImportTemplate `json:"template"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, len(models.ProductImportColumns()), len(body.Template.Columns))
	})

	t.Run("csv vietnamese", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/import/template?format=csv&lang=vi", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		rows, err := importer.ParseCSV(append(w.Body.Bytes(), []byte("\n")...))
		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.Contains(t, w.Body.String(), models.ProductImportColumns()[0].LocalName)
	})

	t.Run("xlsx", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/import/template?format=xlsx", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()

		assert.Equal(t, []string{"Products", "Instructions"}, f.GetSheetList())
		first := models.ProductImportColumns()[0]
		header, err := f.GetCellValue("Products", "A1")
		require.NoError(t, err)
		if first.Required {
			assert.Equal(t, first.Name+" *", header)
		} else {
			assert.Equal(t, first.Name, header)
		}
	})
}

func TestReadinessCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ready", ReadinessCheck(map[string]func(context.Context) error{
		"database": func(context.Context) error { return nil },
	}))
	r.GET("/ready-broken", ReadinessCheck(map[string]func(context.Context) error{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	}))
	r.GET("/health", HealthCheck)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready-broken", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
