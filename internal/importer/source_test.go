package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	rows, err := ParseCSV([]byte("\ufeffname *,sku*,name\n" +
		"Shirt,S1,Ignored\n" +
		",,\n" +
		"\"Multi\nline\",S2,\n" +
		",S3,Fallback\n"))

	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 2, rows[0].Index)
	assert.Equal(t, "Shirt", rows[0].Cells["name"])
	assert.Equal(t, "S1", rows[0].Cells["sku"])

	assert.Equal(t, 4, rows[1].Index)
	assert.Equal(t, "Multi\nline", rows[1].Cells["name"])

	assert.Equal(t, 6, rows[2].Index)
	assert.Equal(t, "Fallback", rows[2].Cells["name"])
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV(nil)
	assert.ErrorIs(t, err, ErrEmptyFile)

	rows, err := ParseCSV([]byte("name,sku\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func workbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"name", "sku", "salePrice"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Mug", "M1", 1200000}))

	_, err := f.NewSheet("Shoes")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Shoes", "A1", &[]interface{}{"Tên sản phẩm", "Mã hàng"}))
	require.NoError(t, f.SetSheetRow("Shoes", "A3", &[]interface{}{"Runner", "R1"}))

	_, err = f.NewSheet("Instructions")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Instructions", "A1", &[]interface{}{"Field", "Description"}))
	require.NoError(t, f.SetSheetRow("Instructions", "A2", &[]interface{}{"name", "Product name"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseSpreadsheet_AllDataSheets(t *testing.T) {
	rows, err := ParseSpreadsheet(workbook(t), nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Sheet1", rows[0].Sheet)
	assert.Equal(t, 2, rows[0].Index)
	assert.Equal(t, "1200000", rows[0].Cells["salePrice"])

	assert.Equal(t, "Shoes", rows[1].Sheet)
	assert.Equal(t, 3, rows[1].Index)
	assert.Equal(t, "Runner", rows[1].Cells["Tên sản phẩm"])
}

func TestParseSpreadsheet_SheetFilter(t *testing.T) {
	rows, err := ParseSpreadsheet(workbook(t), []string{" shoes "})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "R1", rows[0].Cells["Mã hàng"])

	rows, err = ParseSpreadsheet(workbook(t), []string{"instructions"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = ParseSpreadsheet(workbook(t), []string{"Missing"})
	assert.ErrorIs(t, err, ErrNoSheets)
}

func TestImportCatalog_SpreadsheetInfersCategoryFromSheet(t *testing.T) {
	store := newMemStore()
	resp := runImportSpreadsheet(t, store, workbook(t))

	assert.Equal(t, 2, resp.Data.Success)
	assert.Equal(t, []string{"Shoes"}, store.categoryNames())
	assert.Nil(t, store.productBySKU("M1").CategoryID)
	assert.Equal(t, int64(1200000), store.productBySKU("M1").Price.IntPart())
}
