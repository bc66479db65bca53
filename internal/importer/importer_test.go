package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetectCSVDelimiter(t *testing.T) {
	cases := []struct {
		name     string
		content  string
		expected rune
	}{
		{"comma", "label,length,qty\nA,918,4\n", ','},
		{"semicolon", "label;length;qty\nA;918;4\n", ';'},
		{"tab", "label\tlength\tqty\nA\t918\t4\n", '\t'},
		{"pipe", "label|length|qty\nA|918|4\n", '|'},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DetectCSVDelimiter([]byte(tc.content)))
		})
	}
}

func TestDetectColumns_HeaderAliases(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Part Name", "Length", "Qty", "Profile", "Work Order"})

	assert.True(t, isHeader)
	assert.Equal(t, 0, mapping.Label)
	assert.Equal(t, 1, mapping.Length)
	assert.Equal(t, 2, mapping.Quantity)
	assert.Equal(t, 3, mapping.Profile)
	assert.Equal(t, 4, mapping.WorkOrder)
}

func TestDetectColumns_NoHeaderFallsBackToPositional(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Rail", "918", "4"})

	assert.False(t, isHeader)
	assert.Equal(t, 0, mapping.Label)
	assert.Equal(t, 1, mapping.Length)
	assert.Equal(t, 2, mapping.Quantity)
}

func TestImportCSV_WithHeader(t *testing.T) {
	path := writeTempFile(t, "cuts.csv", "Label,Length,Qty,Profile,WO\nRail,918,4,40x40,WO-1\nBrace,687.5,2,,\n")

	result := ImportCSV(path)

	assert.Empty(t, result.Errors)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Rail", result.Items[0].Label)
	assert.Equal(t, 918.0, result.Items[0].Length)
	assert.Equal(t, 4, result.Items[0].Quantity)
	assert.Equal(t, "40x40", result.Items[0].ProfileType)
	assert.Equal(t, "WO-1", result.Items[0].WorkOrderID)
	assert.Equal(t, 687.5, result.Items[1].Length)
}

func TestImportCSV_SemicolonDelimiter(t *testing.T) {
	path := writeTempFile(t, "cuts.csv", "Label;Length;Qty\nRail;918;4\n")

	result := ImportCSV(path)

	assert.Empty(t, result.Errors)
	require.Len(t, result.Items, 1)
	assert.Contains(t, strings.Join(result.Warnings, " "), "semicolon")
}

func TestImportCSV_PositionalWithoutHeader(t *testing.T) {
	path := writeTempFile(t, "cuts.csv", "Rail,918,4\nBrace,687,2\n")

	result := ImportCSV(path)

	assert.Empty(t, result.Errors)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Brace", result.Items[1].Label)
}

func TestImportCSV_BadRowsAreReportedAndSkipped(t *testing.T) {
	path := writeTempFile(t, "cuts.csv", "Label,Length,Qty\nRail,918,4\nBad,not-a-number,2\nNegative,-5,1\n")

	result := ImportCSV(path)

	require.Len(t, result.Items, 1)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Invalid length")
	assert.Contains(t, result.Errors[1], "must be positive")
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := writeTempFile(t, "empty.csv", "   \n")

	result := ImportCSV(path)

	assert.Empty(t, result.Items)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "empty")
}

func TestImportCSV_MissingFile(t *testing.T) {
	result := ImportCSV(filepath.Join(t.TempDir(), "nope.csv"))

	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "Cannot open file")
}

func TestImportCSVFromReader(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Label,Length,Qty\nRail,918,4\n"), ',')

	assert.Empty(t, result.Errors)
	require.Len(t, result.Items, 1)
	assert.Equal(t, 918.0, result.Items[0].Length)
}

func TestImportCSV_BlankRowsSkipped(t *testing.T) {
	path := writeTempFile(t, "cuts.csv", "Label,Length,Qty\nRail,918,4\n,,\nBrace,687,2\n")

	result := ImportCSV(path)

	assert.Empty(t, result.Errors)
	assert.Len(t, result.Items, 2)
}

func TestImportExcel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Label", "Length", "Qty", "Profile"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Rail", 918, 4, "40x40"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"Brace", 687, 2, ""}))

	path := filepath.Join(t.TempDir(), "cuts.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	result := ImportExcel(path)

	assert.Empty(t, result.Errors)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Rail", result.Items[0].Label)
	assert.Equal(t, 918.0, result.Items[0].Length)
	assert.Equal(t, "40x40", result.Items[0].ProfileType)
}

func TestImportExcel_MissingFile(t *testing.T) {
	result := ImportExcel(filepath.Join(t.TempDir(), "nope.xlsx"))

	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "Cannot open Excel file")
}
