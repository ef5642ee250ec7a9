package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCopyStyle(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	styleID, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"CCCCCC"}},
	})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "A1", "A1", styleID))

	require.NoError(t, CopyStyle(f, "Sheet1", "A1", "B2"))

	dstID, err := f.GetCellStyle("Sheet1", "B2")
	require.NoError(t, err)
	dst, err := f.GetStyle(dstID)
	require.NoError(t, err)

	require.NotNil(t, dst.Font)
	assert.True(t, dst.Font.Bold)
	assert.Equal(t, 12.0, dst.Font.Size)
	assert.Equal(t, "pattern", dst.Fill.Type)
}

func TestInsertRowsPreservingStyle(t *testing.T) {
	t.Run("zero count is a no-op", func(t *testing.T) {
		f := excelize.NewFile()
		defer f.Close()
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "fila"))

		require.NoError(t, InsertRowsPreservingStyle(f, "Sheet1", 1, 0, 1))

		v, err := f.GetCellValue("Sheet1", "A1")
		require.NoError(t, err)
		assert.Equal(t, "fila", v)
	})

	t.Run("inserted rows copy model row style", func(t *testing.T) {
		f := excelize.NewFile()
		defer f.Close()
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "modelo"))
		require.NoError(t, f.SetCellValue("Sheet1", "A2", "suma"))

		styleID, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Italic: true}})
		require.NoError(t, err)
		require.NoError(t, f.SetCellStyle("Sheet1", "A1", "A1", styleID))

		require.NoError(t, InsertRowsPreservingStyle(f, "Sheet1", 2, 2, 1))

		// Existing content shifted below the inserted rows.
		v, err := f.GetCellValue("Sheet1", "A4")
		require.NoError(t, err)
		assert.Equal(t, "suma", v)

		for _, cell := range []string{"A2", "A3"} {
			id, err := f.GetCellStyle("Sheet1", cell)
			require.NoError(t, err)
			style, err := f.GetStyle(id)
			require.NoError(t, err)
			require.NotNil(t, style.Font, cell)
			assert.True(t, style.Font.Italic, cell)
		}
	})
}

func TestRewriteFormulaRowRef(t *testing.T) {
	tests := []struct {
		formula string
		oldRow  int
		newRow  int
		want    string
	}{
		{"SUM(C$13:E$13)", 13, 15, "SUM(C$15:E$15)"},
		{"A$13+B$14", 13, 15, "A$15+B$14"},
		{"SUM(C13:E13)", 13, 15, "SUM(C13:E13)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RewriteFormulaRowRef(tt.formula, tt.oldRow, tt.newRow))
	}
}
