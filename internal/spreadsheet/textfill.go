package spreadsheet

import (
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ApplyReplacements substitutes placeholder text across every populated cell
// of a sheet. Cells holding formulas are left alone. Returns the number of
// cells rewritten.
func ApplyReplacements(f *excelize.File, sheet string, repl map[string]string, logger *zap.Logger) int {
	rows, err := f.GetRows(sheet)
	if err != nil {
		logger.Warn("Failed to read sheet rows", zap.String("sheet", sheet), zap.Error(err))
		return 0
	}

	replaced := 0
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			if value == "" {
				continue
			}
			updated := value
			for old, new := range repl {
				if old == "" {
					continue
				}
				updated = strings.ReplaceAll(updated, old, new)
			}
			if updated == value {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				continue
			}
			if formula, err := f.GetCellFormula(sheet, cell); err == nil && formula != "" {
				continue
			}
			if err := f.SetCellValue(sheet, cell, updated); err != nil {
				logger.Warn("Failed to replace cell text",
					zap.String("sheet", sheet), zap.String("cell", cell), zap.Error(err))
				continue
			}
			replaced++
		}
	}
	return replaced
}
