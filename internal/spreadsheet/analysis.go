package spreadsheet

import (
	"fmt"
	"strings"

	"github.com/auditoria/docgen/internal/domain/entity"
	"github.com/auditoria/docgen/internal/findata"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Balance-sheet template geometry: section markers live in column B, prior
// and current year values in C and D, variance in E, vertical-analysis
// percentage in F.
const (
	markerCol      = "B"
	priorYearCol   = "C"
	currentYearCol = "D"
	varianceCol    = "E"
	percentCol     = "F"

	markerScanRows   = 100
	sumSearchWindow  = 20
	sumFallbackDelta = 10
)

// blockLayout tracks the anchor rows of the ACTIVO and PASIVO-PATRIMONIO
// blocks while insertions shift them.
type blockLayout struct {
	filaActivo     int
	filaSumaActivo int
	filaPasivoPat  int
	filaSumaPasivo int
}

// AnalysisEngine fills balance-sheet worksheets with two-year comparative
// values and variance/percentage formulas.
type AnalysisEngine struct {
	logger *zap.Logger
}

// NewAnalysisEngine creates a new horizontal/vertical analysis engine
func NewAnalysisEngine(logger *zap.Logger) *AnalysisEngine {
	return &AnalysisEngine{logger: logger}
}

// AppliesTo reports whether a sheet belongs to the balance-sheet family.
func (e *AnalysisEngine) AppliesTo(sheet string) bool {
	upper := strings.ToUpper(sheet)
	return strings.Contains(upper, "BALANCE") || strings.Contains(upper, "BG")
}

// Process fills one balance-sheet worksheet. The two most recent years found
// among ANUAL balances become the comparative columns. A missing ACTIVO or
// PASIVO Y PATRIMONIO anchor skips the sheet entirely.
func (e *AnalysisEngine) Process(f *excelize.File, sheet string, data *findata.FinancialData) error {
	years := findata.AnnualYears(data.Balances)
	if len(years) == 0 {
		return fmt.Errorf("annual years: %w", ErrDataNotFound)
	}
	// Keep only the two most recent.
	if len(years) > 2 {
		years = years[len(years)-2:]
	}
	priorYear, currentYear := "", years[len(years)-1]
	if len(years) == 2 {
		priorYear = years[0]
	}

	layout, err := e.locate(f, sheet)
	if err != nil {
		return err
	}

	activo := findata.AccountsBySection(data.Balances, entity.TipoBalanceAnual, entity.SeccionActivo, currentYear)
	pasivo := findata.AccountsBySection(data.Balances, entity.TipoBalanceAnual, entity.SeccionPasivo, currentYear)
	patrimonio := findata.AccountsBySection(data.Balances, entity.TipoBalanceAnual, entity.SeccionPatrimonio, currentYear)

	// ACTIVO block.
	if err := e.fillBlock(f, sheet, layout.filaActivo, &layout.filaSumaActivo,
		[]sectionAccounts{{entity.SeccionActivo, activo}}, priorYear, currentYear, data,
		func(inserted int) {
			layout.filaPasivoPat += inserted
			layout.filaSumaPasivo += inserted
		}); err != nil {
		return err
	}

	// PASIVO + PATRIMONIO block: Pasivo accounts first, then Patrimonio, in
	// one contiguous row range.
	if err := e.fillBlock(f, sheet, layout.filaPasivoPat, &layout.filaSumaPasivo,
		[]sectionAccounts{
			{entity.SeccionPasivo, pasivo},
			{entity.SeccionPatrimonio, patrimonio},
		}, priorYear, currentYear, data, nil); err != nil {
		return err
	}

	e.logger.Debug("Balance-sheet analysis filled",
		zap.String("sheet", sheet),
		zap.String("prior_year", priorYear),
		zap.String("current_year", currentYear),
		zap.Int("activo", len(activo)),
		zap.Int("pasivo", len(pasivo)),
		zap.Int("patrimonio", len(patrimonio)))
	return nil
}

type sectionAccounts struct {
	seccion entity.Seccion
	cuentas []string
}

// locate scans column B for the section and sum markers, applying the
// documented fallbacks when a sum row is missing.
func (e *AnalysisEngine) locate(f *excelize.File, sheet string) (*blockLayout, error) {
	layout := &blockLayout{}

	for row := 1; row <= markerScanRows; row++ {
		value, _ := f.GetCellValue(sheet, fmt.Sprintf("%s%d", markerCol, row))
		upper := strings.ToUpper(strings.TrimSpace(value))
		switch {
		case upper == "ACTIVO" && layout.filaActivo == 0:
			layout.filaActivo = row
		case strings.Contains(upper, "SUMA") && strings.Contains(upper, "ACTIVO") &&
			!strings.Contains(upper, "PASIVO") && layout.filaSumaActivo == 0:
			layout.filaSumaActivo = row
		case upper == "PASIVO Y PATRIMONIO" && layout.filaPasivoPat == 0:
			layout.filaPasivoPat = row
		case strings.Contains(upper, "SUMA") && strings.Contains(upper, "PASIVO") &&
			strings.Contains(upper, "PATRIMONIO") && layout.filaSumaPasivo == 0:
			layout.filaSumaPasivo = row
		}
	}

	if layout.filaActivo == 0 || layout.filaPasivoPat == 0 {
		return nil, fmt.Errorf("balance-sheet section markers: %w", ErrAnchorNotFound)
	}
	if layout.filaSumaActivo == 0 {
		layout.filaSumaActivo = layout.filaPasivoPat - 1
	}
	if layout.filaSumaPasivo == 0 {
		// Approximate: first "SUMA" cell within the window below the section
		// header, else a fixed offset. Heuristic, not guaranteed correct.
		for row := layout.filaPasivoPat + 1; row <= layout.filaPasivoPat+sumSearchWindow; row++ {
			value, _ := f.GetCellValue(sheet, fmt.Sprintf("%s%d", markerCol, row))
			if strings.Contains(strings.ToUpper(value), "SUMA") {
				layout.filaSumaPasivo = row
				break
			}
		}
		if layout.filaSumaPasivo == 0 {
			layout.filaSumaPasivo = layout.filaPasivoPat + sumFallbackDelta
		}
	}

	return layout, nil
}

// fillBlock expands one block to fit its accounts, rewrites the SUM row and
// writes the comparative values and formulas. onInsert is called with the
// number of inserted rows so the caller can shift rows tracked below the
// block.
func (e *AnalysisEngine) fillBlock(f *excelize.File, sheet string, headerRow int, sumRow *int,
	sections []sectionAccounts, priorYear, currentYear string, data *findata.FinancialData,
	onInsert func(inserted int)) error {

	total := 0
	for _, s := range sections {
		total += len(s.cuentas)
	}
	if total == 0 {
		return nil
	}

	available := *sumRow - headerRow - 1
	if inserted := total - available; inserted > 0 {
		if err := InsertRowsPreservingStyle(f, sheet, *sumRow, inserted, *sumRow-1); err != nil {
			return err
		}
		*sumRow += inserted
		if onInsert != nil {
			onInsert(inserted)
		}
	}

	firstData := headerRow
	lastData := *sumRow - 1
	for _, col := range []string{priorYearCol, currentYearCol} {
		cell := fmt.Sprintf("%s%d", col, *sumRow)
		formula := fmt.Sprintf("SUM(%s%d:%s%d)", col, firstData, col, lastData)
		if err := f.SetCellFormula(sheet, cell, formula); err != nil {
			e.logger.Warn("Failed to rewrite sum formula", zap.String("cell", cell), zap.Error(err))
		}
	}

	row := firstData
	for _, s := range sections {
		for _, cuenta := range s.cuentas {
			e.writeAnalysisRow(f, sheet, row, *sumRow, s.seccion, cuenta, priorYear, currentYear, data)
			row++
		}
	}
	return nil
}

// writeAnalysisRow writes one account row: name, prior/current year values
// (cells already holding formulas are never overwritten by literals), the
// variance formula and the vertical-analysis percentage.
func (e *AnalysisEngine) writeAnalysisRow(f *excelize.File, sheet string, row, sumRow int,
	seccion entity.Seccion, cuenta, priorYear, currentYear string, data *findata.FinancialData) {

	e.setCellValue(f, sheet, fmt.Sprintf("%s%d", markerCol, row), cuenta)

	if priorYear != "" {
		if valor, ok := findata.LookupAnnual(data.Balances, priorYear, seccion, cuenta); ok {
			e.setCellValue(f, sheet, fmt.Sprintf("%s%d", priorYearCol, row), valor)
		}
	}
	if valor, ok := findata.LookupAnnual(data.Balances, currentYear, seccion, cuenta); ok {
		e.setCellValue(f, sheet, fmt.Sprintf("%s%d", currentYearCol, row), valor)
	}

	variance := fmt.Sprintf("%s%d-%s%d", currentYearCol, row, priorYearCol, row)
	if err := f.SetCellFormula(sheet, fmt.Sprintf("%s%d", varianceCol, row), variance); err != nil {
		e.logger.Warn("Failed to set variance formula", zap.Int("row", row), zap.Error(err))
	}
	percent := fmt.Sprintf("%s%d/%s%d", currentYearCol, row, currentYearCol, sumRow)
	if err := f.SetCellFormula(sheet, fmt.Sprintf("%s%d", percentCol, row), percent); err != nil {
		e.logger.Warn("Failed to set percentage formula", zap.Int("row", row), zap.Error(err))
	}
}

// setCellValue writes a value unless the cell already holds a formula.
func (e *AnalysisEngine) setCellValue(f *excelize.File, sheet, cell string, value interface{}) {
	if formula, err := f.GetCellFormula(sheet, cell); err == nil && formula != "" {
		return
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("sheet", sheet), zap.String("cell", cell), zap.Error(err))
	}
}
