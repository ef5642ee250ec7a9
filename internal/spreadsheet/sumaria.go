package spreadsheet

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/auditoria/docgen/internal/domain/entity"
	"github.com/auditoria/docgen/internal/findata"
	"github.com/auditoria/docgen/internal/replacements"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// TableInfo describes the anchor rows of a Sumaria table inside one
// worksheet. Recomputed per worksheet, never persisted.
type TableInfo struct {
	FilaTitulo      int
	FilaEncabezados int
	FilaInicioDatos int
	ColumnasFechas  []int
	ColumnaCuenta   int
}

// Fixed cells of the Sumaria template family. The four date columns carry
// the semester cut-off dates; H/I carry the debit/credit adjustment.
const (
	sumariaDateRow  = 12
	sumariaDataRow  = 13
	sumariaColDebe  = "H"
	sumariaColHaber = "I"

	titleScanRows  = 30
	scanCols       = 15
	headerScanRows = 15
)

var sumariaValueCols = []string{"E", "F", "G", "J"}

// accountKeywords maps filename keywords to canonical account names. Longest
// keyword wins so "CAJAS Y BANCOS" is never shadowed by "CAJA".
var accountKeywords = map[string]string{
	"CAJAS Y BANCOS":            "Caja y Bancos",
	"CAJA":                      "Caja",
	"BANCOS":                    "Bancos",
	"CUENTAS POR COBRAR":        "Cuentas por Cobrar",
	"INVERSIONES":               "Inversiones",
	"INVENTARIOS":               "Inventarios",
	"PROPIEDAD PLANTA Y EQUIPO": "Propiedad, Planta y Equipo",
	"ACTIVO FIJO":               "Activo Fijo",
	"CUENTAS POR PAGAR":         "Cuentas por Pagar",
	"PRESTAMOS":                 "Préstamos",
	"PROVISIONES":               "Provisiones",
}

var sumariaFilenameRe = regexp.MustCompile(`(?i)SUMARIA\s+(.+?)(?:\.\w+)?$`)

// SumariaEngine locates and fills the Sumaria table of a worksheet.
type SumariaEngine struct {
	logger *zap.Logger
}

// NewSumariaEngine creates a new Sumaria engine
func NewSumariaEngine(logger *zap.Logger) *SumariaEngine {
	return &SumariaEngine{logger: logger}
}

// Locate finds the Sumaria table anchors in a sheet: the title row (contains
// "SUMARIA" or "CEDULA"), the header row ("SALDOS S/ BALANCE"), the date
// columns (every header column repeating that text) and the account-name
// column of the row below the headers.
func (e *SumariaEngine) Locate(f *excelize.File, sheet string) (*TableInfo, error) {
	info := &TableInfo{}

	for row := 1; row <= titleScanRows && info.FilaTitulo == 0; row++ {
		for col := 1; col <= scanCols; col++ {
			value := cellValue(f, sheet, col, row)
			upper := strings.ToUpper(value)
			if strings.Contains(upper, "SUMARIA") || strings.Contains(upper, "CEDULA") {
				info.FilaTitulo = row
				break
			}
		}
	}
	if info.FilaTitulo == 0 {
		return nil, fmt.Errorf("sumaria title row: %w", ErrAnchorNotFound)
	}

	for row := info.FilaTitulo; row <= info.FilaTitulo+headerScanRows && info.FilaEncabezados == 0; row++ {
		for col := 1; col <= scanCols; col++ {
			if strings.Contains(strings.ToUpper(cellValue(f, sheet, col, row)), "SALDOS S/ BALANCE") {
				info.FilaEncabezados = row
				break
			}
		}
	}
	if info.FilaEncabezados == 0 {
		return nil, fmt.Errorf("sumaria header row: %w", ErrAnchorNotFound)
	}

	for col := 1; col <= scanCols; col++ {
		if strings.Contains(strings.ToUpper(cellValue(f, sheet, col, info.FilaEncabezados)), "SALDOS S/ BALANCE") {
			info.ColumnasFechas = append(info.ColumnasFechas, col)
		}
	}

	info.FilaInicioDatos = info.FilaEncabezados + 1
	for col := 1; col <= scanCols; col++ {
		upper := strings.ToUpper(cellValue(f, sheet, col, info.FilaInicioDatos))
		if strings.Contains(upper, "CUENTA") || strings.Contains(upper, "DESCRIPCIÓN") || strings.Contains(upper, "DESCRIPCION") {
			info.ColumnaCuenta = col
			break
		}
	}

	return info, nil
}

// Process fills the Sumaria table of a sheet from the flattened balance map.
// The filename decides between the single-account path and the multi-account
// path (PATRIMONIO / ESTADO RESULTADOS templates). Any missing anchor or
// missing data leaves the sheet untouched.
func (e *SumariaEngine) Process(f *excelize.File, sheet, filename string, data *findata.FinancialData) error {
	if _, err := e.Locate(f, sheet); err != nil {
		return err
	}

	fechas := findata.SemesterDates(data.Balances)
	if len(fechas) == 0 {
		return fmt.Errorf("semester dates: %w", ErrDataNotFound)
	}

	if seccion, ok := multiAccountSection(filename); ok {
		return e.processMultiAccount(f, sheet, seccion, fechas, data)
	}
	return e.processSingleAccount(f, sheet, filename, fechas, data)
}

// writeDateHeaders writes the sorted semester dates into the fixed header
// cells, keeping an existing "AL " prefix when the template carries one.
func (e *SumariaEngine) writeDateHeaders(f *excelize.File, sheet string, fechas []string) {
	for i, col := range sumariaValueCols {
		if i >= len(fechas) {
			break
		}
		cell := fmt.Sprintf("%s%d", col, sumariaDateRow)
		formatted := replacements.FormatISODateShort(fechas[i])
		existing, _ := f.GetCellValue(sheet, cell)
		if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(existing)), "AL ") {
			formatted = "AL " + formatted
		}
		if err := f.SetCellValue(sheet, cell, formatted); err != nil {
			e.logger.Warn("Failed to write date header", zap.String("cell", cell), zap.Error(err))
		}
	}
}

func (e *SumariaEngine) processSingleAccount(f *excelize.File, sheet, filename string, fechas []string, data *findata.FinancialData) error {
	cuenta, ok := AccountFromFilename(filename)
	if !ok {
		return fmt.Errorf("account for %q: %w", filename, ErrDataNotFound)
	}

	e.writeDateHeaders(f, sheet, fechas)
	e.writeAccountRow(f, sheet, sumariaDataRow, cuenta, fechas, data)

	e.logger.Debug("Sumaria single-account table filled",
		zap.String("sheet", sheet), zap.String("cuenta", cuenta))
	return nil
}

func (e *SumariaEngine) processMultiAccount(f *excelize.File, sheet string, seccion entity.Seccion, fechas []string, data *findata.FinancialData) error {
	cuentas := findata.AccountsBySection(data.Balances, entity.TipoBalanceSemestral, seccion, "")
	if len(cuentas) == 0 {
		return fmt.Errorf("accounts for section %s: %w", seccion, ErrDataNotFound)
	}

	e.writeDateHeaders(f, sheet, fechas)

	// The template carries a single blank data row; every further account
	// needs a row inserted after it, carrying the model row's styling,
	// formulas and merges.
	additional := len(cuentas) - 1
	if additional > 0 {
		if err := e.expandDataRows(f, sheet, additional); err != nil {
			return err
		}
	}

	for i, cuenta := range cuentas {
		e.writeAccountRow(f, sheet, sumariaDataRow+i, cuenta, fechas, data)
	}

	e.logger.Debug("Sumaria multi-account table filled",
		zap.String("sheet", sheet),
		zap.String("seccion", string(seccion)),
		zap.Int("cuentas", len(cuentas)))
	return nil
}

// expandDataRows inserts rows after the model data row, replicating its
// styling, row-anchored formulas and horizontal merges.
func (e *SumariaEngine) expandDataRows(f *excelize.File, sheet string, count int) error {
	if err := InsertRowsPreservingStyle(f, sheet, sumariaDataRow+1, count, sumariaDataRow); err != nil {
		return err
	}

	cols := sheetColumnSpan(f, sheet)
	for offset := 1; offset <= count; offset++ {
		row := sumariaDataRow + offset
		for col := 1; col <= cols; col++ {
			srcCell, _ := excelize.CoordinatesToCellName(col, sumariaDataRow)
			formula, err := f.GetCellFormula(sheet, srcCell)
			if err != nil || formula == "" {
				continue
			}
			dstCell, _ := excelize.CoordinatesToCellName(col, row)
			rewritten := RewriteFormulaRowRef(formula, sumariaDataRow, row)
			if err := f.SetCellFormula(sheet, dstCell, rewritten); err != nil {
				e.logger.Warn("Failed to copy formula", zap.String("cell", dstCell), zap.Error(err))
			}
		}
	}

	// Re-merge: horizontal merges anchored at the model row are applied to
	// every inserted row at the same columns.
	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil
	}
	for _, merge := range merges {
		c1, r1, err := excelize.CellNameToCoordinates(merge.GetStartAxis())
		if err != nil {
			continue
		}
		c2, r2, err := excelize.CellNameToCoordinates(merge.GetEndAxis())
		if err != nil || r1 != sumariaDataRow || r2 != sumariaDataRow {
			continue
		}
		for offset := 1; offset <= count; offset++ {
			start, _ := excelize.CoordinatesToCellName(c1, sumariaDataRow+offset)
			end, _ := excelize.CoordinatesToCellName(c2, sumariaDataRow+offset)
			if err := f.MergeCell(sheet, start, end); err != nil {
				e.logger.Warn("Failed to re-merge range", zap.String("start", start), zap.Error(err))
			}
		}
	}
	return nil
}

// writeAccountRow writes one account's name, per-date values and adjustment
// into a data row. Cells already holding formulas are never overwritten.
func (e *SumariaEngine) writeAccountRow(f *excelize.File, sheet string, row int, cuenta string, fechas []string, data *findata.FinancialData) {
	nameCell := fmt.Sprintf("B%d", row)
	e.setCellValue(f, sheet, nameCell, cuenta)

	for i, col := range sumariaValueCols {
		if i >= len(fechas) {
			break
		}
		if valor, ok := findata.LookupBalance(data.Balances, entity.TipoBalanceSemestral, fechas[i], cuenta); ok {
			e.setCellValue(f, sheet, fmt.Sprintf("%s%d", col, row), valor)
		}
	}

	if adj, ok := findata.LookupAdjustment(data.Adjustments, cuenta); ok {
		e.setCellValue(f, sheet, fmt.Sprintf("%s%d", sumariaColDebe, row), adj.Debe)
		e.setCellValue(f, sheet, fmt.Sprintf("%s%d", sumariaColHaber, row), adj.Haber)
	}
}

// setCellValue writes a value unless the cell already holds a formula.
func (e *SumariaEngine) setCellValue(f *excelize.File, sheet, cell string, value interface{}) {
	if formula, err := f.GetCellFormula(sheet, cell); err == nil && formula != "" {
		return
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("sheet", sheet), zap.String("cell", cell), zap.Error(err))
	}
}

// AccountFromFilename infers the canonical account a Sumaria file refers to.
// Longest configured keyword wins; when none matches, the text after
// "SUMARIA " in the filename is used as-is.
func AccountFromFilename(filename string) (string, bool) {
	upper := strings.ToUpper(filename)

	keywords := make([]string, 0, len(accountKeywords))
	for kw := range accountKeywords {
		keywords = append(keywords, kw)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if len(keywords[i]) != len(keywords[j]) {
			return len(keywords[i]) > len(keywords[j])
		}
		return keywords[i] < keywords[j]
	})
	for _, kw := range keywords {
		if strings.Contains(upper, kw) {
			return accountKeywords[kw], true
		}
	}

	if m := sumariaFilenameRe.FindStringSubmatch(filename); m != nil {
		cuenta := strings.TrimSpace(m[1])
		if cuenta != "" {
			return cuenta, true
		}
	}
	return "", false
}

// multiAccountSection reports whether the filename selects the multi-account
// Sumaria path and, if so, which section feeds it.
func multiAccountSection(filename string) (entity.Seccion, bool) {
	upper := strings.ToUpper(filename)
	switch {
	case strings.Contains(upper, "PATRIMONIO"):
		return entity.SeccionPatrimonio, true
	case strings.Contains(upper, "ESTADO RESULTADOS"), strings.Contains(upper, "ESTADO DE RESULTADOS"):
		return entity.SeccionEstadoDeResultados, true
	}
	return "", false
}

// cellValue reads a cell by coordinates, ignoring errors.
func cellValue(f *excelize.File, sheet string, col, row int) string {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return ""
	}
	value, _ := f.GetCellValue(sheet, cell)
	return value
}
