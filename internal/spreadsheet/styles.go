// Package spreadsheet contains the Excel template engines: low-level
// cell/style utilities, the Sumaria table engine, and the balance-sheet
// horizontal/vertical analysis engine. All engines share a best-effort
// contract: a missing anchor or missing data leaves the workbook untouched.
package spreadsheet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sentinel reasons the engines report instead of mutating a sheet they
// cannot anchor. Callers unwrap these into "return the original workbook".
var (
	ErrAnchorNotFound = errors.New("anchor not found")
	ErrDataNotFound   = errors.New("data not found")
)

// CopyStyle copies font, border, fill, alignment and number format from one
// cell to another, each aspect independently: an absent aspect on the source
// leaves the destination's aspect untouched.
func CopyStyle(f *excelize.File, sheet, srcCell, dstCell string) error {
	srcID, err := f.GetCellStyle(sheet, srcCell)
	if err != nil {
		return fmt.Errorf("failed to get source style: %w", err)
	}
	src, err := f.GetStyle(srcID)
	if err != nil {
		return fmt.Errorf("failed to resolve source style: %w", err)
	}

	dstID, err := f.GetCellStyle(sheet, dstCell)
	if err != nil {
		return fmt.Errorf("failed to get destination style: %w", err)
	}
	dst, err := f.GetStyle(dstID)
	if err != nil {
		return fmt.Errorf("failed to resolve destination style: %w", err)
	}

	if src.Font != nil {
		dst.Font = src.Font
	}
	if len(src.Border) > 0 {
		dst.Border = src.Border
	}
	if src.Fill.Type != "" {
		dst.Fill = src.Fill
	}
	if src.Alignment != nil {
		dst.Alignment = src.Alignment
	}
	if src.NumFmt != 0 {
		dst.NumFmt = src.NumFmt
	}
	if src.CustomNumFmt != nil {
		dst.CustomNumFmt = src.CustomNumFmt
	}

	merged, err := f.NewStyle(dst)
	if err != nil {
		return fmt.Errorf("failed to build merged style: %w", err)
	}
	if err := f.SetCellStyle(sheet, dstCell, dstCell, merged); err != nil {
		return fmt.Errorf("failed to apply style: %w", err)
	}
	return nil
}

// InsertRowsPreservingStyle inserts count blank rows immediately before
// beforeRow, then applies modelRow's styling to every cell of every new row
// across the sheet's current column span. Count zero or negative is a no-op.
// Merged ranges anchored at the model row are not extended here; callers
// needing merge preservation re-merge explicitly.
func InsertRowsPreservingStyle(f *excelize.File, sheet string, beforeRow, count, modelRow int) error {
	if count <= 0 {
		return nil
	}

	if err := f.InsertRows(sheet, beforeRow, count); err != nil {
		return fmt.Errorf("failed to insert rows: %w", err)
	}

	cols := sheetColumnSpan(f, sheet)
	for row := beforeRow; row < beforeRow+count; row++ {
		for col := 1; col <= cols; col++ {
			srcCell, err := excelize.CoordinatesToCellName(col, modelRow)
			if err != nil {
				continue
			}
			dstCell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				continue
			}
			if err := CopyStyle(f, sheet, srcCell, dstCell); err != nil {
				return err
			}
		}
	}
	return nil
}

// RewriteFormulaRowRef rewrites absolute row references of the form "$N" by
// literal substitution. Deliberately narrow: a formula containing the old
// row number in an unrelated "$"-prefixed context is rewritten too.
func RewriteFormulaRowRef(formula string, oldRow, newRow int) string {
	oldRef := "$" + strconv.Itoa(oldRow)
	newRef := "$" + strconv.Itoa(newRow)
	return strings.ReplaceAll(formula, oldRef, newRef)
}

// sheetColumnSpan returns the widest populated column index of a sheet.
func sheetColumnSpan(f *excelize.File, sheet string) int {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0
	}
	span := 0
	for _, row := range rows {
		if len(row) > span {
			span = len(row)
		}
	}
	return span
}
