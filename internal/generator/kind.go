package generator

import (
	"path/filepath"
	"strings"

	"github.com/auditoria/docgen/internal/word"
)

// DocumentKind is the closed set of template families the orchestrators
// dispatch on, resolved once per file from its name and extension.
type DocumentKind int

const (
	KindPlainDocument DocumentKind = iota
	KindSumariaSingleAccount
	KindSumariaMultiAccount
	KindBalanceSheetAnalysis
	KindProgramaDocument
	KindMacroWorkbook
)

// String implements fmt.Stringer
func (k DocumentKind) String() string {
	switch k {
	case KindSumariaSingleAccount:
		return "sumaria-single"
	case KindSumariaMultiAccount:
		return "sumaria-multi"
	case KindBalanceSheetAnalysis:
		return "balance-analysis"
	case KindProgramaDocument:
		return "programa"
	case KindMacroWorkbook:
		return "macro-workbook"
	}
	return "plain"
}

// DetectKind classifies a template by filename.
func DetectKind(filename string) DocumentKind {
	base := filepath.Base(filename)
	upper := strings.ToUpper(base)

	if strings.HasSuffix(upper, ".XLSM") {
		return KindMacroWorkbook
	}
	if word.IsPrograma(base) {
		return KindProgramaDocument
	}
	if strings.Contains(upper, "PATRIMONIO") || strings.Contains(upper, "ESTADO RESULTADOS") ||
		strings.Contains(upper, "ESTADO DE RESULTADOS") {
		return KindSumariaMultiAccount
	}
	if strings.Contains(upper, "BALANCE") || strings.Contains(upper, "BG") {
		return KindBalanceSheetAnalysis
	}
	if strings.Contains(upper, "SUMARIA") || strings.Contains(upper, "CEDULA") {
		return KindSumariaSingleAccount
	}
	return KindPlainDocument
}
