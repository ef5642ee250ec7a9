// Package generator wires the financial data accessor, the replacement
// builder and the document engines into end-to-end template-to-document
// pipelines.
package generator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/auditoria/docgen/internal/domain/entity"
	"github.com/auditoria/docgen/internal/findata"
	"github.com/auditoria/docgen/internal/macro"
	"github.com/auditoria/docgen/internal/replacements"
	"github.com/auditoria/docgen/internal/spreadsheet"
	"github.com/auditoria/docgen/internal/word"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// campos is the closed set of logical fields a template can reference.
var campos = []string{
	"entidad",
	"fecha_inicio",
	"fecha_fin",
	"fecha_rango",
	"titulo_auditoria",
	"tipo_auditoria",
	"auditor",
	"moneda",
}

// Config holds the generator's static wiring.
type Config struct {
	ReplacementsPath string
	TablesPath       string
	DownloadBaseURL  string
}

// Generator produces filled audit work papers from Office templates.
type Generator struct {
	cfg      Config
	accessor *findata.Accessor
	loader   *replacements.Loader
	sumaria  *spreadsheet.SumariaEngine
	analysis *spreadsheet.AnalysisEngine
	text     *word.TextEngine
	links    *word.HyperlinkInjector
	macros   *macro.Processor
	logger   *zap.Logger
}

// New creates a new document generator
func New(cfg Config, accessor *findata.Accessor, loader *replacements.Loader, logger *zap.Logger) *Generator {
	return &Generator{
		cfg:      cfg,
		accessor: accessor,
		loader:   loader,
		sumaria:  spreadsheet.NewSumariaEngine(logger),
		analysis: spreadsheet.NewAnalysisEngine(logger),
		text:     word.NewTextEngine(logger),
		links:    word.NewHyperlinkInjector(cfg.DownloadBaseURL, logger),
		macros:   macro.NewProcessor(logger),
		logger:   logger,
	}
}

// ResolveTemplate maps a nomenclature pattern (e.g. "A-1") to its template
// filename via the static tables configuration.
func (g *Generator) ResolveTemplate(pattern string) (string, bool) {
	tables := g.loader.Tables(g.cfg.TablesPath)
	name, ok := tables.Patterns[pattern]
	return name, ok
}

// prepare formats the audit's date range and builds the replacement map and
// per-field values shared by every pipeline.
func (g *Generator) prepare(audit *entity.Audit) (repl, values map[string]string) {
	var fechaInicio, fechaFin string
	if audit.FechaInit != nil {
		fechaInicio = replacements.FormatDateSpanish(*audit.FechaInit)
	}
	if audit.FechaEnd != nil {
		fechaFin = replacements.FormatDateSpanish(*audit.FechaEnd)
	}

	cfg := g.loader.Replacements(g.cfg.ReplacementsPath)
	repl = replacements.Build(cfg, audit, fechaInicio, fechaFin)

	values = make(map[string]string, len(campos))
	for _, campo := range campos {
		value := replacements.FieldValue(campo, audit, fechaInicio, fechaFin)
		if value == "" {
			value = cfg.Campos[campo].Default
		}
		values[campo] = value
	}
	return repl, values
}

// skippable reports whether an engine error is a best-effort pass-through
// condition rather than a real failure.
func skippable(err error) bool {
	return errors.Is(err, spreadsheet.ErrAnchorNotFound) || errors.Is(err, spreadsheet.ErrDataNotFound)
}

// ModifyDocumentExcel fills an .xlsx template for an audit and returns the
// in-memory workbook; serialization is the caller's responsibility. Sheets
// whose anchors or data are missing pass through unmodified.
func (g *Generator) ModifyDocumentExcel(ctx context.Context, templatePath string, audit *entity.Audit) (*excelize.File, error) {
	f, err := excelize.OpenFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}

	repl, _ := g.prepare(audit)
	data := g.accessor.GetAllFinancialData(ctx, audit.ID)
	filename := filepath.Base(templatePath)

	for _, sheet := range f.GetSheetList() {
		if g.analysis.AppliesTo(sheet) {
			if err := g.analysis.Process(f, sheet, data); err != nil {
				if !skippable(err) {
					return nil, err
				}
				g.logger.Debug("Balance-sheet analysis skipped",
					zap.String("sheet", sheet), zap.Error(err))
			}
		} else {
			if err := g.sumaria.Process(f, sheet, filename, data); err != nil {
				if !skippable(err) {
					return nil, err
				}
				g.logger.Debug("Sumaria processing skipped",
					zap.String("sheet", sheet), zap.Error(err))
			}
		}
		spreadsheet.ApplyReplacements(f, sheet, repl, g.logger)
	}

	g.logger.Info("Excel template filled",
		zap.String("template", filename),
		zap.Int64("audit_id", audit.ID))
	return f, nil
}

// ModifyDocumentWord fills a .docx template for an audit: placeholder and
// table substitution first, then hyperlink injection when a nomenclature
// config exists for the document.
func (g *Generator) ModifyDocumentWord(ctx context.Context, templatePath string, audit *entity.Audit) (*word.Document, error) {
	doc, err := word.Open(templatePath, g.logger)
	if err != nil {
		return nil, err
	}

	repl, values := g.prepare(audit)
	cfg := g.loader.Replacements(g.cfg.ReplacementsPath)
	g.text.Apply(doc, cfg, repl, values)

	tables := g.loader.Tables(g.cfg.TablesPath)
	if nom, ok := word.ResolveNomenclature(tables, doc.Filename(), templatePath); ok {
		g.links.Inject(doc, audit.ID, nom)
	} else {
		g.logger.Debug("No nomenclature config, hyperlink injection disabled",
			zap.String("file", doc.Filename()))
	}

	g.logger.Info("Word template filled",
		zap.String("template", doc.Filename()),
		zap.Int64("audit_id", audit.ID))
	return doc, nil
}

// ModifyDocumentExcelWithMacros fills an .xlsm template through the
// macro-preserving strategy chain. It returns a file path rather than an
// in-memory object because the strategies work on real files; the cleanup
// function releases the backing temp directory once the caller is done.
func (g *Generator) ModifyDocumentExcelWithMacros(ctx context.Context, templatePath string, audit *entity.Audit) (string, func(), error) {
	repl, _ := g.prepare(audit)
	path, cleanup, err := g.macros.Process(templatePath, repl)
	if err != nil {
		return "", nil, err
	}

	g.logger.Info("Macro workbook filled",
		zap.String("template", filepath.Base(templatePath)),
		zap.Int64("audit_id", audit.ID))
	return path, cleanup, nil
}
