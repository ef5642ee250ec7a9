// Package macro rewrites macro-enabled workbooks (.xlsm) without touching
// macro bytecode. Replacements are applied through a chain of strategies;
// the ZIP-level strategy rewrites only the text-bearing XML parts and copies
// every other part (vbaProject.bin included) byte-for-byte.
package macro

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Strategy applies text replacements to a workbook file, producing dst.
type Strategy interface {
	Name() string
	Apply(src, dst string, repl map[string]string) error
}

// replacementPrefixes are the label families safe to substitute inside raw
// worksheet XML. Indiscriminate substitution risks corrupting unrelated
// numeric or formula content that happens to match a replacement key.
var replacementPrefixes = []string{
	"Entidad",
	"Auditoría",
	"Auditoria",
	"Período",
	"Periodo",
}

// FilterReplacements keeps only keys that are bracket-delimited placeholders
// or begin with one of the known label prefixes.
func FilterReplacements(repl map[string]string) map[string]string {
	filtered := make(map[string]string, len(repl))
	for key, value := range repl {
		if strings.HasPrefix(key, "[") && strings.Contains(key, "]") {
			filtered[key] = value
			continue
		}
		for _, prefix := range replacementPrefixes {
			if strings.HasPrefix(key, prefix) {
				filtered[key] = value
				break
			}
		}
	}
	return filtered
}

// Processor runs the strategy chain over a template copy in a scoped temp
// directory. The caller always receives a usable path: if every strategy
// fails, the original template path is returned untouched.
type Processor struct {
	strategies []Strategy
	logger     *zap.Logger
}

// NewProcessor creates a processor with the default strategy chain: the
// automation strategy when one is available on the platform, then the ZIP
// fallback.
func NewProcessor(logger *zap.Logger) *Processor {
	var strategies []Strategy
	if auto := newAutomationStrategy(logger); auto != nil {
		strategies = append(strategies, auto)
	}
	strategies = append(strategies, NewZipStrategy(logger))
	return &Processor{
		strategies: strategies,
		logger:     logger,
	}
}

// NewProcessorWithStrategies creates a processor with an explicit chain.
func NewProcessorWithStrategies(logger *zap.Logger, strategies ...Strategy) *Processor {
	return &Processor{
		strategies: strategies,
		logger:     logger,
	}
}

// Process applies the filtered replacement map to a copy of the template and
// returns the processed file path plus a cleanup function releasing the temp
// directory. On total failure the original template path is returned with a
// no-op cleanup and no error, preserving the never-fail-the-document
// contract.
func (p *Processor) Process(templatePath string, repl map[string]string) (string, func(), error) {
	filtered := FilterReplacements(repl)

	tempDir, err := os.MkdirTemp("", "docgen-xlsm-")
	if err != nil {
		p.logger.Warn("Failed to create temp directory, returning original template",
			zap.Error(err))
		return templatePath, func() {}, nil
	}
	cleanup := func() { _ = os.RemoveAll(tempDir) }

	outPath := filepath.Join(tempDir, filepath.Base(templatePath))
	for _, strategy := range p.strategies {
		if err := strategy.Apply(templatePath, outPath, filtered); err != nil {
			p.logger.Warn("Macro strategy failed, trying next",
				zap.String("strategy", strategy.Name()),
				zap.String("template", templatePath),
				zap.Error(err))
			continue
		}
		p.logger.Debug("Macro workbook processed",
			zap.String("strategy", strategy.Name()),
			zap.String("output", outPath),
			zap.Int("replacements", len(filtered)))
		return outPath, cleanup, nil
	}

	cleanup()
	p.logger.Warn("All macro strategies failed, returning original template",
		zap.String("template", templatePath))
	return templatePath, func() {}, nil
}
