package word

import (
	"regexp"
	"strings"

	"github.com/auditoria/docgen/internal/replacements"
	"go.uber.org/zap"
)

// programaMarker identifies audit-program templates, which are structured
// differently from every other template family: regex rules run with
// absolute priority and the cell/inline rules are skipped entirely.
const programaMarker = "1 programa"

// TextEngine applies placeholder substitution to the paragraphs and table
// cells of a Word document while preserving per-run formatting.
type TextEngine struct {
	logger *zap.Logger
}

// NewTextEngine creates a new Word text engine
func NewTextEngine(logger *zap.Logger) *TextEngine {
	return &TextEngine{logger: logger}
}

// IsPrograma reports whether a filename names an audit-program document.
func IsPrograma(filename string) bool {
	return strings.Contains(strings.ToLower(filename), programaMarker)
}

// Apply rewrites every table cell and paragraph of the document's text parts.
// repl is the placeholder substitution map; values maps logical field names
// (the rules' "campo") to their computed values.
func (te *TextEngine) Apply(doc *Document, cfg *replacements.Config, repl, values map[string]string) {
	programa := IsPrograma(doc.Filename())
	rules := te.compileRules(cfg, values)

	for _, partName := range doc.TextParts() {
		data, ok := doc.Part(partName)
		if !ok {
			continue
		}
		xmlStr := string(data)

		xmlStr = mapSpans(xmlStr, reTable, func(tbl string) string {
			return te.processTable(tbl, rules, repl, values, programa)
		})
		xmlStr = mapOutsideTables(xmlStr, func(segment string) string {
			return mapSpans(segment, reParagraph, func(p string) string {
				return te.processParagraph(p, rules, repl, programa)
			})
		})

		doc.SetPart(partName, []byte(xmlStr))
	}
}

// processParagraph rewrites one paragraph outside any table: inline
// placeholder substitution first, then regex rules. Programa documents run
// regex rules only.
func (te *TextEngine) processParagraph(pXML string, rules *compiledRules, repl map[string]string, programa bool) string {
	text := paragraphText(pXML)
	if text == "" {
		return pXML
	}

	if !programa {
		newText := text
		for old, new := range repl {
			if old == "" {
				continue
			}
			newText = strings.ReplaceAll(newText, old, new)
		}
		if newText != text {
			pXML = setParagraphText(pXML, newText)
			text = newText
		}
	}

	return te.applyRegexRules(pXML, text, rules)
}

// compiledRegexRule pairs a compiled pattern with its resolved value.
type compiledRegexRule struct {
	re          *regexp.Regexp
	value       string
	appendAfter bool
}

type compiledRules struct {
	celdas []replacements.CellRule
	regex  []compiledRegexRule
}

func (te *TextEngine) compileRules(cfg *replacements.Config, values map[string]string) *compiledRules {
	rules := &compiledRules{}
	if cfg == nil {
		return rules
	}
	rules.celdas = cfg.Celdas
	for _, rule := range cfg.Regex {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			te.logger.Warn("Invalid regex rule, skipping",
				zap.String("pattern", rule.Pattern), zap.Error(err))
			continue
		}
		rules.regex = append(rules.regex, compiledRegexRule{
			re:    re,
			value: values[rule.Campo],
			// A trailing-whitespace anchor means the matched label is kept
			// and the value appended after a single space.
			appendAfter: strings.HasSuffix(rule.Pattern, `\s*$`) || strings.HasSuffix(rule.Pattern, `\s*`),
		})
	}
	return rules
}

// processTable walks a table row by row, cell by cell. Per cell the rules
// apply in priority order and the first match wins; a cell written by
// adjacent-cell injection is never re-processed.
func (te *TextEngine) processTable(tblXML string, rules *compiledRules, repl, values map[string]string, programa bool) string {
	return mapSpans(tblXML, reTableRow, func(rowXML string) string {
		locs := reTableCell.FindAllStringIndex(rowXML, -1)
		if len(locs) == 0 {
			return rowXML
		}
		cells := make([]string, len(locs))
		for i, loc := range locs {
			cells[i] = rowXML[loc[0]:loc[1]]
		}
		processed := make([]bool, len(cells))

		for i := 0; i < len(cells); i++ {
			if processed[i] {
				continue
			}
			text := paragraphText(cells[i])

			if programa {
				// Programa documents invert priority: regex rules are
				// absolute and the cell/inline rules never run.
				cells[i] = te.applyRegexRules(cells[i], text, rules)
				continue
			}

			if next, ok := te.tryCellInjection(cells, processed, i, text, rules, values); ok {
				processed[i] = true
				processed[next] = true
				continue
			}
			if updated, ok := te.tryInlineReplace(cells[i], text, repl); ok {
				cells[i] = updated
				processed[i] = true
				continue
			}
			if updated := te.applyRegexRules(cells[i], text, rules); updated != cells[i] {
				cells[i] = updated
				processed[i] = true
			}
		}

		var b strings.Builder
		prev := 0
		for i, loc := range locs {
			b.WriteString(rowXML[prev:loc[0]])
			b.WriteString(cells[i])
			prev = loc[1]
		}
		b.WriteString(rowXML[prev:])
		return b.String()
	})
}

// tryCellInjection writes a field value into the cell following a label
// cell, copying the label cell's first-run style. Returns the injected cell
// index on success.
func (te *TextEngine) tryCellInjection(cells []string, processed []bool, i int, text string, rules *compiledRules, values map[string]string) (int, bool) {
	norm := normalizeText(text)
	for _, rule := range rules.celdas {
		if norm != normalizeText(rule.Buscar) {
			continue
		}
		value := values[rule.Campo]
		if value == "" || i+1 >= len(cells) || processed[i+1] {
			continue
		}
		cells[i+1] = setCellText(cells[i+1], value, firstRunProps(cells[i]))
		return i + 1, true
	}
	return 0, false
}

// tryInlineReplace applies the replacement map to the cell's paragraphs when
// any placeholder appears in its text.
func (te *TextEngine) tryInlineReplace(cellXML, text string, repl map[string]string) (string, bool) {
	matched := false
	for old := range repl {
		if old != "" && strings.Contains(text, old) {
			matched = true
			break
		}
	}
	if !matched {
		return cellXML, false
	}

	updated := mapSpans(cellXML, reParagraph, func(p string) string {
		pText := paragraphText(p)
		newText := pText
		for old, new := range repl {
			if old == "" {
				continue
			}
			newText = strings.ReplaceAll(newText, old, new)
		}
		if newText == pText {
			return p
		}
		return setParagraphText(p, newText)
	})
	return updated, true
}

// applyRegexRules applies every matching regex rule to the fragment's
// paragraphs. Only the matched span is replaced; rules with a trailing
// whitespace anchor keep the label and append the value after one space.
func (te *TextEngine) applyRegexRules(xmlFragment, text string, rules *compiledRules) string {
	for _, rule := range rules.regex {
		if rule.value == "" || !rule.re.MatchString(text) {
			continue
		}
		xmlFragment = mapSpans(xmlFragment, reParagraph, func(p string) string {
			pText := paragraphText(p)
			loc := rule.re.FindStringIndex(pText)
			if loc == nil {
				return p
			}
			var newText string
			if rule.appendAfter {
				label := strings.TrimRight(pText[loc[0]:loc[1]], " \t")
				newText = pText[:loc[0]] + label + " " + rule.value + pText[loc[1]:]
			} else {
				newText = pText[:loc[0]] + rule.value + pText[loc[1]:]
			}
			return setParagraphText(p, newText)
		})
		text = paragraphText(xmlFragment)
	}
	return xmlFragment
}

// setCellText rewrites the first paragraph of a table cell to carry exactly
// the given text, styled with the provided run properties.
func setCellText(cellXML, text, rPr string) string {
	replaced := false
	return mapSpans(cellXML, reParagraph, func(p string) string {
		if replaced {
			return p
		}
		replaced = true
		rebuilt := setParagraphText(p, text)
		if rPr != "" {
			// Swap in the reference cell's run style.
			rebuilt = strings.Replace(rebuilt, makeRun(firstRunProps(rebuilt), text), makeRun(rPr, text), 1)
		}
		return rebuilt
	})
}
