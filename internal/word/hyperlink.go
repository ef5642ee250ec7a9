package word

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/auditoria/docgen/internal/replacements"
	"go.uber.org/zap"
)

// HyperlinkInjector scans document paragraphs for cross-reference patterns
// like "A-1" and wraps each first occurrence in a hyperlink pointing at the
// work-paper download endpoint.
type HyperlinkInjector struct {
	baseURL string
	logger  *zap.Logger
}

// NewHyperlinkInjector creates a new hyperlink injector
func NewHyperlinkInjector(baseURL string, logger *zap.Logger) *HyperlinkInjector {
	return &HyperlinkInjector{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// ResolveNomenclature decides the cross-reference prefix and number range
// for a document: an exact filename match against the financial-audit table
// first, then a hierarchical folder-path lookup for audit-program documents.
// Absence of a config silently disables injection for the document.
func ResolveNomenclature(cfg *replacements.TablesConfig, filename, path string) (replacements.NomenclatureConfig, bool) {
	if cfg == nil {
		return replacements.NomenclatureConfig{}, false
	}
	if nom, ok := cfg.Archivos[filename]; ok && nom.Prefijo != "" {
		return nom, true
	}

	segments := strings.Split(strings.ReplaceAll(path, "\\", "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		segment := strings.ToUpper(strings.TrimSpace(segments[i]))
		if segment == "" {
			continue
		}
		for carpeta, nom := range cfg.Carpetas {
			if strings.Contains(segment, strings.ToUpper(carpeta)) && nom.Prefijo != "" {
				return nom, true
			}
		}
	}
	return replacements.NomenclatureConfig{}, false
}

// patternMatch is one hyperlink to create: a span of the paragraph's flat
// text plus the pattern identifying the target work paper.
type patternMatch struct {
	start, end int
	pattern    string
}

// Inject processes every paragraph of the main document part, including
// paragraphs inside table cells. Each unique pattern is linked at its first
// occurrence per paragraph only.
func (hi *HyperlinkInjector) Inject(doc *Document, auditID int64, nom replacements.NomenclatureConfig) {
	if nom.Prefijo == "" || nom.RangoMax <= 0 {
		return
	}

	data, ok := doc.Part(documentPart)
	if !ok {
		return
	}

	linked := 0
	xmlStr := mapSpans(string(data), reParagraph, func(pXML string) string {
		updated, n := hi.injectParagraph(doc, pXML, auditID, nom)
		linked += n
		return updated
	})
	doc.SetPart(documentPart, []byte(xmlStr))

	if linked > 0 {
		hi.logger.Debug("Hyperlinks injected",
			zap.String("file", doc.Filename()),
			zap.Int64("audit_id", auditID),
			zap.Int("links", linked))
	}
}

func (hi *HyperlinkInjector) injectParagraph(doc *Document, pXML string, auditID int64, nom replacements.NomenclatureConfig) (string, int) {
	text := paragraphText(pXML)
	if text == "" {
		return pXML, 0
	}

	// Cheap containment scan before any run manipulation.
	var candidates []string
	for n := 1; n <= nom.RangoMax; n++ {
		pattern := fmt.Sprintf("%s-%d", nom.Prefijo, n)
		if strings.Contains(text, pattern) {
			candidates = append(candidates, pattern)
		}
	}
	if len(candidates) == 0 {
		return pXML, 0
	}

	// Word-boundary match on the flat text; first occurrence per pattern.
	var matches []patternMatch
	for _, pattern := range candidates {
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(pattern) + `\b`)
		if err != nil {
			continue
		}
		if loc := re.FindStringIndex(text); loc != nil {
			matches = append(matches, patternMatch{start: loc[0], end: loc[1], pattern: pattern})
		}
	}
	if len(matches) == 0 {
		return pXML, 0
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].start < matches[j].start })
	matches = dropOverlaps(matches)

	// Merging all runs into one (first run's style) keeps a pattern from
	// being split across run boundaries, then the flat text is re-sliced
	// into before/link/after runs at the match edges.
	rPr := firstRunProps(pXML)
	linkPr := forceUnderline(rPr)

	var runs strings.Builder
	prev := 0
	created := 0
	for _, m := range matches {
		if m.start > prev {
			runs.WriteString(makeRun(rPr, text[prev:m.start]))
		}
		target := fmt.Sprintf("%s/auditoria/download/%d/%s", hi.baseURL, auditID, m.pattern)
		relID, err := doc.AddHyperlinkRel(documentPart, target)
		if err != nil {
			hi.logger.Warn("Failed to add hyperlink relationship",
				zap.String("pattern", m.pattern), zap.Error(err))
			runs.WriteString(makeRun(rPr, text[m.start:m.end]))
		} else {
			runs.WriteString(fmt.Sprintf(`<w:hyperlink r:id=%q w:history="1">%s</w:hyperlink>`,
				relID, makeRun(linkPr, text[m.start:m.end])))
			created++
		}
		prev = m.end
	}
	if prev < len(text) {
		runs.WriteString(makeRun(rPr, text[prev:]))
	}

	return replaceParagraphRuns(pXML, runs.String()), created
}

// dropOverlaps removes matches overlapping an earlier (already sorted) one.
func dropOverlaps(matches []patternMatch) []patternMatch {
	out := matches[:1]
	for _, m := range matches[1:] {
		if m.start >= out[len(out)-1].end {
			out = append(out, m)
		}
	}
	return out
}

// reHyperlinkTag matches the opening or closing tag of a hyperlink wrapper,
// never its runs.
var reHyperlinkTag = regexp.MustCompile(`<w:hyperlink(?:>| [^>]*>)|</w:hyperlink>`)

// replaceParagraphRuns swaps the full run content of a paragraph for the
// given fragment, keeping paragraph-level properties. Hyperlink wrappers
// already present are dropped first; their runs are part of the flat text
// the fragment was built from, so keeping the wrappers would leave them
// empty or nest them around the new links.
func replaceParagraphRuns(pXML, runsXML string) string {
	pXML = reHyperlinkTag.ReplaceAllString(pXML, "")
	locs := reRun.FindAllStringIndex(pXML, -1)
	if len(locs) == 0 {
		closing := "</w:p>"
		idx := strings.LastIndex(pXML, closing)
		if idx < 0 {
			return pXML
		}
		return pXML[:idx] + runsXML + pXML[idx:]
	}

	var b strings.Builder
	prev := 0
	for i, loc := range locs {
		b.WriteString(pXML[prev:loc[0]])
		if i == 0 {
			b.WriteString(runsXML)
		}
		prev = loc[1]
	}
	b.WriteString(pXML[prev:])
	return b.String()
}

// forceUnderline returns run properties with single underline ensured.
func forceUnderline(rPr string) string {
	if rPr == "" {
		return `<w:rPr><w:u w:val="single"/></w:rPr>`
	}
	if strings.Contains(rPr, "<w:u ") || strings.Contains(rPr, "<w:u/") {
		return rPr
	}
	return strings.Replace(rPr, "</w:rPr>", `<w:u w:val="single"/></w:rPr>`, 1)
}
