package word

import (
	"regexp"
	"strings"
)

// OOXML fragment matching. Word never nests paragraphs or runs, so
// non-greedy spans are safe; tables are treated as flat (the template
// families carry no nested tables). Every pattern requires ">" or an
// attribute after the tag name so "<w:t" cannot match "<w:tbl", "<w:r"
// cannot match "<w:rPr", and so on.
var (
	reParagraph = regexp.MustCompile(`(?s)<w:p(?:>| [^>]*>).*?</w:p>`)
	reRun       = regexp.MustCompile(`(?s)<w:r(?:>| [^>]*>).*?</w:r>`)
	reRunProps  = regexp.MustCompile(`(?s)<w:rPr>.*?</w:rPr>`)
	reText      = regexp.MustCompile(`(?s)<w:t(?:>| [^>]*>)(.*?)</w:t>`)
	reTable     = regexp.MustCompile(`(?s)<w:tbl(?:>| [^>]*>).*?</w:tbl>`)
	reTableRow  = regexp.MustCompile(`(?s)<w:tr(?:>| [^>]*>).*?</w:tr>`)
	reTableCell = regexp.MustCompile(`(?s)<w:tc(?:>| [^>]*>).*?</w:tc>`)

	collapseWS = regexp.MustCompile(`\s+`)
)

var (
	escaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	unescaper = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")
)

func xmlEscape(s string) string {
	return escaper.Replace(s)
}

func xmlEscapeAttr(s string) string {
	return strings.ReplaceAll(xmlEscape(s), `"`, "&quot;")
}

func xmlUnescape(s string) string {
	return unescaper.Replace(s)
}

// paragraphText returns the visible text of a paragraph fragment: the
// concatenation of every <w:t> content, unescaped.
func paragraphText(pXML string) string {
	var b strings.Builder
	for _, m := range reText.FindAllStringSubmatch(pXML, -1) {
		b.WriteString(xmlUnescape(m[1]))
	}
	return b.String()
}

// normalizeText trims and collapses internal whitespace, the form cell
// labels are compared in.
func normalizeText(s string) string {
	return collapseWS.ReplaceAllString(strings.TrimSpace(s), " ")
}

// runProps returns the <w:rPr> fragment of a run, or "".
func runProps(runXML string) string {
	return reRunProps.FindString(runXML)
}

// firstRunProps returns the <w:rPr> of the first run in a fragment, or "".
func firstRunProps(xmlStr string) string {
	if run := reRun.FindString(xmlStr); run != "" {
		return runProps(run)
	}
	return ""
}

// makeRun builds a run carrying the given properties fragment and text.
// xml:space="preserve" keeps leading/trailing spaces intact.
func makeRun(rPr, text string) string {
	return `<w:r>` + rPr + `<w:t xml:space="preserve">` + xmlEscape(text) + `</w:t></w:r>`
}

// setParagraphText rebuilds a paragraph so its visible text becomes exactly
// newText, held in a single run. The run's style is cloned from the
// paragraph's first run (for multi-styled paragraphs this collapses styling
// to the first run's, a known approximation). All previous runs are removed;
// paragraph-level properties are kept.
func setParagraphText(pXML, newText string) string {
	locs := reRun.FindAllStringIndex(pXML, -1)
	if len(locs) == 0 {
		closing := "</w:p>"
		idx := strings.LastIndex(pXML, closing)
		if idx < 0 {
			return pXML
		}
		return pXML[:idx] + makeRun("", newText) + pXML[idx:]
	}

	rPr := runProps(pXML[locs[0][0]:locs[0][1]])
	newRun := makeRun(rPr, newText)

	var b strings.Builder
	prev := 0
	for i, loc := range locs {
		b.WriteString(pXML[prev:loc[0]])
		if i == 0 {
			b.WriteString(newRun)
		}
		prev = loc[1]
	}
	b.WriteString(pXML[prev:])
	return b.String()
}

// replaceParagraphText substitutes old with new inside a paragraph's visible
// text, rebuilding the runs. Reports whether anything changed.
func replaceParagraphText(pXML, old, new string) (string, bool) {
	if old == "" {
		return pXML, false
	}
	text := paragraphText(pXML)
	if !strings.Contains(text, old) {
		return pXML, false
	}
	return setParagraphText(pXML, strings.ReplaceAll(text, old, new)), true
}

// mapSpans rewrites every match of re inside xmlStr through fn.
func mapSpans(xmlStr string, re *regexp.Regexp, fn func(string) string) string {
	return re.ReplaceAllStringFunc(xmlStr, fn)
}

// mapOutsideTables applies fn to the regions of xmlStr not covered by a
// table, leaving table content untouched.
func mapOutsideTables(xmlStr string, fn func(string) string) string {
	locs := reTable.FindAllStringIndex(xmlStr, -1)
	if len(locs) == 0 {
		return fn(xmlStr)
	}

	var b strings.Builder
	prev := 0
	for _, loc := range locs {
		b.WriteString(fn(xmlStr[prev:loc[0]]))
		b.WriteString(xmlStr[loc[0]:loc[1]])
		prev = loc[1]
	}
	b.WriteString(fn(xmlStr[prev:]))
	return b.String()
}
