// Package word manipulates .docx templates at the OOXML level: placeholder
// substitution in paragraphs and table cells with run formatting preserved,
// and hyperlink injection for cross-reference patterns. Documents are ZIP
// archives of XML parts; the package rewrites the text-bearing parts and
// copies everything else byte-for-byte.
package word

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	documentPart     = "word/document.xml"
	documentRelsPart = "word/_rels/document.xml.rels"

	hyperlinkRelType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"

	emptyRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`
)

var (
	headerPartRe = regexp.MustCompile(`^word/header\d*\.xml$`)
	footerPartRe = regexp.MustCompile(`^word/footer\d*\.xml$`)
	relIDRe      = regexp.MustCompile(`Id="rId(\d+)"`)
)

// Document is an in-memory .docx archive. It is owned by a single
// document-generation request: opened, mutated in place, then serialized.
type Document struct {
	path   string
	parts  map[string][]byte
	order  []string
	logger *zap.Logger
}

// Open reads every part of a .docx archive into memory.
func Open(path string, logger *zap.Logger) (*Document, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer reader.Close()

	doc := &Document{
		path:   path,
		parts:  make(map[string][]byte),
		logger: logger,
	}
	for _, entry := range reader.File {
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open part %s: %w", entry.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read part %s: %w", entry.Name, err)
		}
		doc.parts[entry.Name] = data
		doc.order = append(doc.order, entry.Name)
	}

	if _, ok := doc.parts[documentPart]; !ok {
		return nil, fmt.Errorf("not a Word document: missing %s", documentPart)
	}
	return doc, nil
}

// Filename returns the base name of the file the document was opened from.
func (d *Document) Filename() string {
	return filepath.Base(d.path)
}

// Path returns the path the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// Part returns the raw bytes of one archive part.
func (d *Document) Part(name string) ([]byte, bool) {
	data, ok := d.parts[name]
	return data, ok
}

// SetPart replaces (or adds) one archive part.
func (d *Document) SetPart(name string, data []byte) {
	if _, ok := d.parts[name]; !ok {
		d.order = append(d.order, name)
	}
	d.parts[name] = data
}

// TextParts returns the names of the text-bearing parts: the main document
// body plus any headers and footers, in archive order.
func (d *Document) TextParts() []string {
	var names []string
	for _, name := range d.order {
		if name == documentPart || headerPartRe.MatchString(name) || footerPartRe.MatchString(name) {
			names = append(names, name)
		}
	}
	return names
}

// AddHyperlinkRel registers an external, history-tracked hyperlink
// relationship on the given part and returns the new relationship ID.
func (d *Document) AddHyperlinkRel(partName, target string) (string, error) {
	relsName := relsPartName(partName)
	rels, ok := d.parts[relsName]
	if !ok {
		rels = []byte(emptyRelsXML)
	}

	xmlStr := string(rels)
	maxID := 0
	for _, m := range relIDRe.FindAllStringSubmatch(xmlStr, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > maxID {
			maxID = n
		}
	}
	relID := fmt.Sprintf("rId%d", maxID+1)

	rel := fmt.Sprintf(`<Relationship Id=%q Type=%q Target=%q TargetMode="External"/>`,
		relID, hyperlinkRelType, xmlEscapeAttr(target))
	closing := "</Relationships>"
	if !strings.Contains(xmlStr, closing) {
		return "", fmt.Errorf("malformed relationships part %s", relsName)
	}
	xmlStr = strings.Replace(xmlStr, closing, rel+closing, 1)

	d.SetPart(relsName, []byte(xmlStr))
	return relID, nil
}

// Write serializes the document to a writer, emitting parts in their
// original archive order.
func (d *Document) Write(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, name := range d.order {
		fw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("failed to create part %s: %w", name, err)
		}
		if _, err := fw.Write(d.parts[name]); err != nil {
			return fmt.Errorf("failed to write part %s: %w", name, err)
		}
	}
	return zw.Close()
}

// SaveAs serializes the document to a new file.
func (d *Document) SaveAs(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()
	return d.Write(out)
}

// relsPartName maps a part name to its relationships part, e.g.
// "word/document.xml" -> "word/_rels/document.xml.rels".
func relsPartName(partName string) string {
	dir, base := filepath.Split(partName)
	return dir + "_rels/" + base + ".rels"
}
