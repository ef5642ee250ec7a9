package word

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const minimalBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
	`<w:body><w:p><w:r><w:t>Hola</w:t></w:r></w:p></w:body></w:document>`

// writeDocx builds a .docx archive on disk from part name to content.
func writeDocx(t *testing.T, name string, parts map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for partName, content := range parts {
		fw, err := zw.Create(partName)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func newTestDocx(t *testing.T, name, body string) string {
	t.Helper()
	return writeDocx(t, name, map[string]string{
		"[Content_Types].xml":          `<Types/>`,
		"word/document.xml":            body,
		"word/_rels/document.xml.rels": emptyRelsXML,
		"word/header1.xml":             `<w:hdr><w:p><w:r><w:t>[ENTIDAD]</w:t></w:r></w:p></w:hdr>`,
	})
}

func TestOpen(t *testing.T) {
	logger := zap.NewNop()

	t.Run("reads all parts", func(t *testing.T) {
		path := newTestDocx(t, "doc.docx", minimalBody)
		doc, err := Open(path, logger)
		require.NoError(t, err)

		assert.Equal(t, "doc.docx", doc.Filename())
		assert.Equal(t, path, doc.Path())

		data, ok := doc.Part("word/document.xml")
		require.True(t, ok)
		assert.Equal(t, minimalBody, string(data))
	})

	t.Run("rejects archive without document part", func(t *testing.T) {
		path := writeDocx(t, "bad.docx", map[string]string{"hello.txt": "x"})
		_, err := Open(path, logger)
		assert.Error(t, err)
	})

	t.Run("rejects missing file", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "nope.docx"), logger)
		assert.Error(t, err)
	})
}

func TestTextParts(t *testing.T) {
	path := newTestDocx(t, "doc.docx", minimalBody)
	doc, err := Open(path, zap.NewNop())
	require.NoError(t, err)

	parts := doc.TextParts()
	assert.Contains(t, parts, "word/document.xml")
	assert.Contains(t, parts, "word/header1.xml")
	assert.NotContains(t, parts, "[Content_Types].xml")
	assert.NotContains(t, parts, "word/_rels/document.xml.rels")
}

func TestAddHyperlinkRel(t *testing.T) {
	path := newTestDocx(t, "doc.docx", minimalBody)
	doc, err := Open(path, zap.NewNop())
	require.NoError(t, err)

	id1, err := doc.AddHyperlinkRel("word/document.xml", "http://localhost/a?x=1&y=2")
	require.NoError(t, err)
	assert.Equal(t, "rId1", id1)

	id2, err := doc.AddHyperlinkRel("word/document.xml", "http://localhost/b")
	require.NoError(t, err)
	assert.Equal(t, "rId2", id2)

	rels, ok := doc.Part("word/_rels/document.xml.rels")
	require.True(t, ok)
	relsStr := string(rels)
	assert.Contains(t, relsStr, `TargetMode="External"`)
	assert.Contains(t, relsStr, "x=1&amp;y=2")
	assert.Contains(t, relsStr, hyperlinkRelType)
}

func TestWriteRoundTrip(t *testing.T) {
	path := newTestDocx(t, "doc.docx", minimalBody)
	doc, err := Open(path, zap.NewNop())
	require.NoError(t, err)

	doc.SetPart("word/document.xml", []byte(`<w:document><w:body/></w:document>`))

	out := filepath.Join(t.TempDir(), "out.docx")
	require.NoError(t, doc.SaveAs(out))

	reopened, err := Open(out, zap.NewNop())
	require.NoError(t, err)

	data, ok := reopened.Part("word/document.xml")
	require.True(t, ok)
	assert.Equal(t, `<w:document><w:body/></w:document>`, string(data))

	// Untouched parts survive byte-for-byte.
	header, ok := reopened.Part("word/header1.xml")
	require.True(t, ok)
	assert.Contains(t, string(header), "[ENTIDAD]")
}
