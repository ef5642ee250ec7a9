package word

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/auditoria/docgen/internal/replacements"
)

func TestResolveNomenclature(t *testing.T) {
	cfg := &replacements.TablesConfig{
		Archivos: map[string]replacements.NomenclatureConfig{
			"MEMORANDUM.docx": {Prefijo: "A", RangoMax: 10},
		},
		Carpetas: map[string]replacements.NomenclatureConfig{
			"EJECUCION": {Prefijo: "E", RangoMax: 5},
		},
	}

	t.Run("exact filename wins", func(t *testing.T) {
		nom, ok := ResolveNomenclature(cfg, "MEMORANDUM.docx", "auditoria/EJECUCION/MEMORANDUM.docx")
		require.True(t, ok)
		assert.Equal(t, "A", nom.Prefijo)
	})

	t.Run("folder fallback deepest first", func(t *testing.T) {
		nom, ok := ResolveNomenclature(cfg, "otro.docx", "auditoria/2 EJECUCION/otro.docx")
		require.True(t, ok)
		assert.Equal(t, "E", nom.Prefijo)
	})

	t.Run("windows separators accepted", func(t *testing.T) {
		nom, ok := ResolveNomenclature(cfg, "otro.docx", `auditoria\EJECUCION\otro.docx`)
		require.True(t, ok)
		assert.Equal(t, "E", nom.Prefijo)
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := ResolveNomenclature(cfg, "otro.docx", "auditoria/OTRA/otro.docx")
		assert.False(t, ok)
	})

	t.Run("nil config", func(t *testing.T) {
		_, ok := ResolveNomenclature(nil, "MEMORANDUM.docx", "")
		assert.False(t, ok)
	})
}

func TestInject(t *testing.T) {
	injector := NewHyperlinkInjector("http://localhost:8080/", zap.NewNop())
	nom := replacements.NomenclatureConfig{Prefijo: "A", RangoMax: 12}

	t.Run("links each pattern at first occurrence", func(t *testing.T) {
		doc := openBody(t, "memo.docx",
			`<w:p><w:r><w:t>Ver A-1 y A-2, luego A-1 de nuevo.</w:t></w:r></w:p>`)

		injector.Inject(doc, 7, nom)

		data, _ := doc.Part("word/document.xml")
		xmlStr := string(data)

		assert.Equal(t, 2, strings.Count(xmlStr, "<w:hyperlink "))
		assert.Contains(t, xmlStr, `r:id="rId1"`)
		assert.Contains(t, xmlStr, `r:id="rId2"`)

		// Visible text is unchanged.
		assert.Equal(t, "Ver A-1 y A-2, luego A-1 de nuevo.", paragraphText(xmlStr))

		rels, ok := doc.Part("word/_rels/document.xml.rels")
		require.True(t, ok)
		relsStr := string(rels)
		assert.Contains(t, relsStr, "http://localhost:8080/auditoria/download/7/A-1")
		assert.Contains(t, relsStr, "http://localhost:8080/auditoria/download/7/A-2")
		assert.Equal(t, 2, strings.Count(relsStr, `TargetMode="External"`))
	})

	t.Run("shorter pattern does not match inside longer one", func(t *testing.T) {
		doc := openBody(t, "memo.docx",
			`<w:p><w:r><w:t>Referencia A-11 solamente.</w:t></w:r></w:p>`)

		injector.Inject(doc, 7, nom)

		data, _ := doc.Part("word/document.xml")
		xmlStr := string(data)
		assert.Equal(t, 1, strings.Count(xmlStr, "<w:hyperlink "))

		rels, _ := doc.Part("word/_rels/document.xml.rels")
		assert.Contains(t, string(rels), "/A-11")
		assert.NotContains(t, string(rels), "/A-1\"")
	})

	t.Run("pattern split across runs still linked", func(t *testing.T) {
		doc := openBody(t, "memo.docx",
			`<w:p><w:r><w:t>Ver A-</w:t></w:r><w:r><w:t>3 adjunto.</w:t></w:r></w:p>`)

		injector.Inject(doc, 7, nom)

		data, _ := doc.Part("word/document.xml")
		xmlStr := string(data)
		assert.Equal(t, 1, strings.Count(xmlStr, "<w:hyperlink "))
		assert.Equal(t, "Ver A-3 adjunto.", paragraphText(xmlStr))
	})

	t.Run("existing hyperlink wrapper is not left empty", func(t *testing.T) {
		doc := openBody(t, "memo.docx",
			`<w:p><w:r><w:t>Ver A-4 y </w:t></w:r><w:hyperlink r:id="rId9"><w:r><w:t>anexo</w:t></w:r></w:hyperlink></w:p>`)

		injector.Inject(doc, 7, nom)

		data, _ := doc.Part("word/document.xml")
		xmlStr := string(data)
		assert.NotRegexp(t, `<w:hyperlink[^>]*>\s*</w:hyperlink>`, xmlStr)
		assert.NotContains(t, xmlStr, `r:id="rId9"`)
		assert.Equal(t, 1, strings.Count(xmlStr, "<w:hyperlink "))
		assert.Equal(t, "Ver A-4 y anexo", paragraphText(xmlStr))
	})

	t.Run("linked run is underlined", func(t *testing.T) {
		doc := openBody(t, "memo.docx",
			`<w:p><w:r><w:t>A-1</w:t></w:r></w:p>`)

		injector.Inject(doc, 7, nom)

		data, _ := doc.Part("word/document.xml")
		assert.Contains(t, string(data), `<w:u w:val="single"/>`)
	})

	t.Run("no patterns leaves document untouched", func(t *testing.T) {
		body := `<w:p><w:r><w:t>Sin referencias.</w:t></w:r></w:p>`
		doc := openBody(t, "memo.docx", body)
		before, _ := doc.Part("word/document.xml")

		injector.Inject(doc, 7, nom)

		after, _ := doc.Part("word/document.xml")
		assert.Equal(t, string(before), string(after))
	})

	t.Run("empty nomenclature disables injection", func(t *testing.T) {
		doc := openBody(t, "memo.docx", `<w:p><w:r><w:t>A-1</w:t></w:r></w:p>`)

		injector.Inject(doc, 7, replacements.NomenclatureConfig{})

		data, _ := doc.Part("word/document.xml")
		assert.NotContains(t, string(data), "<w:hyperlink")
	})
}
