package replacements

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeTempJSON(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoaderReplacements(t *testing.T) {
	loader := NewLoader(zap.NewNop())

	t.Run("parses valid config", func(t *testing.T) {
		path := writeTempJSON(t, "replacements.json", `{
			"campos": {
				"entidad": {"placeholders": ["[ENTIDAD]"], "default": "", "formatos": ["Entidad: {}"]}
			},
			"celdas": [{"buscar": "ENTIDAD:", "campo": "entidad"}],
			"regex": [{"pattern": "ENTIDAD:\\s*$", "reemplazar_por": "entidad"}]
		}`)

		cfg := loader.Replacements(path)
		require.Contains(t, cfg.Campos, "entidad")
		assert.Equal(t, []string{"[ENTIDAD]"}, cfg.Campos["entidad"].Placeholders)
		require.Len(t, cfg.Celdas, 1)
		assert.Equal(t, "ENTIDAD:", cfg.Celdas[0].Buscar)
		require.Len(t, cfg.Regex, 1)
		assert.Equal(t, "entidad", cfg.Regex[0].Campo)
	})

	t.Run("missing file degrades to empty config", func(t *testing.T) {
		cfg := loader.Replacements(filepath.Join(t.TempDir(), "missing.json"))
		require.NotNil(t, cfg)
		assert.Empty(t, cfg.Campos)
	})

	t.Run("malformed file degrades to empty config", func(t *testing.T) {
		path := writeTempJSON(t, "bad.json", `{not json`)
		cfg := loader.Replacements(path)
		require.NotNil(t, cfg)
		assert.Empty(t, cfg.Campos)
	})

	t.Run("same path parsed once", func(t *testing.T) {
		path := writeTempJSON(t, "once.json", `{"campos": {"moneda": {"placeholders": ["[MONEDA]"]}}}`)
		first := loader.Replacements(path)

		// Rewriting the file must not change the cached result.
		require.NoError(t, os.WriteFile(path, []byte(`{"campos": {}}`), 0644))
		second := loader.Replacements(path)
		assert.Same(t, first, second)
	})
}

func TestLoaderTables(t *testing.T) {
	loader := NewLoader(zap.NewNop())

	t.Run("parses valid config", func(t *testing.T) {
		path := writeTempJSON(t, "tables.json", `{
			"patterns": {"A-1": "2 SUMARIA CAJAS Y BANCOS.xlsx"},
			"archivos": {"memo.docx": {"prefijo": "A", "rango_max": 10}},
			"carpetas": {"EJECUCION": {"prefijo": "E", "rango_max": 5}}
		}`)

		cfg := loader.Tables(path)
		assert.Equal(t, "2 SUMARIA CAJAS Y BANCOS.xlsx", cfg.Patterns["A-1"])
		assert.Equal(t, "A", cfg.Archivos["memo.docx"].Prefijo)
		assert.Equal(t, 5, cfg.Carpetas["EJECUCION"].RangoMax)
	})

	t.Run("missing file yields empty non-nil maps", func(t *testing.T) {
		cfg := loader.Tables(filepath.Join(t.TempDir(), "missing.json"))
		require.NotNil(t, cfg)
		assert.NotNil(t, cfg.Patterns)
		assert.NotNil(t, cfg.Archivos)
		assert.NotNil(t, cfg.Carpetas)
	})
}
