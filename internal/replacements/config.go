// Package replacements builds the placeholder substitution maps applied to
// document templates, driven by static JSON configuration.
package replacements

import (
	"encoding/json"
	"os"
	"sync"

	"go.uber.org/zap"
)

// FieldConfig enumerates, for one logical audit field, the literal
// placeholder strings that map to the field's computed value.
type FieldConfig struct {
	Placeholders []string `json:"placeholders"`
	Default      string   `json:"default"`
	Formatos     []string `json:"formatos"`
}

// CellRule drives adjacent-cell injection in Word tables: a cell whose
// normalized text equals Buscar has the field value written into the next
// cell of the same row.
type CellRule struct {
	Buscar string `json:"buscar"`
	Campo  string `json:"campo"`
}

// RegexRule drives regex-based substitution in Word cells and paragraphs.
type RegexRule struct {
	Pattern string `json:"pattern"`
	Campo   string `json:"reemplazar_por"`
}

// Config is the parsed replacements.json document.
type Config struct {
	Campos map[string]FieldConfig `json:"campos"`
	Celdas []CellRule             `json:"celdas"`
	Regex  []RegexRule            `json:"regex"`
}

// NomenclatureConfig selects the cross-reference prefix and number range for
// hyperlink injection in one document family.
type NomenclatureConfig struct {
	Prefijo  string `json:"prefijo"`
	RangoMax int    `json:"rango_max"`
}

// TablesConfig is the parsed tables.json document: the pattern-to-template
// lookup plus the hyperlink nomenclature tables.
type TablesConfig struct {
	Patterns map[string]string             `json:"patterns"`
	Archivos map[string]NomenclatureConfig `json:"archivos"`
	Carpetas map[string]NomenclatureConfig `json:"carpetas"`
}

// Loader loads static JSON configuration documents, parsing each path once
// per process. Read or parse errors degrade to an empty config so document
// generation proceeds best-effort.
type Loader struct {
	logger *zap.Logger

	mu     sync.Mutex
	cfgs   map[string]*Config
	tables map[string]*TablesConfig
}

// NewLoader creates a new configuration loader
func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{
		logger: logger,
		cfgs:   make(map[string]*Config),
		tables: make(map[string]*TablesConfig),
	}
}

// Replacements returns the replacement configuration at path.
func (l *Loader) Replacements(path string) *Config {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cfg, ok := l.cfgs[path]; ok {
		return cfg
	}

	cfg := &Config{Campos: make(map[string]FieldConfig)}
	if err := l.read(path, cfg); err != nil {
		l.logger.Warn("Failed to load replacement config, using empty config",
			zap.String("path", path), zap.Error(err))
		cfg = &Config{Campos: make(map[string]FieldConfig)}
	}
	l.cfgs[path] = cfg
	return cfg
}

// Tables returns the table/nomenclature configuration at path.
func (l *Loader) Tables(path string) *TablesConfig {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cfg, ok := l.tables[path]; ok {
		return cfg
	}

	cfg := &TablesConfig{}
	if err := l.read(path, cfg); err != nil {
		l.logger.Warn("Failed to load tables config, using empty config",
			zap.String("path", path), zap.Error(err))
		cfg = &TablesConfig{}
	}
	if cfg.Patterns == nil {
		cfg.Patterns = make(map[string]string)
	}
	if cfg.Archivos == nil {
		cfg.Archivos = make(map[string]NomenclatureConfig)
	}
	if cfg.Carpetas == nil {
		cfg.Carpetas = make(map[string]NomenclatureConfig)
	}
	l.tables[path] = cfg
	return cfg
}

func (l *Loader) read(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
