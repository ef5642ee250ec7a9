package replacements

import (
	"strings"

	"github.com/auditoria/docgen/internal/domain/entity"
)

// FieldValue resolves the computed value for one logical field name. The set
// of fields is closed; unknown names resolve to empty. fechaInicio/fechaFin
// arrive already formatted (see FormatDateSpanish).
func FieldValue(campo string, audit *entity.Audit, fechaInicio, fechaFin string) string {
	switch campo {
	case "entidad":
		return audit.Identidad
	case "fecha_inicio":
		return fechaInicio
	case "fecha_fin":
		return fechaFin
	case "fecha_rango":
		if fechaInicio == "" && fechaFin == "" {
			return ""
		}
		return fechaInicio + " al " + fechaFin
	case "titulo_auditoria":
		return audit.Title
	case "tipo_auditoria":
		return audit.TipoAuditoria
	case "auditor":
		return audit.AuditManager
	case "moneda":
		return audit.Moneda
	}
	return ""
}

// Build merges audit metadata with the static placeholder configuration into
// a single substitution map. Every configured field is optional: a field
// absent from the config is skipped, and a field whose audit attribute is
// empty falls back to the per-field default. The result is immutable for the
// duration of one document fill.
func Build(cfg *Config, audit *entity.Audit, fechaInicio, fechaFin string) map[string]string {
	repl := make(map[string]string)
	if cfg == nil || audit == nil {
		return repl
	}

	for campo, fieldCfg := range cfg.Campos {
		value := FieldValue(campo, audit, fechaInicio, fechaFin)
		if value == "" {
			value = fieldCfg.Default
		}
		for _, placeholder := range fieldCfg.Placeholders {
			repl[placeholder] = value
		}
		// A formato like "Entidad: {}" registers the bare label as the
		// placeholder and the populated template as its replacement.
		for _, formato := range fieldCfg.Formatos {
			if !strings.Contains(formato, "{}") {
				continue
			}
			label := strings.ReplaceAll(formato, "{}", "")
			repl[label] = strings.ReplaceAll(formato, "{}", value)
		}
	}

	return repl
}
