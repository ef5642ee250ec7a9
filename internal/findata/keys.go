package findata

import (
	"regexp"
	"sort"
	"strings"

	"github.com/auditoria/docgen/internal/domain/entity"
)

// Composite keys are the interchange format between the accessor and the
// spreadsheet engines. Both sides must build them through these helpers so
// the key format cannot drift between builder and consumer.

// BalanceKey builds the composite key for a balance record:
// "{tipo}-{fecha}-{seccion}-{cuenta}" with "-{tipoCuenta}" appended when the
// record carries an account type.
func BalanceKey(tipo entity.TipoBalance, fecha string, seccion entity.Seccion, cuenta, tipoCuenta string) string {
	key := string(tipo) + "-" + fecha + "-" + string(seccion) + "-" + cuenta
	if tipoCuenta != "" {
		key += "-" + tipoCuenta
	}
	return key
}

// AuxiliaryKey builds the composite key for an auxiliary record.
func AuxiliaryKey(cuenta, fecha string) string {
	return cuenta + "-" + fecha
}

var (
	isoDateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	yearRe    = regexp.MustCompile(`^ANUAL-(\d{4})`)
)

// SemesterDates returns the sorted unique ISO cut-off dates present among
// SEMESTRAL keys of a flattened balance map.
func SemesterDates(balances map[string]float64) []string {
	seen := make(map[string]bool)
	for key := range balances {
		if !strings.HasPrefix(key, string(entity.TipoBalanceSemestral)+"-") {
			continue
		}
		if fecha := isoDateRe.FindString(key); fecha != "" {
			seen[fecha] = true
		}
	}
	dates := make([]string, 0, len(seen))
	for fecha := range seen {
		dates = append(dates, fecha)
	}
	sort.Strings(dates)
	return dates
}

// AnnualYears returns the sorted 4-digit years present among ANUAL keys.
func AnnualYears(balances map[string]float64) []string {
	seen := make(map[string]bool)
	for key := range balances {
		if m := yearRe.FindStringSubmatch(key); m != nil {
			seen[m[1]] = true
		}
	}
	years := make([]string, 0, len(seen))
	for year := range seen {
		years = append(years, year)
	}
	sort.Strings(years)
	return years
}

// AccountsBySection returns the sorted account names found under a section
// for the given balance type, optionally restricted to keys containing the
// given year. Account names that are empty after stripping the section
// prefix are dropped. Keys carrying a "-{tipoCuenta}" suffix keep it in the
// returned name: the Sumaria engines rebuild lookup keys from these names,
// and a trimmed name would no longer match the suffixed record.
func AccountsBySection(balances map[string]float64, tipo entity.TipoBalance, seccion entity.Seccion, year string) []string {
	marker := "-" + string(seccion) + "-"
	seen := make(map[string]bool)
	for key := range balances {
		if !strings.HasPrefix(key, string(tipo)+"-") {
			continue
		}
		if year != "" && !strings.HasPrefix(key, string(tipo)+"-"+year) {
			continue
		}
		idx := strings.Index(key, marker)
		if idx < 0 {
			continue
		}
		cuenta := strings.TrimSpace(key[idx+len(marker):])
		if cuenta == "" {
			continue
		}
		seen[cuenta] = true
	}
	cuentas := make([]string, 0, len(seen))
	for cuenta := range seen {
		cuentas = append(cuentas, cuenta)
	}
	sort.Strings(cuentas)
	return cuentas
}

// LookupBalance finds the value for an account at one cut-off date. It first
// tries the exact composite key under every known section, then falls back to
// a case-insensitive bidirectional substring match on the account portion of
// keys sharing the "{tipo}-{fecha}-" prefix. First fallback match wins.
func LookupBalance(balances map[string]float64, tipo entity.TipoBalance, fecha, cuenta string) (float64, bool) {
	for _, seccion := range entity.Secciones {
		if v, ok := balances[BalanceKey(tipo, fecha, seccion, cuenta, "")]; ok {
			return v, true
		}
	}

	prefix := string(tipo) + "-" + fecha + "-"
	want := strings.ToLower(strings.TrimSpace(cuenta))
	for key, v := range balances {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.ToLower(strings.TrimSpace(key[len(prefix):]))
		if strings.Contains(rest, want) || strings.Contains(want, rest) {
			return v, true
		}
	}
	return 0, false
}

// LookupAnnual finds the value for an account under a section for one year,
// regardless of whether the key carries a bare year or a full cut-off date.
func LookupAnnual(balances map[string]float64, year string, seccion entity.Seccion, cuenta string) (float64, bool) {
	prefix := string(entity.TipoBalanceAnual) + "-" + year
	marker := "-" + string(seccion) + "-"
	for key, v := range balances {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		idx := strings.Index(key, marker)
		if idx < 0 {
			continue
		}
		if strings.TrimSpace(key[idx+len(marker):]) == cuenta {
			return v, true
		}
	}
	return 0, false
}

// LookupAdjustment finds the debit/credit adjustment for an account. Exact
// name match first, then a bidirectional trimmed case-insensitive substring
// match; the first fallback match wins (map iteration order).
func LookupAdjustment(adjustments map[string]Adjustment, cuenta string) (Adjustment, bool) {
	if adj, ok := adjustments[cuenta]; ok {
		return adj, true
	}
	want := strings.ToLower(strings.TrimSpace(cuenta))
	for name, adj := range adjustments {
		have := strings.ToLower(strings.TrimSpace(name))
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return adj, true
		}
	}
	return Adjustment{}, false
}
