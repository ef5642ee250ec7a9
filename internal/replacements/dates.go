package replacements

import (
	"fmt"
	"time"
)

// spanishMonths maps month numbers to capitalized Spanish month names.
var spanishMonths = [...]string{
	time.January:   "Enero",
	time.February:  "Febrero",
	time.March:     "Marzo",
	time.April:     "Abril",
	time.May:       "Mayo",
	time.June:      "Junio",
	time.July:      "Julio",
	time.August:    "Agosto",
	time.September: "Septiembre",
	time.October:   "Octubre",
	time.November:  "Noviembre",
	time.December:  "Diciembre",
}

// FormatDateSpanish renders a date as "02 de Enero de 2006": zero-padded
// day, capitalized Spanish month name. Templates embed dates in this form, so
// it must be applied before building replacement maps.
func FormatDateSpanish(t time.Time) string {
	return fmt.Sprintf("%02d de %s de %d", t.Day(), spanishMonths[t.Month()], t.Year())
}

// FormatDateShort renders a date as "02/01/2006" for spreadsheet headers.
func FormatDateShort(t time.Time) string {
	return t.Format("02/01/2006")
}

// FormatISODateShort converts an ISO "2006-01-02" date string to
// "02/01/2006". Unparseable input is returned unchanged.
func FormatISODateShort(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return FormatDateShort(t)
}
