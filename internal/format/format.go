// Package format renders numeric values as localized display text.
// It is the default implementation of the resolver's Formatter
// collaborator; the core never formats numbers itself.
package format

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter formats numbers for one locale.
type Formatter struct {
	printer *message.Printer
}

// New creates a formatter for the given BCP 47 locale tag. An empty
// or unparseable tag falls back to English.
func New(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.English
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Format renders value with the given unit. decimals < 0 requests
// automatic precision. Units follow the ids used in field config:
// "", "none" (plain), "short" (SI suffix), "percent", "bytes",
// "s"/"ms" (durations); unknown units are appended as a suffix.
func (f *Formatter) Format(value float64, unit string, decimals int) string {
	if math.IsNaN(value) {
		return ""
	}
	if math.IsInf(value, 0) {
		if value > 0 {
			return "+Inf"
		}
		return "-Inf"
	}

	switch unit {
	case "", "none":
		return f.decimal(value, decimals)
	case "short":
		scaled, suffix := scaleSI(value, 1000, []string{"", " K", " M", " B", " T"})
		return f.decimal(scaled, decimals) + suffix
	case "percent":
		return f.decimal(value, decimals) + "%"
	case "percentunit":
		return f.decimal(value*100, decimals) + "%"
	case "bytes":
		scaled, suffix := scaleSI(value, 1024, []string{" B", " KiB", " MiB", " GiB", " TiB", " PiB"})
		return f.decimal(scaled, decimals) + suffix
	case "s":
		return f.duration(value)
	case "ms":
		return f.duration(value / 1000)
	default:
		return f.decimal(value, decimals) + " " + unit
	}
}

// decimal renders a bare number with the locale's digit grouping.
func (f *Formatter) decimal(value float64, decimals int) string {
	if decimals < 0 {
		return f.printer.Sprint(number.Decimal(value, number.MaxFractionDigits(autoDecimals(value))))
	}
	return f.printer.Sprint(number.Decimal(value,
		number.MinFractionDigits(decimals), number.MaxFractionDigits(decimals)))
}

// autoDecimals picks a precision that keeps roughly three significant
// digits for small magnitudes and none for large ones.
func autoDecimals(value float64) int {
	abs := math.Abs(value)
	switch {
	case abs == 0 || abs >= 100:
		return 0
	case abs >= 1:
		return 2
	default:
		return 3
	}
}

func (f *Formatter) duration(seconds float64) string {
	abs := math.Abs(seconds)
	switch {
	case abs < 1e-3:
		return f.decimal(seconds*1e6, -1) + " µs"
	case abs < 1:
		return f.decimal(seconds*1e3, -1) + " ms"
	case abs < 60:
		return f.decimal(seconds, -1) + " s"
	case abs < 3600:
		return f.decimal(seconds/60, -1) + " min"
	default:
		return f.decimal(seconds/3600, -1) + " h"
	}
}

// scaleSI divides value by base until it fits, returning the scaled
// value and the matching suffix.
func scaleSI(value, base float64, suffixes []string) (float64, string) {
	idx := 0
	for math.Abs(value) >= base && idx < len(suffixes)-1 {
		value /= base
		idx++
	}
	return value, suffixes[idx]
}

// FormatRaw renders a value without locale-aware grouping, for plain
// machine-readable output such as CSV.
func FormatRaw(value float64, decimals int) string {
	if decimals < 0 {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	return fmt.Sprintf("%.*f", decimals, value)
}
