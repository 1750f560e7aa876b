// Package format renders numbers, sizes and unit-suffixed values for
// dropdown labels.
package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// NumberFormat selects the thousands and decimal separators.
type NumberFormat int

const (
	// FormatFrench renders 1&nbsp;234.56.
	FormatFrench NumberFormat = iota
	// FormatEnglish renders 1,234.56.
	FormatEnglish
	// FormatFrenchComma renders 1&nbsp;234,56.
	FormatFrenchComma
	// FormatPlainDot renders 1234.56.
	FormatPlainDot
	// FormatPlainComma renders 1234,56.
	FormatPlainComma
)

const nbsp = " "

// maxPrecision is the highest precision humanize.FormatFloat supports.
const maxPrecision = 9

func (f NumberFormat) separators() (thousands, decimal string) {
	switch f {
	case FormatEnglish:
		return ",", "."
	case FormatFrenchComma:
		return nbsp, ","
	case FormatPlainDot:
		return "", "."
	case FormatPlainComma:
		return "", ","
	default:
		return nbsp, "."
	}
}

// layout builds a humanize.FormatFloat directive such as "#,###.##".
func (f NumberFormat) layout(decimals int) string {
	thousands, decimal := f.separators()
	var b strings.Builder
	b.WriteString("#")
	if thousands != "" {
		b.WriteString(thousands)
		b.WriteString("###")
	}
	b.WriteString(decimal)
	b.WriteString(strings.Repeat("#", decimals))
	return b.String()
}

// Number formats v with the given separators and a fixed count of decimals.
// Non-breaking spaces are emitted as "&nbsp;".
func Number(v float64, f NumberFormat, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	if decimals > maxPrecision {
		decimals = maxPrecision
	}
	out := humanize.FormatFloat(f.layout(decimals), v)
	return strings.ReplaceAll(out, nbsp, "&nbsp;")
}

// ParseNumber reports whether s is a plain decimal number.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// DecimalCount returns the number of digits after the decimal point in step,
// so 0.25 yields 2 and 10 yields 0.
func DecimalCount(step float64) int {
	s := strconv.FormatFloat(step, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

// Round rounds v to the given count of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// Trim renders v with the shortest representation, so 1.50 yields "1.5".
func Trim(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
