package format

import "strconv"

// UnitAuto converts a MiB value to the largest fitting byte multiple.
const UnitAuto = "auto"

var pluralUnits = map[string]string{
	"year":        "years",
	"month":       "months",
	"day":         "days",
	"hour":        "hours",
	"minute":      "minutes",
	"second":      "seconds",
	"millisecond": "milliseconds",
}

var sizeUnits = []string{"o", "Kio", "Mio", "Gio", "Tio"}

// ValueWithUnit renders value followed by unit. Numeric values are
// formatted with f and decimals; time units are pluralised; "%" is glued to
// the number; "auto" treats value as MiB and picks a byte multiple.
// Non-numeric values are passed through untouched.
func ValueWithUnit(value, unit string, decimals int, f NumberFormat) string {
	num, numeric := ParseNumber(value)
	formatted := value
	if numeric {
		formatted = Number(num, f, decimals)
	}

	switch unit {
	case "":
		return formatted
	case "%":
		return formatted + "%"
	case UnitAuto:
		if !numeric {
			return value
		}
		return Size(num * 1024 * 1024)
	}

	if plural, ok := pluralUnits[unit]; ok {
		if numeric && num == 1 {
			return formatted + " " + unit
		}
		return formatted + " " + plural
	}
	return formatted + " " + unit
}

// FloatWithUnit is ValueWithUnit for a numeric value.
func FloatWithUnit(value float64, unit string, decimals int, f NumberFormat) string {
	return ValueWithUnit(strconv.FormatFloat(value, 'f', -1, 64), unit, decimals, f)
}

// Size renders a byte count with binary prefixes, e.g. 1048576 as "1024 Kio".
func Size(bytes float64) string {
	i := 0
	for bytes > 1024 && i < len(sizeUnits)-1 {
		bytes /= 1024
		i++
	}
	return Trim(Round(bytes, 2)) + " " + sizeUnits[i]
}
