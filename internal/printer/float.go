package printer

import (
	"strconv"
	"strings"
)

// formatFloat prints the shortest decimal form of v, always with a
// fractional part ("2.0", "0.125"). Values that would need an exponent are
// printed with 10 fixed decimals instead, since players don't parse
// exponents. Zero, or a value truncating to zero, returns "".
func formatFloat(v float64) string {
	if v == 0 {
		return ""
	}
	s := Repr(v)
	if strings.ContainsAny(s, "e") {
		s = strconv.FormatFloat(v, 'f', 10, 64)
		if f, _ := strconv.ParseFloat(s, 64); f == 0 {
			return ""
		}
	}
	return s
}

// Repr prints v like a shortest round-trip float literal: exponents only
// below 1e-4 or from 1e16, and ".0" on integral values.
func Repr(v float64) string {
	e := strconv.FormatFloat(v, 'e', -1, 64)
	if i := strings.IndexByte(e, 'e'); i >= 0 {
		if exp, err := strconv.Atoi(e[i+1:]); err == nil && (exp < -4 || exp >= 16) {
			return e
		}
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

// ms formats a millisecond value as a seconds flag, or "" when zero.
func ms(flag string, value float64) string {
	if value == 0 {
		return ""
	}
	s := formatFloat(value / 1000)
	if s == "" {
		return ""
	}
	return flag + " " + s
}

// sec formats seconds, printing "0.0" for zero.
func sec(value float64) string {
	if s := formatFloat(value); s != "" {
		return s
	}
	return "0.0"
}
