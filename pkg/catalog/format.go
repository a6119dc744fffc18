package catalog

import (
	"math"
	"strconv"
	"strings"

	"github.com/younsl/jj/internal/models"
)

// FormatFloat renders f the way the instances.json tables have always shown
// prices: shortest round-trip digits, a trailing ".0" for integral values and
// exponent notation only below 1e-4 or from 1e16 up.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err == nil && (exp < -4 || exp >= 16) {
		return sci
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatNumber renders a published scalar: integers and strings verbatim,
// fractional numbers through FormatFloat, null as the empty string.
func FormatNumber(n models.Number) string {
	if !n.Valid {
		return ""
	}
	if n.Quoted || n.IsInteger() {
		return n.Literal
	}
	f, err := strconv.ParseFloat(n.Literal, 64)
	if err != nil {
		return n.Literal
	}
	return FormatFloat(f)
}
