// Package format renders quote values for display.
package format

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Placeholder is shown for values that are not available.
const Placeholder = "-"

// Number renders v with thousands separators and between min(2, maxDigits)
// and maxDigits fractional digits, rounding half away from zero.
// NaN and infinities render as Placeholder.
func Number(v float64, maxDigits int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	if maxDigits < 0 {
		maxDigits = 0
	}
	minDigits := min(2, maxDigits)

	fixed := decimal.NewFromFloat(v).StringFixed(int32(maxDigits))
	return group(trimFraction(fixed, minDigits))
}

// Currency renders v as US dollars with exactly two fractional digits.
func Currency(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return Placeholder
	}

	d := decimal.NewFromFloat(*v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + "$" + group(d.StringFixed(2))
}

// trimFraction drops trailing zeros from the fractional part while keeping
// at least minDigits of it.
func trimFraction(s string, minDigits int) string {
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return s
	}
	end := len(s)
	for end > dot+1+minDigits && s[end-1] == '0' {
		end--
	}
	if end == dot+1 {
		end = dot
	}
	return s[:end]
}

// group inserts comma separators into the integer part of a plain decimal
// string.
func group(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, frac = s[:dot], s[dot:]
	}

	if len(intPart) <= 3 {
		return sign + intPart + frac
	}

	var b strings.Builder
	head := len(intPart) % 3
	if head > 0 {
		b.WriteString(intPart[:head])
	}
	for i := head; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}
