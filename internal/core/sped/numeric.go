// internal/core/sped/numeric.go
package sped

import (
	"math"
	"strconv"
	"strings"
)

// EPSILON is the absolute tolerance used by the reconciliation formulas.
const EPSILON = 0.01

// Normalize converts a SPED/Brazilian formatted numeric string to a
// canonical decimal. It never fails: empty, "0" and unparsable input
// all yield 0. Rules: a comma is the decimal separator and any dots are
// thousands separators; multiple dots without a comma are thousands
// separators; otherwise the string is parsed as-is.
func Normalize(val string) float64 {
	s := strings.TrimSpace(val)
	if s == "" || s == "0" {
		return 0.0
	}

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else if strings.Count(s, ".") > 1 {
		s = strings.ReplaceAll(s, ".", "")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0.0
	}
	return f
}

// NormalizePercent parses a percentage field. Values in (0, 1] are
// treated as fractions and rescaled to the 0-100 scale.
//
// TODO: a declared rate of exactly 0.5% is indistinguishable from the
// fraction 0.005 under this rule; revisit once the layout tables mark
// which fields are stored as fractions.
func NormalizePercent(val string) float64 {
	f := Normalize(val)
	if f > 0 && f <= 1 {
		return f * 100
	}
	return f
}

// Round rounds a value to the given number of decimal places.
func Round(val float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(val*pow) / pow
}
