package dataset

// infer.go decides, per cell, whether a raw CSV string becomes a number.
//
// The decision is driven first by the column name and only then by the value:
//
//   - Columns whose name looks like a label ("id", "code", "name", "category")
//     or is at most three characters long are categorical. Their values are
//     kept verbatim even when they look numeric ("007", "1").
//   - Every other column is a numeric candidate. A value is converted only if
//     the whole trimmed string is a plain decimal literal: an optional minus,
//     digits, an optional point and more digits. No exponents, no thousands
//     separators, no currency symbols.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// decimalLiteral matches the complete value, not a prefix.
var decimalLiteral = regexp.MustCompile(`^-?\d*\.?\d+$`)

// labelFragments mark a column as categorical when found anywhere in its name.
var labelFragments = []string{"id", "code", "name", "category"}

// maxShortHeader is the longest header treated as a short code column.
const maxShortHeader = 3

// IsCategorical reports whether values under header must never be coerced.
func IsCategorical(header string) bool {
	return hasLabelFragment(header) || utf8.RuneCountInString(header) <= maxShortHeader
}

// hasLabelFragment is the name-only half of IsCategorical.
func hasLabelFragment(header string) bool {
	lower := strings.ToLower(header)
	for _, frag := range labelFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

// IsDecimalLiteral reports whether s, after trimming, is a plain decimal
// number that parses to a finite float.
func IsDecimalLiteral(s string) bool {
	_, ok := parseDecimal(s)
	return ok
}

func parseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !decimalLiteral.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Coerce converts raw into the cell value stored under header.
// Categorical columns keep raw untouched. Numeric candidates become a Number
// when raw is a decimal literal, otherwise the trimmed text is kept.
func Coerce(header, raw string) Value {
	if IsCategorical(header) {
		return Text(raw)
	}
	if f, ok := parseDecimal(raw); ok {
		return Number(f)
	}
	return Text(strings.TrimSpace(raw))
}

// promoteNumeric is the dataset-level fallback run when the first row ended
// up without any number. It rescans every row and converts text cells that
// hold a decimal literal, skipping columns rejected by excluded.
func promoteNumeric(rows []Row, excluded func(string) bool) int {
	promoted := 0
	for _, row := range rows {
		for field, v := range row {
			if v.IsNumber() || excluded(field) {
				continue
			}
			if f, ok := parseDecimal(v.text); ok {
				row[field] = Number(f)
				promoted++
			}
		}
	}
	return promoted
}

// firstRowHasNumber reports whether any cell of the first row is numeric.
func firstRowHasNumber(rows []Row) bool {
	if len(rows) == 0 {
		return false
	}
	for _, v := range rows[0] {
		if v.IsNumber() {
			return true
		}
	}
	return false
}
