package dataset

import "strings"

// ParseLine splits one CSV record into trimmed fields.
//
// A double quote toggles quoted mode and is not copied into the field.
// Commas inside quoted mode are literal. There is no escape for a quote
// character: `""` toggles twice and contributes nothing. Unbalanced quotes
// are not an error; the rest of the line is simply read in quoted mode.
func ParseLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}

	return append(fields, strings.TrimSpace(current.String()))
}

// SplitLines splits text on "\n", dropping one trailing "\r" from each line
// so both Unix and Windows line endings are accepted.
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
