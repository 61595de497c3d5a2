package dataset

import "strings"

// Selection is the advisory choice of fields for the default chart.
type Selection struct {
	Numeric    []string `json:"numeric"`              // chartable fields in header order
	Candidates bool     `json:"candidates,omitempty"` // Numeric came from the text fallback
	Primary    string   `json:"primary,omitempty"`
	Secondary  string   `json:"secondary,omitempty"`
	Category   string   `json:"category,omitempty"`
}

// primaryHints mark a numeric field as the preferred primary measure.
var primaryHints = []string{"value", "amount", "total", "sum", "count"}

// categoryHints are tried in order; the first header equal to or containing
// a hint becomes the axis field.
var categoryHints = []string{
	"category", "name", "label", "date", "month", "year",
	"quarter", "period", "region", "country", "state", "city",
}

// SelectFields picks the default primary, secondary and category fields.
// An empty dataset yields a zero Selection.
func SelectFields(d *Dataset) Selection {
	var sel Selection
	if d.Len() == 0 {
		return sel
	}

	sel.Numeric = d.NumericFields()
	if len(sel.Numeric) == 0 {
		sel.Numeric = numericCandidates(d)
		sel.Candidates = len(sel.Numeric) > 0
	}

	if len(sel.Numeric) > 0 {
		sel.Primary = sel.Numeric[0]
		for _, f := range sel.Numeric {
			if containsAny(f, primaryHints) {
				sel.Primary = f
				break
			}
		}
		for _, f := range sel.Numeric {
			if f != sel.Primary {
				sel.Secondary = f
				break
			}
		}
	}

	sel.Category = selectCategory(d)
	return sel
}

// numericCandidates finds text fields that still hold decimal literals in at
// least one row, ignoring label-like names. Only consulted when the first row
// has no numbers at all.
func numericCandidates(d *Dataset) []string {
	var out []string
	for _, h := range d.Header {
		if hasLabelFragment(h) {
			continue
		}
		for _, row := range d.Rows {
			v := row[h]
			if !v.IsNumber() && IsDecimalLiteral(v.text) {
				out = append(out, h)
				break
			}
		}
	}
	return out
}

func selectCategory(d *Dataset) string {
	for _, hint := range categoryHints {
		for _, h := range d.Header {
			lower := strings.ToLower(h)
			if lower == hint || strings.Contains(lower, hint) {
				return h
			}
		}
	}
	if text := d.TextFields(); len(text) > 0 {
		return text[0]
	}
	if len(d.Header) > 0 {
		return d.Header[0]
	}
	return ""
}

func containsAny(field string, hints []string) bool {
	lower := strings.ToLower(field)
	for _, h := range hints {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}
