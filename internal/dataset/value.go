package dataset

import (
	"encoding/json"
	"strconv"
)

// Kind tags the representation held by a Value.
type Kind int

const (
	KindText Kind = iota
	KindNumber
)

// String returns the lowercase name used in JSON payloads and CLI output.
func (k Kind) String() string {
	if k == KindNumber {
		return "number"
	}
	return "text"
}

// MarshalJSON encodes the kind by name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Value is a single cell: either a number or a piece of text.
// The zero value is empty text.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Number wraps f as a numeric cell.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Text wraps s as a text cell.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Kind reports which representation v holds.
func (v Value) Kind() Kind { return v.kind }

// IsNumber reports whether v holds a number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// Float returns the numeric value and true, or 0 and false for text cells.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// String renders the cell the way it would appear in a CSV file.
// Numbers use the shortest representation that round-trips.
func (v Value) String() string {
	if v.kind == KindNumber {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.text
}

// MarshalJSON encodes numbers as JSON numbers and text as JSON strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindNumber {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.text)
}

// Row maps header names to cell values.
type Row map[string]Value
