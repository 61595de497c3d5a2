package dataset

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNoData is returned together with an empty Dataset when the input holds
// no valid data rows (empty file, header only, or every row malformed).
// It is a "nothing to chart" signal, not a failure of the parser.
var ErrNoData = errors.New("no data rows found")

// SkippedLine records a data line dropped because its field count did not
// match the header.
type SkippedLine struct {
	Line   int `json:"line"`   // 1-based line number in the source text
	Fields int `json:"fields"` // number of fields found on that line
}

// Dataset is the in-memory table built from one upload.
// It is built once and treated as read-only afterwards.
type Dataset struct {
	ID        string        `json:"id"`
	Source    string        `json:"source,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	Header    []string      `json:"header"`
	Rows      []Row         `json:"rows"`
	Skipped   []SkippedLine `json:"skipped,omitempty"`
	Promoted  int           `json:"promoted,omitempty"` // cells converted by the fallback pass
}

// Option customises Parse and Read.
type Option func(*buildOptions)

type buildOptions struct {
	source             string
	shortHeaderPromote bool
	now                func() time.Time
}

// WithSource records the originating file name on the Dataset.
func WithSource(name string) Option {
	return func(o *buildOptions) { o.source = name }
}

// WithShortHeaderFallback lets the fallback pass promote columns whose only
// reason for being categorical is a short (<= 3 character) name. It has no
// effect unless the first row holds no number at all.
func WithShortHeaderFallback() Option {
	return func(o *buildOptions) { o.shortHeaderPromote = true }
}

// withClock pins CreatedAt in tests.
func withClock(now func() time.Time) Option {
	return func(o *buildOptions) { o.now = now }
}

// Read loads the whole source into memory and parses it.
// Errors from r are returned wrapped and mean the upload attempt failed.
func Read(r io.Reader, opts ...Option) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return Parse(string(data), opts...)
}

// Parse builds a Dataset from CSV text.
//
// The first non-blank line is the header. Blank lines are ignored, lines
// whose field count differs from the header are recorded in Skipped, and the
// remaining lines become rows in input order. When no row survives, Parse
// returns the empty Dataset and ErrNoData.
func Parse(text string, opts ...Option) (*Dataset, error) {
	o := buildOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	ds := &Dataset{
		ID:        uuid.New().String(),
		Source:    o.source,
		CreatedAt: o.now(),
		Rows:      []Row{},
	}

	for i, line := range SplitLines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := ParseLine(line)
		if ds.Header == nil {
			ds.Header = fields
			continue
		}

		if len(fields) != len(ds.Header) {
			ds.Skipped = append(ds.Skipped, SkippedLine{Line: i + 1, Fields: len(fields)})
			continue
		}

		row := make(Row, len(ds.Header))
		for j, name := range ds.Header {
			row[name] = Coerce(name, fields[j])
		}
		ds.Rows = append(ds.Rows, row)
	}

	if len(ds.Rows) == 0 {
		return ds, ErrNoData
	}

	if !firstRowHasNumber(ds.Rows) {
		excluded := IsCategorical
		if o.shortHeaderPromote {
			excluded = hasLabelFragment
		}
		ds.Promoted = promoteNumeric(ds.Rows, excluded)
	}

	return ds, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// HasField reports whether name is one of the header fields.
func (d *Dataset) HasField(name string) bool {
	for _, h := range d.Header {
		if h == name {
			return true
		}
	}
	return false
}

// Column returns the values of one field in row order.
func (d *Dataset) Column(name string) []Value {
	out := make([]Value, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = row[name]
	}
	return out
}

// Kind reports the kind of field name as seen in the first row.
func (d *Dataset) Kind(name string) Kind {
	if len(d.Rows) == 0 {
		return KindText
	}
	return d.Rows[0][name].Kind()
}

// NumericFields lists, in header order, the fields numeric in the first row.
func (d *Dataset) NumericFields() []string {
	return d.fieldsOfKind(KindNumber)
}

// TextFields lists, in header order, the fields holding text in the first row.
func (d *Dataset) TextFields() []string {
	return d.fieldsOfKind(KindText)
}

func (d *Dataset) fieldsOfKind(k Kind) []string {
	if len(d.Rows) == 0 {
		return nil
	}
	var out []string
	for _, h := range d.Header {
		if d.Rows[0][h].Kind() == k {
			out = append(out, h)
		}
	}
	return out
}
