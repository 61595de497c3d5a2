// Package export writes datasets and analysis results to downloadable files.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown export format")

// Format is a downloadable representation.
type Format string

const (
	FormatXLSX     Format = "xlsx"
	FormatCSV      Format = "csv"
	FormatSummary  Format = "summary.csv"
	FormatAnalysis Format = "analysis.txt"
)

var formats = map[Format]struct {
	contentType string
	suffix      string
}{
	FormatXLSX:     {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ".xlsx"},
	FormatCSV:      {"text/csv; charset=utf-8", ".csv"},
	FormatSummary:  {"text/csv; charset=utf-8", "_summary.csv"},
	FormatAnalysis: {"text/plain; charset=utf-8", "_analysis.txt"},
}

// ParseFormat resolves a format name. "summary" is accepted for summary.csv
// and "analysis" or "txt" for analysis.txt.
func ParseFormat(s string) (Format, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "summary":
		return FormatSummary, nil
	case "analysis", "txt":
		return FormatAnalysis, nil
	default:
		if _, ok := formats[Format(f)]; ok {
			return Format(f), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the MIME type for HTTP responses.
func (f Format) ContentType() string {
	return formats[f].contentType
}

// FileName derives a download name from the uploaded source name.
func (f Format) FileName(source string) string {
	base := source
	for _, ext := range []string{".gz", ".bz2", ".zst", ".xz", ".csv"} {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" {
		base = "dataset"
	}
	return base + formats[f].suffix
}

// WriteAnalysis writes analysis text, ending it with a newline.
func WriteAnalysis(w io.Writer, text string) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if _, err := io.WriteString(w, text); err != nil {
		return fmt.Errorf("write analysis: %w", err)
	}
	return nil
}
