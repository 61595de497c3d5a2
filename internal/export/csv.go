package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"

	"github.com/JonMunkholm/insightboard/internal/analysis"
	"github.com/JonMunkholm/insightboard/internal/dataset"
)

// WriteCSV writes ds back out as CSV, header first.
// Numbers use their shortest round-trip form.
func WriteCSV(w io.Writer, ds *dataset.Dataset) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ds.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(ds.Header))
	for i, row := range ds.Rows {
		for j, name := range ds.Header {
			record[j] = row[name].String()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteSummaryCSV writes one line of column statistics per field.
func WriteSummaryCSV(w io.Writer, stats []analysis.ColumnStats) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if len(stats) == 0 {
		if err := enc.EncodeHeader(analysis.ColumnStats{}); err != nil {
			return fmt.Errorf("encode summary header: %w", err)
		}
	} else if err := enc.Encode(stats); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	cw.Flush()
	return cw.Error()
}
