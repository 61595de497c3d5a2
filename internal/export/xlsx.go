package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/insightboard/internal/analysis"
	"github.com/JonMunkholm/insightboard/internal/dataset"
)

const (
	dataSheet    = "Data"
	summarySheet = "Summary"
)

var summaryHeader = []any{"Field", "Kind", "Count", "Numeric", "Distinct", "Min", "Max", "Mean", "Std"}

// WriteXLSX writes a workbook with the rows on a "Data" sheet and column
// statistics on a "Summary" sheet. Number cells stay numeric in Excel.
func WriteXLSX(w io.Writer, ds *dataset.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeDataSheet(f, ds, bold); err != nil {
		return err
	}
	if err := writeSummarySheet(f, analysis.Describe(ds), bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeDataSheet(f *excelize.File, ds *dataset.Dataset, headerStyle int) error {
	header := make([]any, len(ds.Header))
	for i, h := range ds.Header {
		header[i] = h
	}
	if err := setRow(f, dataSheet, 1, header); err != nil {
		return err
	}
	if len(header) > 0 {
		if err := f.SetRowStyle(dataSheet, 1, 1, headerStyle); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
	}

	cells := make([]any, len(ds.Header))
	for i, row := range ds.Rows {
		for j, name := range ds.Header {
			v := row[name]
			if n, ok := v.Float(); ok {
				cells[j] = n
			} else {
				cells[j] = v.String()
			}
		}
		if err := setRow(f, dataSheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, stats []analysis.ColumnStats, headerStyle int) error {
	if err := setRow(f, summarySheet, 1, summaryHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(summarySheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style summary header: %w", err)
	}

	for i, st := range stats {
		row := []any{st.Name, st.KindName, st.Count, st.Numeric, st.Distinct}
		if st.Numeric > 0 {
			row = append(row, st.Min, st.Max, st.Mean, st.Std)
		}
		if err := setRow(f, summarySheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, rowNum, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, rowNum, err)
	}
	return nil
}
