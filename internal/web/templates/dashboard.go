// Package templates renders the dashboard page and its HTMX fragments.
//
// Components are written in .templ files; the _templ.go files next to them
// are produced by `templ generate` and must not be edited by hand.
package templates

import (
	"net/url"
	"strconv"

	"github.com/JonMunkholm/insightboard/internal/analysis"
	"github.com/JonMunkholm/insightboard/internal/chart"
	"github.com/JonMunkholm/insightboard/internal/dataset"
)

//go:generate templ generate

// PreviewRows is how many rows the dashboard table shows.
const PreviewRows = 20

var statsColumns = []string{"Field", "Kind", "Numeric", "Distinct", "Min", "Max", "Mean", "Std"}

// DashboardData is everything the dashboard renders.
// Dataset is nil before the first successful upload.
type DashboardData struct {
	Dataset     *dataset.Dataset
	Selection   dataset.Selection
	Stats       []analysis.ColumnStats
	Chart       chart.Spec
	ChartTypes  []chart.Definition
	Templates   []analysis.Template
	Messages    []analysis.Message
	MaxFileSize int64
}

// ChartURL is the image source for the current chart spec.
func (d DashboardData) ChartURL() string {
	q := url.Values{}
	q.Set("type", string(d.Chart.Type))
	for key, val := range map[string]string{
		"category":  d.Chart.Category,
		"primary":   d.Chart.Primary,
		"secondary": d.Chart.Secondary,
		"title":     d.Chart.Title,
	} {
		if val != "" {
			q.Set(key, val)
		}
	}
	return "/api/chart.png?" + q.Encode()
}

// Preview returns the rows shown in the data table.
func (d DashboardData) Preview() []dataset.Row {
	if d.Dataset == nil {
		return nil
	}
	rows := d.Dataset.Rows
	if len(rows) > PreviewRows {
		rows = rows[:PreviewRows]
	}
	return rows
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func humanBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return strconv.FormatInt(n>>20, 10) + "MB"
	case n >= 1<<10:
		return strconv.FormatInt(n>>10, 10) + "KB"
	default:
		return strconv.FormatInt(n, 10) + "B"
	}
}
