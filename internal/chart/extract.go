package chart

import (
	"strconv"
	"strings"

	"github.com/JonMunkholm/insightboard/internal/dataset"
)

// Series is the plottable projection of a dataset under a Spec.
type Series struct {
	Title         string    `json:"title"`
	Labels        []string  `json:"labels"`
	PrimaryName   string    `json:"primaryName"`
	Primary       []float64 `json:"primary"`
	SecondaryName string    `json:"secondaryName,omitempty"`
	Secondary     []float64 `json:"secondary,omitempty"`
	Gaps          int       `json:"gaps"` // cells plotted as 0 because they held no number
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Labels) }

// Extract projects ds onto spec. Text cells that still read as decimal
// literals are plotted as numbers; other text counts as a gap and plots as 0.
func Extract(ds *dataset.Dataset, spec Spec) (Series, error) {
	if err := spec.Validate(ds); err != nil {
		return Series{}, err
	}

	out := Series{
		Title:       spec.DisplayTitle(),
		Labels:      make([]string, ds.Len()),
		PrimaryName: spec.Primary,
		Primary:     make([]float64, ds.Len()),
	}
	if spec.Secondary != "" {
		out.SecondaryName = spec.Secondary
		out.Secondary = make([]float64, ds.Len())
	}

	for i, row := range ds.Rows {
		if spec.Category != "" {
			out.Labels[i] = row[spec.Category].String()
		} else {
			out.Labels[i] = strconv.Itoa(i + 1)
		}

		var ok bool
		if out.Primary[i], ok = plotValue(row[spec.Primary]); !ok {
			out.Gaps++
		}
		if out.Secondary != nil {
			if out.Secondary[i], ok = plotValue(row[spec.Secondary]); !ok {
				out.Gaps++
			}
		}
	}
	return out, nil
}

func plotValue(v dataset.Value) (float64, bool) {
	if f, ok := v.Float(); ok {
		return f, true
	}
	s := v.String()
	if !dataset.IsDecimalLiteral(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
