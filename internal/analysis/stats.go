package analysis

import (
	"math"

	"github.com/JonMunkholm/insightboard/internal/dataset"
)

// ColumnStats summarises one field of a dataset.
// Numeric statistics are only meaningful when Numeric > 0.
type ColumnStats struct {
	Name     string       `json:"name" csv:"name"`
	Kind     dataset.Kind `json:"kind" csv:"-"`
	KindName string       `json:"-" csv:"kind"`
	Count    int          `json:"count" csv:"count"`
	Numeric  int          `json:"numeric" csv:"numeric"`
	Distinct int          `json:"distinct" csv:"distinct"`
	Min      float64      `json:"min" csv:"min"`
	Max      float64      `json:"max" csv:"max"`
	Mean     float64      `json:"mean" csv:"mean"`
	Std      float64      `json:"std" csv:"std"`
	First    float64      `json:"first" csv:"first"`
	Last     float64      `json:"last" csv:"last"`
	MinRow   int          `json:"minRow" csv:"-"` // index of the first row holding Min
	MaxRow   int          `json:"maxRow" csv:"-"` // index of the first row holding Max
}

// Describe computes per-field statistics in header order.
// Kind follows the first row, matching how fields are selected for charts.
func Describe(ds *dataset.Dataset) []ColumnStats {
	if ds == nil {
		return nil
	}

	out := make([]ColumnStats, 0, len(ds.Header))
	for _, name := range ds.Header {
		out = append(out, describeColumn(name, ds.Kind(name), ds.Column(name)))
	}
	return out
}

// describeColumn uses Welford's online algorithm for mean and variance.
func describeColumn(name string, kind dataset.Kind, values []dataset.Value) ColumnStats {
	st := ColumnStats{
		Name:     name,
		Kind:     kind,
		KindName: kind.String(),
		Count:    len(values),
		Min:      math.Inf(1),
		Max:      math.Inf(-1),
		MinRow:   -1,
		MaxRow:   -1,
	}

	var m2 float64
	distinct := make(map[string]struct{})

	for i, v := range values {
		distinct[v.String()] = struct{}{}

		f, ok := v.Float()
		if !ok {
			continue
		}

		st.Numeric++
		if st.Numeric == 1 {
			st.First = f
		}
		st.Last = f

		if f < st.Min {
			st.Min, st.MinRow = f, i
		}
		if f > st.Max {
			st.Max, st.MaxRow = f, i
		}

		delta := f - st.Mean
		st.Mean += delta / float64(st.Numeric)
		m2 += delta * (f - st.Mean)
	}

	st.Distinct = len(distinct)

	if st.Numeric == 0 {
		st.Min, st.Max = 0, 0
		return st
	}
	if st.Numeric > 1 {
		st.Std = math.Sqrt(m2 / float64(st.Numeric-1))
	}
	return st
}
