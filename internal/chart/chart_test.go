package chart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/JonMunkholm/insightboard/internal/dataset"
)

const salesCSV = `month,sales,expenses
Jan,100,75
Feb,150,100
Mar,200,125
Apr,175,150
May,225,175
Jun,250,200
`

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func mustParse(t *testing.T, text string, opts ...dataset.Option) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Parse(text, opts...)
	require.NoError(t, err)
	return ds
}

// ---- Type Tests ----

func TestParseType(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"bar", "line", "area", "pie", "scatter", "radar", "composed", "treemap"} {
		got, err := ParseType(name)
		require.NoError(t, err)
		assert.Equal(t, Type(name), got)
	}

	got, err := ParseType("  LINE ")
	require.NoError(t, err)
	assert.Equal(t, Line, got)

	got, err = ParseType("")
	require.NoError(t, err)
	assert.Equal(t, Bar, got)

	_, err = ParseType("histogram")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestTypes_RegistrationOrder(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]Type{Bar, Line, Area, Pie, Scatter, Radar, Composed, Treemap},
		Types())
	assert.Len(t, All(), 8)
}

func TestRegister_DuplicatePanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		Register(Definition{Type: Bar, Render: renderBar})
	})
}

func TestRenderer_Fallbacks(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct{ from, to Type }{
		{Radar, Line}, {Composed, Line}, {Treemap, Pie},
	} {
		def, ok := Lookup(tt.from)
		require.True(t, ok)
		assert.Equal(t, tt.to, def.RendersAs)

		fn, err := renderer(tt.from)
		require.NoError(t, err)
		assert.NotNil(t, fn)
	}

	_, err := renderer("nope")
	assert.ErrorIs(t, err, ErrUnknownType)
}

// ---- Spec Tests ----

func TestDefaultSpec(t *testing.T) {
	t.Parallel()

	ds := mustParse(t, salesCSV)
	spec := DefaultSpec(dataset.SelectFields(ds))

	assert.Equal(t, Spec{Type: Bar, Category: "month", Primary: "sales", Secondary: "expenses"}, spec)
	assert.Equal(t, "sales and expenses by month", spec.DisplayTitle())
	assert.NoError(t, spec.Validate(ds))
}

func TestSpec_WithDefaults(t *testing.T) {
	t.Parallel()

	sel := dataset.Selection{Primary: "sales", Secondary: "expenses", Category: "month"}

	got := Spec{Type: Line, Primary: "expenses"}.WithDefaults(sel)
	assert.Equal(t, Spec{Type: Line, Category: "month", Primary: "expenses"}, got)

	got = Spec{}.WithDefaults(sel)
	assert.Equal(t, Spec{Type: Bar, Category: "month", Primary: "sales", Secondary: "expenses"}, got)
}

func TestSpec_Validate(t *testing.T) {
	t.Parallel()

	ds := mustParse(t, salesCSV)
	empty, _ := dataset.Parse("")

	tests := []struct {
		name string
		spec Spec
		ds   *dataset.Dataset
		want error
	}{
		{"unknown type", Spec{Type: "donut", Category: "month", Primary: "sales"}, ds, ErrUnknownType},
		{"unknown primary", Spec{Type: Bar, Category: "month", Primary: "profit"}, ds, ErrUnknownField},
		{"unknown category", Spec{Type: Bar, Category: "week", Primary: "sales"}, ds, ErrUnknownField},
		{"unknown secondary", Spec{Type: Bar, Category: "month", Primary: "sales", Secondary: "x"}, ds, ErrUnknownField},
		{"no primary", Spec{Type: Bar, Category: "month"}, ds, ErrNothingToPlot},
		{"empty dataset", Spec{Type: Bar, Primary: "sales"}, empty, ErrNothingToPlot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, tt.spec.Validate(tt.ds), tt.want)
		})
	}
}

// ---- Extract Tests ----

func TestExtract(t *testing.T) {
	t.Parallel()

	ds := mustParse(t, salesCSV)
	s, err := Extract(ds, Spec{Type: Line, Category: "month", Primary: "sales", Secondary: "expenses"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}, s.Labels)
	assert.Equal(t, []float64{100, 150, 200, 175, 225, 250}, s.Primary)
	assert.Equal(t, []float64{75, 100, 125, 150, 175, 200}, s.Secondary)
	assert.Equal(t, 0, s.Gaps)
	assert.Equal(t, 6, s.Len())
}

func TestExtract_GapsAndCandidates(t *testing.T) {
	t.Parallel()

	ds := mustParse(t, "region,reading\nNorth,n/a\nSouth,4\n")
	s, err := Extract(ds, Spec{Type: Bar, Category: "region", Primary: "reading"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 4}, s.Primary)
	assert.Equal(t, 1, s.Gaps)
	assert.Nil(t, s.Secondary)

	// qty stays text but is still plotted when it reads as a number
	ds = mustParse(t, "sku,qty\nA1,5\nB2,7\n")
	sel := dataset.SelectFields(ds)
	require.True(t, sel.Candidates)
	s, err = Extract(ds, DefaultSpec(sel))
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 7}, s.Primary)
	assert.Equal(t, 0, s.Gaps)
}

func TestExtract_NoCategoryUsesRowNumbers(t *testing.T) {
	t.Parallel()

	ds := mustParse(t, salesCSV)
	s, err := Extract(ds, Spec{Type: Bar, Primary: "sales"})
	require.NoError(t, err)
	assert.Equal(t, "1", s.Labels[0])
	assert.Equal(t, "6", s.Labels[5])
}

// ---- Render Tests ----

func TestRender_AllTypes(t *testing.T) {
	t.Parallel()

	ds := mustParse(t, salesCSV)
	base := DefaultSpec(dataset.SelectFields(ds))

	for _, typ := range Types() {
		t.Run(string(typ), func(t *testing.T) {
			t.Parallel()
			spec := base
			spec.Type = typ

			var buf bytes.Buffer
			require.NoError(t, Render(&buf, ds, spec, Options{Width: 400, Height: 300}))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
		})
	}
}

func TestRender_EdgeCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		typ   Type
	}{
		{"single row line", "month,sales\nJan,10\n", Line},
		{"single row bar", "month,sales\nJan,10\n", Bar},
		{"flat values", "month,sales\nJan,5\nFeb,5\nMar,5\n", Area},
		{"negative values", "month,balance\nJan,-5\nFeb,3\n", Bar},
		{"single row scatter", "month,sales\nJan,10\n", Scatter},
		{"single row area", "month,sales\nJan,10\n", Area},
		{"single row radar", "month,sales\nJan,10\n", Radar},
		{"single row composed", "month,sales,cost\nJan,10,4\n", Composed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ds := mustParse(t, tt.input)
			spec := DefaultSpec(dataset.SelectFields(ds))
			spec.Type = tt.typ

			var buf bytes.Buffer
			require.NoError(t, Render(&buf, ds, spec, Options{}))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
		})
	}
}

func TestRender_PieWithoutPositiveValues(t *testing.T) {
	t.Parallel()

	ds := mustParse(t, "month,balance\nJan,-5\nFeb,0\n")
	spec := Spec{Type: Pie, Category: "month", Primary: "balance"}

	var buf bytes.Buffer
	err := Render(&buf, ds, spec, Options{})
	assert.ErrorIs(t, err, ErrNothingToPlot)
}

func TestRenderSeries_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := RenderSeries(&buf, Bar, Series{}, Options{})
	assert.ErrorIs(t, err, ErrNothingToPlot)
	assert.Zero(t, buf.Len())
}

func TestTicks_Thinned(t *testing.T) {
	t.Parallel()

	labels := make([]string, 45)
	for i := range labels {
		labels[i] = "x"
	}
	got := ticks(labels, 44)
	assert.LessOrEqual(t, len(got), maxTicks)
	assert.Equal(t, 0.0, got[0].Value)
	assert.Equal(t, 3.0, got[1].Value)
	assert.Equal(t, 44.0, got[len(got)-1].Value)
	assert.Equal(t, "x", got[len(got)-1].Label)
}

func TestTicks_SingleLabelSpansAxis(t *testing.T) {
	t.Parallel()

	got := ticks([]string{"A,B"}, 1)
	require.Len(t, got, 2)
	assert.Equal(t, gochart.Tick{Value: 0, Label: "A,B"}, got[0])
	assert.Equal(t, gochart.Tick{Value: 1, Label: ""}, got[1])
}
