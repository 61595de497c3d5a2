package chart

import (
	"fmt"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/JonMunkholm/insightboard/internal/dataset"
)

// maxTicks bounds the number of labelled x-axis ticks.
const maxTicks = 20

const maxBarWidth = 80

func init() {
	Register(Definition{Type: Bar, Label: "Bar Chart", Description: "Compare values across categories", Render: renderBar})
	Register(Definition{Type: Line, Label: "Line Chart", Description: "Show trends over a sequence", Render: renderLine})
	Register(Definition{Type: Area, Label: "Area Chart", Description: "Emphasize volume under a trend", Render: renderArea})
	Register(Definition{Type: Pie, Label: "Pie Chart", Description: "Show each category's share of the total", Render: renderPie})
	Register(Definition{Type: Scatter, Label: "Scatter Plot", Description: "Show individual points without connecting lines", Render: renderScatter})
	Register(Definition{Type: Radar, Label: "Radar Chart", Description: "Compare several measures per category", RendersAs: Line})
	Register(Definition{Type: Composed, Label: "Composed Chart", Description: "Overlay primary and secondary measures", RendersAs: Line})
	Register(Definition{Type: Treemap, Label: "Treemap", Description: "Show proportions as nested areas", RendersAs: Pie})
}

// Render extracts spec from ds and writes it to w as PNG.
func Render(w io.Writer, ds *dataset.Dataset, spec Spec, o Options) error {
	s, err := Extract(ds, spec)
	if err != nil {
		return err
	}
	return RenderSeries(w, spec.Type, s, o)
}

// RenderSeries writes an already extracted series to w as PNG.
func RenderSeries(w io.Writer, t Type, s Series, o Options) error {
	if s.Len() == 0 {
		return fmt.Errorf("%w: series is empty", ErrNothingToPlot)
	}
	fn, err := renderer(t)
	if err != nil {
		return err
	}
	if err := fn(w, s, o.withDefaults()); err != nil {
		return fmt.Errorf("render %s chart: %w", t, err)
	}
	return nil
}

func renderBar(w io.Writer, s Series, o Options) error {
	bars := make([]gochart.Value, s.Len())
	for i, label := range s.Labels {
		bars[i] = gochart.Value{Value: s.Primary[i], Label: label}
	}

	lo, hi := valueRange(s.Primary)
	spacing := 8
	width := (o.Width-120)/s.Len() - spacing
	switch {
	case width < 4:
		width, spacing = 4, 2
	case width > maxBarWidth:
		width = maxBarWidth
	}

	bc := gochart.BarChart{
		Title:      s.Title,
		Width:      o.Width,
		Height:     o.Height,
		BarWidth:   width,
		BarSpacing: spacing,
		Background: gochart.Style{Padding: gochart.Box{Top: 40}},
		YAxis:      gochart.YAxis{Range: &gochart.ContinuousRange{Min: lo, Max: hi}},
		Bars:       bars,
	}
	return bc.Render(gochart.PNG, w)
}

func renderLine(w io.Writer, s Series, o Options) error {
	return renderXY(w, s, o, func(col drawing.Color) gochart.Style {
		return gochart.Style{StrokeColor: col, StrokeWidth: 2}
	})
}

func renderArea(w io.Writer, s Series, o Options) error {
	return renderXY(w, s, o, func(col drawing.Color) gochart.Style {
		return gochart.Style{StrokeColor: col, StrokeWidth: 2, FillColor: col.WithAlpha(64)}
	})
}

func renderScatter(w io.Writer, s Series, o Options) error {
	return renderXY(w, s, o, func(col drawing.Color) gochart.Style {
		return gochart.Style{StrokeWidth: gochart.Disabled, DotWidth: 4, DotColor: col}
	})
}

// renderXY draws primary and secondary as continuous series over the row
// index, labelling ticks with the category values.
func renderXY(w io.Writer, s Series, o Options, style func(drawing.Color) gochart.Style) error {
	xs := make([]float64, s.Len())
	for i := range xs {
		xs[i] = float64(i)
	}

	series := []gochart.Series{xySeries(s.PrimaryName, xs, s.Primary, style(gochart.ColorBlue))}
	values := s.Primary
	if s.Secondary != nil {
		series = append(series, xySeries(s.SecondaryName, xs, s.Secondary, style(gochart.ColorGreen)))
		values = append(append([]float64(nil), s.Primary...), s.Secondary...)
	}

	lo, hi := valueRange(values)
	xMax := float64(s.Len() - 1)
	if xMax < 1 {
		xMax = 1
	}

	ch := gochart.Chart{
		Title:      s.Title,
		Width:      o.Width,
		Height:     o.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis: gochart.XAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: xMax},
			Ticks: ticks(s.Labels, xMax),
		},
		YAxis:  gochart.YAxis{Range: &gochart.ContinuousRange{Min: lo, Max: hi}},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch.Render(gochart.PNG, w)
}

// xySeries pads a single point to two so the x-range is never empty.
func xySeries(name string, xs, ys []float64, st gochart.Style) gochart.ContinuousSeries {
	if len(xs) == 1 {
		xs = []float64{xs[0], xs[0] + 1}
		ys = []float64{ys[0], ys[0]}
	}
	return gochart.ContinuousSeries{Name: name, XValues: xs, YValues: ys, Style: st}
}

func renderPie(w io.Writer, s Series, o Options) error {
	var values []gochart.Value
	for i, label := range s.Labels {
		if v := s.Primary[i]; v > 0 {
			values = append(values, gochart.Value{Value: v, Label: label})
		}
	}
	if len(values) == 0 {
		return fmt.Errorf("%w: pie needs at least one positive value", ErrNothingToPlot)
	}

	pc := gochart.PieChart{
		Title:  s.Title,
		Width:  o.Width,
		Height: o.Height,
		Values: values,
	}
	return pc.Render(gochart.PNG, w)
}

// valueRange returns a y-range that includes zero and is never empty.
func valueRange(values []float64) (float64, float64) {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	return lo, hi
}

// ticks labels the x-axis. go-chart takes the axis range from the ticks when
// any are set, so the last tick always sits at xMax, unlabelled if no row
// lives there.
func ticks(labels []string, xMax float64) []gochart.Tick {
	step := 1
	if len(labels) > maxTicks {
		step = (len(labels) + maxTicks - 1) / maxTicks
	}

	out := make([]gochart.Tick, 0, len(labels)/step+2)
	for i := 0; i < len(labels); i += step {
		out = append(out, gochart.Tick{Value: float64(i), Label: labels[i]})
	}

	if n := len(out); n == 0 || out[n-1].Value < xMax {
		var label string
		if i := int(xMax); i < len(labels) {
			label = labels[i]
		}
		out = append(out, gochart.Tick{Value: xMax, Label: label})
	}
	return out
}
