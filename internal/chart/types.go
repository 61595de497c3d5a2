// Package chart turns a dataset into plottable series and renders them as
// PNG images.
package chart

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownType is returned for chart types nobody registered.
	ErrUnknownType = errors.New("unknown chart type")
	// ErrUnknownField is returned when a spec names a field missing from the dataset.
	ErrUnknownField = errors.New("unknown field")
	// ErrNothingToPlot is returned when the dataset has no rows or no measure.
	ErrNothingToPlot = errors.New("nothing to plot")
)

// Type names a chart kind.
type Type string

const (
	Bar      Type = "bar"
	Line     Type = "line"
	Area     Type = "area"
	Pie      Type = "pie"
	Scatter  Type = "scatter"
	Radar    Type = "radar"
	Composed Type = "composed"
	Treemap  Type = "treemap"
)

// ParseType resolves a user-supplied type name. Empty input means Bar.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Bar, nil
	}
	t := Type(s)
	if _, ok := Lookup(t); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}
