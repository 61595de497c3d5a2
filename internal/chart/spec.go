package chart

import (
	"fmt"

	"github.com/JonMunkholm/insightboard/internal/dataset"
)

// Spec describes one chart over a dataset.
type Spec struct {
	Type      Type   `json:"type"`
	Title     string `json:"title,omitempty"`
	Category  string `json:"category"`
	Primary   string `json:"primary"`
	Secondary string `json:"secondary,omitempty"`
}

// DefaultSpec builds a bar chart from the advisory field selection.
func DefaultSpec(sel dataset.Selection) Spec {
	return Spec{
		Type:      Bar,
		Category:  sel.Category,
		Primary:   sel.Primary,
		Secondary: sel.Secondary,
	}
}

// WithDefaults fills empty fields of s from sel.
func (s Spec) WithDefaults(sel dataset.Selection) Spec {
	if s.Type == "" {
		s.Type = Bar
	}
	if s.Category == "" {
		s.Category = sel.Category
	}
	if s.Primary == "" {
		s.Primary = sel.Primary
		if s.Secondary == "" {
			s.Secondary = sel.Secondary
		}
	}
	return s
}

// DisplayTitle returns Title, or a title derived from the fields.
func (s Spec) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	if s.Secondary != "" {
		return fmt.Sprintf("%s and %s by %s", s.Primary, s.Secondary, s.Category)
	}
	return fmt.Sprintf("%s by %s", s.Primary, s.Category)
}

// Validate checks that s can be drawn from ds.
func (s Spec) Validate(ds *dataset.Dataset) error {
	if _, ok := Lookup(s.Type); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownType, s.Type)
	}
	if ds.Len() == 0 {
		return fmt.Errorf("%w: dataset is empty", ErrNothingToPlot)
	}
	if s.Primary == "" {
		return fmt.Errorf("%w: no numeric field selected", ErrNothingToPlot)
	}

	for _, f := range []string{s.Category, s.Primary, s.Secondary} {
		if f != "" && !ds.HasField(f) {
			return fmt.Errorf("%w: %q", ErrUnknownField, f)
		}
	}
	return nil
}
