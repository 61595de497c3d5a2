package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/JonMunkholm/insightboard/internal/dataset"
)

// Summarize builds a plain-text analysis of ds in response to prompt.
//
// Numeric and text fields are taken from the first row. Each numeric field
// reports its range and average; when a text field exists, the highest and
// lowest values are labelled by the first text field, and with more than two
// rows the change from first to last value is reported as a trend.
func Summarize(ds *dataset.Dataset, prompt string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analysis based on your prompt: \"%s\"\n\nKey Findings:\n", prompt)

	if ds.Len() == 0 {
		b.WriteString("No data rows are loaded yet. Upload a CSV file to get started.\n")
		return b.String()
	}

	numeric := ds.NumericFields()
	text := ds.TextFields()

	for i, field := range numeric {
		st := describeColumn(field, dataset.KindNumber, ds.Column(field))
		if st.Numeric == 0 {
			continue
		}

		fmt.Fprintf(&b, "%d. The %s values range from %s to %s, with an average of %.2f.\n",
			i+1, field, formatNumber(st.Min), formatNumber(st.Max), st.Mean)

		if len(text) > 0 {
			label := text[0]
			fmt.Fprintf(&b, "   - The highest %s (%s) was observed for %s: %s.\n",
				field, formatNumber(st.Max), label, ds.Rows[st.MaxRow][label])
			fmt.Fprintf(&b, "   - The lowest %s (%s) was observed for %s: %s.\n",
				field, formatNumber(st.Min), label, ds.Rows[st.MinRow][label])
		}

		if len(text) > 0 && ds.Len() > 2 {
			b.WriteString(trendLine(field, st.First, st.Last))
		}
	}

	b.WriteString("\nRecommendations:\n")
	if len(numeric) > 1 {
		fmt.Fprintf(&b, "- Consider exploring the relationship between %s to identify potential correlations\n",
			strings.Join(numeric, " and "))
	}
	if len(text) > 0 && len(numeric) > 0 {
		fmt.Fprintf(&b, "- Segment your analysis by %s to uncover more specific patterns\n",
			strings.Join(text, " and "))
	}
	b.WriteString("- Perform a deeper statistical analysis to validate the observed trends\n")
	b.WriteString("- Consider collecting additional data points to strengthen the reliability of insights\n")

	return b.String()
}

func trendLine(field string, first, last float64) string {
	switch {
	case first == 0 && last > 0:
		return fmt.Sprintf("   - There is an overall increasing trend in %s from a starting value of zero.\n", field)
	case first == 0 && last < 0:
		return fmt.Sprintf("   - There is an overall decreasing trend in %s from a starting value of zero.\n", field)
	case first == last:
		return fmt.Sprintf("   - The %s values remain relatively stable throughout the dataset.\n", field)
	}

	pct := (last - first) / math.Abs(first) * 100
	if pct > 0 {
		return fmt.Sprintf("   - There is an overall increasing trend in %s, with a %.0f%% increase from beginning to end.\n", field, pct)
	}
	return fmt.Sprintf("   - There is an overall decreasing trend in %s, with a %.0f%% decrease from beginning to end.\n", field, math.Abs(pct))
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
