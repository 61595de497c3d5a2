package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JonMunkholm/insightboard/internal/dataset"
)

func TestSummarize_MonthlySales(t *testing.T) {
	t.Parallel()

	got := Summarize(mustParse(t, salesCSV), "What happened?")

	want := `Analysis based on your prompt: "What happened?"

Key Findings:
1. The sales values range from 100 to 250, with an average of 183.33.
   - The highest sales (250) was observed for month: Jun.
   - The lowest sales (100) was observed for month: Jan.
   - There is an overall increasing trend in sales, with a 150% increase from beginning to end.
2. The expenses values range from 75 to 200, with an average of 137.50.
   - The highest expenses (200) was observed for month: Jun.
   - The lowest expenses (75) was observed for month: Jan.
   - There is an overall increasing trend in expenses, with a 167% increase from beginning to end.

Recommendations:
- Consider exploring the relationship between sales and expenses to identify potential correlations
- Segment your analysis by month to uncover more specific patterns
- Perform a deeper statistical analysis to validate the observed trends
- Consider collecting additional data points to strengthen the reliability of insights
`
	assert.Equal(t, want, got)
}

func TestSummarize_Trends(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "decreasing",
			input: "period,output\na,200\nb,150\nc,50\n",
			want:  "decreasing trend in output, with a 75% decrease",
		},
		{
			name:  "stable",
			input: "period,output\na,10\nb,30\nc,10\n",
			want:  "The output values remain relatively stable",
		},
		{
			name:  "from zero",
			input: "period,output\na,0\nb,5\nc,9\n",
			want:  "increasing trend in output from a starting value of zero",
		},
		{
			name:  "negative start",
			input: "period,balance\na,-10\nb,-7\nc,-5\n",
			want:  "increasing trend in balance, with a 50% increase",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Summarize(mustParse(t, tt.input), "p")
			assert.Contains(t, got, tt.want)
			assert.NotContains(t, got, "Inf")
			assert.NotContains(t, got, "NaN")
		})
	}
}

func TestSummarize_NoTrendForShortData(t *testing.T) {
	t.Parallel()

	got := Summarize(mustParse(t, "period,output\na,1\nb,2\n"), "p")
	assert.NotContains(t, got, "trend in output")
	assert.Contains(t, got, "The highest output (2) was observed for period: b.")
}

func TestSummarize_NumbersOnly(t *testing.T) {
	t.Parallel()

	got := Summarize(mustParse(t, "length,weight\n1,2\n3,4\n5,6\n"), "p")
	assert.NotContains(t, got, "highest")
	assert.NotContains(t, got, "Segment your analysis")
	assert.Contains(t, got, "between length and weight")
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	ds, err := dataset.Parse("")
	assert.ErrorIs(t, err, dataset.ErrNoData)

	got := Summarize(ds, "anything")
	assert.True(t, strings.HasPrefix(got, `Analysis based on your prompt: "anything"`))
	assert.Contains(t, got, "No data rows")
}
