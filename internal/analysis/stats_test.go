package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func mustParse(t *testing.T, text string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Parse(text)
	require.NoError(t, err)
	return ds
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	stats := Describe(mustParse(t, salesCSV))
	require.Len(t, stats, 3)

	month := stats[0]
	assert.Equal(t, "month", month.Name)
	assert.Equal(t, dataset.KindText, month.Kind)
	assert.Equal(t, "text", month.KindName)
	assert.Equal(t, 6, month.Count)
	assert.Equal(t, 0, month.Numeric)
	assert.Equal(t, 6, month.Distinct)
	assert.Equal(t, -1, month.MaxRow)

	sales := stats[1]
	assert.Equal(t, dataset.KindNumber, sales.Kind)
	assert.Equal(t, 6, sales.Numeric)
	assert.Equal(t, 100.0, sales.Min)
	assert.Equal(t, 250.0, sales.Max)
	assert.Equal(t, 0, sales.MinRow)
	assert.Equal(t, 5, sales.MaxRow)
	assert.InDelta(t, 183.3333, sales.Mean, 1e-3)
	assert.Equal(t, 100.0, sales.First)
	assert.Equal(t, 250.0, sales.Last)

	// sample std of 100,150,200,175,225,250
	assert.InDelta(t, 54.0062, sales.Std, 1e-3)
}

func TestDescribe_MixedColumn(t *testing.T) {
	t.Parallel()

	ds := mustParse(t, "label,reading\na,1\nb,n/a\nc,3\n")
	st := Describe(ds)[1]

	assert.Equal(t, 3, st.Count)
	assert.Equal(t, 2, st.Numeric)
	assert.Equal(t, 3, st.Distinct)
	assert.Equal(t, 2.0, st.Mean)
	assert.InDelta(t, math.Sqrt2, st.Std, 1e-9)
	assert.Equal(t, 2, st.MaxRow)
}

func TestDescribe_SingleValueHasZeroStd(t *testing.T) {
	t.Parallel()

	st := Describe(mustParse(t, "label,reading\na,4\n"))[1]
	assert.Equal(t, 0.0, st.Std)
	assert.Equal(t, 4.0, st.Min)
	assert.Equal(t, 4.0, st.Max)
}

func TestDescribe_Nil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Describe(nil))
}
