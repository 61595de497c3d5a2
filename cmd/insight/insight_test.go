package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salesCSV = "month,sales,expenses\nJan,100,75\nFeb,150,100\nbad,line\nMar,200,125\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInspect(t *testing.T) {
	path := writeFile(t, "sales.csv", salesCSV)

	out, err := run(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Rows:     3")
	assert.Contains(t, out, "Skipped:  4 (2 fields)")
	assert.Contains(t, out, "Primary:        sales")
	assert.Contains(t, out, "Category:       month")
}

func TestInspect_JSON(t *testing.T) {
	path := writeFile(t, "sales.csv", salesCSV)

	out, err := run(t, "inspect", "--json", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"rows": 3`)
	assert.Contains(t, out, `"columns": [`)
}

func TestInspect_NoData(t *testing.T) {
	path := writeFile(t, "empty.csv", "a,b\n")

	_, err := run(t, "inspect", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATA001")
}

func TestChart(t *testing.T) {
	path := writeFile(t, "sales.csv", salesCSV)
	out := filepath.Join(t.TempDir(), "c.png")

	_, err := run(t, "chart", path, "-o", out, "--type", "line")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	_, err = run(t, "chart", path, "-o", out, "--type", "donut")
	assert.Error(t, err)
}

func TestChart_List(t *testing.T) {
	out, err := run(t, "chart", "--list")
	require.NoError(t, err)
	assert.Equal(t, 8, strings.Count(out, "\n"))
}

func TestAnalyze(t *testing.T) {
	path := writeFile(t, "sales.csv", salesCSV)

	out, err := run(t, "analyze", path, "--template", "5")
	require.NoError(t, err)
	assert.Contains(t, out, `"Based on this data, what recommendations would you make?"`)
	assert.Contains(t, out, "The sales values range from 100 to 200")
}

func TestExport(t *testing.T) {
	path := writeFile(t, "sales.csv", salesCSV)
	dir := t.TempDir()

	for _, format := range []string{"xlsx", "csv", "summary", "analysis"} {
		out := filepath.Join(dir, "out."+format)
		_, err := run(t, "export", path, "-f", format, "-o", out)
		require.NoError(t, err, format)

		info, err := os.Stat(out)
		require.NoError(t, err, format)
		assert.NotZero(t, info.Size(), format)
	}

	out, err := run(t, "export", path, "-f", "csv", "-o", "-")
	require.NoError(t, err)
	assert.Equal(t, "month,sales,expenses\nJan,100,75\nFeb,150,100\nMar,200,125\n", out)
}

func TestExport_RefusesToOverwriteInput(t *testing.T) {
	path := writeFile(t, "sales.csv", salesCSV)

	_, err := run(t, "export", path, "-f", "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to overwrite")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, salesCSV, string(data))
}

func TestTemplates(t *testing.T) {
	out, err := run(t, "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "Forecast Future Trends")
}
