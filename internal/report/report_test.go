package report

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/outliers-cli/internal/analysis"
	"github.com/KaramelBytes/outliers-cli/internal/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *analysis.FileResult {
	peso := analysis.AnalyzeSample("peso", []float64{10, 11, 9, 10, 200})
	edad := analysis.AnalyzeSample("edad", []float64{30})
	return &analysis.FileResult{
		Name:    "muestras.csv",
		Rows:    6,
		Columns: []analysis.ColumnResult{peso, edad},
		Issues:  []analysis.CellIssue{{Kind: analysis.NonNumericValue, Line: 5, Column: "peso", Raw: "abc"}},
	}
}

func TestAssemblePadsShorterSequence(t *testing.T) {
	rows := Assemble(sampleResult().Columns)
	require.Len(t, rows, 5, "skipped columns produce no rows")

	for i, want := range []string{"10", "11", "9", "10", "200"} {
		assert.Equal(t, "peso", rows[i].Column)
		assert.Equal(t, want, rows[i].Original.String())
	}
	assert.Equal(t, "10", rows[3].Cleaned.String())
	assert.True(t, rows[4].Cleaned.Blank)
	assert.Equal(t, "", rows[4].Cleaned.String())
}

func TestAssembleMultipleColumnsInOrder(t *testing.T) {
	a := analysis.AnalyzeSample("a", []float64{1, 2, 3, 4, 100})
	b := analysis.AnalyzeSample("b", []float64{5, 5, 5})
	rows := Assemble([]analysis.ColumnResult{a, b})
	require.Len(t, rows, 8)
	assert.Equal(t, "a", rows[0].Column)
	assert.Equal(t, "b", rows[5].Column)
	assert.Equal(t, "5", rows[7].Cleaned.String())
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "3.14", FormatValue(3.14))
	assert.Equal(t, "200", FormatValue(200))
	assert.Equal(t, "-0.5", FormatValue(-0.5))
}

func TestParseFormatAndFromPath(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	f, err = ParseFormat("Markdown")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)
	_, err = ParseFormat("pdf")
	assert.Error(t, err)

	assert.Equal(t, FormatCSV, FormatFromPath("out/REPORT.CSV", FormatXLSX))
	assert.Equal(t, FormatMarkdown, FormatFromPath("r.md", FormatXLSX))
	assert.Equal(t, FormatXLSX, FormatFromPath("r.xlsx", FormatCSV))
	assert.Equal(t, FormatCSV, FormatFromPath("report", FormatCSV))
}

func TestXLSXSinkRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteFile(p, FormatXLSX, sampleResult()))

	src, err := tabular.OpenXLSX(p, "Results", 0)
	require.NoError(t, err)
	defer src.Close()
	assert.Equal(t, []string{"column", "original", "cleaned"}, src.Headers())

	var got [][]string
	for {
		rec, err := src.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, []string{rec.Fields["column"], rec.Fields["original"], rec.Fields["cleaned"]})
	}
	require.Len(t, got, 5)
	assert.Equal(t, []string{"peso", "10", "10"}, got[0])
	assert.Equal(t, []string{"peso", "200", ""}, got[4])
}

func TestXLSXSinkEscapesText(t *testing.T) {
	p := filepath.Join(t.TempDir(), "esc.xlsx")
	rows := []Row{{Column: "a<b & c", Original: Cell{Value: 1}, Cleaned: Cell{Value: 1}}}
	require.NoError(t, XLSXSink{Path: p, Sheet: "R&D"}.WriteRows(rows))

	src, err := tabular.OpenXLSX(p, "R&D", 0)
	require.NoError(t, err)
	rec, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, "a<b & c", rec.Fields["column"])
}

func TestColumnName(t *testing.T) {
	assert.Equal(t, "A", columnName(0))
	assert.Equal(t, "C", columnName(2))
	assert.Equal(t, "Z", columnName(25))
	assert.Equal(t, "AA", columnName(26))
	assert.Equal(t, "AB", columnName(27))
}

func TestCSVSink(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteFile(p, FormatCSV, sampleResult()))

	f, err := os.Open(p)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 6)
	assert.Equal(t, Header, recs[0])
	assert.Equal(t, []string{"peso", "200", ""}, recs[5])
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleResult())
	for _, want := range []string{
		"[OUTLIER REPORT]",
		"File: muestras.csv",
		"Rows: 6",
		"- peso: Dixon test (n=5); outliers: 200; removed 1, kept 4",
		"- edad: skipped (n=1, need at least 3 values)",
		"[PESO]",
		"Cleaned:  10, 11, 9, 10",
		"[NOTES]",
		`line 5, column 'peso': non-numeric value "abc" skipped`,
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "[EDAD]")
}

func TestMarkdownTruncatesLongLists(t *testing.T) {
	vals := make([]float64, 50)
	for i := range vals {
		vals[i] = float64(i)
	}
	out := joinValues(vals)
	assert.True(t, strings.HasSuffix(out, "... (+30)"))
	assert.Equal(t, "(none)", joinValues(nil))
}

func TestWriteFileMarkdown(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.md")
	require.NoError(t, WriteFile(p, FormatMarkdown, sampleResult()))
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[OUTLIER REPORT]")
}
