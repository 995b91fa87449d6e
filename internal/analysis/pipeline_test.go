package analysis

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeFileEndToEndDixon(t *testing.T) {
	p := filepath.Join(t.TempDir(), "muestras.csv")
	require.NoError(t, os.WriteFile(p, []byte("Peso;Lote\n10;a\n11;a\n9;b\nabc;b\n10;c\n200;c\n"), 0o644))

	res, err := AnalyzeFile(p, []string{"peso"}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "muestras.csv", res.Name)
	assert.Equal(t, 6, res.Rows)
	require.Len(t, res.Columns, 1)
	col := res.Columns[0]
	assert.Equal(t, "peso", col.Name)
	assert.Equal(t, Dixon, col.Algorithm)
	assert.Equal(t, []float64{10, 11, 9, 10, 200}, col.Original)
	assert.Equal(t, []float64{200}, col.Outliers)
	assert.Equal(t, []float64{10, 11, 9, 10}, col.Cleaned)
	assert.Equal(t, 1, col.Removed())
	require.Len(t, res.Issues, 1)
	assert.Equal(t, 5, res.Issues[0].Line)
}

func TestAnalyzeSourceSkipsSmallColumnsOnly(t *testing.T) {
	src := newMemSource([]string{"a", "b"},
		[]string{"1", "x"},
		[]string{"2", "y"},
		[]string{"3", "4"},
		[]string{"100", "z"},
	)
	res, err := AnalyzeSource("mem", src, []string{"b", "a"}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Columns, 2)

	assert.Equal(t, "b", res.Columns[0].Name)
	assert.True(t, res.Columns[0].Skipped)
	assert.Equal(t, TooSmall, res.Columns[0].Algorithm)

	assert.Equal(t, "a", res.Columns[1].Name)
	assert.False(t, res.Columns[1].Skipped)
	assert.Equal(t, []float64{100}, res.Columns[1].Outliers)

	analyzed := res.Analyzed()
	require.Len(t, analyzed, 1)
	assert.Equal(t, "a", analyzed[0].Name)
}

func TestAnalyzeSourceLargeSamples(t *testing.T) {
	normal := normalScores(60)
	rows := make([][]string, len(normal))
	for i, v := range normal {
		rows[i] = []string{strconv.FormatFloat(v, 'g', -1, 64)}
	}
	res, err := AnalyzeSource("mem", newMemSource([]string{"x"}, rows...), []string{"x"}, DefaultOptions())
	require.NoError(t, err)
	col := res.Columns[0]
	assert.Equal(t, ZScore, col.Algorithm)
	assert.True(t, col.Tested)
	for _, o := range col.Outliers {
		assert.Contains(t, col.Original, o)
		assert.NotContains(t, col.Cleaned, o)
	}
}

func TestAnalyzeFileMissingColumn(t *testing.T) {
	p := filepath.Join(t.TempDir(), "x.csv")
	require.NoError(t, os.WriteFile(p, []byte("peso\n1\n"), 0o644))
	_, err := AnalyzeFile(p, []string{"altura"}, DefaultOptions())
	var mce *MissingColumnError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, "altura", mce.Column)
	assert.Contains(t, err.Error(), "x.csv")
}

func TestAnalyzeFileUnreadable(t *testing.T) {
	_, err := AnalyzeFile(filepath.Join(t.TempDir(), "missing.csv"), []string{"peso"}, DefaultOptions())
	assert.Error(t, err)
}
