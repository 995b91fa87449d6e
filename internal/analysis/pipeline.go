package analysis

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/outliers-cli/internal/logger"
	"github.com/KaramelBytes/outliers-cli/internal/tabular"
)

// Options controls file reading and numeric parsing.
type Options struct {
	NumberFormat NumberFormat
	Source       tabular.Options
}

// DefaultOptions returns comma-decimal parsing with sniffed delimiters.
func DefaultOptions() Options {
	return Options{NumberFormat: CommaDecimal, Source: tabular.Options{SheetIndex: 1}}
}

// ColumnResult is the before/after view of one column.
type ColumnResult struct {
	Name string
	Classification
	Original []float64
	Outliers []float64
	Cleaned  []float64
	// Skipped is set when the sample was too small for any test.
	Skipped bool
}

// Removed returns how many values were dropped by cleaning.
func (c ColumnResult) Removed() int { return len(c.Original) - len(c.Cleaned) }

// FileResult collects the column results of one input file.
type FileResult struct {
	Name    string
	Rows    int
	Columns []ColumnResult
	Issues  []CellIssue
}

// Analyzed returns the columns that went through outlier detection.
func (r *FileResult) Analyzed() []ColumnResult {
	out := make([]ColumnResult, 0, len(r.Columns))
	for _, c := range r.Columns {
		if !c.Skipped {
			out = append(out, c)
		}
	}
	return out
}

// AnalyzeSample classifies, detects and cleans a single sample.
func AnalyzeSample(name string, sample []float64) ColumnResult {
	cls := Classify(sample)
	res := ColumnResult{Name: name, Classification: cls, Original: sample}
	if cls.Algorithm == TooSmall {
		res.Skipped = true
		res.Cleaned = append([]float64(nil), sample...)
		logger.Info("%s: %d values, too few for outlier detection; skipped", name, cls.N)
		return res
	}
	if cls.Tested {
		logger.Info("%s: n=%d, shapiro-wilk W=%.4f p=%.4g, using %s", name, cls.N, cls.W, cls.PValue, cls.Algorithm.Label())
	} else {
		logger.Info("%s: n=%d, using %s", name, cls.N, cls.Algorithm.Label())
	}
	set := Detect(cls.Algorithm, sample)
	res.Outliers = set.Values()
	res.Cleaned = Clean(sample, set)
	logger.Debug("%s: outliers %v", name, res.Outliers)
	return res
}

// AnalyzeSource extracts the requested columns from src and analyzes each in
// request order. A missing column aborts with *MissingColumnError.
func AnalyzeSource(name string, src tabular.RowSource, columns []string, opt Options) (*FileResult, error) {
	ex, err := Extract(src, columns, opt.NumberFormat)
	if err != nil {
		return nil, err
	}
	res := &FileResult{Name: name, Rows: ex.Rows, Issues: ex.Issues}
	for _, col := range ex.Columns {
		logger.Section(col)
		res.Columns = append(res.Columns, AnalyzeSample(col, ex.Samples[col]))
	}
	return res, nil
}

// AnalyzeFile opens path as CSV/TSV or XLSX and analyzes the requested columns.
func AnalyzeFile(path string, columns []string, opt Options) (*FileResult, error) {
	src, err := tabular.Open(path, opt.Source)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	res, err := AnalyzeSource(filepath.Base(path), src, columns, opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return res, nil
}
