package analysis

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/outliers-cli/internal/logger"
	"github.com/KaramelBytes/outliers-cli/internal/tabular"
)

// NumberFormat selects how raw cells are turned into numbers.
type NumberFormat int

const (
	// CommaDecimal replaces every ',' with '.' before parsing, so "3,14" is 3.14.
	CommaDecimal NumberFormat = iota
	// AutoLocale guesses the decimal separator per value and drops thousands
	// separators and '%', so "1.234,5" is 1234.5.
	AutoLocale
)

func (f NumberFormat) String() string {
	switch f {
	case AutoLocale:
		return "auto"
	default:
		return "comma"
	}
}

// ParseNumberFormat maps a flag or config value to a NumberFormat.
func ParseNumberFormat(s string) (NumberFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "comma", "comma-decimal":
		return CommaDecimal, nil
	case "auto":
		return AutoLocale, nil
	default:
		return CommaDecimal, fmt.Errorf("unsupported number format: %q (use comma | auto)", s)
	}
}

// ParseValue parses one raw cell. NaN and infinities are rejected.
func ParseValue(raw string, format NumberFormat) (float64, error) {
	s := strings.TrimSpace(raw)
	switch format {
	case AutoLocale:
		s = normalizeLocaleNumber(s)
	default:
		s = strings.ReplaceAll(s, ",", ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNonNumeric, raw)
	}
	return f, nil
}

// normalizeLocaleNumber rewrites s with '.' as the only decimal separator.
// When both ',' and '.' occur the last one is the decimal separator.
func normalizeLocaleNumber(s string) string {
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, "\u00A0", " ")
	s = strings.TrimSpace(s)
	dec := '.'
	cpos := strings.LastIndex(s, ",")
	dpos := strings.LastIndex(s, ".")
	if cpos > dpos {
		dec = ','
	}
	for _, sep := range []rune{',', '.', ' '} {
		if sep != dec {
			s = strings.ReplaceAll(s, string(sep), "")
		}
	}
	if dec != '.' {
		s = strings.ReplaceAll(s, string(dec), ".")
	}
	return s
}

// Extraction holds per-column samples pulled from one file.
type Extraction struct {
	// Columns are the normalized requested names, in request order.
	Columns []string
	Samples map[string][]float64
	Issues  []CellIssue
	Rows    int
}

// NormalizeColumns trims, case-folds and de-duplicates requested names,
// keeping first-seen order and dropping blanks.
func NormalizeColumns(columns []string) []string {
	seen := make(map[string]struct{}, len(columns))
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		n := tabular.NormalizeHeader(c)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Extract validates the requested columns against the header and then
// reads every row, collecting numeric values. Non-numeric cells are recorded
// as issues and skipped. A missing column aborts before any row is read.
func Extract(src tabular.RowSource, columns []string, format NumberFormat) (*Extraction, error) {
	cols := NormalizeColumns(columns)
	headers := src.Headers()
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[h] = struct{}{}
	}
	for _, c := range cols {
		if _, ok := present[c]; !ok {
			return nil, &MissingColumnError{Column: c, Available: headers}
		}
	}

	ex := &Extraction{Columns: cols, Samples: make(map[string][]float64, len(cols))}
	for _, c := range cols {
		ex.Samples[c] = []float64{}
	}
	for {
		rec, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", ex.Rows+1, err)
		}
		ex.Rows++
		for _, c := range cols {
			raw := rec.Fields[c]
			v, err := ParseValue(raw, format)
			if err != nil {
				issue := CellIssue{Kind: NonNumericValue, Line: rec.Line, Column: c, Raw: raw}
				ex.Issues = append(ex.Issues, issue)
				logger.Debug("%s", issue)
				continue
			}
			ex.Samples[c] = append(ex.Samples[c], v)
		}
	}
	return ex, nil
}
