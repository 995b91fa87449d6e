// Package report pairs original and cleaned samples and writes them as
// XLSX, CSV or Markdown.
package report

import (
	"strconv"

	"github.com/KaramelBytes/outliers-cli/internal/analysis"
)

// Cell is a numeric value or a blank used to pad the shorter sequence.
type Cell struct {
	Value float64
	Blank bool
}

func (c Cell) String() string {
	if c.Blank {
		return ""
	}
	return FormatValue(c.Value)
}

// Row is one (column, original, cleaned) triple.
type Row struct {
	Column   string
	Original Cell
	Cleaned  Cell
}

// Header is the column titles of tabular reports.
var Header = []string{"Column", "Original", "Cleaned"}

// Assemble zips each analyzed column's original and cleaned values by index,
// padding the shorter sequence with blanks. Index alignment is for display
// only; it does not pair an original value with its cleaned counterpart.
// Skipped columns produce no rows.
func Assemble(columns []analysis.ColumnResult) []Row {
	var rows []Row
	for _, c := range columns {
		if c.Skipped {
			continue
		}
		n := max(len(c.Original), len(c.Cleaned))
		for i := 0; i < n; i++ {
			rows = append(rows, Row{
				Column:   c.Name,
				Original: cellAt(c.Original, i),
				Cleaned:  cellAt(c.Cleaned, i),
			})
		}
	}
	return rows
}

func cellAt(vals []float64, i int) Cell {
	if i < len(vals) {
		return Cell{Value: vals[i]}
	}
	return Cell{Blank: true}
}

// FormatValue renders v in the shortest form that parses back to v.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
