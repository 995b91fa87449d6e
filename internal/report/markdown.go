package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/outliers-cli/internal/analysis"
)

// maxListed caps how many values are printed inline per column.
const maxListed = 20

// Markdown renders a compact before/after summary of one file.
func Markdown(res *analysis.FileResult) string {
	var b strings.Builder
	b.WriteString("[OUTLIER REPORT]\n")
	if res.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", res.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", res.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(res.Columns)))

	b.WriteString("[COLUMNS]\n")
	for _, c := range res.Columns {
		if c.Skipped {
			b.WriteString(fmt.Sprintf("- %s: skipped (n=%d, need at least %d values)\n", c.Name, c.N, analysis.MinSampleSize))
			continue
		}
		b.WriteString(fmt.Sprintf("- %s: %s (n=%d", c.Name, c.Algorithm.Label(), c.N))
		if c.Tested {
			b.WriteString(fmt.Sprintf(", shapiro-wilk W=%.4f p=%.4g", c.W, c.PValue))
		}
		b.WriteString(")")
		if len(c.Outliers) == 0 {
			b.WriteString("; no outliers\n")
			continue
		}
		b.WriteString(fmt.Sprintf("; outliers: %s; removed %d, kept %d\n",
			joinValues(c.Outliers), c.Removed(), len(c.Cleaned)))
	}

	for _, c := range res.Analyzed() {
		b.WriteString(fmt.Sprintf("\n[%s]\n", strings.ToUpper(c.Name)))
		b.WriteString("Original: " + joinValues(c.Original) + "\n")
		b.WriteString("Cleaned:  " + joinValues(c.Cleaned) + "\n")
	}

	if len(res.Issues) > 0 {
		b.WriteString("\n[NOTES]\n")
		b.WriteString(fmt.Sprintf("- %d non-numeric cell(s) skipped\n", len(res.Issues)))
		for i, is := range res.Issues {
			if i == maxListed {
				b.WriteString(fmt.Sprintf("- ... %d more\n", len(res.Issues)-maxListed))
				break
			}
			b.WriteString("- " + is.String() + "\n")
		}
	}
	return b.String()
}

func joinValues(vals []float64) string {
	if len(vals) == 0 {
		return "(none)"
	}
	parts := make([]string, 0, min(len(vals), maxListed)+1)
	for i, v := range vals {
		if i == maxListed {
			parts = append(parts, fmt.Sprintf("... (+%d)", len(vals)-maxListed))
			break
		}
		parts = append(parts, FormatValue(v))
	}
	return strings.Join(parts, ", ")
}
