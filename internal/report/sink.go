package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/outliers-cli/internal/analysis"
	"github.com/KaramelBytes/outliers-cli/internal/utils"
)

// Format is an output file format.
type Format string

const (
	FormatXLSX     Format = "xlsx"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xlsx", "excel":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported report format: %q (use xlsx | csv | md)", s)
	}
}

// FormatFromPath picks a format by extension, falling back to def.
func FormatFromPath(path string, def Format) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatXLSX
	case ".csv":
		return FormatCSV
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return def
	}
}

// Sink persists assembled report rows.
type Sink interface {
	WriteRows(rows []Row) error
}

// WriteFile writes res to path in the given format.
func WriteFile(path string, format Format, res *analysis.FileResult) error {
	switch format {
	case FormatMarkdown:
		if err := utils.SafeWriteFile(path, []byte(Markdown(res))); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		return nil
	case FormatCSV:
		return CSVSink{Path: path}.WriteRows(Assemble(res.Columns))
	default:
		return XLSXSink{Path: path}.WriteRows(Assemble(res.Columns))
	}
}
