// Package tabular turns CSV/TSV and XLSX files into records keyed by
// normalized column name.
package tabular

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Record is one data row keyed by normalized header name.
type Record struct {
	// Line is the 1-based position of the row in the source (header is line 1).
	Line   int
	Fields map[string]string
}

// RowSource yields records after the header row. Next returns io.EOF when
// the source is exhausted.
type RowSource interface {
	Headers() []string
	Next() (Record, error)
	io.Closer
}

// Options controls how files are opened.
type Options struct {
	// Delimiter for CSV. If 0, sniffed from the first line among ',', ';', '\t'.
	Delimiter rune
	// Encoding of text files: "utf-8" (default), "latin1" or "windows-1252".
	Encoding string
	// SheetName selects an XLSX sheet by name; SheetIndex (1-based) is used otherwise.
	SheetName  string
	SheetIndex int
}

// NormalizeHeader trims and case-folds a column name so lookups are
// case-insensitive.
func NormalizeHeader(s string) string {
	return norm.NFC.String(cases.Fold().String(strings.TrimSpace(s)))
}

// Open picks a source by file extension.
func Open(path string, opt Options) (RowSource, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return OpenXLSX(path, opt.SheetName, opt.SheetIndex)
	}
	return OpenCSV(path, opt)
}

// ParseDelimiter maps a flag value to a delimiter rune. Empty means sniff.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab", `\t`:
		return '\t', nil
	case ";":
		return ';', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %q (use ',' | ';' | 'tab')", s)
	}
}

// headerIndex maps normalized names to their first column index.
type headerIndex struct {
	names []string
	pos   map[string]int
}

func newHeaderIndex(raw []string) headerIndex {
	h := headerIndex{names: make([]string, 0, len(raw)), pos: make(map[string]int, len(raw))}
	for i, name := range raw {
		n := NormalizeHeader(name)
		h.names = append(h.names, n)
		if _, dup := h.pos[n]; !dup {
			h.pos[n] = i
		}
	}
	return h
}

func (h headerIndex) record(line int, row []string) Record {
	fields := make(map[string]string, len(h.pos))
	for name, i := range h.pos {
		if i < len(row) {
			fields[name] = row[i]
		}
	}
	return Record{Line: line, Fields: fields}
}
