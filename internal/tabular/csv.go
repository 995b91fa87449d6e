package tabular

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVSource reads delimited text files.
type CSVSource struct {
	f      *os.File
	r      *csv.Reader
	header headerIndex
	delim  rune
}

// OpenCSV opens a delimited text file and consumes its header row.
func OpenCSV(path string, opt Options) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	dec, err := decoder(f, opt.Encoding)
	if err != nil {
		f.Close()
		return nil, err
	}
	br := bufio.NewReader(dec)
	first, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, fmt.Errorf("read header: %w", err)
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = SniffDelimiter(first)
	}
	r := csv.NewReader(io.MultiReader(strings.NewReader(first), br))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	s := &CSVSource{f: f, r: r, delim: delim}
	header, err := r.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, fmt.Errorf("read header: %w", err)
	}
	s.header = newHeaderIndex(header)
	return s, nil
}

// SniffDelimiter returns the first of ',', ';', '\t' present in the header
// line. A line with none of them is a single-column file and reads with ','.
func SniffDelimiter(firstLine string) rune {
	for _, d := range []rune{',', ';', '\t'} {
		if strings.ContainsRune(firstLine, d) {
			return d
		}
	}
	return ','
}

// Delimiter reports the delimiter in use.
func (s *CSVSource) Delimiter() rune { return s.delim }

// Headers returns the normalized header names in file order.
func (s *CSVSource) Headers() []string { return s.header.names }

// Next returns the next data row.
func (s *CSVSource) Next() (Record, error) {
	row, err := s.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("read row: %w", err)
	}
	line, _ := s.r.FieldPos(0)
	return s.header.record(line, row), nil
}

// Close releases the underlying file.
func (s *CSVSource) Close() error { return s.f.Close() }

func decoder(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	case "latin1", "latin-1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding: %q (use utf-8 | latin1 | windows-1252)", encoding)
	}
}
