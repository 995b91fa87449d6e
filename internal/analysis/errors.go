package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNonNumeric is returned by ParseValue for cells that do not hold a number.
var ErrNonNumeric = errors.New("non-numeric value")

// ErrSampleTooSmall is returned by ShapiroWilk for samples under three values.
var ErrSampleTooSmall = errors.New("sample too small: need at least 3 values")

// MissingColumnError reports a requested column absent from the header.
type MissingColumnError struct {
	Column    string
	Available []string
}

func (e *MissingColumnError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("column '%s' not found: file has no header", e.Column)
	}
	return fmt.Sprintf("column '%s' not found (available: %s)", e.Column, strings.Join(e.Available, ", "))
}

// IssueKind classifies a non-fatal per-cell problem.
type IssueKind string

const (
	NonNumericValue IssueKind = "non-numeric"
)

// CellIssue records a skipped cell. Extraction continues past it.
type CellIssue struct {
	Kind   IssueKind
	Line   int
	Column string
	Raw    string
}

func (c CellIssue) String() string {
	return fmt.Sprintf("line %d, column '%s': %s value %q skipped", c.Line, c.Column, c.Kind, c.Raw)
}
