package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/KaramelBytes/outliers-cli/internal/utils"
)

// CSVSink writes rows as comma-separated text with a header line.
type CSVSink struct {
	Path string
}

func (s CSVSink) WriteRows(rows []Row) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	for _, r := range rows {
		if err := w.Write([]string{r.Column, r.Original.String(), r.Cleaned.String()}); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if err := utils.SafeWriteFile(s.Path, buf.Bytes()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
