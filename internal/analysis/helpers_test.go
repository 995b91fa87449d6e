package analysis

import (
	"io"
	"math"

	"github.com/KaramelBytes/outliers-cli/internal/tabular"
	"gonum.org/v1/gonum/stat/distuv"
)

// memSource is an in-memory RowSource; rows are raw cells in header order.
type memSource struct {
	headers []string
	rows    [][]string
	next    int
	err     error
}

func newMemSource(headers []string, rows ...[]string) *memSource {
	norm := make([]string, len(headers))
	for i, h := range headers {
		norm[i] = tabular.NormalizeHeader(h)
	}
	return &memSource{headers: norm, rows: rows}
}

func (m *memSource) Headers() []string { return m.headers }

func (m *memSource) Next() (tabular.Record, error) {
	if m.next >= len(m.rows) {
		if m.err != nil {
			return tabular.Record{}, m.err
		}
		return tabular.Record{}, io.EOF
	}
	row := m.rows[m.next]
	m.next++
	fields := map[string]string{}
	for i, h := range m.headers {
		if i < len(row) {
			fields[h] = row[i]
		}
	}
	return tabular.Record{Line: m.next + 1, Fields: fields}, nil
}

func (m *memSource) Close() error { return nil }

func column(values ...string) [][]string {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{v}
	}
	return rows
}

// normalScores returns n expected normal order statistics scaled to mean
// 100 and sd 10.
func normalScores(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 10*distuv.UnitNormal.Quantile((float64(i+1)-0.375)/(float64(n)+0.25))
	}
	return out
}

// skewed returns an exponentially growing, strongly non-normal sample.
func skewed(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Exp(float64(i) / 4)
	}
	return out
}

func constantSample(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
