package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Removal is by value, not position: every occurrence of a flagged value is
// dropped, even if only one occurrence was an extreme.
func TestCleanRemovesAllOccurrencesOfFlaggedValue(t *testing.T) {
	assert.Equal(t, []float64{5, 5}, Clean([]float64{5, 5, 9}, NewOutlierSet(9)))
	assert.Equal(t, []float64{9}, Clean([]float64{5, 5, 9}, NewOutlierSet(5)))
}

func TestCleanKeepsOrderAndDoesNotAlias(t *testing.T) {
	in := []float64{3, 100, 1, 2, 100}
	out := Clean(in, NewOutlierSet(100))
	assert.Equal(t, []float64{3, 1, 2}, out)

	out[0] = -1
	assert.Equal(t, []float64{3, 100, 1, 2, 100}, in)
}

func TestCleanEmptySet(t *testing.T) {
	assert.Equal(t, []float64{1, 2}, Clean([]float64{1, 2}, OutlierSet{}))
	assert.Equal(t, []float64{}, Clean([]float64{4}, NewOutlierSet(4)))
}
