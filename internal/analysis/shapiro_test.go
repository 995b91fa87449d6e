package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapiroWilkTooSmall(t *testing.T) {
	_, err := ShapiroWilk([]float64{1, 2})
	assert.ErrorIs(t, err, ErrSampleTooSmall)
}

func TestShapiroWilkThreeEquallySpaced(t *testing.T) {
	r, err := ShapiroWilk([]float64{3, 1, 2})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r.W, 1e-9)
	assert.InDelta(t, 1.0, r.PValue, 1e-6)
}

func TestShapiroWilkZeroRange(t *testing.T) {
	r, err := ShapiroWilk(constantSample(50, 2))
	require.NoError(t, err)
	assert.Equal(t, ShapiroResult{W: 1, PValue: 1}, r)
}

// Reference values from scipy.stats.shapiro.
func TestShapiroWilkMatchesReference(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		w, p float64
	}{
		{
			name: "rejects at 5%",
			x: []float64{0.11, 7.87, 4.61, 10.14, 7.95, 3.14, 0.46, 4.43, 0.21, 4.75,
				0.71, 1.52, 3.24, 0.93, 0.42, 4.97, 9.53, 4.55, 0.47, 6.66},
			w: 0.90047299861907959,
			p: 0.042089745402336121,
		},
		{
			name: "accepts",
			x: []float64{1.36, 1.14, 2.92, 2.55, 1.46, 1.06, 5.27, -1.11, 3.48, 1.10,
				0.88, -0.51, 1.46, 0.52, 6.20, 1.69, 0.08, 3.67, 2.81, 3.49},
			w: 0.9590270,
			p: 0.52460,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ShapiroWilk(tt.x)
			require.NoError(t, err)
			assert.InDelta(t, tt.w, r.W, 1e-6)
			assert.InDelta(t, tt.p, r.PValue, 1e-5)
		})
	}
}

func TestShapiroWilkNormalScores(t *testing.T) {
	for _, n := range []int{8, 20, 31, 100, 500} {
		r, err := ShapiroWilk(normalScores(n))
		require.NoError(t, err)
		assert.Greater(t, r.W, 0.97, "n=%d", n)
		assert.Greater(t, r.PValue, 0.2, "n=%d", n)
	}
}

func TestShapiroWilkSkewedRejectsNormality(t *testing.T) {
	for _, n := range []int{40, 200} {
		r, err := ShapiroWilk(skewed(n))
		require.NoError(t, err)
		assert.Less(t, r.PValue, 0.01, "n=%d", n)
		assert.Less(t, r.W, 0.9, "n=%d", n)
	}
}

func TestShapiroWilkLocationScaleInvariant(t *testing.T) {
	base := skewed(35)
	moved := make([]float64, len(base))
	for i, v := range base {
		moved[len(base)-1-i] = 1000 + 3*v
	}
	a, err := ShapiroWilk(base)
	require.NoError(t, err)
	b, err := ShapiroWilk(moved)
	require.NoError(t, err)
	assert.InDelta(t, a.W, b.W, 1e-9)
	assert.InDelta(t, a.PValue, b.PValue, 1e-9)
}

func TestShapiroWilkDoesNotMutateInput(t *testing.T) {
	s := []float64{5, 1, 4, 2, 3}
	_, err := ShapiroWilk(s)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 1, 4, 2, 3}, s)
}

func TestPoly(t *testing.T) {
	assert.InDelta(t, 1+2*3+4*9, poly([]float64{1, 2, 4}, 3), 1e-12)
}
