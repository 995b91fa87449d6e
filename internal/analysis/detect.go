package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Detection parameters.
const (
	DixonCritical   = 0.2
	ZScoreThreshold = 2.0
	IQRFactor       = 1.5
)

// OutlierSet is a set of flagged values. Membership is by value, so every
// occurrence of a flagged value counts as an outlier.
type OutlierSet struct {
	values map[float64]struct{}
}

// NewOutlierSet builds a set from values.
func NewOutlierSet(values ...float64) OutlierSet {
	var s OutlierSet
	for _, v := range values {
		s.add(v)
	}
	return s
}

func (s *OutlierSet) add(v float64) {
	if s.values == nil {
		s.values = make(map[float64]struct{})
	}
	s.values[v] = struct{}{}
}

// Contains reports whether v is flagged.
func (s OutlierSet) Contains(v float64) bool {
	_, ok := s.values[v]
	return ok
}

// Len returns the number of distinct flagged values.
func (s OutlierSet) Len() int { return len(s.values) }

// Values returns the flagged values in ascending order.
func (s OutlierSet) Values() []float64 {
	out := make([]float64, 0, len(s.values))
	for v := range s.values {
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

// Detector flags outliers in a sample.
type Detector func(sample []float64) OutlierSet

var detectors = map[Algorithm]Detector{
	Dixon:  DetectDixon,
	ZScore: DetectZScore,
	IQR:    DetectIQR,
}

// Detect runs the detector for alg. TooSmall yields an empty set.
func Detect(alg Algorithm, sample []float64) OutlierSet {
	d, ok := detectors[alg]
	if !ok {
		return OutlierSet{}
	}
	return d(sample)
}

// DetectDixon inspects only the two extremes of the sorted sample:
//
//	lower = (d[1]-d[0]) / (d[n-1]-d[0])
//	upper = (d[n-1]-d[n-2]) / (d[n-1]-d[0])
//
// flagging d[0] when lower > 0.2 and d[n-1] when upper > 0.2. A zero range
// flags nothing.
func DetectDixon(sample []float64) OutlierSet {
	n := len(sample)
	var out OutlierSet
	if n < MinSampleSize {
		return out
	}
	d := sortedCopy(sample)
	rng := d[n-1] - d[0]
	if rng == 0 {
		return out
	}
	if (d[1]-d[0])/rng > DixonCritical {
		out.add(d[0])
	}
	if (d[n-1]-d[n-2])/rng > DixonCritical {
		out.add(d[n-1])
	}
	return out
}

// DetectZScore flags values more than two population standard deviations
// from the mean. A constant sample flags nothing.
func DetectZScore(sample []float64) OutlierSet {
	var out OutlierSet
	if len(sample) == 0 || constant(sample) {
		return out
	}
	mean, std := stat.PopMeanStdDev(sample, nil)
	if std == 0 || math.IsNaN(std) {
		return out
	}
	for _, x := range sample {
		if math.Abs((x-mean)/std) > ZScoreThreshold {
			out.add(x)
		}
	}
	return out
}

// DetectIQR flags values strictly outside [Q1-1.5*IQR, Q3+1.5*IQR].
func DetectIQR(sample []float64) OutlierSet {
	var out OutlierSet
	if len(sample) == 0 {
		return out
	}
	lo, hi := IQRFences(sample)
	for _, x := range sample {
		if x < lo || x > hi {
			out.add(x)
		}
	}
	return out
}

// IQRFences returns the Tukey fences of sample.
func IQRFences(sample []float64) (lower, upper float64) {
	sorted := sortedCopy(sample)
	q1 := Percentile(sorted, 0.25)
	q3 := Percentile(sorted, 0.75)
	iqr := q3 - q1
	return q1 - IQRFactor*iqr, q3 + IQRFactor*iqr
}

// Percentile interpolates linearly between the closest ranks of a sorted
// slice at position q*(n-1), q in [0,1]. This matches NumPy's default
// ("linear") and R's type 7.
func Percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func constant(sample []float64) bool {
	for _, v := range sample[1:] {
		if v != sample[0] {
			return false
		}
	}
	return true
}

func sortedCopy(sample []float64) []float64 {
	cp := make([]float64, len(sample))
	copy(cp, sample)
	sort.Float64s(cp)
	return cp
}
