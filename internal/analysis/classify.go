package analysis

// Algorithm identifies the outlier test applied to a sample.
type Algorithm int

const (
	// TooSmall means no test applies; the column is skipped.
	TooSmall Algorithm = iota
	Dixon
	ZScore
	IQR
)

func (a Algorithm) String() string {
	switch a {
	case Dixon:
		return "dixon"
	case ZScore:
		return "z-score"
	case IQR:
		return "iqr"
	default:
		return "too-small"
	}
}

// Label is the human-readable name used in reports.
func (a Algorithm) Label() string {
	switch a {
	case Dixon:
		return "Dixon test"
	case ZScore:
		return "Z-score method"
	case IQR:
		return "IQR method"
	default:
		return "sample too small"
	}
}

// Classification thresholds.
const (
	MinSampleSize  = 3
	MaxDixonSize   = 30
	NormalityAlpha = 0.05
)

// Classification is the outcome of Classify. Normality fields are set only
// when the Shapiro–Wilk test was run (n > MaxDixonSize).
type Classification struct {
	Algorithm Algorithm
	N         int
	Tested    bool
	W         float64
	PValue    float64
}

// Classify picks the outlier test for a sample:
//
//	n < 3            -> TooSmall
//	n <= 30          -> Dixon
//	Shapiro p > 0.05 -> ZScore
//	otherwise        -> IQR
func Classify(sample []float64) Classification {
	n := len(sample)
	c := Classification{N: n}
	switch {
	case n < MinSampleSize:
		c.Algorithm = TooSmall
	case n <= MaxDixonSize:
		c.Algorithm = Dixon
	default:
		sw, err := ShapiroWilk(sample)
		if err != nil {
			c.Algorithm = IQR
			return c
		}
		c.Tested = true
		c.W, c.PValue = sw.W, sw.PValue
		if sw.PValue > NormalityAlpha {
			c.Algorithm = ZScore
		} else {
			c.Algorithm = IQR
		}
	}
	return c
}
