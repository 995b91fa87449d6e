package analysis

// Clean returns a new slice with every value of sample that is a member of
// outliers removed, keeping the original order. Removal is by value: if 5 is
// flagged, all occurrences of 5 go.
func Clean(sample []float64, outliers OutlierSet) []float64 {
	out := make([]float64, 0, len(sample))
	for _, v := range sample {
		if outliers.Contains(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
