package benchmark

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// LatencyStats summarizes the latency distribution of a run in seconds.
type LatencyStats struct {
	Min    float64 `json:"min"    yaml:"min"`
	Max    float64 `json:"max"    yaml:"max"`
	StdDev float64 `json:"stddev" yaml:"stddev"`
	P50    float64 `json:"p50"    yaml:"p50"`
	P90    float64 `json:"p90"    yaml:"p90"`
	P99    float64 `json:"p99"    yaml:"p99"`
}

// Stats computes the latency distribution. FPS is still derived from the
// mean alone; these figures are report metadata.
func (s Samples) Stats() (LatencyStats, error) {
	if len(s) == 0 {
		return LatencyStats{}, ErrEmptyTimingSample
	}

	sorted := s.Seconds()
	sort.Float64s(sorted)

	out := LatencyStats{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		P50: stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90: stat.Quantile(0.90, stat.Empirical, sorted, nil),
		P99: stat.Quantile(0.99, stat.Empirical, sorted, nil),
	}
	if len(sorted) > 1 {
		out.StdDev = stat.StdDev(sorted, nil)
	}
	return out, nil
}
