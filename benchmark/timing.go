package benchmark

import "time"

// Mean returns the arithmetic mean of per-inference latencies in seconds.
//
// Arguments:
//   - seconds: The latencies.
//
// Returns:
//   - float64: The mean latency in seconds.
//   - error: ErrEmptyTimingSample if seconds is empty.
func Mean(seconds []float64) (float64, error) {
	if len(seconds) == 0 {
		return 0, ErrEmptyTimingSample
	}

	sum := 0.0
	for _, s := range seconds {
		sum += s
	}
	return sum / float64(len(seconds)), nil
}

// FPS converts a mean latency in seconds into frames per second. There is no
// clamping: a zero mean yields +Inf.
func FPS(meanSeconds float64) float64 {
	return 1 / meanSeconds
}

// Samples are per-inference latencies, one per invocation, in order.
type Samples []time.Duration

// Seconds returns the samples as float64 seconds.
func (s Samples) Seconds() []float64 {
	out := make([]float64, len(s))
	for i, d := range s {
		out[i] = d.Seconds()
	}
	return out
}

// Mean returns the mean latency in seconds.
func (s Samples) Mean() (float64, error) {
	return Mean(s.Seconds())
}

// FPS returns the frames per second implied by the mean latency.
func (s Samples) FPS() (float64, error) {
	mean, err := s.Mean()
	if err != nil {
		return 0, err
	}
	return FPS(mean), nil
}

// Total returns the summed latency.
func (s Samples) Total() time.Duration {
	var total time.Duration
	for _, d := range s {
		total += d
	}
	return total
}
