package benchmark

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestMean(t *testing.T) {
	mean, err := Mean([]float64{0.1, 0.2, 0.3})
	require.NoError(t, err)
	assert.InDelta(t, 0.2, mean, 1e-12)
	assert.InDelta(t, 5.0, FPS(mean), 1e-9)

	mean, err = Mean([]float64{0.04})
	require.NoError(t, err)
	assert.InDelta(t, 25.0, FPS(mean), 1e-9)
}

func TestFPSOfKnownSamples(t *testing.T) {
	mean, err := Mean([]float64{2.0})
	require.NoError(t, err)
	assert.Equal(t, 0.5, FPS(mean))

	mean, err = Mean([]float64{1.0, 3.0})
	require.NoError(t, err)
	assert.Equal(t, 0.5, FPS(mean))
}

func TestMeanEmpty(t *testing.T) {
	_, err := Mean(nil)
	assert.ErrorIs(t, err, ErrEmptyTimingSample)

	_, err = Mean([]float64{})
	assert.ErrorIs(t, err, ErrEmptyTimingSample)

	_, err = Samples{}.FPS()
	assert.ErrorIs(t, err, ErrEmptyTimingSample)
}

func TestFPSZeroMean(t *testing.T) {
	assert.True(t, math.IsInf(FPS(0), 1))
}

// TestMeanReciprocal checks that FPS times the mean is one for any non-empty
// set of positive latencies.
func TestMeanReciprocal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seconds := rapid.SliceOfN(rapid.Float64Range(1e-6, 10), 1, 64).Draw(t, "seconds")

		mean, err := Mean(seconds)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := FPS(mean) * mean; math.Abs(got-1) > 1e-9 {
			t.Fatalf("fps*mean = %v, want 1", got)
		}
	})
}

// TestMeanIsOrderIndependent checks the mean does not depend on sample order
// beyond float rounding.
func TestMeanIsOrderIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seconds := rapid.SliceOfN(rapid.Float64Range(1e-6, 10), 1, 64).Draw(t, "seconds")
		reversed := make([]float64, len(seconds))
		for i, s := range seconds {
			reversed[len(seconds)-1-i] = s
		}

		a, _ := Mean(seconds)
		b, _ := Mean(reversed)
		if math.Abs(a-b) > 1e-9 {
			t.Fatalf("mean %v != reversed mean %v", a, b)
		}
	})
}

func TestSamples(t *testing.T) {
	s := Samples{100 * time.Millisecond, 300 * time.Millisecond}
	assert.Equal(t, []float64{0.1, 0.3}, s.Seconds())
	assert.Equal(t, 400*time.Millisecond, s.Total())

	mean, err := s.Mean()
	require.NoError(t, err)
	assert.InDelta(t, 0.2, mean, 1e-12)

	fps, err := s.FPS()
	require.NoError(t, err)
	assert.InDelta(t, 5.0, fps, 1e-9)
}
