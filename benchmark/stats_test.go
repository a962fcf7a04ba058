package benchmark

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplesStats(t *testing.T) {
	var s Samples
	for i := 1; i <= 10; i++ {
		s = append(s, time.Duration(i)*10*time.Millisecond)
	}

	st, err := s.Stats()
	require.NoError(t, err)
	assert.InDelta(t, 0.01, st.Min, 1e-12)
	assert.InDelta(t, 0.10, st.Max, 1e-12)
	assert.InDelta(t, 0.05, st.P50, 1e-12)
	assert.InDelta(t, 0.09, st.P90, 1e-12)
	assert.InDelta(t, 0.10, st.P99, 1e-12)
	assert.Greater(t, st.StdDev, 0.0)
}

func TestSamplesStatsSingle(t *testing.T) {
	st, err := Samples{20 * time.Millisecond}.Stats()
	require.NoError(t, err)
	assert.Equal(t, st.Min, st.Max)
	assert.Zero(t, st.StdDev)
}

func TestSamplesStatsEmpty(t *testing.T) {
	_, err := Samples{}.Stats()
	assert.ErrorIs(t, err, ErrEmptyTimingSample)
}
