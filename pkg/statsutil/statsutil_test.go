package statsutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-9)
}

func TestPopStddev(t *testing.T) {
	assert.Equal(t, 0.0, PopStddev(nil, 0))
	assert.Equal(t, 0.0, PopStddev([]float64{5, 5, 5}, 5))
	assert.InDelta(t, 1.4142, PopStddev([]float64{1, 2, 3}, 2), 1e-3)
}

func TestPercentile(t *testing.T) {
	xs := []float64{10, 20, 30, 40}
	assert.InDelta(t, 10, Percentile(xs, 0), 1e-9)
	assert.InDelta(t, 40, Percentile(xs, 100), 1e-9)
	assert.InDelta(t, 25, Percentile(xs, 50), 1e-9)
}

func TestPercentile_DoesNotMutateInput(t *testing.T) {
	xs := []float64{30, 10, 20}
	_ = Percentile(xs, 50)
	assert.Equal(t, []float64{30, 10, 20}, xs)
}

func TestPathLengthNormalizer(t *testing.T) {
	assert.Equal(t, 0.0, PathLengthNormalizer(0))
	assert.Equal(t, 0.0, PathLengthNormalizer(1))
	assert.Greater(t, PathLengthNormalizer(256), PathLengthNormalizer(2))
}

func TestHarmonic(t *testing.T) {
	assert.Equal(t, 0.0, Harmonic(0))
	assert.InDelta(t, 1.5, Harmonic(2), 0.05)
}
