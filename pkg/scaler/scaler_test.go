package scaler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFit_ComputesMeanAndStd(t *testing.T) {
	x := [][]float64{{1, 10}, {2, 10}, {3, 10}}
	s := Fit(x)

	assert.InDelta(t, 2, s.Mean[0], 1e-9)
	assert.InDelta(t, 10, s.Mean[1], 1e-9)
	// Constant column keeps std at 1, not 0, so Transform never divides by zero.
	assert.Equal(t, 1.0, s.Std[1])
}

func TestTransform_StandardizesRows(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}}
	s := Fit(x)

	out, err := s.Transform(x)
	require.NoError(t, err)

	assert.InDelta(t, 0, out[1][0], 1e-9) // mean row maps to 0
}

func TestTransform_RejectsWrongWidth(t *testing.T) {
	s := Fit([][]float64{{1, 2}})
	_, err := s.Transform([][]float64{{1}})
	assert.Error(t, err)
}

func TestFitTransform_Composition(t *testing.T) {
	x := [][]float64{{5}, {10}, {15}}
	s, out, err := FitTransform(x)
	require.NoError(t, err)
	assert.Equal(t, s.Mean[0], 10.0)
	assert.Len(t, out, 3)
}

func TestFit_EmptyMatrix(t *testing.T) {
	s := Fit(nil)
	assert.Empty(t, s.Mean)
}
