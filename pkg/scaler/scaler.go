// Package scaler implements per-feature mean/variance standardisation.
package scaler

import (
	"fmt"

	"github.com/jihwankim/beaconwatch/pkg/statsutil"
)

// Scaler holds the per-feature mean and standard deviation learned by Fit.
type Scaler struct {
	Mean []float64
	Std  []float64
}

// Fit computes per-column mean/std over a matrix X (rows are samples,
// columns are features, in feature.Names order). A zero standard deviation
// is replaced with 1 so Transform never divides by zero.
func Fit(x [][]float64) *Scaler {
	if len(x) == 0 {
		return &Scaler{}
	}
	d := len(x[0])
	mean := make([]float64, d)
	std := make([]float64, d)

	for col := 0; col < d; col++ {
		column := make([]float64, len(x))
		for row := range x {
			column[row] = x[row][col]
		}
		mean[col] = statsutil.Mean(column)
		std[col] = statsutil.PopStddev(column, mean[col])
		if std[col] == 0 {
			std[col] = 1
		}
	}

	return &Scaler{Mean: mean, Std: std}
}

// Transform applies (x - mean) / std to every row of X, positionally.
func (s *Scaler) Transform(x [][]float64) ([][]float64, error) {
	out := make([][]float64, len(x))
	for i, row := range x {
		if len(row) != len(s.Mean) {
			return nil, fmt.Errorf("scaler: row has %d features, want %d", len(row), len(s.Mean))
		}
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.Mean[j]) / s.Std[j]
		}
		out[i] = scaled
	}
	return out, nil
}

// TransformRow scales a single row.
func (s *Scaler) TransformRow(row []float64) ([]float64, error) {
	rows, err := s.Transform([][]float64{row})
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}

// FitTransform composes Fit and Transform.
func FitTransform(x [][]float64) (*Scaler, [][]float64, error) {
	s := Fit(x)
	out, err := s.Transform(x)
	return s, out, err
}
