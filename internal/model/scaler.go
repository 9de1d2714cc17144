package model

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler centers and scales feature vectors to zero mean and unit
// variance per column, matching the transform the classifier was trained
// with. Columns with zero variance pass through unscaled.
type StandardScaler struct {
	Mean []float64
	Std  []float64
}

// FitScaler computes per-column mean and sample standard deviation over the
// given feature matrix.
func FitScaler(samples [][]float64) (*StandardScaler, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("fitting scaler: no samples")
	}
	width := len(samples[0])
	column := make([]float64, len(samples))

	s := &StandardScaler{
		Mean: make([]float64, width),
		Std:  make([]float64, width),
	}
	for col := 0; col < width; col++ {
		for i, sample := range samples {
			if len(sample) != width {
				return nil, fmt.Errorf("fitting scaler: sample %d has %d columns, want %d", i, len(sample), width)
			}
			column[i] = sample[col]
		}
		s.Mean[col] = stat.Mean(column, nil)
		s.Std[col] = stat.StdDev(column, nil)
	}
	return s, nil
}

// Transform returns a scaled copy of the feature vector.
func (s *StandardScaler) Transform(features []float64) []float64 {
	out := make([]float64, len(features))
	for i, v := range features {
		if i < len(s.Mean) {
			v -= s.Mean[i]
			if i < len(s.Std) && s.Std[i] > 0 {
				v /= s.Std[i]
			}
		}
		out[i] = v
	}
	return out
}
