package screening

import (
	"fmt"
	"math"
)

const weightSumTolerance = 1e-9

// Weights is the relative importance of the five scoring dimensions.
// A valid vector has all dimensions present (non-negative, at least one
// positive) and sums to 1.0; an unnormalized vector would silently distort
// relative rankings, so it is rejected up front.
type Weights struct {
	CO2Availability float64 `json:"co2_availability" yaml:"co2_availability"`
	Energy          float64 `json:"energy" yaml:"energy"`
	Policy          float64 `json:"policy" yaml:"policy"`
	Infrastructure  float64 `json:"infrastructure" yaml:"infrastructure"`
	Financial       float64 `json:"financial" yaml:"financial"`
}

// DefaultWeights returns the default screening weight vector.
func DefaultWeights() Weights {
	return Weights{
		CO2Availability: 0.25,
		Energy:          0.20,
		Policy:          0.20,
		Infrastructure:  0.15,
		Financial:       0.20,
	}
}

// Validate checks the weight vector before any scoring runs.
func (w Weights) Validate() error {
	for _, dim := range []struct {
		name  string
		value float64
	}{
		{"co2_availability", w.CO2Availability},
		{"energy", w.Energy},
		{"policy", w.Policy},
		{"infrastructure", w.Infrastructure},
		{"financial", w.Financial},
	} {
		if dim.value < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalidWeights, dim.name)
		}
	}
	sum := w.CO2Availability + w.Energy + w.Policy + w.Infrastructure + w.Financial
	if sum == 0 {
		return fmt.Errorf("%w: all dimensions zero", ErrInvalidWeights)
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: sum %.6f, want 1.0", ErrInvalidWeights, sum)
	}
	return nil
}

// Total combines the five sub-scores into the weighted total.
func (w Weights) Total(s Scores) float64 {
	return s.CO2Availability*w.CO2Availability +
		s.Energy*w.Energy +
		s.Policy*w.Policy +
		s.Infrastructure*w.Infrastructure +
		s.Financial*w.Financial
}
