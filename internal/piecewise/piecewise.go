// Package piecewise evaluates piecewise polynomial (linear) functions of
// one variable, the form in which cohort- and income-dependent statutory
// thresholds are encoded in the policy parameter table: ordered segment
// thresholds, a slope per segment, and the precomputed function value at
// each segment's lower bound.
package piecewise

import (
	"fmt"
	"math"
)

// Spec describes one piecewise linear function. The first threshold is
// conventionally -Inf so the function is total over the reals. A Spec is
// built once from the parameter table and shared read-only afterwards.
type Spec struct {
	Thresholds []float64 `yaml:"thresholds"`
	Rates      []float64 `yaml:"rates"`
	// InterceptsAtLowerThresholds is the function value at the lower
	// bound of each segment.
	InterceptsAtLowerThresholds []float64 `yaml:"intercepts_at_lower_thresholds"`
}

// Validate checks the structural invariants: equal non-zero sequence
// lengths and strictly increasing thresholds. It is run once at parameter
// load time, never per evaluation.
func (s *Spec) Validate() error {
	if len(s.Thresholds) == 0 {
		return fmt.Errorf("piecewise spec has no segments")
	}
	if len(s.Rates) != len(s.Thresholds) || len(s.InterceptsAtLowerThresholds) != len(s.Thresholds) {
		return fmt.Errorf("piecewise spec has mismatched lengths: %d thresholds, %d rates, %d intercepts",
			len(s.Thresholds), len(s.Rates), len(s.InterceptsAtLowerThresholds))
	}
	for i := 1; i < len(s.Thresholds); i++ {
		if s.Thresholds[i] <= s.Thresholds[i-1] {
			return fmt.Errorf("piecewise spec thresholds not strictly increasing at index %d (%v <= %v)",
				i, s.Thresholds[i], s.Thresholds[i-1])
		}
	}
	for i, t := range s.Thresholds {
		if math.IsNaN(t) || math.IsInf(s.Rates[i], 0) || math.IsNaN(s.Rates[i]) ||
			math.IsInf(s.InterceptsAtLowerThresholds[i], 0) || math.IsNaN(s.InterceptsAtLowerThresholds[i]) {
			return fmt.Errorf("piecewise spec has non-finite rate or intercept at index %d", i)
		}
	}
	return nil
}

// Evaluate returns the function value at x: the applicable segment is the
// one with the greatest threshold <= x (ties resolve to the higher
// segment), and the value is intercept + rate * (x - threshold). A zero
// rate yields a flat step, which is how pure threshold lookups such as
// eligibility ages are encoded.
func (s *Spec) Evaluate(x float64) float64 {
	i := 0
	for j := 1; j < len(s.Thresholds); j++ {
		if s.Thresholds[j] <= x {
			i = j
		} else {
			break
		}
	}
	c := s.InterceptsAtLowerThresholds[i]
	r := s.Rates[i]
	if r == 0 {
		// Avoids 0 * Inf when the lowest threshold is -Inf.
		return c
	}
	return c + r*(x-s.Thresholds[i])
}

// Step builds a flat step function from thresholds and the value that
// applies from each threshold on. The first threshold is forced to -Inf.
func Step(thresholds []float64, values []float64) (*Spec, error) {
	if len(thresholds) != len(values) {
		return nil, fmt.Errorf("step spec needs one value per threshold, got %d and %d", len(thresholds), len(values))
	}
	s := &Spec{
		Thresholds:                  append([]float64(nil), thresholds...),
		Rates:                       make([]float64, len(thresholds)),
		InterceptsAtLowerThresholds: append([]float64(nil), values...),
	}
	if len(s.Thresholds) > 0 {
		s.Thresholds[0] = math.Inf(-1)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
