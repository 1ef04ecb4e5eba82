package hyperparams

import (
	"sort"
)

type stepper struct {
	// iterations at which the value changes, ascending; starts[0] is always 0
	starts []int
	values []float64
}

// Step returns a HyperParameter that starts at base and changes value at the iterations given by
// Add.
func Step(base float64) *stepper {
	return &stepper{starts: []int{0}, values: []float64{base}}
}

// Add makes the HyperParameter take the given value from iter onwards. Steps may be added in any
// order; adding a step at an existing iteration replaces its value.
func (s *stepper) Add(iter int, value float64) *stepper {
	i := sort.SearchInts(s.starts, iter)
	if i < len(s.starts) && s.starts[i] == iter {
		s.values[i] = value
		return s
	}

	s.starts = append(s.starts, 0)
	s.values = append(s.values, 0)
	copy(s.starts[i+1:], s.starts[i:])
	copy(s.values[i+1:], s.values[i:])
	s.starts[i], s.values[i] = iter, value
	return s
}

func (s *stepper) TypeString() string {
	return "step"
}

func (s *stepper) Value(iter int) float64 {
	// the last step starting at or before iter
	i := sort.SearchInts(s.starts, iter+1) - 1
	if i < 0 {
		i = 0
	}
	return s.values[i]
}
