package initializers

import (
	"math"
)

type varianceScaling struct {
	// either: "in", "out", "avg"
	mode   string
	factor float64

	// whether to draw from a uniform distribution instead of a truncated normal one
	uniform bool

	src Source
}

const (
	defaultVarianceMode   string  = "avg"
	defaultVarianceFactor float64 = 1

	// the standard deviation of a unit normal distribution truncated at 2 standard deviations
	truncatedSD float64 = 0.87962566103423978
)

// VarianceScaling returns the variance scaling initializer, which has 3 modes and a user-defined
// scaling factor. The three modes can be set by In, Out, and Avg. It defaults to Avg, with a
// factor of 1, drawing from a truncated normal distribution.
func VarianceScaling() *varianceScaling {
	return &varianceScaling{
		mode:   defaultVarianceMode,
		factor: defaultVarianceFactor,
		src:    Global,
	}
}

// Factor sets the scaling factor to be used for the Initializer.
func (v *varianceScaling) Factor(f float64) *varianceScaling {
	v.factor = f
	return v
}

// In sets the scaling to be based on the fan-in of the Operator.
func (v *varianceScaling) In() *varianceScaling {
	v.mode = "in"
	return v
}

// Out sets the scaling to be based on the fan-out of the Operator.
func (v *varianceScaling) Out() *varianceScaling {
	v.mode = "out"
	return v
}

// Avg sets the scaling to be based on the average of the fan-in and fan-out of the Operator.
func (v *varianceScaling) Avg() *varianceScaling {
	v.mode = "avg"
	return v
}

// Uniform sets the weights to be drawn from a uniform distribution with the same variance,
// instead of a truncated normal distribution.
func (v *varianceScaling) Uniform() *varianceScaling {
	v.uniform = true
	return v
}

// Rand sets the Source of the Initializer, returning it.
func (v *varianceScaling) Rand(src Source) *varianceScaling {
	v.src = src
	return v
}

// Set is the implementation of panelnet.Initializer
func (v *varianceScaling) Set(ws []float64, fanIn, fanOut int) {
	var scale float64
	if v.mode == "in" {
		scale = float64(fanIn)
	} else if v.mode == "out" {
		scale = float64(fanOut)
	} else { // must be "avg"
		scale = float64(fanIn+fanOut) / 2
	}

	if scale < 1 {
		scale = 1
	}

	variance := v.factor / scale

	var gen RNG
	if v.uniform {
		limit := math.Sqrt(3 * variance)
		gen = Uniform().Bounds(-limit, limit)
	} else {
		gen = TruncNormal().SD(math.Sqrt(variance) / truncatedSD)
	}

	for i := range ws {
		ws[i] = gen.Gen(v.src)
	}
}
