package initializers

import (
	"github.com/pkg/errors"
	"github.com/sharnoff/panelnet"
)

// LeCun returns variance scaling based on fan-in, drawn from a truncated normal distribution
func LeCun() *varianceScaling {
	return VarianceScaling().In()
}

// He returns variance scaling based on fan-in with a factor of 2, suited to ReLU activations
func He() *varianceScaling {
	return VarianceScaling().In().Factor(2)
}

// Glorot returns variance scaling based on the average of fan-in and fan-out, drawn from a
// truncated normal distribution. It is also known as Xavier initialization.
func Glorot() *varianceScaling {
	return VarianceScaling().Avg()
}

// GlorotUniform is the same as Glorot, but drawn from a uniform distribution.
func GlorotUniform() *varianceScaling {
	return VarianceScaling().Avg().Uniform()
}

// ByName returns the Initializer with the given name, drawing from src: one of "glorot-uniform",
// "glorot", "he", "lecun", or "uniform".
func ByName(name string, src Source) (panelnet.Initializer, error) {
	switch name {
	case "glorot-uniform":
		return GlorotUniform().Rand(src), nil
	case "glorot":
		return Glorot().Rand(src), nil
	case "he":
		return He().Rand(src), nil
	case "lecun":
		return LeCun().Rand(src), nil
	case "uniform":
		return Random(Uniform()).Rand(src), nil
	}

	return nil, errors.Errorf("Unknown initializer %q", name)
}
