package optimizers

import (
	"math"

	"github.com/pkg/errors"
	"github.com/sharnoff/panelnet"
)

const (
	defaultBeta1   float64 = 0.9
	defaultBeta2   float64 = 0.999
	defaultEpsilon float64 = 1e-7
)

// adam keeps running averages of the gradient and squared gradient of each weight, scaling each
// step by them.
type adam struct {
	Beta1, Beta2, Epsilon float64

	// the number of steps taken
	t int

	// first and second moments
	m, v []float64
}

// Adam returns the Adam optimizer, with beta1 = 0.9, beta2 = 0.999, and epsilon = 1e-7. It uses
// the "learning-rate" HyperParameter of the Node.
//
// Each Adam instance keeps state for a single Node, so a new one must be constructed for each.
func Adam() *adam {
	return &adam{
		Beta1:   defaultBeta1,
		Beta2:   defaultBeta2,
		Epsilon: defaultEpsilon,
	}
}

func (a *adam) TypeString() string {
	return "adam"
}

func (a *adam) Run(n *panelnet.Node, size int, grad func(int) float64, add func(int, float64)) error {
	if a.m == nil {
		a.m = make([]float64, size)
		a.v = make([]float64, size)
	} else if len(a.m) != size {
		return errors.Errorf("Number of weights changed (%d → %d)", len(a.m), size)
	}

	a.t++
	correction1 := 1 - math.Pow(a.Beta1, float64(a.t))
	correction2 := 1 - math.Pow(a.Beta2, float64(a.t))
	alpha := n.HP("learning-rate") * math.Sqrt(correction2) / correction1

	for i := 0; i < size; i++ {
		g := grad(i)
		a.m[i] = a.Beta1*a.m[i] + (1-a.Beta1)*g
		a.v[i] = a.Beta2*a.v[i] + (1-a.Beta2)*g*g

		add(i, -alpha*a.m[i]/(math.Sqrt(a.v[i])+a.Epsilon))
	}

	return nil
}
