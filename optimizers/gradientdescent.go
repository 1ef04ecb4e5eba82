package optimizers

import (
	"github.com/sharnoff/panelnet"
)

type gradientdescent int8

// GradientDescent returns plain stochastic gradient descent, which uses the "learning-rate"
// HyperParameter of the Node
func GradientDescent() gradientdescent {
	return gradientdescent(0)
}

func (g gradientdescent) TypeString() string {
	return "sgd"
}

func (g gradientdescent) Run(n *panelnet.Node, size int, grad func(int) float64, add func(int, float64)) error {
	learningRate := n.HP("learning-rate")

	for i := 0; i < size; i++ {
		add(i, -1*learningRate*grad(i))
	}

	return nil
}
