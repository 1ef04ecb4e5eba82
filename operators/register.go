package operators

import (
	"github.com/pkg/errors"
	"github.com/sharnoff/panelnet"
)

// the alpha given to LeakyReLU when it is requested by name
const defaultLeakyAlpha float64 = 0.01

var activations map[string]func() panelnet.Elementwise

func init() {
	list := []func() panelnet.Elementwise{
		func() panelnet.Elementwise { return LeakyReLU(defaultLeakyAlpha) },
		func() panelnet.Elementwise { return Logistic() },
		func() panelnet.Elementwise { return Tanh() },
		func() panelnet.Elementwise { return ReLU() },
		func() panelnet.Elementwise { return ELU() },
	}

	activations = make(map[string]func() panelnet.Elementwise)
	for _, f := range list {
		activations[f().TypeString()] = f
	}
}

// Activation returns the activation function with the given TypeString: one of "relu",
// "leaky-relu", "elu", "tanh", or "logistic".
func Activation(name string) (panelnet.Elementwise, error) {
	f, ok := activations[name]
	if !ok {
		return nil, errors.Errorf("Unknown activation %q", name)
	}

	return f(), nil
}
