package optimizers

import (
	"github.com/pkg/errors"
	"github.com/sharnoff/panelnet"
)

var list = map[string]func() panelnet.Optimizer{
	"adam": func() panelnet.Optimizer { return Adam() },
	"sgd":  func() panelnet.Optimizer { return GradientDescent() },
}

// ByName returns the constructor for the Optimizer with the given TypeString: either "adam" or
// "sgd". The result is suitable for *panelnet.Network.DefaultOpt.
func ByName(name string) (func() panelnet.Optimizer, error) {
	f, ok := list[name]
	if !ok {
		return nil, errors.Errorf("Unknown optimizer %q", name)
	}

	return f, nil
}
