package panelnet

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sharnoff/panelnet/utils"
)

func (net *Network) init() {
	if net.names != nil {
		return
	}

	net.names = make(map[string]bool)
	net.hyperParams = make(map[string]HyperParameter)
}

// PanicErrors sets the Network to panic on any errors it encounters during construction, instead
// of storing them. This is mostly useful for debugging.
func (net *Network) PanicErrors() *Network {
	net.panicErrors = true
	return net
}

// newNode performs the checks common to adding any Node. On failure it sets the Network's error
// and returns nil.
func (net *Network) newNode(name string, dims []int) *Node {
	net.init()

	if net.err != nil {
		return nil
	} else if net.stat >= finalized {
		net.setError(ErrNetFinalized)
		return nil
	} else if name == "" {
		net.setError(errors.Errorf(`Name cannot be ""`))
		return nil
	} else if strings.Contains(name, `"`) {
		net.setError(errors.Errorf(`Name %s contains illegal character: "`, name))
		return nil
	} else if net.names[name] {
		net.setError(errors.Errorf("Name %q is already taken", name))
		return nil
	}

	if len(dims) == 0 {
		net.setError(errors.Errorf("Node %q must have at least one dimension", name))
		return nil
	}
	for i, d := range dims {
		if d < 1 {
			net.setError(errors.Errorf("Node %q has dimension %d = %d, must be ≥ 1", name, i, d))
			return nil
		}
	}

	n := &Node{
		name:  name,
		id:    len(net.nodesByID),
		host:  net,
		shape: utils.NewMultiDim(dims),
	}

	net.names[name] = true
	net.nodesByID = append(net.nodesByID, n)
	return n
}

// AddInput adds the input Node to the Network, with the given dimensions. There can only be one
// input Node, and it must be the first Node added.
//
// As with Add, errors are stored and can be retrieved with *Network.Error().
func (net *Network) AddInput(name string, dims ...int) *Node {
	if net.input != nil {
		net.setError(errors.Errorf("Network already has an input Node (%v)", net.input))
		return nil
	}

	n := net.newNode(name, dims)
	if n == nil {
		return nil
	}

	net.input = n
	return n
}

// Add adds a new Node to the Network, with the given name, Operator, and input. The dimensions of
// the Node are implied by its Operator. Each Node may only be the input to a single other Node.
//
// If Add encounters an error, it will return nil and store the error, which will also be returned
// by Finalize. Once an error has been stored, all further calls to Add return nil.
func (net *Network) Add(name string, op Operator, input *Node) *Node {
	if net.err != nil {
		return nil
	} else if op == nil {
		net.setError(NilArgError{"Operator for Node " + name})
		return nil
	} else if input == nil {
		net.setError(NilArgError{"Input to Node " + name})
		return nil
	} else if input.host != net {
		net.setError(errors.Errorf("Input %v to %q does not belong to the same Network", input, name))
		return nil
	} else if input.output != nil {
		net.setError(errors.Errorf("Input %v to %q already outputs to %v", input, name, input.output))
		return nil
	}

	var dims []int
	lyr, isLayer := op.(Layer)
	elem, isElem := op.(Elementwise)
	switch {
	case isLayer:
		var err error
		if dims, err = lyr.OutputDims(input.Dims()); err != nil {
			net.setError(errors.Wrapf(err, "Failed to get output dimensions of %q (operator %s)\n", name, op.TypeString()))
			return nil
		}
	case isElem:
		dims = input.Dims()
	default:
		net.setError(errors.Wrapf(ErrUnknownOperator, "Can't add %q", name))
		return nil
	}

	n := net.newNode(name, dims)
	if n == nil {
		return nil
	}

	n.op = op
	n.input = input
	input.output = n

	if isLayer {
		n.lyr = lyr
		n.adj, _ = op.(Adjustable)
	} else {
		n.elem = elem
	}

	return n
}

// Opt sets the Optimizer of the Node. Opt is only valid for Nodes with Adjustable Operators; for
// others, it will set the error of the Network. Opt returns the Node to allow chaining.
func (n *Node) Opt(o Optimizer) *Node {
	if n == nil {
		return nil
	} else if o == nil {
		n.host.setError(NilArgError{"Optimizer"})
	} else if n.adj == nil {
		n.host.setError(errors.Errorf("Can't set Optimizer of %v, Operator is not Adjustable", n))
	} else {
		n.opt = o
	}

	return n
}

// Init sets the Initializer of the Node. Like Opt, it is only valid for Adjustable Operators.
func (n *Node) Init(i Initializer) *Node {
	if n == nil {
		return nil
	} else if i == nil {
		n.host.setError(NilArgError{"Initializer"})
	} else if n.adj == nil {
		n.host.setError(errors.Errorf("Can't set Initializer of %v, Operator is not Adjustable", n))
	} else {
		n.init = i
	}

	return n
}

// AddHP adds a HyperParameter to the Node, overriding the Network-wide value of the same name.
func (n *Node) AddHP(name string, hp HyperParameter) *Node {
	if n == nil {
		return nil
	} else if hp == nil {
		n.host.setError(NilArgError{"HyperParameter " + name})
		return n
	}

	if n.hyperParams == nil {
		n.hyperParams = make(map[string]HyperParameter)
	}
	n.hyperParams[name] = hp
	return n
}

// AddHP adds a HyperParameter to the Network, used by every Node that does not set its own.
func (net *Network) AddHP(name string, hp HyperParameter) *Network {
	net.init()
	if hp == nil {
		net.setError(NilArgError{"HyperParameter " + name})
		return net
	}

	net.hyperParams[name] = hp
	return net
}

// DefaultInit sets the Initializer used by every Adjustable Node that does not set its own.
func (net *Network) DefaultInit(i Initializer) *Network {
	net.defaultInit = i
	return net
}

// DefaultOpt sets the constructor for the Optimizer used by every Adjustable Node that does not
// set its own. A constructor is required, rather than an Optimizer, because each Node needs a
// separate one.
func (net *Network) DefaultOpt(f func() Optimizer) *Network {
	net.defaultOpt = f
	return net
}

// Finalize completes the structure of the Network, with the given CostFunction and output Node.
// It returns any error encountered during construction. All Nodes must affect the output.
//
// Finalize initializes the weights of every Adjustable Operator.
func (net *Network) Finalize(cf CostFunction, output *Node) error {
	if net.err != nil {
		return net.err
	} else if net.stat >= finalized {
		return ErrNetFinalized
	} else if cf == nil {
		return NilArgError{"CostFunction"}
	} else if output == nil {
		return NilArgError{"Output Node"}
	} else if net.input == nil {
		return errors.Errorf("Network has no input Node")
	} else if output == net.input {
		return errors.Errorf("Output Node %v is also the input", output)
	} else if output.host != net {
		return errors.Errorf("Output Node %v does not belong to this Network", output)
	}

	// Check all nodes affect outputs
	for _, n := range net.nodesByID {
		if n != output && n.output == nil {
			return errors.Errorf("Node %v does not affect Network outputs", n)
		}
	}

	for _, n := range net.nodesByID {
		if n.adj == nil {
			continue
		}

		if n.opt == nil {
			if net.defaultOpt == nil {
				return errors.Errorf("Node %v has no Optimizer and there is no default", n)
			}
			n.opt = net.defaultOpt()
		}

		if n.init == nil {
			if net.defaultInit == nil {
				return errors.Errorf("Node %v has no Initializer and there is no default", n)
			}
			n.init = net.defaultInit
		}

		if err := n.adj.Init(n); err != nil {
			return errors.Wrapf(err, "Initializing Operator of Node %v failed\n", n)
		}

		n.grad = make([]float64, len(n.adj.Weights()))
	}

	net.cf = cf
	net.output = output
	net.stat = finalized
	return nil
}
