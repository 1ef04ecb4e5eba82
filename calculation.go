package panelnet

import (
	"math"

	"github.com/pkg/errors"
)

type status int8

const (
	initialized status = iota // 0
	finalized                 // 1
	evaluated                 // 2
	deltas                    // 3
)

// resize makes sure that the slices of the Node can hold the given number of samples. Existing
// allocations are reused where possible.
func (n *Node) resize(batch int, withDeltas bool) {
	size := n.Size()

	if cap(n.values) >= batch {
		n.values = n.values[:batch]
	} else {
		n.values = append(n.values[:cap(n.values)], make([][]float64, batch-cap(n.values))...)
	}
	for b := range n.values {
		if n.values[b] == nil {
			n.values[b] = make([]float64, size)
		}
	}

	if !withDeltas {
		return
	}

	if cap(n.deltas) >= batch {
		n.deltas = n.deltas[:batch]
	} else {
		n.deltas = append(n.deltas[:cap(n.deltas)], make([][]float64, batch-cap(n.deltas))...)
	}
	for b := range n.deltas {
		if n.deltas[b] == nil {
			n.deltas[b] = make([]float64, size)
		}
	}
}

// zeroDeltas sets all of the deltas of the Node to zero.
func (n *Node) zeroDeltas() {
	for _, ds := range n.deltas {
		for i := range ds {
			ds[i] = 0
		}
	}
}

// evaluate updates the values of the Node from its input. The input must already be evaluated.
func (n *Node) evaluate() error {
	if n.elem != nil {
		ins := n.input.values
		for b := range n.values {
			for i, v := range ins[b] {
				n.values[b][i] = n.elem.Value(v)
			}
		}

		return nil
	}

	if err := n.lyr.Evaluate(n, n.values); err != nil {
		return errors.Wrapf(err, "Operator evaluation failed\n")
	}

	return nil
}

// evaluate sets the inputs of the Network to the given values and evaluates every Node. If
// training is true, deltas are allocated as well.
func (net *Network) evaluate(inputs [][]float64, training bool) error {
	if net.stat < finalized {
		return ErrNetNotFinalized
	} else if len(inputs) == 0 {
		return errors.Errorf("Can't evaluate Network with no inputs")
	}

	size := net.input.Size()
	for b := range inputs {
		if len(inputs[b]) != size {
			return SizeMismatchError{size, len(inputs[b]), "inputs"}
		}
	}

	net.training = training

	// the input Node shares the given slices; they are never written to
	net.input.values = inputs

	for _, n := range net.nodesByID[1:] {
		n.resize(len(inputs), training)
		if err := n.evaluate(); err != nil {
			return errors.Wrapf(err, "Evaluating Node %v failed\n", n)
		}
	}

	net.stat = evaluated
	return nil
}

// cost calculates the weighted cost of the batch and sets the deltas of the output Node. The
// cost of each sample is multiplied by its weight, and the total is divided by the size of the
// batch.
func (net *Network) cost(targets [][]float64, weights []float64) (float64, error) {
	if net.stat < evaluated {
		return 0, errors.Errorf("Network must be evaluated before getting cost")
	}

	out := net.output
	batch := float64(len(out.values))

	var total float64
	for b, outs := range out.values {
		if len(targets[b]) != len(outs) {
			return 0, SizeMismatchError{len(outs), len(targets[b]), "targets"}
		}

		w := weights[b]
		total += w * net.cf.Cost(outs, targets[b])

		ds := out.deltas[b]
		net.cf.Deriv(outs, targets[b], ds)
		for i := range ds {
			ds[i] *= w / batch
		}
	}

	total /= batch
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0, ErrNonFiniteCost
	}

	return total, nil
}

// inputDeltas calculates the deltas of the input to this Node, through the Node.
func (n *Node) inputDeltas() error {
	in := n.input
	in.zeroDeltas()

	if n.elem != nil {
		for b, ds := range n.deltas {
			for i, d := range ds {
				in.deltas[b][i] += d * n.elem.Deriv(n.values[b][i])
			}
		}

		return nil
	}

	if err := n.lyr.InputDeltas(n, in.deltas); err != nil {
		return errors.Wrapf(err, "Operator input delta calculation failed\n")
	}

	return nil
}

// getDeltas calculates the deltas of all of the Nodes in the Network, working back from the output,
// and the gradients of each Adjustable Node. The output deltas must already be set by cost().
func (net *Network) getDeltas() error {
	if net.stat < evaluated {
		return errors.Errorf("Network must be evaluated before getting deltas")
	}

	for i := len(net.nodesByID) - 1; i >= 1; i-- {
		n := net.nodesByID[i]

		if n.adj != nil {
			for w := range n.grad {
				n.grad[w] = 0
			}

			if err := n.adj.Grad(n, n.grad); err != nil {
				return errors.Wrapf(err, "Getting gradients of Node %v failed\n", n)
			}
		}

		// the input Node doesn't need deltas
		if n.input.IsInput() {
			continue
		}

		if err := n.inputDeltas(); err != nil {
			return errors.Wrapf(err, "Getting input deltas of Node %v failed\n", n)
		}
	}

	net.stat = deltas
	return nil
}

// adjust runs the Optimizer of each Adjustable Node with the gradients from getDeltas.
func (net *Network) adjust() error {
	if net.stat < deltas {
		return errors.Errorf("Network must have deltas calculated before adjusting weights")
	}

	for _, n := range net.nodesByID {
		if n.adj == nil {
			continue
		}

		ws := n.adj.Weights()
		grad := func(i int) float64 { return n.grad[i] }
		add := func(i int, v float64) { ws[i] += v }

		if err := n.opt.Run(n, len(ws), grad, add); err != nil {
			return errors.Wrapf(err, "Optimizer of Node %v failed\n", n)
		}
	}

	net.stat = finalized
	return nil
}
