package panelnet

import (
	"fmt"
)

// String offers a universal method of gaining information about a Node without printing all of its
// fields. String returns the Node's name in quotes. If given a Node that is nil, String will
// return:
//	<nil>
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}

	return fmt.Sprintf("%q", n.name)
}

// Name returns the name of the given Node.
func (n *Node) Name() string {
	return n.name
}

// ID returns the non-negative integer given to the Node as a member of its Network. IDs are unique
// within Networks.
func (n *Node) ID() int {
	return n.id
}

// TypeString returns the TypeString of the Node's Operator, or "input" for the input Node.
func (n *Node) TypeString() string {
	if n.op == nil {
		return "input"
	}

	return n.op.TypeString()
}

// IsInput returns whether or not the Node is the input Node. The input Node has no Operator.
func (n *Node) IsInput() bool {
	return n.input == nil
}

// Size returns the number of values the Node produces, per sample.
func (n *Node) Size() int {
	return n.shape.Size()
}

// Dims returns the dimensions of the values that the Node produces. The returned slice is a copy,
// to allow changes to be made.
func (n *Node) Dims() []int {
	d := make([]int, len(n.shape.Dims))
	copy(d, n.shape.Dims)
	return d
}

// InputDims returns the dimensions of the input to the Node. InputDims will panic if called on
// the input Node.
func (n *Node) InputDims() []int {
	return n.input.Dims()
}

// Training returns whether or not the values currently being calculated are for training, as
// opposed to inference. Operators that behave differently between the two (such as batch
// normalization) should check this.
func (n *Node) Training() bool {
	return n.host.training
}

// HP returns the values of the given HyperParameter at the current iteration. If an unknown
// HyperParameter is requested, HP will panic with ErrNoHP.
func (n *Node) HP(name string) float64 {
	var hp HyperParameter
	if hp = n.hyperParams[name]; hp == nil {
		if hp = n.host.hyperParams[name]; hp == nil {
			panic(ErrNoHP)
		}
	}

	return hp.Value(n.host.longIter)
}

// Initializer returns the Initializer that the Operator of the Node should use for its weights.
func (n *Node) Initializer() Initializer {
	return n.init
}

// Optimizer returns the Optimizer of the Node, or nil if it does not have one.
func (n *Node) Optimizer() Optimizer {
	return n.opt
}

// NumParams returns the number of weights of the Node's Operator, or zero if it is not
// Adjustable. Before the Network is finalized, NumParams always returns zero.
func (n *Node) NumParams() int {
	if n.adj == nil || n.host.stat < finalized {
		return 0
	}

	return len(n.adj.Weights())
}

// BatchSize returns the number of samples the Node currently has values for.
func (n *Node) BatchSize() int {
	return len(n.values)
}

// Values returns the values of the Node, indexed by [sample][value]. The returned slices are NOT
// copies.
func (n *Node) Values() [][]float64 {
	return n.values
}

// InputValues returns the values of the input to the Node, in the same format as Values. It will
// panic if called on the input Node.
func (n *Node) InputValues() [][]float64 {
	return n.input.values
}

// Deltas returns the derivative of each value w.r.t. the total cost of the current batch, in the
// same format as Values. The returned slices are NOT copies.
func (n *Node) Deltas() [][]float64 {
	return n.deltas
}

// Weights returns the weights of the Node's Operator, or nil if it is not Adjustable. The
// returned slice is NOT a copy.
func (n *Node) Weights() []float64 {
	if n.adj == nil {
		return nil
	}

	return n.adj.Weights()
}
