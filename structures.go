package panelnet

import (
	"github.com/sharnoff/panelnet/utils"
)

// Network is the main structure that is used to learn to map inputs to outputs. A Network is more
// of a containing structure than it actually stores information; the weights are stored by the
// Operators of its Nodes.
type Network struct {
	input, output *Node

	// a list of all of the Nodes, stored such that their id is their index in this slice. Because
	// every Node must be added after its input, this is also the order of evaluation.
	nodesByID []*Node

	// used to check that names are unique
	names map[string]bool

	// whether or not the network should panic when it encounters an error
	panicErrors bool

	// the first error encountered during construction
	err error

	cf CostFunction

	defaultInit Initializer
	defaultOpt  func() Optimizer
	hyperParams map[string]HyperParameter

	// whether or not values are being calculated for training. Operators can access this through
	// *Node.Training()
	training bool

	// the number of batches trained on in the current call to Train
	iter int

	// longIter corresponds to the iteration of the network as a whole, not just within the current
	// training run.
	longIter int

	stat status
}

// Nodes are the fundamental building blocks with which the Network is built. Each Node has an
// Operator that determines how it computes its values from those that it receives as input.
type Node struct {
	// The name that will be used to print this node. Must be unique within the Network.
	name string

	// used for order identification of which nodes were added first
	id int

	host *Network

	// nil for the input Node
	input *Node

	// nil for the output Node
	output *Node

	// the root operator of the Node. nil for the input Node
	op Operator

	// type castings of Operator: (nil if not used)
	lyr  Layer
	elem Elementwise
	adj  Adjustable

	opt  Optimizer
	init Initializer

	// these are exclusively for the Optimizer
	hyperParams map[string]HyperParameter

	// the shape of the values produced by the Node
	shape *utils.MultiDim

	// the values (essentially outputs) of the Node, indexed by [sample][value]
	values [][]float64

	// the derivative of each value w.r.t. the total cost of the current batch, stored in the same
	// ordering as values. Not allocated for the input Node.
	deltas [][]float64

	// gradients of the weights of Adjustable Operators, reused between batches
	grad []float64
}
