package panelnet

// Operator is the base interface for all layers and activation functions. Every Operator must
// additionally implement either Layer or Elementwise; Adjustable is an extension of Layer.
type Operator interface {
	// TypeString returns the string corresponding to the type of the Operator. For example: the
	// Operator "Logistic" should return "logistic", or something to that effect.
	TypeString() string
}

// Layer is an Operator that is not elementwise: it may change the shape of its input, and it is
// handed the entire batch at once.
type Layer interface {
	Operator

	// OutputDims returns the dimensions of the values produced from an input with the given
	// dimensions. It is called exactly once, while the Node is being added, and may store any
	// information it needs about the input shape.
	OutputDims(input []int) ([]int, error)

	// Evaluate should set the values of the Node to reflect its inputs and weights (if any).
	// values is indexed by [sample][value] and is already of the correct size. Inputs are
	// available through *Node.InputValues(), and whether or not the Network is training through
	// *Node.Training().
	Evaluate(*Node, [][]float64) error

	// InputDeltas should add to the given deltas how each input value affects the total cost,
	// through the values of the host Node. add is indexed by [sample][input value] and has been
	// zeroed beforehand. The deltas of the Node itself are available through *Node.Deltas().
	InputDeltas(*Node, [][]float64) error
}

// Elementwise is an Operator that maps each input value to exactly one output value, with the
// same dimensions.
type Elementwise interface {
	Operator

	// Value returns the output for a single input value
	Value(in float64) float64

	// Deriv returns the derivative of the function, expressed in terms of its output. Expressing
	// it in terms of the output allows Elementwise Operators to be fused into Layers that only
	// keep their activated values.
	Deriv(out float64) float64
}

// Adjustable is a Layer with weights that are changed during training.
type Adjustable interface {
	Layer

	// Init allocates the weights of the Operator and sets their initial values, typically with
	// *Node.Initializer(). It is called exactly once, during Finalize.
	Init(*Node) error

	// Weights returns the weights of the Operator. Optimizers adjust the returned slice in
	// place, so it must not be a copy.
	Weights() []float64

	// Grad should add to grad the derivative of the total cost of the batch with respect to each
	// weight, using the deltas of the Node. grad has the same length as Weights() and has been
	// zeroed beforehand.
	Grad(*Node, []float64) error
}

// Optimizer determines how the gradients of an Adjustable Operator are turned into changes of
// its weights. Each Adjustable Node gets its own Optimizer, so Optimizers may keep state.
type Optimizer interface {
	// Run is called once per batch to suggest changes to each weight, given: the Node, the
	// number of weights, the gradient at each weight, and a function to add to each weight.
	//
	// Adding to weights is not thread-safe for repeated indexes.
	Run(n *Node, size int, grad func(int) float64, add func(int, float64)) error

	// TypeString returns the string corresponding to the type of the Optimizer.
	// For example: the Optimizer "Adam" should return "adam", or something to that effect.
	TypeString() string
}

// CostFunction is the measure of error that the Network is trained to reduce. The costs of
// individual samples are multiplied by their weights and averaged across the batch by the
// Network; CostFunctions only deal with single samples.
type CostFunction interface {
	TypeString() string

	// Cost returns the cost of a single sample, given the outputs of the Network and the target
	// values. outs and targets will always have the same length.
	Cost(outs, targets []float64) float64

	// Deriv should set ds to the derivative of Cost with respect to each output value.
	Deriv(outs, targets, ds []float64)
}

// Initializer dictates how the weights in an Operator will be set, given the slice of weights to
// fill and the fan-in and fan-out of the Operator.
type Initializer interface {
	Set(ws []float64, fanIn, fanOut int)
}

// HyperParameter is a value used by Optimizers that may change over the course of training. The
// iteration given is the number of batches the Network has been trained on.
type HyperParameter interface {
	TypeString() string
	Value(iter int) float64
}
