package operators

import (
	"github.com/pkg/errors"
	"github.com/sharnoff/panelnet"
	"github.com/sharnoff/panelnet/utils"
)

// neurons is a fully-connected layer. Each output value is the weighted sum of every input value,
// plus a bias.
type neurons struct {
	Size int

	numInputs int

	// weights are stored by the output value they correspond to, with the input index within.
	// Biases are appended to the end.
	Ws []float64
}

// Neurons returns a fully-connected Operator with the given number of outputs, which implements
// panelnet.Adjustable. The input may have any dimensions; it is treated as flat.
func Neurons(size int) *neurons {
	return &neurons{Size: size}
}

func (t *neurons) TypeString() string {
	return "neurons"
}

func (t *neurons) OutputDims(input []int) ([]int, error) {
	if t.Size < 1 {
		return nil, errors.Errorf("Number of outputs must be ≥ 1 (got %d)", t.Size)
	}

	t.numInputs = utils.NewMultiDim(input).Size()
	return []int{t.Size}, nil
}

func (t *neurons) Init(n *panelnet.Node) error {
	t.Ws = make([]float64, (t.numInputs+1)*t.Size)
	n.Initializer().Set(t.Ws[:t.numInputs*t.Size], t.numInputs, t.Size)
	return nil
}

func (t *neurons) Weights() []float64 {
	return t.Ws
}

func (t *neurons) biases() []float64 {
	return t.Ws[t.numInputs*t.Size:]
}

func (t *neurons) Evaluate(n *panelnet.Node, values [][]float64) error {
	ins := n.InputValues()
	biases := t.biases()

	calculateValues := func(b int) {
		for v := range values[b] {
			ws := t.Ws[v*t.numInputs : (v+1)*t.numInputs]

			sum := biases[v]
			for i, in := range ins[b] {
				sum += ws[i] * in
			}

			values[b][v] = sum
		}
	}

	opsPerThread, threadsPerCPU := 1, 1
	utils.MultiThread(0, len(values), calculateValues, opsPerThread, threadsPerCPU)

	return nil
}

func (t *neurons) InputDeltas(n *panelnet.Node, add [][]float64) error {
	ds := n.Deltas()

	sendDeltas := func(b int) {
		for v, d := range ds[b] {
			ws := t.Ws[v*t.numInputs : (v+1)*t.numInputs]
			for i := range add[b] {
				add[b][i] += d * ws[i]
			}
		}
	}

	opsPerThread, threadsPerCPU := 1, 1
	utils.MultiThread(0, len(add), sendDeltas, opsPerThread, threadsPerCPU)

	return nil
}

func (t *neurons) Grad(n *panelnet.Node, grad []float64) error {
	ins, ds := n.InputValues(), n.Deltas()
	biases := grad[t.numInputs*t.Size:]

	for b := range ds {
		for v, d := range ds[b] {
			g := grad[v*t.numInputs : (v+1)*t.numInputs]
			for i, in := range ins[b] {
				g[i] += d * in
			}

			biases[v] += d
		}
	}

	return nil
}
