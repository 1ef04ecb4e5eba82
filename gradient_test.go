package panelnet_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharnoff/panelnet"
	"github.com/sharnoff/panelnet/initializers"
	"github.com/sharnoff/panelnet/operators"
	"github.com/sharnoff/panelnet/optimizers"
)

// shift adds a weight to each of its inputs. Placed directly after the input, its gradients are
// the input deltas of the Node that follows it.
type shift struct {
	Ws []float64
}

func (s *shift) TypeString() string { return "shift" }

func (s *shift) OutputDims(input []int) ([]int, error) { return input, nil }

func (s *shift) Init(n *panelnet.Node) error {
	s.Ws = make([]float64, n.Size())
	return nil
}

func (s *shift) Weights() []float64 { return s.Ws }

func (s *shift) Evaluate(n *panelnet.Node, values [][]float64) error {
	for b, in := range n.InputValues() {
		for i := range in {
			values[b][i] = in[i] + s.Ws[i]
		}
	}
	return nil
}

func (s *shift) InputDeltas(n *panelnet.Node, add [][]float64) error {
	for b, ds := range n.Deltas() {
		for i, d := range ds {
			add[b][i] += d
		}
	}
	return nil
}

func (s *shift) Grad(n *panelnet.Node, grad []float64) error {
	for _, ds := range n.Deltas() {
		for i, d := range ds {
			grad[i] += d
		}
	}
	return nil
}

// linearCost uses the targets as coefficients, so that every output has a distinct effect on
// the cost
type linearCost struct{}

func (linearCost) TypeString() string { return "linear" }

func (linearCost) Cost(outs, targets []float64) float64 {
	var sum float64
	for i := range outs {
		sum += outs[i] * targets[i]
	}
	return sum
}

func (linearCost) Deriv(outs, targets, ds []float64) {
	copy(ds, targets)
}

// distinct returns values spread across [-0.5, 0.5) with no two closer than 1/size, so that
// small changes never alter which value is largest.
func distinct(r *rand.Rand, size int) []float64 {
	vs := make([]float64, size)
	for i, p := range r.Perm(size) {
		vs[i] = float64(p)/float64(size) - 0.5
	}
	return vs
}

const eps float64 = 1e-6

func checkGradients(t *testing.T, op panelnet.Operator, batch int, dims ...int) {
	t.Helper()

	r := rand.New(rand.NewSource(1))

	net := new(panelnet.Network)
	in := net.AddInput("input", dims...)
	s := net.Add("shift", &shift{}, in)
	out := net.Add("op", op, s)

	net.DefaultOpt(func() panelnet.Optimizer { return optimizers.GradientDescent() })
	net.DefaultInit(initializers.GlorotUniform().Rand(r))
	require.NoError(t, net.Finalize(linearCost{}, out))

	data := make([]panelnet.Datum, batch)
	for b := range data {
		data[b].Inputs = distinct(r, net.InputSize())
		data[b].Outputs = make([]float64, net.OutputSize())
		for i := range data[b].Outputs {
			data[b].Outputs[i] = 2*r.Float64() - 1
		}
		data[b].Weight = 0.5 + r.Float64()
	}

	_, grads, err := net.BatchGradients(data)
	require.NoError(t, err)

	for _, n := range net.Nodes() {
		ws := n.Weights()
		if ws == nil {
			continue
		}

		g := grads[n.Name()]
		require.Len(t, g, len(ws))

		for i := range ws {
			orig := ws[i]

			ws[i] = orig + eps
			plus, err := net.BatchCost(data)
			require.NoError(t, err)

			ws[i] = orig - eps
			minus, err := net.BatchCost(data)
			require.NoError(t, err)

			ws[i] = orig

			numeric := (plus - minus) / (2 * eps)
			assert.InDelta(t, numeric, g[i], 1e-6+1e-4*math.Abs(numeric), "%s: weight %d", n.Name(), i)
		}
	}
}

func TestConv2DGradients(t *testing.T) {
	checkGradients(t, operators.Conv2D(2, 3), 2, 5, 4, 2)
}

func TestConv2DReLUGradients(t *testing.T) {
	checkGradients(t, operators.Conv2D(3, 3).Activation(operators.ReLU()), 3, 6, 5, 2)
}

func TestBatchNormGradients(t *testing.T) {
	checkGradients(t, operators.BatchNorm(), 3, 4, 3, 2)
}

func TestMaxPoolGradients(t *testing.T) {
	checkGradients(t, operators.MaxPool(2), 2, 5, 4, 2)
}

func TestGlobalMaxPoolGradients(t *testing.T) {
	checkGradients(t, operators.GlobalMaxPool(), 2, 3, 3, 2)
}

func TestNeuronsGradients(t *testing.T) {
	checkGradients(t, operators.Neurons(3), 4, 5)
}

func TestElementwiseGradients(t *testing.T) {
	for _, name := range []string{"logistic", "tanh", "relu", "leaky-relu", "elu"} {
		t.Run(name, func(t *testing.T) {
			act, err := operators.Activation(name)
			require.NoError(t, err)
			checkGradients(t, act, 2, 7)
		})
	}
}
