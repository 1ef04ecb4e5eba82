package operators

import (
	"math"

	"github.com/pkg/errors"
	"github.com/sharnoff/panelnet"
	"github.com/sharnoff/panelnet/utils"
)

const (
	defaultMomentum float64 = 0.99
	defaultEpsilon  float64 = 1e-3
)

// batchNorm normalizes each channel (the last dimension of its input) to zero mean and unit
// variance, then scales and shifts it with learned parameters.
//
// While training, the statistics of the current batch are used, and the moving averages are
// updated. Otherwise, the moving averages are used.
type batchNorm struct {
	Momentum float64
	Epsilon  float64

	// gamma for each channel, then beta for each channel
	Ws []float64

	MovingMean []float64
	MovingVar  []float64

	channels int
	// the number of values per channel, per sample
	plane int

	// from the most recent training batch, for backpropagation
	invStd []float64
	xhat   [][]float64
}

// BatchNorm returns a batch normalization Operator, which implements panelnet.Adjustable. The
// momentum of the moving averages defaults to 0.99, and epsilon to 0.001.
func BatchNorm() *batchNorm {
	return &batchNorm{
		Momentum: defaultMomentum,
		Epsilon:  defaultEpsilon,
	}
}

func (t *batchNorm) TypeString() string {
	return "batch-norm"
}

func (t *batchNorm) OutputDims(input []int) ([]int, error) {
	if t.Momentum < 0 || t.Momentum >= 1 {
		return nil, errors.Errorf("Momentum must be in [0, 1) (got %v)", t.Momentum)
	} else if t.Epsilon <= 0 {
		return nil, errors.Errorf("Epsilon must be > 0 (got %v)", t.Epsilon)
	}

	shape := utils.NewMultiDim(input)
	t.channels = input[len(input)-1]
	t.plane = shape.Size() / t.channels

	return input, nil
}

func (t *batchNorm) Init(n *panelnet.Node) error {
	t.Ws = make([]float64, 2*t.channels)
	for c := 0; c < t.channels; c++ {
		t.Ws[c] = 1
	}

	t.MovingMean = make([]float64, t.channels)
	t.MovingVar = make([]float64, t.channels)
	for c := range t.MovingVar {
		t.MovingVar[c] = 1
	}

	t.invStd = make([]float64, t.channels)
	return nil
}

func (t *batchNorm) Weights() []float64 {
	return t.Ws
}

func (t *batchNorm) gamma(c int) float64 {
	return t.Ws[c]
}

func (t *batchNorm) beta(c int) float64 {
	return t.Ws[t.channels+c]
}

func (t *batchNorm) Evaluate(n *panelnet.Node, values [][]float64) error {
	ins := n.InputValues()

	if !n.Training() {
		f := func(c int) {
			scale := t.gamma(c) / math.Sqrt(t.MovingVar[c]+t.Epsilon)
			shift := t.beta(c) - t.MovingMean[c]*scale

			for b := range ins {
				in := ins[b][c*t.plane : (c+1)*t.plane]
				out := values[b][c*t.plane : (c+1)*t.plane]
				for i := range in {
					out[i] = in[i]*scale + shift
				}
			}
		}

		utils.MultiThread(0, t.channels, f, 1, 1)
		return nil
	}

	if len(t.xhat) != len(ins) {
		t.xhat = make([][]float64, len(ins))
		for b := range t.xhat {
			t.xhat[b] = make([]float64, n.Size())
		}
	}

	count := float64(len(ins) * t.plane)

	f := func(c int) {
		var mean float64
		for b := range ins {
			for _, v := range ins[b][c*t.plane : (c+1)*t.plane] {
				mean += v
			}
		}
		mean /= count

		var variance float64
		for b := range ins {
			for _, v := range ins[b][c*t.plane : (c+1)*t.plane] {
				variance += (v - mean) * (v - mean)
			}
		}
		variance /= count

		t.invStd[c] = 1 / math.Sqrt(variance+t.Epsilon)

		for b := range ins {
			in := ins[b][c*t.plane : (c+1)*t.plane]
			xhat := t.xhat[b][c*t.plane : (c+1)*t.plane]
			out := values[b][c*t.plane : (c+1)*t.plane]

			for i := range in {
				xhat[i] = (in[i] - mean) * t.invStd[c]
				out[i] = t.gamma(c)*xhat[i] + t.beta(c)
			}
		}

		t.MovingMean[c] = t.Momentum*t.MovingMean[c] + (1-t.Momentum)*mean
		t.MovingVar[c] = t.Momentum*t.MovingVar[c] + (1-t.Momentum)*variance
	}

	utils.MultiThread(0, t.channels, f, 1, 1)
	return nil
}

func (t *batchNorm) InputDeltas(n *panelnet.Node, add [][]float64) error {
	ds := n.Deltas()
	count := float64(len(ds) * t.plane)

	f := func(c int) {
		g := t.gamma(c)

		// sums of dxhat and dxhat*xhat across the batch
		var sum, dot float64
		for b := range ds {
			d := ds[b][c*t.plane : (c+1)*t.plane]
			xhat := t.xhat[b][c*t.plane : (c+1)*t.plane]
			for i := range d {
				sum += g * d[i]
				dot += g * d[i] * xhat[i]
			}
		}

		scale := t.invStd[c] / count
		for b := range ds {
			d := ds[b][c*t.plane : (c+1)*t.plane]
			xhat := t.xhat[b][c*t.plane : (c+1)*t.plane]
			a := add[b][c*t.plane : (c+1)*t.plane]
			for i := range d {
				a[i] += scale * (count*g*d[i] - sum - xhat[i]*dot)
			}
		}
	}

	utils.MultiThread(0, t.channels, f, 1, 1)
	return nil
}

func (t *batchNorm) Grad(n *panelnet.Node, grad []float64) error {
	ds := n.Deltas()

	for c := 0; c < t.channels; c++ {
		for b := range ds {
			d := ds[b][c*t.plane : (c+1)*t.plane]
			xhat := t.xhat[b][c*t.plane : (c+1)*t.plane]
			for i := range d {
				grad[c] += d[i] * xhat[i]
				grad[t.channels+c] += d[i]
			}
		}
	}

	return nil
}
