package operators

import (
	"github.com/pkg/errors"
	"github.com/sharnoff/panelnet"
	"github.com/sharnoff/panelnet/utils"
)

// conv is a two-dimensional convolution with 'valid' padding and a stride of 1. Its input must
// have dimensions (width, height, channels), and it produces (width-size+1, height-size+1,
// filters).
type conv struct {
	Filters int
	Size    int

	// applied to the sum of each filter, if not nil
	act panelnet.Elementwise

	in, out *utils.MultiDim

	// weights are stored as [filter][channel][ky][kx]. Biases are appended to the end, one per
	// filter.
	Ws []float64
}

// Conv2D returns a convolutional Operator with the given number of square filters of the given
// size, which implements panelnet.Adjustable. Each filter has its own bias.
//
// An activation function can be applied to the output with Activation, which avoids storing the
// values before activation as a separate Node.
func Conv2D(filters, size int) *conv {
	return &conv{Filters: filters, Size: size}
}

// Activation sets the activation function applied to the outputs of the convolution. It returns
// the Operator to allow chaining.
func (c *conv) Activation(e panelnet.Elementwise) *conv {
	c.act = e
	return c
}

func (c *conv) TypeString() string {
	if c.act != nil {
		return "conv2d+" + c.act.TypeString()
	}

	return "conv2d"
}

func (c *conv) OutputDims(input []int) ([]int, error) {
	if c.Filters < 1 {
		return nil, errors.Errorf("Number of filters must be ≥ 1 (got %d)", c.Filters)
	} else if c.Size < 1 {
		return nil, errors.Errorf("Filter size must be ≥ 1 (got %d)", c.Size)
	} else if len(input) != 3 {
		return nil, errors.Errorf("Input must have 3 dimensions (width, height, channels), has %d", len(input))
	} else if input[0] < c.Size || input[1] < c.Size {
		return nil, errors.Errorf("Input (%dx%d) is smaller than filter (%dx%d)", input[0], input[1], c.Size, c.Size)
	}

	dims := []int{input[0] - c.Size + 1, input[1] - c.Size + 1, c.Filters}

	c.in = utils.NewMultiDim(input)
	c.out = utils.NewMultiDim(dims)
	return dims, nil
}

// numWeights returns the number of weights, excluding biases
func (c *conv) numWeights() int {
	return c.Filters * c.in.Dim(2) * c.Size * c.Size
}

func (c *conv) weight(f, ch, ky, kx int) int {
	return ((f*c.in.Dim(2)+ch)*c.Size+ky)*c.Size + kx
}

func (c *conv) Init(n *panelnet.Node) error {
	area := c.Size * c.Size
	c.Ws = make([]float64, c.numWeights()+c.Filters)
	n.Initializer().Set(c.Ws[:c.numWeights()], area*c.in.Dim(2), area*c.Filters)
	return nil
}

func (c *conv) Weights() []float64 {
	return c.Ws
}

func (c *conv) Evaluate(n *panelnet.Node, values [][]float64) error {
	ins := n.InputValues()

	inW, inH, channels := c.in.Dim(0), c.in.Dim(1), c.in.Dim(2)
	outW, outH := c.out.Dim(0), c.out.Dim(1)
	plane := outW * outH
	biases := c.Ws[c.numWeights():]

	calculate := func(b int) {
		in, out := ins[b], values[b]

		for f := 0; f < c.Filters; f++ {
			vs := out[f*plane : (f+1)*plane]
			for i := range vs {
				vs[i] = biases[f]
			}

			for ch := 0; ch < channels; ch++ {
				chIn := in[ch*inW*inH : (ch+1)*inW*inH]

				for ky := 0; ky < c.Size; ky++ {
					for kx := 0; kx < c.Size; kx++ {
						w := c.Ws[c.weight(f, ch, ky, kx)]

						for y := 0; y < outH; y++ {
							src := chIn[(y+ky)*inW+kx:][:outW]
							dst := vs[y*outW:][:outW]
							for x := range dst {
								dst[x] += w * src[x]
							}
						}
					}
				}
			}

			if c.act != nil {
				for i := range vs {
					vs[i] = c.act.Value(vs[i])
				}
			}
		}
	}

	opsPerThread, threadsPerCPU := 1, 1
	utils.MultiThread(0, len(values), calculate, opsPerThread, threadsPerCPU)

	return nil
}

// filterDeltas returns the deltas of the sums of the given filter for sample b, before
// activation. buf is used if the deltas need to be changed by the activation.
func (c *conv) filterDeltas(n *panelnet.Node, b, f int, buf []float64) []float64 {
	plane := c.out.Dim(0) * c.out.Dim(1)
	ds := n.Deltas()[b][f*plane : (f+1)*plane]
	if c.act == nil {
		return ds
	}

	vs := n.Values()[b][f*plane : (f+1)*plane]
	for i := range buf {
		buf[i] = ds[i] * c.act.Deriv(vs[i])
	}

	return buf
}

func (c *conv) InputDeltas(n *panelnet.Node, add [][]float64) error {
	inW, inH, channels := c.in.Dim(0), c.in.Dim(1), c.in.Dim(2)
	outW, outH := c.out.Dim(0), c.out.Dim(1)

	sendDeltas := func(b int) {
		buf := make([]float64, outW*outH)

		for f := 0; f < c.Filters; f++ {
			ds := c.filterDeltas(n, b, f, buf)

			for ch := 0; ch < channels; ch++ {
				chAdd := add[b][ch*inW*inH : (ch+1)*inW*inH]

				for ky := 0; ky < c.Size; ky++ {
					for kx := 0; kx < c.Size; kx++ {
						w := c.Ws[c.weight(f, ch, ky, kx)]

						for y := 0; y < outH; y++ {
							src := ds[y*outW:][:outW]
							dst := chAdd[(y+ky)*inW+kx:][:outW]
							for x := range src {
								dst[x] += w * src[x]
							}
						}
					}
				}
			}
		}
	}

	opsPerThread, threadsPerCPU := 1, 1
	utils.MultiThread(0, len(add), sendDeltas, opsPerThread, threadsPerCPU)

	return nil
}

func (c *conv) Grad(n *panelnet.Node, grad []float64) error {
	ins := n.InputValues()

	inW, inH, channels := c.in.Dim(0), c.in.Dim(1), c.in.Dim(2)
	outW, outH := c.out.Dim(0), c.out.Dim(1)
	biases := grad[c.numWeights():]

	// each filter only writes to its own gradients
	filterGrad := func(f int) {
		buf := make([]float64, outW*outH)

		for b := range ins {
			ds := c.filterDeltas(n, b, f, buf)

			for _, d := range ds {
				biases[f] += d
			}

			for ch := 0; ch < channels; ch++ {
				chIn := ins[b][ch*inW*inH : (ch+1)*inW*inH]

				for ky := 0; ky < c.Size; ky++ {
					for kx := 0; kx < c.Size; kx++ {
						var sum float64
						for y := 0; y < outH; y++ {
							src := chIn[(y+ky)*inW+kx:][:outW]
							row := ds[y*outW:][:outW]
							for x := range row {
								sum += row[x] * src[x]
							}
						}

						grad[c.weight(f, ch, ky, kx)] += sum
					}
				}
			}
		}
	}

	opsPerThread, threadsPerCPU := 1, 1
	utils.MultiThread(0, c.Filters, filterGrad, opsPerThread, threadsPerCPU)

	return nil
}
