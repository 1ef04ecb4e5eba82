package operators

import (
	"github.com/pkg/errors"
	"github.com/sharnoff/panelnet"
	"github.com/sharnoff/panelnet/utils"
)

// ****************************************
// Max pooling
// ****************************************

type maxPool struct {
	Size int

	in, out *utils.MultiDim
}

// MaxPool returns a pooling Operator that takes the maximum of each non-overlapping size×size
// window of every channel. Its input must have dimensions (width, height, channels); any rows or
// columns that do not fill a window are dropped.
func MaxPool(size int) *maxPool {
	return &maxPool{Size: size}
}

func (p *maxPool) TypeString() string {
	return "max-pool"
}

func (p *maxPool) OutputDims(input []int) ([]int, error) {
	if p.Size < 1 {
		return nil, errors.Errorf("Pool size must be ≥ 1 (got %d)", p.Size)
	} else if len(input) != 3 {
		return nil, errors.Errorf("Input must have 3 dimensions (width, height, channels), has %d", len(input))
	} else if input[0] < p.Size || input[1] < p.Size {
		return nil, errors.Errorf("Input (%dx%d) is smaller than pool (%dx%d)", input[0], input[1], p.Size, p.Size)
	}

	dims := []int{input[0] / p.Size, input[1] / p.Size, input[2]}

	p.in = utils.NewMultiDim(input)
	p.out = utils.NewMultiDim(dims)
	return dims, nil
}

// argmax returns the index in the input of the largest value in the window of the given output.
// Ties go to the first value, scanning rows then columns.
func (p *maxPool) argmax(in []float64, x, y, c int) int {
	best := p.in.Index([]int{x * p.Size, y * p.Size, c})
	for dy := 0; dy < p.Size; dy++ {
		for dx := 0; dx < p.Size; dx++ {
			i := p.in.Index([]int{x*p.Size + dx, y*p.Size + dy, c})
			if in[i] > in[best] {
				best = i
			}
		}
	}

	return best
}

func (p *maxPool) Evaluate(n *panelnet.Node, values [][]float64) error {
	ins := n.InputValues()

	f := func(b int) {
		for c := 0; c < p.out.Dim(2); c++ {
			for y := 0; y < p.out.Dim(1); y++ {
				for x := 0; x < p.out.Dim(0); x++ {
					values[b][p.out.Index([]int{x, y, c})] = ins[b][p.argmax(ins[b], x, y, c)]
				}
			}
		}
	}

	utils.MultiThread(0, len(values), f, 1, 1)
	return nil
}

func (p *maxPool) InputDeltas(n *panelnet.Node, add [][]float64) error {
	ins, ds := n.InputValues(), n.Deltas()

	f := func(b int) {
		for c := 0; c < p.out.Dim(2); c++ {
			for y := 0; y < p.out.Dim(1); y++ {
				for x := 0; x < p.out.Dim(0); x++ {
					add[b][p.argmax(ins[b], x, y, c)] += ds[b][p.out.Index([]int{x, y, c})]
				}
			}
		}
	}

	utils.MultiThread(0, len(add), f, 1, 1)
	return nil
}

// ****************************************
// Global max pooling
// ****************************************

type globalMaxPool struct {
	channels int
	plane    int
}

// GlobalMaxPool returns an Operator that takes the maximum over all values of each channel (the
// last dimension of its input), producing a single value per channel.
func GlobalMaxPool() *globalMaxPool {
	return new(globalMaxPool)
}

func (p *globalMaxPool) TypeString() string {
	return "global-max-pool"
}

func (p *globalMaxPool) OutputDims(input []int) ([]int, error) {
	if len(input) < 2 {
		return nil, errors.Errorf("Input must have at least 2 dimensions, has %d", len(input))
	}

	p.channels = input[len(input)-1]
	p.plane = utils.NewMultiDim(input).Size() / p.channels
	return []int{p.channels}, nil
}

func (p *globalMaxPool) argmax(in []float64, c int) int {
	best := c * p.plane
	for i := best + 1; i < (c+1)*p.plane; i++ {
		if in[i] > in[best] {
			best = i
		}
	}

	return best
}

func (p *globalMaxPool) Evaluate(n *panelnet.Node, values [][]float64) error {
	ins := n.InputValues()
	for b := range values {
		for c := 0; c < p.channels; c++ {
			values[b][c] = ins[b][p.argmax(ins[b], c)]
		}
	}

	return nil
}

func (p *globalMaxPool) InputDeltas(n *panelnet.Node, add [][]float64) error {
	ins, ds := n.InputValues(), n.Deltas()
	for b := range add {
		for c := 0; c < p.channels; c++ {
			add[b][p.argmax(ins[b], c)] += ds[b][c]
		}
	}

	return nil
}
