// Package model builds the convolutional network that classifies panel images, and wraps it in
// the Classifier used for cross-validation.
package model

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/sharnoff/panelnet"
	"github.com/sharnoff/panelnet/costfuncs"
	"github.com/sharnoff/panelnet/hyperparams"
	"github.com/sharnoff/panelnet/initializers"
	"github.com/sharnoff/panelnet/internal/config"
	"github.com/sharnoff/panelnet/operators"
	"github.com/sharnoff/panelnet/optimizers"
)

// Layout is the shape of the stack of convolution blocks. Each block is a convolution followed by
// batch normalization.
type Layout struct {
	// Filters gives the number of filters of each block, in order
	Filters []int

	// PoolAfter lists the (1-indexed) blocks that are followed by max pooling
	PoolAfter []int

	Kernel int
	Pool   int
}

// Standard is the layout of the panel classifier: 32→64→128, pool, 64→128, pool, 64→128, with
// 3x3 kernels and 2x2 pooling.
var Standard = Layout{
	Filters:   []int{32, 64, 128, 64, 128, 64, 128},
	PoolAfter: []int{3, 5},
	Kernel:    3,
	Pool:      2,
}

// Options are the settings for building a network
type Options struct {
	// Dims are the dimensions of a single input image: width, height, channels
	Dims   []int
	Layout Layout
	Model  config.Model
}

func (o Options) poolsAfter(block int) bool {
	for _, b := range o.Layout.PoolAfter {
		if b == block {
			return true
		}
	}
	return false
}

func (o Options) learningRate() panelnet.HyperParameter {
	if len(o.Model.Schedule) == 0 {
		return hyperparams.Constant(o.Model.LearningRate)
	}

	s := hyperparams.Step(o.Model.LearningRate)
	for _, st := range o.Model.Schedule {
		s.Add(st.Iter, st.LearningRate)
	}
	return s
}

// Build returns a finalized network with freshly initialized weights, drawn from src. The network
// ends in a single logistic output and is trained with binary cross-entropy.
func Build(opts Options, src *rand.Rand) (*panelnet.Network, error) {
	if len(opts.Layout.Filters) == 0 {
		return nil, errors.Errorf("Layout must have at least one convolution block")
	}

	act, err := operators.Activation(opts.Model.Activation)
	if err != nil {
		return nil, err
	}
	initializer, err := initializers.ByName(opts.Model.Initializer, src)
	if err != nil {
		return nil, err
	}
	opt, err := optimizers.ByName(opts.Model.Optimizer)
	if err != nil {
		return nil, err
	}

	net := new(panelnet.Network)
	l := net.AddInput("input", opts.Dims...)

	for i, f := range opts.Layout.Filters {
		block := i + 1
		l = net.Add(fmt.Sprintf("conv%d", block), operators.Conv2D(f, opts.Layout.Kernel).Activation(act), l)
		l = net.Add(fmt.Sprintf("norm%d", block), operators.BatchNorm(), l)

		if opts.poolsAfter(block) {
			l = net.Add(fmt.Sprintf("pool%d", block), operators.MaxPool(opts.Layout.Pool), l)
		}
	}

	l = net.Add("global-pool", operators.GlobalMaxPool(), l)
	l = net.Add("dense", operators.Neurons(1), l)
	out := net.Add("output", operators.Logistic(), l)

	net.DefaultInit(initializer).DefaultOpt(opt)
	net.AddHP("learning-rate", opts.learningRate())

	if err := net.Finalize(costfuncs.BinaryCrossEntropy(), out); err != nil {
		return nil, errors.Wrapf(err, "Failed to build network\n")
	}

	return net, nil
}

// Seed returns seed, or a seed from the clock if it is zero
func Seed(seed int64) int64 {
	if seed == 0 {
		return time.Now().UnixNano()
	}
	return seed
}
