package model

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharnoff/panelnet"
	"github.com/sharnoff/panelnet/internal/config"
)

func standardOptions() Options {
	return Options{
		Dims:   []int{101, 101, 3},
		Layout: Standard,
		Model:  config.Default().Model,
	}
}

// a network small enough to train quickly
func tinyOptions() Options {
	m := config.Default().Model
	m.LearningRate = 0.01
	return Options{
		Dims:   []int{8, 8, 1},
		Layout: Layout{Filters: []int{4, 4}, PoolAfter: []int{1}, Kernel: 3, Pool: 2},
		Model:  m,
	}
}

func TestBuildStandard(t *testing.T) {
	net, err := Build(standardOptions(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	dims := make(map[string][]int)
	for _, n := range net.Nodes() {
		dims[n.Name()] = n.Dims()
	}

	assert.Equal(t, []int{99, 99, 32}, dims["conv1"])
	assert.Equal(t, []int{95, 95, 128}, dims["norm3"])
	assert.Equal(t, []int{47, 47, 128}, dims["pool3"])
	assert.Equal(t, []int{21, 21, 128}, dims["pool5"])
	assert.Equal(t, []int{17, 17, 128}, dims["norm7"])
	assert.Equal(t, []int{128}, dims["global-pool"])
	assert.Equal(t, []int{1}, dims["output"])

	convs := 896 + 18496 + 73856 + 73792 + 73856 + 73792 + 73856
	norms := 2 * (32 + 64 + 128 + 64 + 128 + 64 + 128)
	assert.Equal(t, convs+norms+129, net.NumParams())
	assert.Equal(t, 101*101*3, net.InputSize())
	assert.Equal(t, 1, net.OutputSize())
}

func TestBuildErrors(t *testing.T) {
	cases := map[string]func(*Options){
		"activation":  func(o *Options) { o.Model.Activation = "swish" },
		"initializer": func(o *Options) { o.Model.Initializer = "zeros" },
		"optimizer":   func(o *Options) { o.Model.Optimizer = "rmsprop" },
		"no blocks":   func(o *Options) { o.Layout.Filters = nil },
		"too small":   func(o *Options) { o.Dims = []int{2, 2, 1} },
	}

	for name, change := range cases {
		t.Run(name, func(t *testing.T) {
			opts := tinyOptions()
			change(&opts)
			_, err := Build(opts, rand.New(rand.NewSource(1)))
			assert.Error(t, err)
		})
	}
}

func TestLearningRateSchedule(t *testing.T) {
	opts := tinyOptions()
	assert.Equal(t, 0.01, opts.learningRate().Value(1000))

	opts.Model.Schedule = []config.Step{{Iter: 10, LearningRate: 0.001}}
	lr := opts.learningRate()
	assert.Equal(t, 0.01, lr.Value(9))
	assert.Equal(t, 0.001, lr.Value(10))
}

// bright images are labelled 1, dark ones 0
func samples(n int) ([][]float64, []int) {
	r := rand.New(rand.NewSource(3))

	var inputs [][]float64
	var labels []int
	for i := 0; i < n; i++ {
		label := i % 2
		img := make([]float64, 64)
		for j := range img {
			img[j] = r.Float64()*0.3 + 0.6*float64(label)
		}

		inputs = append(inputs, img)
		labels = append(labels, label)
	}

	return inputs, labels
}

func TestFitPredict(t *testing.T) {
	net, err := Build(tinyOptions(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	var results []panelnet.Result
	c := &CNN{
		Net:      net,
		Training: Training{Epochs: 2, BatchSize: 4, Shuffle: true, ClassWeights: [2]float64{0.5, 0.5}},
		Rand:     rand.New(rand.NewSource(2)),
		Update:   func(r panelnet.Result) { results = append(results, r) },
	}

	inputs, labels := samples(10)
	require.NoError(t, c.Fit(context.Background(), inputs, labels))

	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Epoch)
	assert.Equal(t, 3, results[0].Iteration)
	assert.Equal(t, 2, results[1].Epoch)
	assert.Equal(t, 6, results[1].Iteration)
	assert.Equal(t, 6, net.Iter())

	probs, err := c.Predict(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, probs, 10)
	for _, p := range probs {
		assert.True(t, p > 0 && p < 1, "probability %v", p)
	}

	// predicting does not change the network
	again, err := c.Predict(context.Background(), inputs)
	require.NoError(t, err)
	assert.Equal(t, probs, again)
}

func TestFitErrors(t *testing.T) {
	net, err := Build(tinyOptions(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	c := &CNN{Net: net, Training: Training{Epochs: 1, BatchSize: 4, ClassWeights: [2]float64{1, 1}}}

	inputs, labels := samples(4)
	assert.Equal(t, ErrTooFewSamples, c.Fit(context.Background(), nil, nil))
	assert.Error(t, c.Fit(context.Background(), inputs, labels[:3]))
	assert.Error(t, c.Fit(context.Background(), inputs, []int{0, 1, 2, 0}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.True(t, errors.Is(c.Fit(ctx, inputs, labels), context.Canceled))
	_, err = c.Predict(ctx, inputs)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEvaluate(t *testing.T) {
	net, err := Build(tinyOptions(), rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	c := &CNN{Net: net, Training: Training{Epochs: 1, BatchSize: 3, ClassWeights: [2]float64{1, 1}}}

	inputs, labels := samples(8)
	probs, err := c.Predict(context.Background(), inputs)
	require.NoError(t, err)

	var wantCost, wantCorrect float64
	for i, p := range probs {
		y := float64(labels[i])
		wantCost -= y*math.Log(p) + (1-y)*math.Log(1-p)
		if (p >= 0.5) == (labels[i] == 1) {
			wantCorrect++
		}
	}

	var e Evaluator = c
	cost, accuracy, err := e.Evaluate(context.Background(), inputs, labels)
	require.NoError(t, err)
	assert.InDelta(t, wantCost/8, cost, 1e-9)
	assert.InDelta(t, wantCorrect/8, accuracy, 1e-12)

	// class weights scale the cost of each sample
	c.Training.ClassWeights = [2]float64{2, 2}
	doubled, _, err := c.Evaluate(context.Background(), inputs, labels)
	require.NoError(t, err)
	assert.InDelta(t, 2*cost, doubled, 1e-9)

	_, _, err = c.Evaluate(context.Background(), nil, nil)
	assert.Equal(t, ErrTooFewSamples, err)
}

func TestFactory(t *testing.T) {
	weights := func(c Classifier) []float64 {
		return c.(*CNN).Net.Nodes()[1].Weights()
	}

	f := Factory(tinyOptions(), Training{Epochs: 1, BatchSize: 4}, 7)
	a, err := f()
	require.NoError(t, err)
	b, err := f()
	require.NoError(t, err)
	assert.NotEqual(t, weights(a), weights(b))

	// the same seed gives the same sequence of networks
	again, err := Factory(tinyOptions(), Training{Epochs: 1, BatchSize: 4}, 7)()
	require.NoError(t, err)
	assert.Equal(t, weights(a), weights(again))
}

func TestSummary(t *testing.T) {
	net, err := Build(tinyOptions(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	s := Summary(net)
	lines := strings.Split(strings.TrimSpace(s), "\n")

	// header, input, 2 conv + 2 norm, pool, global pool, dense, output, total
	require.Len(t, lines, 11)
	assert.True(t, strings.HasPrefix(lines[0], "NODE"))
	assert.Contains(t, lines[2], "conv2d+relu")
	assert.Contains(t, s, "total params: ")
}

func TestSeed(t *testing.T) {
	assert.Equal(t, int64(4), Seed(4))
	assert.NotEqual(t, int64(0), Seed(0))
}
