package panelnet_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharnoff/panelnet"
	"github.com/sharnoff/panelnet/costfuncs"
	"github.com/sharnoff/panelnet/hyperparams"
	"github.com/sharnoff/panelnet/initializers"
	"github.com/sharnoff/panelnet/operators"
	"github.com/sharnoff/panelnet/optimizers"
)

func logisticRegression(t *testing.T, seed int64, inputs int) (*panelnet.Network, *panelnet.Node) {
	t.Helper()

	net := new(panelnet.Network)
	in := net.AddInput("input", inputs)
	l := net.Add("dense", operators.Neurons(1), in)
	out := net.Add("output", operators.Logistic(), l)

	net.DefaultOpt(func() panelnet.Optimizer { return optimizers.Adam() })
	net.DefaultInit(initializers.GlorotUniform().Rand(rand.New(rand.NewSource(seed))))
	net.AddHP("learning-rate", hyperparams.Constant(0.1))
	require.NoError(t, net.Finalize(costfuncs.BinaryCrossEntropy(), out))

	return net, l
}

func TestConstructionErrors(t *testing.T) {
	t.Run("duplicate name", func(t *testing.T) {
		net := new(panelnet.Network)
		in := net.AddInput("input", 3)
		net.Add("input", operators.ReLU(), in)
		assert.Error(t, net.Error())
	})

	t.Run("empty name", func(t *testing.T) {
		net := new(panelnet.Network)
		net.AddInput("", 3)
		assert.Error(t, net.Error())
	})

	t.Run("bad dimension", func(t *testing.T) {
		net := new(panelnet.Network)
		net.AddInput("input", 3, 0)
		assert.Error(t, net.Error())
	})

	t.Run("panic errors", func(t *testing.T) {
		net := new(panelnet.Network).PanicErrors()
		assert.Panics(t, func() { net.AddInput("", 3) })
	})

	t.Run("errors are kept through chained calls", func(t *testing.T) {
		net := new(panelnet.Network)
		in := net.AddInput("input", 2, 2, 1)
		c := net.Add("conv", operators.Conv2D(1, 3), in)
		assert.Nil(t, c)
		assert.Nil(t, net.Add("relu", operators.ReLU(), c))

		err := net.Finalize(costfuncs.BinaryCrossEntropy(), c)
		assert.Error(t, err)
		assert.Equal(t, net.Error(), err)
	})

	t.Run("node that does not reach the output", func(t *testing.T) {
		net := new(panelnet.Network)
		in := net.AddInput("input", 3)
		a := net.Add("a", operators.ReLU(), in)
		net.Add("b", operators.ReLU(), a)

		assert.Error(t, net.Finalize(costfuncs.BinaryCrossEntropy(), a))
	})

	t.Run("node used as input twice", func(t *testing.T) {
		net := new(panelnet.Network)
		in := net.AddInput("input", 3)
		net.Add("a", operators.ReLU(), in)
		net.Add("b", operators.ReLU(), in)
		assert.Error(t, net.Error())
	})

	t.Run("no default optimizer", func(t *testing.T) {
		net := new(panelnet.Network)
		in := net.AddInput("input", 3)
		out := net.Add("dense", operators.Neurons(1), in)
		net.DefaultInit(initializers.GlorotUniform())
		assert.Error(t, net.Finalize(costfuncs.BinaryCrossEntropy(), out))
	})
}

func TestShapes(t *testing.T) {
	net := new(panelnet.Network)
	in := net.AddInput("input", 101, 101, 3)
	c := net.Add("conv", operators.Conv2D(32, 3), in)
	p := net.Add("pool", operators.MaxPool(2), c)
	g := net.Add("global", operators.GlobalMaxPool(), p)
	require.NoError(t, net.Error())

	assert.Equal(t, []int{99, 99, 32}, c.Dims())
	assert.Equal(t, []int{49, 49, 32}, p.Dims())
	assert.Equal(t, []int{32}, g.Dims())
}

func TestTrainSeparable(t *testing.T) {
	net, _ := logisticRegression(t, 1, 2)

	r := rand.New(rand.NewSource(2))
	var data []panelnet.Datum
	for i := 0; i < 64; i++ {
		x, y := 2*r.Float64()-1, 2*r.Float64()-1
		var label float64
		if x+y > 0 {
			label = 1
		}
		data = append(data, panelnet.Datum{Inputs: []float64{x, y}, Outputs: []float64{label}})
	}

	var results []panelnet.Result
	err := net.Train(panelnet.TrainArgs{
		TrainData: panelnet.Data(data),
		Epochs:    60,
		BatchSize: 8,
		Shuffle:   true,
		Rand:      r,
		IsCorrect: panelnet.CorrectRound,
		Update:    func(res panelnet.Result) { results = append(results, res) },
	})
	require.NoError(t, err)

	require.Len(t, results, 60)
	assert.Equal(t, 60*8, net.Iter())
	assert.Less(t, results[59].Cost, results[0].Cost)

	_, correct, err := net.Test(panelnet.Data(data), 16, panelnet.CorrectRound)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, correct, 0.9)
}

func TestSampleWeights(t *testing.T) {
	net, _ := logisticRegression(t, 3, 2)

	d := panelnet.Datum{Inputs: []float64{0.3, -0.2}, Outputs: []float64{1}}
	unweighted, err := net.BatchCost([]panelnet.Datum{d})
	require.NoError(t, err)

	d.Weight = 2
	weighted, err := net.BatchCost([]panelnet.Datum{d})
	require.NoError(t, err)

	assert.InDelta(t, 2*unweighted, weighted, 1e-12)
}

func TestPredictDoesNotTrain(t *testing.T) {
	net, dense := logisticRegression(t, 4, 2)
	before := append([]float64(nil), dense.Weights()...)

	outs, err := net.Predict([][]float64{{1, 2}, {-1, 0.5}})
	require.NoError(t, err)
	require.Len(t, outs, 2)
	for _, o := range outs {
		require.Len(t, o, 1)
		assert.True(t, o[0] > 0 && o[0] < 1)
	}

	assert.Equal(t, before, dense.Weights())

	_, err = net.Predict([][]float64{{1, 2, 3}})
	var mismatch panelnet.SizeMismatchError
	assert.True(t, errors.As(err, &mismatch))
}

func TestTrainArgs(t *testing.T) {
	net, _ := logisticRegression(t, 5, 1)
	data := panelnet.Data([]panelnet.Datum{{Inputs: []float64{1}, Outputs: []float64{1}}})

	assert.Equal(t, panelnet.ErrInvalidBatchSize, net.Train(panelnet.TrainArgs{TrainData: data, Epochs: 1}))
	assert.Equal(t, panelnet.ErrInvalidEpochs, net.Train(panelnet.TrainArgs{TrainData: data, BatchSize: 1}))
	assert.Equal(t, panelnet.ErrNoData, net.Train(panelnet.TrainArgs{TrainData: panelnet.Data(nil), Epochs: 1, BatchSize: 1}))

	notFinalized := new(panelnet.Network)
	assert.Equal(t, panelnet.ErrNetNotFinalized, notFinalized.Train(panelnet.TrainArgs{TrainData: data, Epochs: 1, BatchSize: 1}))
}

func TestNonFiniteCost(t *testing.T) {
	net, _ := logisticRegression(t, 6, 1)
	d := panelnet.Datum{Inputs: []float64{math.NaN()}, Outputs: []float64{1}}

	_, err := net.BatchCost([]panelnet.Datum{d})
	assert.Equal(t, panelnet.ErrNonFiniteCost, err)
}

func TestCorrectRound(t *testing.T) {
	assert.True(t, panelnet.CorrectRound([]float64{0.5}, []float64{1}))
	assert.True(t, panelnet.CorrectRound([]float64{0.49}, []float64{0}))
	assert.False(t, panelnet.CorrectRound([]float64{0.2, 0.9}, []float64{0, 0}))
}

func TestNumParams(t *testing.T) {
	net := new(panelnet.Network)
	in := net.AddInput("input", 5, 5, 2)
	c := net.Add("conv", operators.Conv2D(4, 3), in)
	b := net.Add("norm", operators.BatchNorm(), c)
	g := net.Add("global", operators.GlobalMaxPool(), b)
	out := net.Add("dense", operators.Neurons(1), g)

	net.DefaultOpt(func() panelnet.Optimizer { return optimizers.Adam() })
	net.DefaultInit(initializers.GlorotUniform())
	require.NoError(t, net.Finalize(costfuncs.BinaryCrossEntropy(), out))

	assert.Equal(t, 4*2*3*3+4, c.NumParams())
	assert.Equal(t, 2*4, b.NumParams())
	assert.Equal(t, 0, g.NumParams())
	assert.Equal(t, 4+1, out.NumParams())
	assert.Equal(t, 76+8+5, net.NumParams())
}
