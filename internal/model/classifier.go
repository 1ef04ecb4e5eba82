package model

import (
	"context"
	"fmt"
	log "log/slog"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/sharnoff/panelnet"
)

var ErrTooFewSamples = errors.New("Too few samples to fit")

// Classifier is a binary classifier: Fit trains it on labelled inputs, and Predict gives the
// probability that each input has label 1.
type Classifier interface {
	Fit(ctx context.Context, inputs [][]float64, labels []int) error
	Predict(ctx context.Context, inputs [][]float64) ([]float64, error)
}

// Training are the settings for a single call to Fit
type Training struct {
	Epochs    int
	BatchSize int
	Shuffle   bool

	// ClassWeights scales the cost of samples with label 0 and 1, respectively
	ClassWeights [2]float64
}

// CNN is a Classifier backed by a network from Build
type CNN struct {
	Net      *panelnet.Network
	Training Training

	// Rand is used to shuffle the training data. If nil, the global source is used.
	Rand *rand.Rand

	// Update, if not nil, is given the result of every epoch
	Update func(panelnet.Result)
}

// Evaluator is implemented by Classifiers that can report their cost and accuracy on labelled
// samples
type Evaluator interface {
	Evaluate(ctx context.Context, inputs [][]float64, labels []int) (cost, accuracy float64, err error)
}

// labelled pairs inputs with their labels, weighted by class
func (c *CNN) labelled(inputs [][]float64, labels []int) ([]panelnet.Datum, error) {
	if len(inputs) != len(labels) {
		return nil, errors.Errorf("Got %d inputs but %d labels", len(inputs), len(labels))
	} else if len(inputs) == 0 {
		return nil, ErrTooFewSamples
	}

	data := make([]panelnet.Datum, len(inputs))
	for i := range inputs {
		if labels[i] != 0 && labels[i] != 1 {
			return nil, errors.Errorf("Sample %d has label %d, must be 0 or 1", i, labels[i])
		}

		data[i] = panelnet.Datum{
			Inputs:  inputs[i],
			Outputs: []float64{float64(labels[i])},
			Weight:  c.Training.ClassWeights[labels[i]],
		}
	}

	return data, nil
}

// Fit trains the network for the configured number of epochs. Cancelling ctx stops training at
// the end of the current epoch. Fit may be called repeatedly; each call continues from the
// current weights.
func (c *CNN) Fit(ctx context.Context, inputs [][]float64, labels []int) error {
	data, err := c.labelled(inputs, labels)
	if err != nil {
		return err
	}

	var iter int
	for epoch := 1; epoch <= c.Training.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := c.Net.Train(panelnet.TrainArgs{
			TrainData: panelnet.Data(data),
			Epochs:    1,
			BatchSize: c.Training.BatchSize,
			Shuffle:   c.Training.Shuffle,
			Rand:      c.Rand,
			IsCorrect: panelnet.CorrectRound,
			Update: func(r panelnet.Result) {
				iter += r.Iteration
				r.Epoch, r.Iteration = epoch, iter
				if c.Update != nil {
					c.Update(r)
				}
			},
		})
		if err != nil {
			return errors.Wrapf(err, "Training failed in epoch %d\n", epoch)
		}
	}

	return nil
}

// Predict returns the output of the network for each input, evaluated in batches of
// Training.BatchSize.
func (c *CNN) Predict(ctx context.Context, inputs [][]float64) ([]float64, error) {
	size := c.Training.BatchSize
	if size < 1 {
		size = len(inputs)
	}

	probs := make([]float64, 0, len(inputs))
	for start := 0; start < len(inputs); start += size {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + size
		if end > len(inputs) {
			end = len(inputs)
		}

		outs, err := c.Net.Predict(inputs[start:end])
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to predict samples [%d, %d)\n", start, end)
		}

		for _, o := range outs {
			probs = append(probs, o[0])
		}
	}

	return probs, nil
}

// Evaluate returns the class-weighted mean cost of the network on the given samples and the
// fraction it classifies correctly at 0.5.
func (c *CNN) Evaluate(ctx context.Context, inputs [][]float64, labels []int) (float64, float64, error) {
	data, err := c.labelled(inputs, labels)
	if err != nil {
		return 0, 0, err
	} else if err = ctx.Err(); err != nil {
		return 0, 0, err
	}

	size := c.Training.BatchSize
	if size < 1 {
		size = len(data)
	}

	cost, correct, err := c.Net.Test(panelnet.Data(data), size, panelnet.CorrectRound)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "Failed to evaluate %d samples\n", len(data))
	}
	return cost, correct, nil
}

// LogEpoch is an Update function that logs the cost and accuracy of each epoch
func LogEpoch(r panelnet.Result) {
	log.Info(fmt.Sprintf("epoch %d (iteration %d): cost %.4f, accuracy %.4f", r.Epoch, r.Iteration, r.Cost, r.Correct))
}

// Factory returns a function that builds a new CNN on every call. The n-th network is initialized
// from seed+n, so that every call gives different starting weights.
func Factory(opts Options, training Training, seed int64) func() (Classifier, error) {
	var n int64
	return func() (Classifier, error) {
		src := rand.New(rand.NewSource(seed + n))
		n++

		net, err := Build(opts, src)
		if err != nil {
			return nil, err
		}

		return &CNN{
			Net:      net,
			Training: training,
			Rand:     src,
			Update:   LogEpoch,
		}, nil
	}
}
