package panelnet

import (
	"math/rand"

	"github.com/pkg/errors"
)

// Datum is a simple wrapper used to send training samples to the Network
type Datum struct {
	// Inputs is the input of the network. It must have the same size as that of the network's
	// inputs.
	Inputs []float64

	// Outputs is the expected output of the network, given the input.
	Outputs []float64

	// Weight scales the contribution of the Datum to the cost. A Weight of zero is treated as 1,
	// so that unweighted data need not set it.
	Weight float64
}

func (d Datum) weight() float64 {
	if d.Weight == 0 {
		return 1
	}
	return d.Weight
}

// Fits indicates whether or not a given Datum's dimensions match those of the Network, allowing it
// to be used for training or testing.
func (d Datum) Fits(net *Network) bool {
	return len(d.Inputs) == net.InputSize() && len(d.Outputs) == net.OutputSize()
}

// DataSupplier is the primary method of providing datasets to the Network, either for training or
// testing.
type DataSupplier interface {
	// Len returns the number of Datum available
	Len() int

	// Get returns the Datum at the given index, in the range [0, Len())
	Get(int) (Datum, error)
}

type sliceSupplier []Datum

func (s sliceSupplier) Len() int {
	return len(s)
}

func (s sliceSupplier) Get(i int) (Datum, error) {
	return s[i], nil
}

// Data converts a slice of Datum to a DataSupplier, which can be used for training or testing.
//
// N.B.: Data does not check if the data fit a certain network; that will be done during
// training/testing
func Data(ds []Datum) DataSupplier {
	return sliceSupplier(ds)
}

// A wrapper for sending back the progress of the training or testing
type Result struct {
	// The epoch the result is from, starting at 1. Zero for results from Test.
	Epoch int

	// The total number of batches trained on in the current call to Train
	Iteration int

	// Average cost, from the Network's CostFunction
	Cost float64

	// The fraction correct, as per IsCorrect() from TrainArgs
	// 0 → 1
	Correct float64

	// The result is either from a test or a status update
	IsTest bool
}

type TrainArgs struct {
	// TrainData is the source of data to train on. Each epoch visits every Datum exactly once.
	TrainData DataSupplier

	// Epochs is the number of passes over TrainData
	Epochs int

	// BatchSize is the number of samples whose gradients are averaged for each change to the
	// weights. The final batch of each epoch may be smaller.
	BatchSize int

	// Shuffle indicates whether or not the order of TrainData should be shuffled at the start of
	// each epoch.
	Shuffle bool

	// Rand is the source of randomness for shuffling. If nil, the global source is used.
	Rand *rand.Rand

	// IsCorrect returns whether or not the network outputs are correct, given the target outputs.
	// In order, it is given: outputs; targets. If nil, Correct will always be zero.
	//
	// The length of both provided slices is guaranteed to be equal.
	IsCorrect func([]float64, []float64) bool

	// Update is how status updates are returned, once at the end of each epoch. Update may be
	// left nil.
	Update func(Result)
}

// batchOf collects the given indexes of the DataSupplier into slices suitable for the Network.
func (net *Network) batchOf(data DataSupplier, indexes []int) (ins, targets [][]float64, weights []float64, err error) {
	ins = make([][]float64, len(indexes))
	targets = make([][]float64, len(indexes))
	weights = make([]float64, len(indexes))

	for b, i := range indexes {
		d, err := data.Get(i)
		if err != nil {
			return nil, nil, nil, errors.Wrapf(err, "Failed to get Datum %d\n", i)
		} else if !d.Fits(net) {
			return nil, nil, nil, errors.Errorf("Datum %d does not fit Network", i)
		}

		ins[b], targets[b], weights[b] = d.Inputs, d.Outputs, d.weight()
	}

	return ins, targets, weights, nil
}

// Train trains the Network on the given data for the given number of epochs.
func (net *Network) Train(args TrainArgs) error {
	// handle error cases and set defaults
	{
		if net.stat < finalized {
			return ErrNetNotFinalized
		} else if args.TrainData == nil {
			return NilArgError{"TrainData"}
		} else if args.TrainData.Len() == 0 {
			return ErrNoData
		} else if args.BatchSize < 1 {
			return ErrInvalidBatchSize
		} else if args.Epochs < 1 {
			return ErrInvalidEpochs
		}

		if args.Update == nil {
			args.Update = func(r Result) {}
		}

		if args.IsCorrect == nil {
			args.IsCorrect = func(a, b []float64) bool { return false }
		}
	}

	shuffle := rand.Shuffle
	if args.Rand != nil {
		shuffle = args.Rand.Shuffle
	}

	order := make([]int, args.TrainData.Len())
	for i := range order {
		order[i] = i
	}

	net.iter = 0
	for epoch := 1; epoch <= args.Epochs; epoch++ {
		if args.Shuffle {
			shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		var epochCost, epochCorrect float64
		for start := 0; start < len(order); start += args.BatchSize {
			end := start + args.BatchSize
			if end > len(order) {
				end = len(order)
			}

			ins, targets, weights, err := net.batchOf(args.TrainData, order[start:end])
			if err != nil {
				return errors.Wrapf(err, "Failed to get training data on iteration %d\n", net.iter)
			}

			if err = net.evaluate(ins, true); err != nil {
				return errors.Wrapf(err, "Failed to evaluate Network on iteration %d\n", net.iter)
			}

			cost, err := net.cost(targets, weights)
			if err != nil {
				return errors.Wrapf(err, "Failed to get cost on iteration %d\n", net.iter)
			}

			for b, outs := range net.output.values {
				if args.IsCorrect(outs, targets[b]) {
					epochCorrect++
				}
			}

			if err = net.getDeltas(); err != nil {
				return errors.Wrapf(err, "Failed to get network deltas on iteration %d\n", net.iter)
			}

			if err = net.adjust(); err != nil {
				return errors.Wrapf(err, "Failed to adjust network on iteration %d\n", net.iter)
			}

			epochCost += cost * float64(end-start)
			net.iter++
			net.longIter++
		}

		args.Update(Result{
			Epoch:     epoch,
			Iteration: net.iter,
			Cost:      epochCost / float64(len(order)),
			Correct:   epochCorrect / float64(len(order)),
		})
	}

	net.training = false
	net.stat = finalized
	return nil
}

// Predict returns the outputs of the Network for each of the given inputs, without training. The
// outputs are copies. Predict evaluates all of the inputs at once; callers with large datasets
// should split them into batches.
func (net *Network) Predict(inputs [][]float64) ([][]float64, error) {
	if err := net.evaluate(inputs, false); err != nil {
		return nil, err
	}

	outs := make([][]float64, len(inputs))
	for b, vs := range net.output.values {
		outs[b] = make([]float64, len(vs))
		copy(outs[b], vs)
	}

	net.stat = finalized
	return outs, nil
}

// GetOutputs returns a copy of the Network's output values for a single set of inputs.
func (net *Network) GetOutputs(inputs []float64) ([]float64, error) {
	outs, err := net.Predict([][]float64{inputs})
	if err != nil {
		return nil, err
	}

	return outs[0], nil
}

// Test returns the average cost and fraction correct of the Network on the given data, evaluated
// in batches of the given size. The weights of the data are used for the cost.
func (net *Network) Test(data DataSupplier, batchSize int, isCorrect func([]float64, []float64) bool) (float64, float64, error) {
	if data == nil {
		return 0, 0, NilArgError{"DataSupplier"}
	} else if data.Len() == 0 {
		return 0, 0, ErrNoData
	} else if batchSize < 1 {
		return 0, 0, ErrInvalidBatchSize
	}

	var avgCost, avgCorrect float64
	for start := 0; start < data.Len(); start += batchSize {
		end := start + batchSize
		if end > data.Len() {
			end = data.Len()
		}

		indexes := make([]int, end-start)
		for i := range indexes {
			indexes[i] = start + i
		}

		ins, targets, weights, err := net.batchOf(data, indexes)
		if err != nil {
			return 0, 0, errors.Wrapf(err, "Failed to get test samples [%d, %d)\n", start, end)
		}

		if err = net.evaluate(ins, false); err != nil {
			return 0, 0, errors.Wrapf(err, "Failed to get Network outputs for test samples [%d, %d)\n", start, end)
		}

		for b, outs := range net.output.values {
			avgCost += weights[b] * net.cf.Cost(outs, targets[b])
			if isCorrect != nil && isCorrect(outs, targets[b]) {
				avgCorrect++
			}
		}
	}

	net.stat = finalized
	return avgCost / float64(data.Len()), avgCorrect / float64(data.Len()), nil
}
