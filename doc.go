// Package panelnet provides a small framework for building and training feed-forward
// convolutional networks, along with the pipeline (under internal/) that uses it to detect
// solar panels in aerial image chips.
//
// Creating Networks
//
// The center of all training is the Network, initialized by:
//
//		net := new(panelnet.Network)
//
// Networks consist of a chain of Nodes, each analogous to the typical layer. Each Node has an
// Operator, which determines its values and the backpropagation through it. Operators with
// weights (Adjustable) additionally require an Optimizer and an Initializer. All Operators can be
// found in the subpackage "operators", all Optimizers in "optimizers", and so forth.
//
// The standard procedure for adding Nodes to the Network is:
//
//		in := net.AddInput("image", 101, 101, 3)
//		c := net.Add("conv-1", operators.Conv2D(32, 3).Activation(operators.ReLU()), in)
//		c = net.Add("norm-1", operators.BatchNorm(), c)
//		// ...
//		out := net.Add("output", operators.Logistic(), d)
//
//		if net.Error() != nil {
//			return net.Error()
//		}
//
// Dimensions are given with the fastest-changing dimension first: an image is (width, height,
// channels). Every Node after the input implies its dimensions from its input.
//
// Errors during construction are stored instead of returned, so calls to Add can be chained.
// The first error encountered is kept and can be retrieved with Error(); Finalize also returns
// it.
//
// The network is finished by providing a cost function:
//
//		net.DefaultOpt(func() panelnet.Optimizer { return optimizers.Adam() })
//		net.DefaultInit(initializers.GlorotUniform())
//		net.AddHP("learning-rate", hyperparams.Constant(0.001))
//		if err := net.Finalize(costfuncs.BinaryCrossEntropy(), out); err != nil {
//			return err
//		}
//
// Training and Testing
//
// Training is done in mini-batches over a DataSupplier, with the type TrainArgs used as a proxy
// for the optional arguments that are available in other languages:
//
//		func (net *Network) Train(args TrainArgs) error
//
// Each Datum carries a Weight, which scales its contribution to the cost. This is how class
// re-weighting is expressed.
//
// Inference is done with Predict, which evaluates a batch without updating any training
// statistics:
//
//		func (net *Network) Predict(inputs [][]float64) ([][]float64, error)
package panelnet
