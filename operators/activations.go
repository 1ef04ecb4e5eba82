// activations.go contains the elementwise activation functions:
// * Logistic
// * Tanh
// * ReLU
// * Leaky ReLU
// * ELU
//
// The derivatives are all expressed in terms of the output of the function, so that they can be
// fused into convolutions with Activation.
package operators

import (
	"math"
)

// ****************************************
// Logistic
// ****************************************

type logistic int8

// Logistic returns the logistic sigmoid function, which implements panelnet.Elementwise.
func Logistic() logistic {
	return logistic(0)
}

func (t logistic) TypeString() string {
	return "logistic"
}

func (t logistic) Value(in float64) float64 {
	return 0.5 + 0.5*math.Tanh(0.5*in)
}

func (t logistic) Deriv(out float64) float64 {
	return out * (1 - out)
}

// ****************************************
// Tanh
// ****************************************

type tanh int8

// Tanh returns the hyperbolic tangent function, which implements panelnet.Elementwise.
func Tanh() tanh {
	return tanh(0)
}

func (t tanh) TypeString() string {
	return "tanh"
}

func (t tanh) Value(in float64) float64 {
	return math.Tanh(in)
}

func (t tanh) Deriv(out float64) float64 {
	return 1 - out*out
}

// ****************************************
// ReLU
// ****************************************

type relu int8

// ReLU returns the standard rectified linear unit, which implements panelnet.Elementwise.
func ReLU() relu {
	return relu(0)
}

func (t relu) TypeString() string {
	return "relu"
}

func (t relu) Value(in float64) float64 {
	return math.Max(in, 0)
}

func (t relu) Deriv(out float64) float64 {
	if out > 0 {
		return 1
	}
	return 0
}

// ****************************************
// Leaky ReLU
// ****************************************

type lrelu float64

// LeakyReLU returns a standard 'leaky ReLU', where the leaky factor is given by alpha. alpha
// must be positive.
func LeakyReLU(alpha float64) lrelu {
	return lrelu(alpha)
}

func (t lrelu) TypeString() string {
	return "leaky-relu"
}

func (t lrelu) Value(in float64) float64 {
	if in < 0 {
		return float64(t) * in
	}
	return in
}

func (t lrelu) Deriv(out float64) float64 {
	if out < 0 {
		return float64(t)
	}
	return 1
}

// ****************************************
// ELU
// ****************************************

type elu int8

// ELU (exponential linear unit) returns a smooth approximation of ReLU that tends towards -1 as
// inputs become infinitely negative.
func ELU() elu {
	return elu(0)
}

func (t elu) TypeString() string {
	return "elu"
}

func (t elu) Value(in float64) float64 {
	if in >= 0 {
		return in
	}
	return math.Exp(in) - 1
}

// for in < 0, d/dx (e^x - 1) = e^x = out + 1
func (t elu) Deriv(out float64) float64 {
	if out < 0 {
		return out + 1
	}
	return 1
}
