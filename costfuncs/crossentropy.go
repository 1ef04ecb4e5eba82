package costfuncs

import (
	"math"
)

// the bounds that outputs are clipped to, so that the logarithm stays finite
const clip float64 = 1e-7

type binaryCrossEntropy int8

// BinaryCrossEntropy returns the cross-entropy cost for outputs that are independent
// probabilities, each in [0, 1]. The cost of a sample is averaged over its outputs.
//
// Outputs are clipped to [1e-7, 1 - 1e-7]; the derivative is zero where clipping occurs.
func BinaryCrossEntropy() binaryCrossEntropy {
	return binaryCrossEntropy(0)
}

func (c binaryCrossEntropy) TypeString() string {
	return "binary-cross-entropy"
}

func clipped(p float64) (float64, bool) {
	if p < clip {
		return clip, true
	} else if p > 1-clip {
		return 1 - clip, true
	}

	return p, false
}

func (c binaryCrossEntropy) Cost(outs, targets []float64) float64 {
	var sum float64
	for i := range outs {
		p, _ := clipped(outs[i])
		sum -= targets[i]*math.Log(p) + (1-targets[i])*math.Log(1-p)
	}

	return sum / float64(len(outs))
}

func (c binaryCrossEntropy) Deriv(outs, targets, ds []float64) {
	n := float64(len(outs))
	for i := range outs {
		p, wasClipped := clipped(outs[i])
		if wasClipped {
			ds[i] = 0
			continue
		}

		ds[i] = (p - targets[i]) / (p * (1 - p)) / n
	}
}
