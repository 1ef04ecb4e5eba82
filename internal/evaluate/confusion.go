package evaluate

import (
	"github.com/pkg/errors"
)

// Confusion is the 2x2 table of true against predicted labels
type Confusion struct {
	TP, FP, TN, FN int
}

// Outcomes are the indexes of the samples in each cell of a Confusion, in increasing order
type Outcomes struct {
	TruePositives  []int
	FalsePositives []int
	TrueNegatives  []int
	FalseNegatives []int
}

func classify(labels []int, scores []float64, threshold float64, each func(i int, label, predicted int)) error {
	if len(labels) != len(scores) {
		return errors.Errorf("Got %d labels but %d scores", len(labels), len(scores))
	}

	for i, l := range labels {
		if l != 0 && l != 1 {
			return errors.Errorf("Label %d is %d, must be 0 or 1", i, l)
		}

		var predicted int
		if scores[i] >= threshold {
			predicted = 1
		}
		each(i, l, predicted)
	}

	return nil
}

// NewConfusion counts the outcomes of classifying each score as positive when it is at or above
// the threshold.
func NewConfusion(labels []int, scores []float64, threshold float64) (Confusion, error) {
	var c Confusion
	err := classify(labels, scores, threshold, func(_ int, label, predicted int) {
		switch {
		case label == 1 && predicted == 1:
			c.TP++
		case label == 0 && predicted == 1:
			c.FP++
		case label == 0 && predicted == 0:
			c.TN++
		default:
			c.FN++
		}
	})

	return c, err
}

// Partition returns the indexes of the samples in each outcome, at the given threshold
func Partition(labels []int, scores []float64, threshold float64) (Outcomes, error) {
	var o Outcomes
	err := classify(labels, scores, threshold, func(i int, label, predicted int) {
		switch {
		case label == 1 && predicted == 1:
			o.TruePositives = append(o.TruePositives, i)
		case label == 0 && predicted == 1:
			o.FalsePositives = append(o.FalsePositives, i)
		case label == 0 && predicted == 0:
			o.TrueNegatives = append(o.TrueNegatives, i)
		default:
			o.FalseNegatives = append(o.FalseNegatives, i)
		}
	})

	return o, err
}

// Matrix returns the counts indexed by [true label][predicted label]
func (c Confusion) Matrix() [2][2]int {
	return [2][2]int{
		{c.TN, c.FP},
		{c.FN, c.TP},
	}
}

func (c Confusion) All() int {
	return c.TP + c.FP + c.TN + c.FN
}

func (c Confusion) Correct() int {
	return c.TP + c.TN
}

func (c Confusion) TestPositives() int {
	return c.TP + c.FP
}

func (c Confusion) ConditionPositives() int {
	return c.TP + c.FN
}

func (c Confusion) ConditionNegatives() int {
	return c.TN + c.FP
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

func (c Confusion) Accuracy() float64 {
	return ratio(c.Correct(), c.All())
}

// Precision is zero if nothing was predicted positive
func (c Confusion) Precision() float64 {
	return ratio(c.TP, c.TestPositives())
}

// Recall is zero if there are no positive samples
func (c Confusion) Recall() float64 {
	return ratio(c.TP, c.ConditionPositives())
}

func (c Confusion) F1() float64 {
	p, r := c.Precision(), c.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}
