// Package evaluate measures how well predicted probabilities match binary labels: the ROC curve
// and its area, and the confusion matrix at a threshold.
package evaluate

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// ErrSingleClass is returned when the labels are all the same, so that there are either no
// positive or no negative samples to rank against each other.
var ErrSingleClass = errors.New("Labels contain only one class")

// Curve is a receiver operating characteristic curve. FPR and TPR start at (0, 0) and end at
// (1, 1); Thresholds[i] is the lowest score classified as positive to give point i. The first
// threshold is +Inf.
type Curve struct {
	FPR        []float64
	TPR        []float64
	Thresholds []float64
}

func check(labels []int, scores []float64) (pos, neg int, err error) {
	if len(labels) != len(scores) {
		return 0, 0, errors.Errorf("Got %d labels but %d scores", len(labels), len(scores))
	}

	for i, l := range labels {
		if l != 0 && l != 1 {
			return 0, 0, errors.Errorf("Label %d is %d, must be 0 or 1", i, l)
		} else if math.IsNaN(scores[i]) {
			return 0, 0, errors.Errorf("Score %d is NaN", i)
		}

		pos += l
	}

	neg = len(labels) - pos
	if pos == 0 || neg == 0 {
		return pos, neg, ErrSingleClass
	}

	return pos, neg, nil
}

// ROC returns the curve swept over every distinct score, from the highest to the lowest
func ROC(labels []int, scores []float64) (Curve, error) {
	pos, neg, err := check(labels, scores)
	if err != nil {
		return Curve{}, err
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return scores[order[i]] > scores[order[j]] })

	c := Curve{
		FPR:        []float64{0},
		TPR:        []float64{0},
		Thresholds: []float64{math.Inf(1)},
	}

	var tp, fp int
	for i, idx := range order {
		if labels[idx] == 1 {
			tp++
		} else {
			fp++
		}

		// only add a point once every sample with this score is counted
		if i+1 < len(order) && scores[order[i+1]] == scores[idx] {
			continue
		}

		c.FPR = append(c.FPR, float64(fp)/float64(neg))
		c.TPR = append(c.TPR, float64(tp)/float64(pos))
		c.Thresholds = append(c.Thresholds, scores[idx])
	}

	return c, nil
}

// AUC returns the area under the ROC curve: the probability that a random positive sample scores
// higher than a random negative one, with ties counting half. It is computed from the ranks of
// the scores, averaging the ranks of tied scores.
func AUC(labels []int, scores []float64) (float64, error) {
	pos, neg, err := check(labels, scores)
	if err != nil {
		return 0, err
	}

	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	inds := make([]int, len(scores))
	floats.Argsort(sorted, inds)

	ranks := make([]float64, len(scores))
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && sorted[end] == sorted[start] {
			end++
		}

		// ranks are 1-indexed; tied scores share the average of their ranks
		avg := float64(start+end+1) / 2
		for _, idx := range inds[start:end] {
			ranks[idx] = avg
		}
		start = end
	}

	var posRanks float64
	for i, l := range labels {
		if l == 1 {
			posRanks += ranks[i]
		}
	}

	p, n := float64(pos), float64(neg)
	return (posRanks - p*(p+1)/2) / (p * n), nil
}

// Area returns the area under the curve by the trapezoidal rule. For a curve from ROC it is equal
// to AUC.
func (c Curve) Area() float64 {
	var area float64
	for i := 1; i < len(c.FPR); i++ {
		area += (c.FPR[i] - c.FPR[i-1]) * (c.TPR[i] + c.TPR[i-1]) / 2
	}
	return area
}

// Threshold returns the hard predictions for the scores: 1 for scores at or above t, otherwise 0.
func Threshold(scores []float64, t float64) []float64 {
	hard := make([]float64, len(scores))
	for i, s := range scores {
		if s >= t {
			hard[i] = 1
		}
	}
	return hard
}

// Mean returns the mean of the scores, or zero if there are none
func Mean(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	return floats.Sum(scores) / float64(len(scores))
}
