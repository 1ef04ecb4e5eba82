// Package cv runs stratified k-fold cross-validation, producing an out-of-fold prediction for
// every sample.
package cv

import (
	"math/rand"
	"sort"

	"github.com/pkg/errors"
)

// Fold is one split of the dataset. Validation holds the indexes held out by the fold and Train
// holds every other index, both in increasing order.
type Fold struct {
	Train      []int
	Validation []int
}

// Stratified splits the indexes of labels into k folds, keeping the proportion of each class
// roughly equal across folds. The samples of each class are shuffled with the seed, then dealt out
// to the folds in turn, continuing from one class to the next so that fold sizes differ by at
// most one.
func Stratified(labels []int, k int, seed int64) ([]Fold, error) {
	if k < 2 {
		return nil, errors.Errorf("Need at least 2 folds, got %d", k)
	} else if len(labels) < k {
		return nil, errors.Errorf("Can't split %d samples into %d folds", len(labels), k)
	}

	byClass := make(map[int][]int)
	var classes []int
	for i, l := range labels {
		if _, ok := byClass[l]; !ok {
			classes = append(classes, l)
		}
		byClass[l] = append(byClass[l], i)
	}
	sort.Ints(classes)

	r := rand.New(rand.NewSource(seed))
	assigned := make([]int, len(labels))

	var p int
	for _, c := range classes {
		idx := byClass[c]
		r.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		for _, i := range idx {
			assigned[i] = p % k
			p++
		}
	}

	folds := make([]Fold, k)
	for i, f := range assigned {
		for j := range folds {
			if j == f {
				folds[j].Validation = append(folds[j].Validation, i)
			} else {
				folds[j].Train = append(folds[j].Train, i)
			}
		}
	}

	return folds, nil
}
