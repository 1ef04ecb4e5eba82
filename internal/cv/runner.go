package cv

import (
	"context"
	"fmt"
	log "log/slog"
	"math"

	"github.com/pkg/errors"

	"github.com/sharnoff/panelnet/internal/dataset"
	"github.com/sharnoff/panelnet/internal/evaluate"
	"github.com/sharnoff/panelnet/internal/model"
)

// ErrCoverage is returned if the folds fail to predict every sample exactly once
var ErrCoverage = errors.New("Out-of-fold predictions do not cover every sample exactly once")

// Factory returns a new, untrained Classifier
type Factory func() (model.Classifier, error)

type Options struct {
	Folds int
	Seed  int64

	// ReuseModel continues training a single Classifier through every fold, instead of building a
	// new one for each. Later folds are then scored by a model that has already seen their
	// samples in earlier folds.
	ReuseModel bool
}

type Result struct {
	// Predictions holds the out-of-fold probability of every sample
	Predictions []float64
	Folds       []Fold

	// FoldAUC is the AUC of each fold's validation predictions, or NaN if the fold's validation
	// samples are all of one class
	FoldAUC []float64

	// class-weighted validation cost and accuracy of each fold, NaN unless the Classifier is a
	// model.Evaluator
	FoldCost     []float64
	FoldAccuracy []float64
}

// Run fits a Classifier on the training samples of each fold in turn and predicts the held-out
// samples, assembling one prediction per sample. Any failure aborts the run. Cancelling ctx stops
// the run between folds (and between epochs of training).
func Run(ctx context.Context, d *dataset.Dataset, opts Options, newClassifier Factory) (*Result, error) {
	if len(d.Images) != len(d.Labels) {
		return nil, errors.Errorf("Got %d images but %d labels", len(d.Images), len(d.Labels))
	}

	labels := d.Labels
	folds, err := Stratified(labels, opts.Folds, opts.Seed)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Predictions: make([]float64, len(labels)),
		Folds:       folds,
		FoldAUC:     make([]float64, len(folds)),

		FoldCost:     make([]float64, len(folds)),
		FoldAccuracy: make([]float64, len(folds)),
	}
	filled := make([]bool, len(labels))

	var clf model.Classifier
	for i, f := range folds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if clf == nil || !opts.ReuseModel {
			if clf, err = newClassifier(); err != nil {
				return nil, errors.Wrapf(err, "Failed to create classifier for fold %d\n", i+1)
			}
		}

		log.Info(fmt.Sprintf("fold %d/%d: training on %d samples, validating on %d", i+1, len(folds), len(f.Train), len(f.Validation)))

		train := d.Subset(f.Train)
		if err := clf.Fit(ctx, train.Images, train.Labels); err != nil {
			return nil, errors.Wrapf(err, "Failed to fit fold %d\n", i+1)
		}

		val := d.Subset(f.Validation)
		probs, err := clf.Predict(ctx, val.Images)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to predict fold %d\n", i+1)
		} else if len(probs) != val.Len() {
			return nil, errors.Errorf("Fold %d: got %d predictions for %d samples", i+1, len(probs), val.Len())
		}

		for j, idx := range f.Validation {
			if filled[idx] {
				return nil, errors.Wrapf(ErrCoverage, "Sample %d predicted twice\n", idx)
			}
			res.Predictions[idx] = probs[j]
			filled[idx] = true
		}

		res.FoldCost[i], res.FoldAccuracy[i] = math.NaN(), math.NaN()
		if e, ok := clf.(model.Evaluator); ok {
			cost, accuracy, err := e.Evaluate(ctx, val.Images, val.Labels)
			if err != nil {
				return nil, errors.Wrapf(err, "Failed to evaluate fold %d\n", i+1)
			}
			log.Info(fmt.Sprintf("fold %d/%d: validation cost %.4f, accuracy %.4f", i+1, len(folds), cost, accuracy))
			res.FoldCost[i], res.FoldAccuracy[i] = cost, accuracy
		}

		auc, err := evaluate.AUC(val.Labels, probs)
		if err == evaluate.ErrSingleClass {
			log.Warn(fmt.Sprintf("fold %d: validation samples are all one class, AUC undefined", i+1))
			auc = math.NaN()
		} else if err != nil {
			return nil, errors.Wrapf(err, "Failed to score fold %d\n", i+1)
		} else {
			log.Info(fmt.Sprintf("fold %d/%d: AUC %.4f", i+1, len(folds), auc))
		}
		res.FoldAUC[i] = auc
	}

	for idx, ok := range filled {
		if !ok {
			return nil, errors.Wrapf(ErrCoverage, "Sample %d never predicted\n", idx)
		}
	}

	return res, nil
}
