// Package report writes the results of a run to a directory: ROC curves, the confusion matrix,
// example images of each outcome and the predictions themselves.
package report

import (
	"fmt"
	log "log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/sharnoff/panelnet/internal/dataset"
	"github.com/sharnoff/panelnet/internal/evaluate"
)

// Options control what is written
type Options struct {
	// Out is the parent directory; each run writes to a new subdirectory of it
	Out string

	Threshold float64

	// Examples is the number of images shown for each outcome, and Thumb their side length
	Examples int
	Thumb    int
}

// Summary holds the measures computed for a report
type Summary struct {
	// Dir is the directory the report was written to
	Dir string

	AUC float64
	// HardAUC is the AUC of the thresholded predictions
	HardAUC float64

	Confusion evaluate.Confusion
	Outcomes  evaluate.Outcomes
}

// Write evaluates the predictions against the labels of the dataset and writes the report to a
// new directory under opts.Out, named by a random run id.
func Write(d *dataset.Dataset, probs []float64, opts Options) (*Summary, error) {
	if len(probs) != d.Len() {
		return nil, errors.Errorf("Got %d predictions for %d samples", len(probs), d.Len())
	}

	s := &Summary{Dir: filepath.Join(opts.Out, uuid.NewString())}

	var err error
	if s.AUC, err = evaluate.AUC(d.Labels, probs); err != nil {
		return nil, errors.Wrapf(err, "Failed to compute AUC\n")
	}
	hard := evaluate.Threshold(probs, opts.Threshold)
	if s.HardAUC, err = evaluate.AUC(d.Labels, hard); err != nil {
		return nil, errors.Wrapf(err, "Failed to compute AUC of hard predictions\n")
	}
	if s.Confusion, err = evaluate.NewConfusion(d.Labels, probs, opts.Threshold); err != nil {
		return nil, err
	}
	if s.Outcomes, err = evaluate.Partition(d.Labels, probs, opts.Threshold); err != nil {
		return nil, err
	}

	if err = os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "Failed to create report directory\n")
	}

	roc, err := evaluate.ROC(d.Labels, probs)
	if err != nil {
		return nil, err
	}
	if err = saveROC(filepath.Join(s.Dir, "roc.png"), roc, "ROC curve"); err != nil {
		return nil, err
	}

	hardROC, err := evaluate.ROC(d.Labels, hard)
	if err != nil {
		return nil, err
	}
	if err = saveROC(filepath.Join(s.Dir, "roc_hard.png"), hardROC, "ROC curve (hard predictions)"); err != nil {
		return nil, err
	}

	if err = saveConfusion(filepath.Join(s.Dir, "confusion.png"), s.Confusion); err != nil {
		return nil, err
	}

	for _, g := range grids(s.Outcomes) {
		path := filepath.Join(s.Dir, g.file)
		if err = saveExamples(path, d, g.indexes, g.title, g.color, opts.Examples, opts.Thumb); err != nil {
			return nil, err
		}
	}

	if err = savePredictions(filepath.Join(s.Dir, "predictions.csv"), d, probs, opts.Threshold); err != nil {
		return nil, err
	}

	s.log()
	return s, nil
}

func (s *Summary) log() {
	c := s.Confusion
	log.Info(fmt.Sprintf("AUC %.4f (hard predictions: %.4f)", s.AUC, s.HardAUC))
	log.Info(fmt.Sprintf("confusion: TP=%d FP=%d TN=%d FN=%d", c.TP, c.FP, c.TN, c.FN))
	log.Info(fmt.Sprintf("accuracy %.4f, precision %.4f, recall %.4f, F1 %.4f", c.Accuracy(), c.Precision(), c.Recall(), c.F1()))
	log.Info(fmt.Sprintf("report written to %s", s.Dir))
}
