package report

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/sharnoff/panelnet/internal/dataset"
)

// savePredictions writes one row per sample: id, label, probability, predicted_class
func savePredictions(path string, d *dataset.Dataset, probs []float64, threshold float64) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to create %q\n", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write([]string{"id", "label", "probability", "predicted_class"})
	for i, p := range probs {
		predicted := "0"
		if p >= threshold {
			predicted = "1"
		}

		w.Write([]string{d.IDs[i], strconv.Itoa(d.Labels[i]), strconv.FormatFloat(p, 'g', -1, 64), predicted})
	}

	w.Flush()
	if err = w.Error(); err != nil {
		return errors.Wrapf(err, "Failed to write %q\n", path)
	}
	return f.Close()
}
