package report

import (
	"encoding/csv"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"

	"github.com/sharnoff/panelnet/internal/dataset"
	"github.com/sharnoff/panelnet/internal/evaluate"
)

func testData() *dataset.Dataset {
	shape := dataset.Shape{Width: 4, Height: 4, Channels: 3}
	d := &dataset.Dataset{
		Shape:  shape,
		IDs:    []string{"10", "11", "12", "13", "14", "15"},
		Labels: []int{1, 0, 1, 0, 0, 1},
		Scaled: true,
	}

	for i := range d.IDs {
		img := make([]float64, shape.Size())
		for j := range img {
			img[j] = float64((i+j)%5) / 4
		}
		d.Images = append(d.Images, img)
	}

	return d
}

func TestWrite(t *testing.T) {
	d := testData()
	probs := []float64{0.9, 0.6, 0.3, 0.1, 0.2, 0.8}
	opts := Options{Out: t.TempDir(), Threshold: 0.5, Examples: 7, Thumb: 16}

	s, err := Write(d, probs, opts)
	require.NoError(t, err)

	assert.Equal(t, opts.Out, filepath.Dir(s.Dir))
	assert.Equal(t, evaluate.Confusion{TP: 2, FP: 1, TN: 2, FN: 1}, s.Confusion)
	assert.Equal(t, []int{2}, s.Outcomes.FalseNegatives)
	// one negative (0.6) outranks one positive (0.3)
	assert.InDelta(t, 8.0/9, s.AUC, 1e-12)
	assert.True(t, s.HardAUC > 0 && s.HardAUC < 1)

	for _, name := range []string{
		"roc.png", "roc_hard.png", "confusion.png",
		"true_positives.png", "false_positives.png", "true_negatives.png", "false_negatives.png",
	} {
		f, err := os.Open(filepath.Join(s.Dir, name))
		require.NoError(t, err, name)
		_, err = png.Decode(f)
		f.Close()
		assert.NoError(t, err, name)
	}

	f, err := os.Open(filepath.Join(s.Dir, "predictions.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 7)
	assert.Equal(t, []string{"id", "label", "probability", "predicted_class"}, rows[0])
	assert.Equal(t, []string{"10", "1", "0.9", "1"}, rows[1])
	assert.Equal(t, []string{"12", "1", "0.3", "0"}, rows[3])
}

func TestWriteNewDirEachRun(t *testing.T) {
	d := testData()
	probs := []float64{0.9, 0.6, 0.3, 0.1, 0.2, 0.8}
	opts := Options{Out: t.TempDir(), Threshold: 0.5, Examples: 2, Thumb: 8}

	a, err := Write(d, probs, opts)
	require.NoError(t, err)
	b, err := Write(d, probs, opts)
	require.NoError(t, err)
	assert.NotEqual(t, a.Dir, b.Dir)
}

func TestWriteErrors(t *testing.T) {
	d := testData()
	opts := Options{Out: t.TempDir(), Threshold: 0.5, Examples: 2, Thumb: 8}

	_, err := Write(d, []float64{0.5}, opts)
	assert.Error(t, err)

	d.Labels = []int{0, 0, 0, 0, 0, 0}
	_, err = Write(d, []float64{0.9, 0.6, 0.3, 0.1, 0.2, 0.8}, opts)
	assert.Equal(t, evaluate.ErrSingleClass, errors.Cause(err))
}

func TestExampleGrid(t *testing.T) {
	d := testData()
	title := "t"

	img := exampleGrid(d, []int{0, 1, 2, 3, 4}, title, green, 3, 20)
	assert.Equal(t, pad+3*(20+pad), img.Bounds().Dx())
	assert.Equal(t, pad+lineHeight+pad+20+lineHeight+pad, img.Bounds().Dy())

	// a long title widens the grid
	long := exampleGrid(d, []int{0}, "a much longer title than one thumbnail", red, 3, 20)
	assert.True(t, long.Bounds().Dx() > pad+(20+pad))

	empty := exampleGrid(d, nil, title, red, 3, 20)
	assert.Equal(t, 2*pad+basicfont.Face7x13.Advance, empty.Bounds().Dx())
}
