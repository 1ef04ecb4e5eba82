package report

import (
	"fmt"
	"image/color"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/sharnoff/panelnet/internal/evaluate"
)

const figureSize = 5 * vg.Inch

func saveROC(path string, c evaluate.Curve, title string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s, AUC = %.4f", title, c.Area())
	p.X.Label.Text = "False positive rate"
	p.Y.Label.Text = "True positive rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	pts := make(plotter.XYs, len(c.FPR))
	for i := range pts {
		pts[i].X, pts[i].Y = c.FPR[i], c.TPR[i]
	}

	curve, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrapf(err, "Failed to plot ROC curve\n")
	}
	curve.Color = color.RGBA{B: 200, A: 255}
	curve.Width = vg.Points(2)

	chance, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return errors.Wrapf(err, "Failed to plot chance line\n")
	}
	chance.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	chance.Color = color.Gray{Y: 128}

	p.Add(plotter.NewGrid(), chance, curve)
	p.Legend.Add("model", curve)
	p.Legend.Add("chance", chance)
	p.Legend.Left = false
	p.Legend.Top = false

	if err = p.Save(figureSize, figureSize, path); err != nil {
		return errors.Wrapf(err, "Failed to save %q\n", path)
	}
	return nil
}

// matrix is a plotter.GridXYZ of a confusion matrix, with predicted labels along x and true
// labels along y
type matrix [2][2]int

func (m matrix) Dims() (c, r int)   { return 2, 2 }
func (m matrix) Z(c, r int) float64 { return float64(m[r][c]) }
func (m matrix) X(c int) float64    { return float64(c) }
func (m matrix) Y(r int) float64    { return float64(r) }

func saveConfusion(path string, c evaluate.Confusion) error {
	m := matrix(c.Matrix())

	p := plot.New()
	p.Title.Text = "Confusion matrix"
	p.X.Label.Text = "Predicted label"
	p.Y.Label.Text = "True label"
	p.X.Tick.Marker = labelTicks{}
	p.Y.Tick.Marker = labelTicks{}

	heat := plotter.NewHeatMap(m, palette.Heat(16, 1))
	// keep every count readable when all cells are equal
	if heat.Min == heat.Max {
		heat.Max = heat.Min + 1
	}
	p.Add(heat)

	var xys plotter.XYLabels
	for r := 0; r < 2; r++ {
		for col := 0; col < 2; col++ {
			xys.XYs = append(xys.XYs, plotter.XY{X: float64(col), Y: float64(r)})
			xys.Labels = append(xys.Labels, fmt.Sprint(m[r][col]))
		}
	}
	counts, err := plotter.NewLabels(xys)
	if err != nil {
		return errors.Wrapf(err, "Failed to label confusion matrix\n")
	}
	for i := range counts.TextStyle {
		counts.TextStyle[i].Font.Size = vg.Points(16)
		counts.TextStyle[i].XAlign = -0.5
		counts.TextStyle[i].YAlign = -0.5
	}
	p.Add(counts)

	if err = p.Save(figureSize, figureSize, path); err != nil {
		return errors.Wrapf(err, "Failed to save %q\n", path)
	}
	return nil
}

// labelTicks marks the two classes of a confusion matrix axis
type labelTicks struct{}

func (labelTicks) Ticks(min, max float64) []plot.Tick {
	return []plot.Tick{{Value: 0, Label: "0"}, {Value: 1, Label: "1"}}
}
