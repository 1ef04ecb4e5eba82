package report

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/sharnoff/panelnet/internal/dataset"
	"github.com/sharnoff/panelnet/internal/evaluate"
)

var (
	green = color.RGBA{G: 128, A: 255}
	red   = color.RGBA{R: 192, A: 255}
)

const (
	pad        = 8
	lineHeight = 16
)

type grid struct {
	file    string
	title   string
	color   color.Color
	indexes []int
}

func grids(o evaluate.Outcomes) []grid {
	return []grid{
		{"true_positives.png", "True positives: predicted solar panels where they were present", green, o.TruePositives},
		{"false_positives.png", "False positives: predicted solar panels where they were not present", red, o.FalsePositives},
		{"true_negatives.png", "True negatives: predicted no solar panels where they were not present", green, o.TrueNegatives},
		{"false_negatives.png", "False negatives: predicted no solar panels where they were present", red, o.FalseNegatives},
	}
}

func drawText(dst draw.Image, x, y int, c color.Color, text string) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// exampleGrid lays out up to n of the given samples in a row, each scaled to thumb pixels square
// and captioned with its id, under the title.
func exampleGrid(d *dataset.Dataset, indexes []int, title string, c color.Color, n, thumb int) *image.RGBA {
	if len(indexes) > n {
		indexes = indexes[:n]
	}

	width := pad + len(indexes)*(thumb+pad)
	if w := pad*2 + len(title)*basicfont.Face7x13.Advance; w > width {
		width = w
	}
	height := pad + lineHeight + pad + thumb + lineHeight + pad

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	drawText(img, pad, pad+lineHeight-3, c, title)

	top := pad + lineHeight + pad
	for i, idx := range indexes {
		left := pad + i*(thumb+pad)
		scaled := resize.Resize(uint(thumb), uint(thumb), d.Picture(idx), resize.Lanczos3)

		r := image.Rect(left, top, left+thumb, top+thumb)
		draw.Draw(img, r, scaled, scaled.Bounds().Min, draw.Src)
		drawText(img, left, top+thumb+lineHeight-3, color.Black, "id "+d.IDs[idx])
	}

	return img
}

func saveExamples(path string, d *dataset.Dataset, indexes []int, title string, c color.Color, n, thumb int) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to create %q\n", path)
	}
	defer f.Close()

	if err = png.Encode(f, exampleGrid(d, indexes, title, c, n, thumb)); err != nil {
		return errors.Wrapf(err, "Failed to write %q\n", path)
	}
	return f.Close()
}
