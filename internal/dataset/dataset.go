// Package dataset loads the labelled images of a manifest into memory and scales their pixels.
//
// Images are stored in the layout used by panelnet: for an image of width W and height H, the
// value of pixel (x, y) in channel c is at index x + y*W + c*W*H.
package dataset

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

var (
	ErrEmptyManifest = errors.New("Manifest has no rows")
	ErrShapeMismatch = errors.New("Image does not have the expected shape")
	ErrAlreadyScaled = errors.New("Dataset has already been scaled")
)

// Shape is the size of every image in a Dataset
type Shape struct {
	Width    int
	Height   int
	Channels int
}

// Dims returns the dimensions of an image, as given to *panelnet.Network.AddInput
func (s Shape) Dims() []int {
	return []int{s.Width, s.Height, s.Channels}
}

// Size returns the number of values in a single image
func (s Shape) Size() int {
	return s.Width * s.Height * s.Channels
}

// Dataset is an ordered set of samples. IDs, Images and Labels always have the same length, and
// the i-th element of each belongs to the same sample.
type Dataset struct {
	Shape Shape

	IDs    []string
	Images [][]float64
	Labels []int

	// Scaled is true once pixel values have been divided by 255
	Scaled bool
}

func (d *Dataset) Len() int {
	return len(d.Labels)
}

// Positives returns the number of samples with label 1
func (d *Dataset) Positives() int {
	var n int
	for _, l := range d.Labels {
		n += l
	}
	return n
}

// Negatives returns the number of samples with label 0
func (d *Dataset) Negatives() int {
	return d.Len() - d.Positives()
}

// Subset returns the samples at the given indexes, in order. Images are shared with d, not copied.
func (d *Dataset) Subset(indexes []int) *Dataset {
	sub := &Dataset{
		Shape:  d.Shape,
		IDs:    make([]string, len(indexes)),
		Images: make([][]float64, len(indexes)),
		Labels: make([]int, len(indexes)),
		Scaled: d.Scaled,
	}

	for i, idx := range indexes {
		sub.IDs[i] = d.IDs[idx]
		sub.Images[i] = d.Images[idx]
		sub.Labels[i] = d.Labels[idx]
	}

	return sub
}

// Scale returns a copy of the Dataset with every pixel value divided by 255, so that all values
// lie in [0, 1]. Scaling twice would change the values again, so Scale returns ErrAlreadyScaled
// for a Dataset that has already been scaled.
func Scale(d *Dataset) (*Dataset, error) {
	if d.Scaled {
		return nil, ErrAlreadyScaled
	}

	scaled := &Dataset{
		Shape:  d.Shape,
		IDs:    append([]string(nil), d.IDs...),
		Images: make([][]float64, len(d.Images)),
		Labels: append([]int(nil), d.Labels...),
		Scaled: true,
	}

	for i, img := range d.Images {
		scaled.Images[i] = make([]float64, len(img))
		for j, v := range img {
			scaled.Images[i][j] = v / 255
		}
	}

	return scaled, nil
}

// toValues converts the image to panelnet layout, with values in [0, 255]. Alpha is dropped; a
// single channel is the luminance of the image.
func toValues(img image.Image, shape Shape) []float64 {
	b := img.Bounds()
	plane := shape.Width * shape.Height
	vs := make([]float64, shape.Size())

	for y := 0; y < shape.Height; y++ {
		for x := 0; x < shape.Width; x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			i := x + y*shape.Width

			if shape.Channels == 1 {
				vs[i] = float64(color.GrayModel.Convert(c).(color.Gray).Y)
				continue
			}

			r, g, bl, _ := c.RGBA()
			vs[i] = float64(r >> 8)
			vs[i+plane] = float64(g >> 8)
			vs[i+2*plane] = float64(bl >> 8)
		}
	}

	return vs
}

// Picture returns sample i as an image, for display
func (d *Dataset) Picture(i int) *image.RGBA {
	s := d.Shape
	plane := s.Width * s.Height
	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))

	scale := 1.0
	if d.Scaled {
		scale = 255
	}

	pixel := func(v float64) uint8 {
		v *= scale
		if v < 0 {
			return 0
		} else if v > 255 {
			return 255
		}
		return uint8(v + 0.5)
	}

	vs := d.Images[i]
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			j := x + y*s.Width

			var c color.RGBA
			if s.Channels == 1 {
				g := pixel(vs[j])
				c = color.RGBA{g, g, g, 255}
			} else {
				c = color.RGBA{pixel(vs[j]), pixel(vs[j+plane]), pixel(vs[j+2*plane]), 255}
			}
			img.SetRGBA(x, y, c)
		}
	}

	return img
}
