// Package onnx scores images with an ONNX export of the panel classifier, through ONNX Runtime.
package onnx

import (
	"context"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

type Options struct {
	// Model is the path to the .onnx file
	Model string

	// Library is the path to the ONNX Runtime shared library. If empty, the platform default is
	// used.
	Library string

	// names of the input and output of the graph
	Input  string
	Output string

	// Dims are the dimensions of a single image: width, height, channels
	Dims []int
}

// Scorer runs one image at a time through the model. The model takes a float32 input of shape
// [1, height, width, channels] and gives a single probability of shape [1, 1].
type Scorer struct {
	dims    []int
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// New starts the ONNX Runtime environment and loads the model. Only one Scorer may exist at a
// time; it must be closed with Close.
func New(opts Options) (*Scorer, error) {
	if len(opts.Dims) != 3 {
		return nil, errors.Errorf("Expected 3 image dimensions, got %v", opts.Dims)
	}

	if opts.Library != "" {
		ort.SetSharedLibraryPath(opts.Library)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, errors.Wrapf(err, "Failed to initialize ONNX Runtime\n")
	}

	s := &Scorer{dims: opts.Dims}
	w, h, c := int64(opts.Dims[0]), int64(opts.Dims[1]), int64(opts.Dims[2])

	var err error
	if s.input, err = ort.NewEmptyTensor[float32](ort.NewShape(1, h, w, c)); err != nil {
		s.Close()
		return nil, errors.Wrapf(err, "Failed to create input tensor\n")
	}
	if s.output, err = ort.NewEmptyTensor[float32](ort.NewShape(1, 1)); err != nil {
		s.Close()
		return nil, errors.Wrapf(err, "Failed to create output tensor\n")
	}

	s.session, err = ort.NewAdvancedSession(opts.Model,
		[]string{opts.Input}, []string{opts.Output},
		[]ort.ArbitraryTensor{s.input}, []ort.ArbitraryTensor{s.output},
		nil)
	if err != nil {
		s.Close()
		return nil, errors.Wrapf(err, "Failed to load model %q\n", opts.Model)
	}

	return s, nil
}

// Predict returns the probability given by the model for each image
func (s *Scorer) Predict(ctx context.Context, inputs [][]float64) ([]float64, error) {
	probs := make([]float64, len(inputs))
	for i, img := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := pack(s.input.GetData(), img, s.dims); err != nil {
			return nil, errors.Wrapf(err, "Image %d\n", i)
		}
		if err := s.session.Run(); err != nil {
			return nil, errors.Wrapf(err, "Inference failed on image %d\n", i)
		}

		probs[i] = float64(s.output.GetData()[0])
	}

	return probs, nil
}

// Close releases the model and shuts down the ONNX Runtime environment
func (s *Scorer) Close() {
	if s.input != nil {
		s.input.Destroy()
	}
	if s.output != nil {
		s.output.Destroy()
	}
	if s.session != nil {
		s.session.Destroy()
	}
	ort.DestroyEnvironment()
}

// pack converts an image from channel-major layout (x + y*W + c*W*H) into dst, in height, width,
// channel order.
func pack(dst []float32, img []float64, dims []int) error {
	w, h, c := dims[0], dims[1], dims[2]
	if len(img) != w*h*c || len(dst) != len(img) {
		return errors.Errorf("Image has %d values, expected %d", len(img), w*h*c)
	}

	plane := w * h
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for ch := 0; ch < c; ch++ {
				dst[(y*w+x)*c+ch] = float32(img[x+y*w+ch*plane])
			}
		}
	}

	return nil
}
