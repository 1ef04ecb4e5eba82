package dataset

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	log "log/slog"
	"path"

	"github.com/pkg/errors"
	_ "golang.org/x/image/tiff"

	"github.com/sharnoff/panelnet/internal/store"
)

// Loader reads a manifest and the image of every row in it from a Store
type Loader struct {
	Store store.Store

	// Manifest is the name of the manifest within the Store
	Manifest string

	// Images is the directory of the images within the Store. The image of a row is found at
	// <Images>/<id>.<Extension>
	Images    string
	Extension string

	Shape Shape
}

// Load reads every image listed in the manifest. Loading is all-or-nothing: the first missing,
// undecodable or misshapen image fails the whole load.
func (l Loader) Load(ctx context.Context) (*Dataset, error) {
	b, err := store.ReadAll(ctx, l.Store, l.Manifest)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read manifest\n")
	}

	rows, err := ReadManifest(bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to parse manifest %q\n", l.Manifest)
	}

	d := &Dataset{
		Shape:  l.Shape,
		IDs:    make([]string, len(rows)),
		Images: make([][]float64, len(rows)),
		Labels: make([]int, len(rows)),
	}

	for i, row := range rows {
		img, err := l.image(ctx, row.ID)
		if err != nil {
			return nil, err
		}

		d.IDs[i] = row.ID
		d.Images[i] = img
		d.Labels[i] = row.Label
	}

	log.Info(fmt.Sprintf("loaded %d images (%d positive, %d negative)", d.Len(), d.Positives(), d.Negatives()))
	return d, nil
}

func (l Loader) image(ctx context.Context, id string) ([]float64, error) {
	name := path.Join(l.Images, id+"."+l.Extension)

	b, err := store.ReadAll(ctx, l.Store, name)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to load image %q\n", id)
	}

	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to decode image %q\n", id)
	}

	size := img.Bounds().Size()
	if size.X != l.Shape.Width || size.Y != l.Shape.Height {
		return nil, errors.Wrapf(ErrShapeMismatch, "Image %q is %dx%d, expected %dx%d\n",
			id, size.X, size.Y, l.Shape.Width, l.Shape.Height)
	}

	return toValues(img, l.Shape), nil
}
