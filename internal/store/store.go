// Package store opens the manifest and image files of a dataset, either from a local (possibly
// mounted) directory or from an S3 bucket.
package store

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Store opens named files. Names use forward slashes and are relative to the root of the Store.
type Store interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

type dir struct {
	root string
}

// Dir returns a Store of the files under root
func Dir(root string) Store {
	return dir{root}
}

func (d dir) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(d.root, filepath.FromSlash(name)))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open %q\n", name)
	}

	return f, nil
}

// ReadAll opens the named file and returns its contents
func ReadAll(ctx context.Context, s Store, name string) ([]byte, error) {
	r, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read %q\n", name)
	}

	return b, nil
}
