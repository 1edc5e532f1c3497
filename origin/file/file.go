package file

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-sif/rowstream"
	errors "github.com/go-sif/rowstream/errors"
)

// Origin is a file on disk which will be read sequentially
type Origin struct {
	path string
}

// CreateOrigin is a factory for Origins
func CreateOrigin(path string) *Origin {
	return &Origin{path: path}
}

// Glob returns an Origin for each file matching pattern, in lexical order
func Glob(pattern string) ([]rowstream.Origin, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, errors.IOError{Op: "glob", Origin: pattern, Err: err}
	}
	if len(matches) == 0 {
		return nil, errors.NotFoundError{Origin: pattern, Err: fs.ErrNotExist}
	}
	origins := make([]rowstream.Origin, 0, len(matches))
	for _, path := range matches {
		origins = append(origins, CreateOrigin(path))
	}
	return origins, nil
}

// Name returns the path of this Origin
func (o *Origin) Name() string {
	return o.path
}

// Open opens the file for reading
func (o *Origin) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.IOError{Op: "open", Origin: o.path, Err: err}
	}
	f, err := os.Open(o.path)
	if err != nil {
		return nil, classify("open", o.path, err)
	}
	return f, nil
}

// Destination is a file on disk which will be written sequentially
type Destination struct {
	path string
	perm os.FileMode
}

// CreateDestination is a factory for Destinations
func CreateDestination(path string) *Destination {
	return &Destination{path: path, perm: 0644}
}

// Name returns the path of this Destination
func (d *Destination) Name() string {
	return d.path
}

// Create opens the file for writing, creating it or truncating any existing content.
// The parent directory must exist.
func (d *Destination) Create(ctx context.Context) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.IOError{Op: "create", Origin: d.path, Err: err}
	}
	f, err := os.OpenFile(d.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, d.perm)
	if err != nil {
		return nil, classify("create", d.path, err)
	}
	return f, nil
}

func classify(op string, path string, err error) error {
	if stderrors.Is(err, fs.ErrNotExist) {
		return errors.NotFoundError{Origin: path, Err: err}
	}
	return errors.IOError{Op: op, Origin: path, Err: err}
}
