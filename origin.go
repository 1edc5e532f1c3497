package rowstream

import (
	"context"
	"io"
)

// An Origin is a named source of bytes which can be opened for sequential reading.
// The name is used for diagnostics and to select decompression by suffix.
type Origin interface {
	Name() string
	// Open returns an errors.NotFoundError if the origin does not exist,
	// or an errors.IOError for any other failure.
	Open(ctx context.Context) (io.ReadCloser, error)
}

// A Destination is a named sink for bytes which can be opened for sequential writing.
// The name is used for diagnostics and to select compression by suffix.
type Destination interface {
	Name() string
	// Create opens the destination for writing, truncating any existing content
	Create(ctx context.Context) (io.WriteCloser, error)
}
