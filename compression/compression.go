// Package compression wraps byte streams in a compressor or decompressor chosen by
// the suffix of the stream's name. This is a naming convention, not content sniffing:
// a gzip file named "rows.tsv" is read as plain text.
package compression

import (
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// A Compression is a stream compression algorithm associated with a file suffix
type Compression interface {
	Suffix() string                                // Suffix is the file name suffix, including the dot
	NewReader(r io.Reader) (io.ReadCloser, error)  // NewReader decompresses r. Closing it does not close r.
	NewWriter(w io.Writer) (io.WriteCloser, error) // NewWriter compresses to w. Closing it does not close w.
}

var registered = []Compression{
	&gzipCompression{},
	&lz4Compression{},
	&zstdCompression{},
}

// ForName returns the Compression whose suffix ends name, if any
func ForName(name string) (Compression, bool) {
	for _, c := range registered {
		if strings.HasSuffix(name, c.Suffix()) {
			return c, true
		}
	}
	return nil, false
}

// Suffixes returns the file suffixes which trigger compression
func Suffixes() []string {
	suffixes := make([]string, len(registered))
	for i, c := range registered {
		suffixes[i] = c.Suffix()
	}
	return suffixes
}

// TrimSuffix removes a recognized compression suffix from name
func TrimSuffix(name string) string {
	if c, ok := ForName(name); ok {
		return strings.TrimSuffix(name, c.Suffix())
	}
	return name
}

// WrapReader decompresses r if name carries a recognized suffix. Closing the
// result closes both the decompressor and r. If no suffix matches, r is returned as is.
func WrapReader(name string, r io.ReadCloser) (io.ReadCloser, error) {
	c, ok := ForName(name)
	if !ok {
		return r, nil
	}
	dr, err := c.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &readCloser{Reader: dr, closers: []io.Closer{dr, r}}, nil
}

// WrapWriter compresses to w if name carries a recognized suffix. Closing the
// result closes the compressor, writing any trailer, and then w.
// If no suffix matches, w is returned as is.
func WrapWriter(name string, w io.WriteCloser) (io.WriteCloser, error) {
	c, ok := ForName(name)
	if !ok {
		return w, nil
	}
	cw, err := c.NewWriter(w)
	if err != nil {
		return nil, err
	}
	return &writeCloser{compressor: cw, underlying: w}, nil
}

type flusher interface {
	Flush() error
}

// Flush pushes buffered data through w if it supports flushing, and is a no-op otherwise
func Flush(w io.Writer) error {
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	return closeAll(rc.closers...)
}

type writeCloser struct {
	compressor io.WriteCloser
	underlying io.WriteCloser
}

func (wc *writeCloser) Write(p []byte) (int, error) {
	return wc.compressor.Write(p)
}

// Flush flushes the compressor, and the underlying writer if it supports flushing
func (wc *writeCloser) Flush() error {
	if err := Flush(wc.compressor); err != nil {
		return err
	}
	return Flush(wc.underlying)
}

func (wc *writeCloser) Close() error {
	return closeAll(wc.compressor, wc.underlying)
}

// closeAll closes every closer, in order, even if some fail
func closeAll(closers ...io.Closer) error {
	var multierr *multierror.Error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			multierr = multierror.Append(multierr, err)
		}
	}
	return multierr.ErrorOrNil()
}
