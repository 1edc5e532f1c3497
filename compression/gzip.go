package compression

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// gzipCompression handles the ".gz" convention
type gzipCompression struct{}

func (g *gzipCompression) Suffix() string {
	return ".gz"
}

func (g *gzipCompression) NewReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

func (g *gzipCompression) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriter(w), nil
}
