package compression

import (
	"io"

	"github.com/pierrec/lz4"
)

// lz4Compression is a compression which uses the lz4 frame format
type lz4Compression struct{}

func (l *lz4Compression) Suffix() string {
	return ".lz4"
}

// NewReader decompresses lz4 frames. The lz4 reader holds no resources, so Close is a no-op.
func (l *lz4Compression) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

func (l *lz4Compression) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(w), nil
}
