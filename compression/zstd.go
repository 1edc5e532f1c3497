package compression

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// zstdCompression handles the ".zst" convention
type zstdCompression struct{}

func (z *zstdCompression) Suffix() string {
	return ".zst"
}

// NewReader decompresses a zstd stream. Closing the result stops the decoder's goroutines.
func (z *zstdCompression) NewReader(r io.Reader) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return decoder.IOReadCloser(), nil
}

func (z *zstdCompression) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
}
