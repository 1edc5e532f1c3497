package compression

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type closeRecorder struct {
	bytes.Buffer
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestForName(t *testing.T) {
	c, ok := ForName("rows.tsv.gz")
	require.True(t, ok)
	require.Equal(t, ".gz", c.Suffix())
	c, ok = ForName("rows.jsonl.lz4")
	require.True(t, ok)
	require.Equal(t, ".lz4", c.Suffix())
	c, ok = ForName("rows.tsv.zst")
	require.True(t, ok)
	require.Equal(t, ".zst", c.Suffix())
	_, ok = ForName("rows.tsv")
	require.False(t, ok)
	_, ok = ForName("rows.gzip")
	require.False(t, ok)
	require.Equal(t, []string{".gz", ".lz4", ".zst"}, Suffixes())
	require.Equal(t, "rows.tsv", TrimSuffix("rows.tsv.gz"))
	require.Equal(t, "rows.tsv", TrimSuffix("rows.tsv"))
}

func TestRoundTrip(t *testing.T) {
	payload := strings.Repeat("id\tname\n1\tAlice\n2\tBob\n", 100)
	for _, name := range []string{"rows.tsv", "rows.tsv.gz", "rows.tsv.lz4", "rows.tsv.zst"} {
		t.Run(name, func(t *testing.T) {
			sink := &closeRecorder{}
			w, err := WrapWriter(name, sink)
			require.Nil(t, err)
			_, err = io.WriteString(w, payload[:len(payload)/2])
			require.Nil(t, err)
			require.Nil(t, Flush(w))
			_, err = io.WriteString(w, payload[len(payload)/2:])
			require.Nil(t, err)
			require.Nil(t, w.Close())
			require.True(t, sink.closed)

			if name != "rows.tsv" {
				require.NotEqual(t, payload, sink.String())
			}

			source := &closeRecorder{}
			source.Write(sink.Bytes())
			r, err := WrapReader(name, source)
			require.Nil(t, err)
			out, err := io.ReadAll(r)
			require.Nil(t, err)
			require.Nil(t, r.Close())
			require.True(t, source.closed)
			require.Equal(t, payload, string(out))
		})
	}
}

func TestWrapReaderCorruptGzip(t *testing.T) {
	source := &closeRecorder{}
	source.WriteString("definitely not gzip")
	_, err := WrapReader("rows.tsv.gz", source)
	require.NotNil(t, err)
}

func TestFlushWithoutFlusher(t *testing.T) {
	require.Nil(t, Flush(&bytes.Buffer{}))
}
