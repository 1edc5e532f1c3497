package stream

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/go-sif/rowstream"
	"github.com/go-sif/rowstream/codec/dsv"
	"github.com/go-sif/rowstream/codec/jsonl"
	errors "github.com/go-sif/rowstream/errors"
	"github.com/go-sif/rowstream/origin/file"
	"github.com/go-sif/rowstream/origin/memory"
	"github.com/go-sif/rowstream/stats"
	rstesting "github.com/go-sif/rowstream/testing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func mustRows(t *testing.T, keys []string, values ...[]string) []rowstream.Row {
	rows, err := rstesting.Rows(keys, values...)
	require.Nil(t, err)
	return rows
}

func TestRoundTrip(t *testing.T) {
	keys := []string{"id", "name", "score"}
	values := [][]string{{"1", "Alice", "3.5"}, {"2", "Bob", ""}, {"3", "Carol", "-1"}}
	for _, name := range []string{"rows.tsv", "rows.tsv.gz", "rows.tsv.lz4", "rows.tsv.zst"} {
		t.Run(name, func(t *testing.T) {
			dest := memory.CreateDestination(name)
			sink, err := OpenSink(context.Background(), dest, dsv.TabDelimited(), nil)
			require.Nil(t, err)
			for _, r := range mustRows(t, keys, values...) {
				require.Nil(t, sink.WriteRow(r))
			}
			require.Equal(t, 3, sink.RowsWritten())
			require.Nil(t, sink.Close())

			src, err := OpenSource(context.Background(), dest.Origin(), dsv.TabDelimited(), nil)
			require.Nil(t, err)
			defer src.Close()
			require.Equal(t, keys, src.Schema().Keys())
			rows, errs := rstesting.Collect(src)
			require.Empty(t, errs)
			require.Equal(t, values, rows)
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.tsv.gz")
	sink, err := OpenSink(context.Background(), file.CreateDestination(path), dsv.TabDelimited(), nil)
	require.Nil(t, err)
	for _, r := range mustRows(t, []string{"id"}, []string{"1"}, []string{"2"}) {
		require.Nil(t, sink.WriteRow(r))
	}
	require.Nil(t, sink.Close())

	src, err := OpenSource(context.Background(), file.CreateOrigin(path), dsv.TabDelimited(), nil)
	require.Nil(t, err)
	defer src.Close()
	rows, errs := rstesting.Collect(src)
	require.Empty(t, errs)
	require.Equal(t, [][]string{{"1"}, {"2"}}, rows)
}

func TestHeaderComesFromFirstRow(t *testing.T) {
	dest := memory.CreateDestination("rows.tsv")
	sink, err := OpenSink(context.Background(), dest, dsv.TabDelimited(), nil)
	require.Nil(t, err)
	require.Nil(t, sink.WriteRow(mustRows(t, []string{"id", "name"}, []string{"1", "Alice"})[0]))
	// missing and reordered columns are written in header order
	require.Nil(t, sink.WriteRow(mustRows(t, []string{"id"}, []string{"2"})[0]))
	require.Nil(t, sink.WriteRow(mustRows(t, []string{"name", "id"}, []string{"Carol", "3"})[0]))
	require.Nil(t, sink.Close())
	require.Equal(t, "id\tname\n1\tAlice\n2\t\n3\tCarol\n", string(dest.Bytes()))
}

func TestExtraColumnsLenient(t *testing.T) {
	var logs bytes.Buffer
	metrics := stats.NewMetrics(prometheus.NewRegistry())
	dest := memory.CreateDestination("rows.tsv")
	conf := &Conf{Logger: log.NewLogfmtLogger(&logs), Metrics: metrics}
	sink, err := OpenSink(context.Background(), dest, dsv.TabDelimited(), conf)
	require.Nil(t, err)
	require.Nil(t, sink.WriteRow(mustRows(t, []string{"id"}, []string{"1"})[0]))
	// an empty extra cell loses nothing, and must not hide later losses
	require.Nil(t, sink.WriteRow(mustRows(t, []string{"id", "age"}, []string{"2", ""})[0]))
	require.NotContains(t, logs.String(), "dropping columns")
	require.Nil(t, sink.WriteRow(mustRows(t, []string{"id", "age"}, []string{"3", "31"})[0]))
	require.Nil(t, sink.WriteRow(mustRows(t, []string{"id", "age"}, []string{"4", "32"})[0]))
	require.Nil(t, sink.Close())

	require.Equal(t, "id\n1\n2\n3\n4\n", string(dest.Bytes()))
	require.Equal(t, 1, strings.Count(logs.String(), "dropping columns"))
	require.Contains(t, logs.String(), "columns=age")
	require.Equal(t, float64(2), testutil.ToFloat64(metrics.DroppedCells.WithLabelValues("tsv")))
	require.Equal(t, float64(0), testutil.ToFloat64(metrics.RowsSkipped.WithLabelValues("tsv", stats.ReasonExtraColumns)))
}

func TestExtraColumnsStrict(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := stats.NewMetrics(reg)
	dest := memory.CreateDestination("rows.tsv")
	sink, err := OpenSink(context.Background(), dest, dsv.TabDelimited(), &Conf{ErrorPolicy: Strict, Metrics: metrics})
	require.Nil(t, err)
	require.Nil(t, sink.WriteRow(mustRows(t, []string{"id"}, []string{"1"})[0]))

	err = sink.WriteRow(mustRows(t, []string{"id", "age"}, []string{"2", "30"})[0])
	require.IsType(t, errors.ShapeError{}, err)
	require.False(t, errors.IsRecoverable(err))

	// empty extra cells hold nothing to lose
	require.Nil(t, sink.WriteRow(mustRows(t, []string{"id", "age"}, []string{"3", ""})[0]))
	require.Equal(t, 2, sink.RowsWritten())
	require.Nil(t, sink.Close())
	require.Equal(t, "id\n1\n3\n", string(dest.Bytes()))
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.RowsSkipped.WithLabelValues("tsv", stats.ReasonExtraColumns)))
	require.Equal(t, float64(2), testutil.ToFloat64(metrics.RowsWritten.WithLabelValues("tsv")))
}

func TestUnencodableValueIsPerRow(t *testing.T) {
	dest := memory.CreateDestination("rows.tsv")
	sink, err := OpenSink(context.Background(), dest, dsv.TabDelimited(), nil)
	require.Nil(t, err)
	rows := mustRows(t, []string{"id", "note"}, []string{"1", "a\tb"}, []string{"2", "line\nbreak"}, []string{"3", "ok"})
	require.IsType(t, errors.MalformedRowError{}, sink.WriteRow(rows[0]))
	require.IsType(t, errors.MalformedRowError{}, sink.WriteRow(rows[1]))
	require.Nil(t, sink.WriteRow(rows[2]))
	require.Nil(t, sink.Close())
	require.Equal(t, "id\tnote\n3\tok\n", string(dest.Bytes()))
}

func TestFlushInterval(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := stats.NewMetrics(reg)
	path := filepath.Join(t.TempDir(), "rows.tsv")
	sink, err := OpenSink(context.Background(), file.CreateDestination(path), dsv.TabDelimited(), &Conf{FlushInterval: 2, Metrics: metrics})
	require.Nil(t, err)
	rows := mustRows(t, []string{"id"}, []string{"1"}, []string{"2"}, []string{"3"})

	require.Nil(t, sink.WriteRow(rows[0]))
	data, err := os.ReadFile(path)
	require.Nil(t, err)
	require.Empty(t, data)

	require.Nil(t, sink.WriteRow(rows[1]))
	data, err = os.ReadFile(path)
	require.Nil(t, err)
	require.Equal(t, "id\n1\n2\n", string(data))

	require.Nil(t, sink.WriteRow(rows[2]))
	data, err = os.ReadFile(path)
	require.Nil(t, err)
	require.Equal(t, "id\n1\n2\n", string(data))
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.Flushes.WithLabelValues("tsv")))

	require.Nil(t, sink.Close())
	data, err = os.ReadFile(path)
	require.Nil(t, err)
	require.Equal(t, "id\n1\n2\n3\n", string(data))
	require.Equal(t, float64(2), testutil.ToFloat64(metrics.Flushes.WithLabelValues("tsv")))
}

func TestWriteAfterClose(t *testing.T) {
	sink, err := OpenSink(context.Background(), memory.CreateDestination("rows.tsv"), dsv.TabDelimited(), nil)
	require.Nil(t, err)
	require.Nil(t, sink.Close())
	require.Nil(t, sink.Close())
	err = sink.WriteRow(mustRows(t, []string{"id"}, []string{"1"})[0])
	require.IsType(t, errors.ClosedError{}, err)
	require.IsType(t, errors.ClosedError{}, sink.Flush())
}

func TestSinkResetTruncates(t *testing.T) {
	dest := memory.CreateDestination("rows.tsv")
	sink, err := OpenSink(context.Background(), dest, dsv.TabDelimited(), nil)
	require.Nil(t, err)
	require.Nil(t, sink.WriteRow(mustRows(t, []string{"id"}, []string{"1"})[0]))
	require.Nil(t, sink.Reset(context.Background()))
	require.Equal(t, 0, sink.RowsWritten())
	require.Nil(t, sink.WriteRow(mustRows(t, []string{"name"}, []string{"Bob"})[0]))
	require.Nil(t, sink.Close())
	require.Equal(t, "name\nBob\n", string(dest.Bytes()))
}

func TestSinkCreateNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "rows.tsv")
	_, err := OpenSink(context.Background(), file.CreateDestination(path), dsv.TabDelimited(), nil)
	require.IsType(t, errors.NotFoundError{}, err)
}

func TestJSONLRoundTrip(t *testing.T) {
	dest := memory.CreateDestination("rows.jsonl.gz")
	codec := jsonl.CreateCodec(&jsonl.CodecConf{})
	sink, err := OpenSink(context.Background(), dest, codec, nil)
	require.Nil(t, err)
	// each object carries its own columns
	require.Nil(t, sink.WriteRow(mustRows(t, []string{"id", "name"}, []string{"1", "Alice"})[0]))
	require.Nil(t, sink.WriteRow(mustRows(t, []string{"id", "age"}, []string{"2", "30"})[0]))
	require.Nil(t, sink.Close())

	src, err := OpenSource(context.Background(), dest.Origin(), codec, nil)
	require.Nil(t, err)
	defer src.Close()
	rows, errs := rstesting.Collect(src)
	require.Empty(t, errs)
	require.Equal(t, [][]string{{"1", "Alice"}, {"2", "", "30"}}, rows)
	require.Equal(t, []string{"id", "name", "age"}, src.Schema().Keys())
}

func TestSinkDescription(t *testing.T) {
	sink := CreateSink(memory.CreateDestination("out.jsonl"), jsonl.CreateCodec(&jsonl.CodecConf{}), nil)
	require.Equal(t, "out.jsonl[jsonl]", sink.Description())
	require.Nil(t, sink.Close())
}
