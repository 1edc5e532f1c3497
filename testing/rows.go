// Package testing provides helpers for exercising Sources, Sinks and Codecs in tests
package testing

import (
	"context"

	"github.com/go-sif/rowstream"
	"github.com/go-sif/rowstream/origin/memory"
	"github.com/go-sif/rowstream/row"
	"github.com/go-sif/rowstream/schema"
)

// Iterator is anything which yields Rows with a lookahead check, such as a stream.Source
type Iterator interface {
	HasNext() bool
	Next() (rowstream.Row, error)
}

// Collect drains it, returning the values of every Row and every per-row error, in order
func Collect(it Iterator) (rows [][]string, errs []error) {
	for it.HasNext() {
		r, err := it.Next()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rows = append(rows, r.Values())
	}
	return rows, errs
}

// Rows builds Rows sharing a single Schema made from keys
func Rows(keys []string, values ...[]string) ([]rowstream.Row, error) {
	s := schema.CreateSchema(keys...)
	rows := make([]rowstream.Row, 0, len(values))
	for _, v := range values {
		r, err := row.CreateRow(s, v)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// Encode writes a header and rows to an in-memory buffer with codec, without compression
func Encode(codec rowstream.Codec, keys []string, values ...[]string) ([]byte, error) {
	rows, err := Rows(keys, values...)
	if err != nil {
		return nil, err
	}
	dest := memory.CreateDestination("encoded")
	w, err := dest.Create(context.Background())
	if err != nil {
		return nil, err
	}
	enc := codec.NewEncoder(w)
	header := schema.CreateSchema(keys...)
	if codec.RequiresHeader() {
		if err := enc.EncodeSchema(header); err != nil {
			return nil, err
		}
	}
	for _, r := range rows {
		if err := enc.EncodeRow(header, r); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return dest.Bytes(), nil
}
