package jsonl

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-sif/rowstream"
	errors "github.com/go-sif/rowstream/errors"
	"github.com/go-sif/rowstream/row"
	"github.com/go-sif/rowstream/schema"
	"github.com/tidwall/gjson"
)

type decoder struct {
	scanner       *bufio.Scanner
	maxBufferSize int
	line          int
	pending       *gjson.Result // the first object, read to build the Schema
}

// DecodeSchema reads the first non-blank object and uses its keys as columns.
// The object is kept, and returned by the first call to DecodeRow.
func (d *decoder) DecodeSchema() (rowstream.Schema, error) {
	obj, err := d.next()
	if err == io.EOF {
		return schema.CreateSchema(), nil
	} else if err != nil {
		return nil, err
	}
	var keys []string
	obj.ForEach(func(key, value gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	d.pending = &obj
	return schema.CreateSchema(keys...), nil
}

// DecodeRow reads the next non-blank object into a Row, growing the Schema with any new keys
func (d *decoder) DecodeRow(s rowstream.Schema) (rowstream.Row, error) {
	var obj gjson.Result
	if d.pending != nil {
		obj = *d.pending
		d.pending = nil
	} else {
		var err error
		obj, err = d.next()
		if err != nil {
			return nil, err
		}
	}
	var values []string
	obj.ForEach(func(key, value gjson.Result) bool {
		idx := s.AddOrGetIndex(key.String())
		for len(values) <= idx {
			values = append(values, "")
		}
		values[idx] = cellValue(value)
		return true
	})
	return row.CreateRow(s, values)
}

// next returns the next non-blank line as a JSON object
func (d *decoder) next() (gjson.Result, error) {
	for d.scanner.Scan() {
		d.line++
		raw := d.scanner.Text()
		if len(strings.TrimSpace(raw)) == 0 {
			continue
		}
		if !gjson.Valid(raw) {
			return gjson.Result{}, errors.MalformedRowError{Line: d.line, Reason: "invalid JSON"}
		}
		obj := gjson.Parse(raw)
		if !obj.IsObject() {
			return gjson.Result{}, errors.MalformedRowError{Line: d.line, Reason: "not a JSON object"}
		}
		return obj, nil
	}
	if err := d.scanner.Err(); err != nil {
		if stderrors.Is(err, bufio.ErrTooLong) {
			return gjson.Result{}, fmt.Errorf("line %d exceeds the maximum buffer size of %d bytes: %w", d.line+1, d.maxBufferSize, err)
		}
		return gjson.Result{}, err
	}
	return gjson.Result{}, io.EOF
}

// cellValue flattens a JSON value to a cell: strings are unquoted, null is empty,
// and everything else keeps its JSON text
func cellValue(value gjson.Result) string {
	switch value.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return value.String()
	default:
		return value.Raw
	}
}
