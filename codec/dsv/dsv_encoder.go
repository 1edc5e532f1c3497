package dsv

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-sif/rowstream"
	errors "github.com/go-sif/rowstream/errors"
)

type encoder struct {
	codec *Codec
	w     io.Writer
	line  int
	buf   strings.Builder
}

// EncodeSchema writes the header line
func (e *encoder) EncodeSchema(s rowstream.Schema) error {
	keys := s.Keys()
	for _, k := range keys {
		if err := e.check(k); err != nil {
			return errors.MalformedRowError{Line: e.line + 1, Reason: fmt.Sprintf("column name %q %s", k, err)}
		}
	}
	return e.writeLine(keys)
}

// EncodeRow writes a Row's cells in header order. Cells missing from the Row are written empty;
// cells for keys absent from header are not written. Values containing the delimiter or a line
// break cannot be represented, and produce a MalformedRowError without writing anything.
func (e *encoder) EncodeRow(header rowstream.Schema, r rowstream.Row) error {
	if header == nil {
		header = r.Schema()
	}
	keys := header.Keys()
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = r.GetString(k)
		if err := e.check(values[i]); err != nil {
			return errors.MalformedRowError{Line: e.line + 1, Reason: fmt.Sprintf("column %s %s", k, err)}
		}
	}
	return e.writeLine(values)
}

func (e *encoder) check(value string) error {
	if strings.Contains(value, e.codec.delimiter) {
		return fmt.Errorf("contains the delimiter %q", e.codec.conf.Delimiter)
	}
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("contains a line break")
	}
	return nil
}

func (e *encoder) writeLine(fields []string) error {
	e.buf.Reset()
	for i, f := range fields {
		if i > 0 {
			e.buf.WriteString(e.codec.delimiter)
		}
		e.buf.WriteString(f)
	}
	e.buf.WriteByte('\n')
	if _, err := io.WriteString(e.w, e.buf.String()); err != nil {
		return err
	}
	e.line++
	return nil
}
