package dsv

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
)

type decoder struct {
	codec   *Codec
	scanner *bufio.Scanner
	line    int
}

// DecodeSchema reads the header line, after any skipped lines and comments
func (d *decoder) DecodeSchema() (rowstream.Schema, error) {
	for i := 0; i < d.codec.conf.SkipLines; i++ {
		if !d.scan() {
			return schema.CreateSchema(), d.scanErr()
		}
	}
	for d.scan() {
		header := d.scanner.Text()
		if d.codec.isComment(header) {
			continue
		}
		return schema.CreateSchema(strings.Split(header, d.codec.delimiter)...), nil
	}
	if err := d.scanErr(); err != nil {
		return nil, err
	}
	return schema.CreateSchema(), nil
}

// DecodeRow reads the next non-blank line into a Row
func (d *decoder) DecodeRow(s rowstream.Schema) (rowstream.Row, error) {
	for d.scan() {
		raw := d.scanner.Text()
		if len(strings.TrimSpace(raw)) == 0 || d.codec.isComment(raw) {
			continue
		}
		fields := strings.Split(raw, d.codec.delimiter)
		// tolerate trailing delimiters, but nothing else beyond the schema's width
		for len(fields) > s.KeyCount() && fields[len(fields)-1] == "" {
			fields = fields[:len(fields)-1]
		}
		if len(fields) > s.KeyCount() {
			return nil, errors.MalformedRowError{Line: d.line, Fields: len(fields), Columns: s.KeyCount()}
		}
		return row.CreateRow(s, fields)
	}
	if err := d.scanErr(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (d *decoder) scan() bool {
	if d.scanner.Scan() {
		d.line++
		return true
	}
	return false
}

// scanErr explains a line which does not fit in MaxLineSize. The scanner cannot
// resume after one, so it ends the stream.
func (d *decoder) scanErr() error {
	err := d.scanner.Err()
	if stderrors.Is(err, bufio.ErrTooLong) {
		return fmt.Errorf("line %d exceeds the maximum line size of %d bytes: %w", d.line+1, d.codec.conf.MaxLineSize, err)
	}
	return err
}
