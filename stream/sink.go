package stream

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-sif/rowstream"
	"github.com/go-sif/rowstream/compression"
	errors "github.com/go-sif/rowstream/errors"
	"github.com/go-sif/rowstream/schema"
	"github.com/go-sif/rowstream/stats"
	uuid "github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
)

// Sink is a buffered stream of Rows encoded to a Destination. The header is fixed by the
// first Row written. Output is flushed every FlushInterval rows, and on Close, which callers
// must always reach: rows buffered since the last flush are lost otherwise.
type Sink struct {
	id                string
	dest              rowstream.Destination
	codec             rowstream.Codec
	conf              Conf
	logger            log.Logger
	state             state
	stream            io.WriteCloser
	buf               *bufio.Writer
	encoder           rowstream.Encoder
	header            rowstream.Schema
	headerFingerprint uint64
	extras            map[uint64][]string // columns absent from the header, by row Schema fingerprint
	warned            map[uint64]bool
	written           int
}

// CreateSink is a factory for Sinks. The Sink must be opened before use.
func CreateSink(dest rowstream.Destination, codec rowstream.Codec, conf *Conf) *Sink {
	s := &Sink{
		id:    uuid.Must(uuid.NewV4()).String(),
		dest:  dest,
		codec: codec,
		conf:  withDefaults(conf),
	}
	s.logger = log.With(s.conf.Logger, "stream_id", s.id, "sink", s.Description())
	return s
}

// OpenSink creates and opens a Sink
func OpenSink(ctx context.Context, dest rowstream.Destination, codec rowstream.Codec, conf *Conf) (*Sink, error) {
	s := CreateSink(dest, codec, conf)
	if err := s.Open(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Open creates the Destination, truncating any existing content and compressing the output
// if the Destination's name carries a compression suffix. If the Sink is already open, the
// current stream is closed first (and its errors logged).
func (s *Sink) Open(ctx context.Context) error {
	if s.state == opened {
		if err := s.closeStream(); err != nil {
			level.Warn(s.logger).Log("msg", "couldn't close sink before reopening", "err", err)
		}
	}
	raw, err := s.dest.Create(ctx)
	if err != nil {
		return asSetupError("create", s.dest.Name(), err)
	}
	w, err := compression.WrapWriter(s.dest.Name(), raw)
	if err != nil {
		raw.Close()
		return errors.IOError{Op: "compress", Origin: s.dest.Name(), Err: err}
	}
	s.stream = w
	s.buf = bufio.NewWriterSize(w, s.conf.BufferSize)
	s.encoder = s.codec.NewEncoder(s.buf)
	s.header = nil
	s.extras = make(map[uint64][]string)
	s.warned = make(map[uint64]bool)
	s.written = 0
	s.state = opened
	level.Debug(s.logger).Log("msg", "opened sink")
	return nil
}

// Reset truncates the Destination and starts writing again, including a new header
func (s *Sink) Reset(ctx context.Context) error {
	return s.Open(ctx)
}

// WriteRow encodes a Row. The first Row fixes the header: its Schema's keys, in order, are
// written as the header record if the Codec requires one. Subsequent Rows are written in header
// order, with missing columns left empty. Columns absent from the header are dropped (Lenient)
// or cause an errors.ShapeError (Strict). Per-row errors leave the Sink open.
func (s *Sink) WriteRow(r rowstream.Row) error {
	if s.state != opened {
		return errors.ClosedError{Description: s.Description()}
	}
	if s.header == nil {
		header := schema.CreateSchema(r.Schema().Keys()...)
		if s.codec.RequiresHeader() {
			if err := s.encoder.EncodeSchema(header); err != nil {
				return s.encodeError(err)
			}
		}
		s.header = header
		s.headerFingerprint = header.Fingerprint()
	}
	if s.codec.RequiresHeader() {
		if err := s.checkColumns(r); err != nil {
			s.conf.Metrics.RowSkipped(s.codec.Name(), stats.ReasonExtraColumns)
			return err
		}
	}
	if err := s.encoder.EncodeRow(s.header, r); err != nil {
		return s.encodeError(err)
	}
	s.written++
	s.conf.Metrics.RowWritten(s.codec.Name())
	if s.written%s.conf.FlushInterval == 0 {
		return s.flush()
	}
	return nil
}

// checkColumns applies the ErrorPolicy to cells which the header cannot hold
func (s *Sink) checkColumns(r rowstream.Row) error {
	fingerprint := r.Schema().Fingerprint()
	if fingerprint == s.headerFingerprint {
		return nil
	}
	extras, seen := s.extras[fingerprint]
	if !seen {
		for _, k := range r.Schema().Keys() {
			if !s.header.ContainsKey(k) {
				extras = append(extras, k)
			}
		}
		s.extras[fingerprint] = extras
	}
	var dropped []string
	for _, k := range extras {
		if v, ok := r.Lookup(k); ok && v != "" {
			dropped = append(dropped, k)
		}
	}
	if len(dropped) == 0 {
		return nil
	}
	if s.conf.ErrorPolicy == Strict {
		return errors.ShapeError{
			Values:  r.Len(),
			Columns: s.header.KeyCount(),
			Reason:  fmt.Sprintf("columns %s are not in the header", strings.Join(dropped, ", ")),
		}
	}
	s.conf.Metrics.CellsDropped(s.codec.Name(), len(dropped))
	if !s.warned[fingerprint] {
		s.warned[fingerprint] = true
		level.Warn(s.logger).Log("msg", "dropping columns which are not in the header", "columns", strings.Join(dropped, ","))
	}
	return nil
}

// encodeError reports a per-row encoding problem as is, and anything else as an IOError
func (s *Sink) encodeError(err error) error {
	s.conf.Metrics.RowSkipped(s.codec.Name(), stats.ReasonEncode)
	var malformed errors.MalformedRowError
	if stderrors.As(err, &malformed) {
		level.Debug(s.logger).Log("msg", "couldn't encode row", "err", err)
		return err
	}
	return errors.IOError{Op: "write", Origin: s.dest.Name(), Err: err}
}

// Flush pushes buffered rows through the compressor to the Destination
func (s *Sink) Flush() error {
	if s.state != opened {
		return errors.ClosedError{Description: s.Description()}
	}
	return s.flush()
}

func (s *Sink) flush() error {
	if err := s.buf.Flush(); err != nil {
		return errors.IOError{Op: "flush", Origin: s.dest.Name(), Err: err}
	}
	if err := compression.Flush(s.stream); err != nil {
		return errors.IOError{Op: "flush", Origin: s.dest.Name(), Err: err}
	}
	s.conf.Metrics.Flushed(s.codec.Name())
	return nil
}

// RowsWritten returns the number of Rows written since the Sink was last opened
func (s *Sink) RowsWritten() int {
	return s.written
}

// Description returns a human-readable identifier of the Destination and Codec, for logging
func (s *Sink) Description() string {
	return fmt.Sprintf("%s[%s]", s.dest.Name(), s.codec.Name())
}

// Close flushes buffered rows and closes the Destination. Unlike Source.Close, errors are
// returned (and logged), since they mean written rows may have been lost. Close is idempotent.
func (s *Sink) Close() error {
	if s.state != opened {
		return nil
	}
	err := s.closeStream()
	if err != nil {
		level.Error(s.logger).Log("msg", "couldn't close sink", "rows", s.written, "err", err)
	} else {
		level.Debug(s.logger).Log("msg", "closed sink", "rows", s.written)
	}
	return err
}

func (s *Sink) closeStream() error {
	var multierr *multierror.Error
	if err := s.flush(); err != nil {
		multierr = multierror.Append(multierr, err)
	}
	if err := s.stream.Close(); err != nil {
		multierr = multierror.Append(multierr, errors.IOError{Op: "close", Origin: s.dest.Name(), Err: err})
	}
	s.stream = nil
	s.buf = nil
	s.encoder = nil
	s.state = closed
	return multierr.ErrorOrNil()
}
