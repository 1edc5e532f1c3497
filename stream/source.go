package stream

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-sif/rowstream"
	"github.com/go-sif/rowstream/compression"
	errors "github.com/go-sif/rowstream/errors"
	"github.com/go-sif/rowstream/stats"
	uuid "github.com/gofrs/uuid"
)

type state int

const (
	unopened state = iota
	opened
	exhausted
	closed
)

// Source is a pull-based stream of Rows decoded from an Origin. It keeps one
// decoded Row in a lookahead slot, so that HasNext never performs I/O.
type Source struct {
	id      string
	origin  rowstream.Origin
	codec   rowstream.Codec
	conf    Conf
	logger  log.Logger
	state   state
	stream  io.ReadCloser
	decoder rowstream.Decoder
	schema  rowstream.Schema
	next    rowstream.Row
	pending error // an error to return from Next before any further Row
	skipped []error
	skips   int
}

// CreateSource is a factory for Sources. The Source must be opened before use.
func CreateSource(origin rowstream.Origin, codec rowstream.Codec, conf *Conf) *Source {
	s := &Source{
		id:     uuid.Must(uuid.NewV4()).String(),
		origin: origin,
		codec:  codec,
		conf:   withDefaults(conf),
	}
	s.logger = log.With(s.conf.Logger, "stream_id", s.id, "source", s.Description())
	return s
}

// OpenSource creates and opens a Source
func OpenSource(ctx context.Context, origin rowstream.Origin, codec rowstream.Codec, conf *Conf) (*Source, error) {
	s := CreateSource(origin, codec, conf)
	if err := s.Open(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Open opens the Origin, decompressing it if its name carries a compression suffix,
// decodes the Schema, and buffers the first Row. Any previously open stream is closed first.
// A missing origin produces an errors.NotFoundError; any other failure an errors.IOError.
func (s *Source) Open(ctx context.Context) error {
	s.release()
	raw, err := s.origin.Open(ctx)
	if err != nil {
		return asSetupError("open", s.origin.Name(), err)
	}
	r, err := compression.WrapReader(s.origin.Name(), raw)
	if err != nil {
		raw.Close()
		return errors.IOError{Op: "decompress", Origin: s.origin.Name(), Err: err}
	}
	s.stream = r
	s.decoder = s.codec.NewDecoder(bufio.NewReaderSize(r, s.conf.BufferSize))
	s.skipped = nil
	s.skips = 0
	sch, err := s.decodeSchema()
	if err != nil {
		s.release()
		return asSetupError("read header of", s.origin.Name(), err)
	}
	s.schema = sch
	s.state = opened
	if err := s.advance(); err != nil {
		s.release()
		return err
	}
	level.Debug(s.logger).Log("msg", "opened source", "columns", sch.KeyCount())
	return nil
}

// Reset reopens the Origin from the beginning, re-reading the Schema and first Row
func (s *Source) Reset(ctx context.Context) error {
	return s.Open(ctx)
}

// HasNext returns true iff Next will return a Row, or a per-row error in Strict mode.
// It performs no I/O.
func (s *Source) HasNext() bool {
	if s.state != opened && s.state != exhausted {
		return false
	}
	return s.next != nil || s.pending != nil
}

// Next returns the buffered Row, and decodes the one after it. It returns an
// errors.NoMoreRowsError if HasNext is false. A read failure while decoding ahead is
// returned by the following call to Next, after which the Source is exhausted.
func (s *Source) Next() (rowstream.Row, error) {
	if s.state != opened && s.state != exhausted {
		return nil, errors.ClosedError{Description: s.Description()}
	}
	if s.pending != nil {
		err := s.pending
		s.pending = nil
		if s.state == opened {
			if terr := s.advance(); terr != nil {
				s.pending = terr
			}
		}
		return nil, err
	}
	if s.next == nil {
		return nil, errors.NoMoreRowsError{}
	}
	r := s.next
	s.conf.Metrics.RowRead(s.codec.Name())
	if terr := s.advance(); terr != nil {
		s.pending = terr
	}
	return r, nil
}

// advance fills the lookahead slot, applying the ErrorPolicy to malformed rows.
// It returns an error only for failures which end the stream.
func (s *Source) advance() error {
	s.next = nil
	for {
		r, err := s.decoder.DecodeRow(s.schema)
		if err == nil {
			s.next = r
			return nil
		}
		if err == io.EOF {
			s.state = exhausted
			return nil
		}
		var malformed errors.MalformedRowError
		if !stderrors.As(err, &malformed) {
			s.state = exhausted
			return errors.IOError{Op: "read", Origin: s.origin.Name(), Err: err}
		}
		if s.conf.ErrorPolicy == Strict {
			s.countSkip()
			s.pending = err
			return nil
		}
		s.skip(err)
	}
}

// decodeSchema reads the Schema. In Lenient mode, malformed records preceding a Schema
// inferred from the first row are skipped like any other malformed row.
func (s *Source) decodeSchema() (rowstream.Schema, error) {
	for {
		sch, err := s.decoder.DecodeSchema()
		var malformed errors.MalformedRowError
		if err == nil || s.conf.ErrorPolicy == Strict || !stderrors.As(err, &malformed) {
			return sch, err
		}
		s.skip(err)
	}
}

func (s *Source) countSkip() {
	s.skips++
	s.conf.Metrics.RowSkipped(s.codec.Name(), stats.ReasonMalformed)
}

// skip records a malformed row dropped in Lenient mode
func (s *Source) skip(err error) {
	s.countSkip()
	if len(s.skipped) < maxRecordedSkips {
		s.skipped = append(s.skipped, err)
	}
	level.Debug(s.logger).Log("msg", "skipping malformed row", "err", err)
}

// Schema returns the Schema decoded from the header, shared by every Row of this Source.
// It is nil until the Source has been opened.
func (s *Source) Schema() rowstream.Schema {
	return s.schema
}

// Skipped returns the malformed-row errors skipped in Lenient mode since the Source was last
// opened. Only the first 100 are kept; SkipCount returns the total.
func (s *Source) Skipped() []error {
	skipped := make([]error, len(s.skipped))
	copy(skipped, s.skipped)
	return skipped
}

// SkipCount returns the number of malformed rows encountered since the Source was last opened
func (s *Source) SkipCount() int {
	return s.skips
}

// Description returns a human-readable identifier of the Origin and Codec, for logging
func (s *Source) Description() string {
	return fmt.Sprintf("%s[%s]", s.origin.Name(), s.codec.Name())
}

// Close releases the underlying stream. Errors are logged rather than returned.
// Close is idempotent; a closed Source may be reopened with Open or Reset.
func (s *Source) Close() {
	if s.state == closed {
		return
	}
	if s.skips > 0 {
		level.Warn(s.logger).Log("msg", "skipped malformed rows", "count", s.skips)
	}
	s.release()
	s.state = closed
}

func (s *Source) release() {
	if s.stream != nil {
		if err := s.stream.Close(); err != nil {
			level.Warn(s.logger).Log("msg", "couldn't close source", "err", err)
		}
	}
	s.stream = nil
	s.decoder = nil
	s.next = nil
	s.pending = nil
	s.state = unopened
}

// asSetupError passes through typed errors, and wraps anything else as an IOError
func asSetupError(op string, name string, err error) error {
	var nf errors.NotFoundError
	var ioErr errors.IOError
	var malformed errors.MalformedRowError
	if stderrors.As(err, &nf) || stderrors.As(err, &ioErr) || stderrors.As(err, &malformed) {
		return err
	}
	return errors.IOError{Op: op, Origin: name, Err: err}
}
