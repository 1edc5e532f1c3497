package stream

import (
	stderrors "errors"

	"github.com/go-sif/rowstream"
	errors "github.com/go-sif/rowstream/errors"
	"github.com/hashicorp/go-multierror"
)

// RowIterator is the reading half of a Source
type RowIterator interface {
	HasNext() bool
	Next() (rowstream.Row, error)
}

// RowWriter is the writing half of a Sink
type RowWriter interface {
	WriteRow(r rowstream.Row) error
}

// Copy drains src into sink, returning the number of Rows written. Per-row errors from
// either side are accumulated and copying continues; an errors.IOError or errors.ClosedError
// stops the copy. The sink is neither flushed nor closed.
func Copy(src RowIterator, sink RowWriter) (int, error) {
	var multierr *multierror.Error
	n := 0
	for src.HasNext() {
		r, err := src.Next()
		if err != nil {
			multierr = multierror.Append(multierr, err)
			if isStreamFailure(err) {
				break
			}
			continue
		}
		if err := sink.WriteRow(r); err != nil {
			multierr = multierror.Append(multierr, err)
			if isStreamFailure(err) {
				break
			}
			continue
		}
		n++
	}
	return n, multierr.ErrorOrNil()
}

func isStreamFailure(err error) bool {
	var ioErr errors.IOError
	var closedErr errors.ClosedError
	return stderrors.As(err, &ioErr) || stderrors.As(err, &closedErr)
}
