package stream

import (
	"github.com/go-kit/log"
	"github.com/go-sif/rowstream/logging"
	"github.com/go-sif/rowstream/stats"
)

// ErrorPolicy controls how per-row problems are handled
type ErrorPolicy int

const (
	// Lenient skips malformed rows when reading, and drops columns which are not in the header when
	// writing. Both are logged and counted, but never returned to the caller. Dropped columns are
	// logged once per distinct row Schema, and counted per non-empty cell.
	Lenient ErrorPolicy = iota
	// Strict returns malformed rows from Source.Next, and rejects rows carrying columns which are
	// not in the header from Sink.WriteRow. Both are per-row errors: the stream remains usable.
	Strict
)

// String returns "lenient" or "strict"
func (p ErrorPolicy) String() string {
	if p == Strict {
		return "strict"
	}
	return "lenient"
}

const (
	defaultFlushInterval = 1000
	defaultBufferSize    = 64 * 1024
	maxRecordedSkips     = 100
)

// Conf configures a Source or Sink
type Conf struct {
	ErrorPolicy   ErrorPolicy    // How to handle malformed rows and unexpected columns. Defaults to Lenient.
	FlushInterval int            // The number of rows a Sink writes between flushes. Defaults to 1000.
	BufferSize    int            // The size in bytes of read and write buffers. Defaults to 64 KiB.
	Logger        log.Logger     // Defaults to a logger which discards everything.
	Metrics       *stats.Metrics // Defaults to nil, which records nothing.
}

// withDefaults returns a copy of conf with defaults filled in. conf may be nil.
func withDefaults(conf *Conf) Conf {
	var c Conf
	if conf != nil {
		c = *conf
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = defaultFlushInterval
	}
	if c.BufferSize <= 0 {
		c.BufferSize = defaultBufferSize
	}
	c.Logger = logging.OrNop(c.Logger)
	return c
}
