package jsonl

import (
	"bufio"
	"io"

	"github.com/go-sif/rowstream"
	jsoniter "github.com/json-iterator/go"
)

// CodecConf configures a JSONL Codec, suitable for JSON lines data
type CodecConf struct {
	MaxBufferSize int // Maximum size in bytes of a single line. A longer line ends the stream with an error wrapping bufio.ErrTooLong. Defaults to 1 MiB.
}

// Codec reads and writes JSON Lines
type Codec struct {
	conf *CodecConf
}

// CreateCodec returns a new JSONL Codec
func CreateCodec(conf *CodecConf) *Codec {
	if conf.MaxBufferSize == 0 {
		conf.MaxBufferSize = 1 << 20
	}
	return &Codec{conf: conf}
}

// Name returns "jsonl"
func (c *Codec) Name() string {
	return "jsonl"
}

// RequiresHeader returns false, since every JSON object names its own columns
func (c *Codec) RequiresHeader() bool {
	return false
}

// NewDecoder begins decoding JSONL data from r
func (c *Codec) NewDecoder(r io.Reader) rowstream.Decoder {
	scanner := bufio.NewScanner(r)
	initial := 4096
	if initial > c.conf.MaxBufferSize {
		initial = c.conf.MaxBufferSize
	}
	scanner.Buffer(make([]byte, 0, initial), c.conf.MaxBufferSize)
	return &decoder{scanner: scanner, maxBufferSize: c.conf.MaxBufferSize}
}

// NewEncoder begins encoding JSONL data to w
func (c *Codec) NewEncoder(w io.Writer) rowstream.Encoder {
	return &encoder{stream: jsoniter.NewStream(jsoniter.ConfigDefault, w, 512)}
}

// String returns the name of this Codec
func (c *Codec) String() string {
	return c.Name()
}
