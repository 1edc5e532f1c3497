package dsv

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/go-sif/rowstream"
)

// CodecConf configures a DSV Codec
type CodecConf struct {
	Name        string // The name of the codec, used in descriptions and metrics. Defaults to "tsv" for tabs, "dsv" otherwise.
	Delimiter   rune   // The delimiter separating columns. Defaults to \t
	Comment     rune   // Lines beginning with the comment character are ignored. Cannot be equal to the Delimiter. Defaults to no comment character.
	SkipLines   int    // The number of lines to ignore from the beginning of each stream, before the header. Defaults to 0.
	MaxLineSize int    // Maximum size in bytes of a single line. A longer line ends the stream with an error wrapping bufio.ErrTooLong. Defaults to 1 MiB.
}

// Codec reads and writes flat delimiter-separated text, one record per line,
// with a header line naming the columns. Fields are not quoted or escaped.
type Codec struct {
	conf      *CodecConf
	delimiter string
}

// CreateCodec returns a new DSV Codec
func CreateCodec(conf *CodecConf) (*Codec, error) {
	if conf.Delimiter == 0 {
		conf.Delimiter = '\t'
	}
	if conf.Delimiter == '\n' || conf.Delimiter == '\r' {
		return nil, fmt.Errorf("DSV delimiter cannot be a line break")
	}
	if conf.Comment != 0 && conf.Comment == conf.Delimiter {
		return nil, fmt.Errorf("DSV comment character cannot be equal to the delimiter %q", conf.Delimiter)
	}
	if conf.MaxLineSize == 0 {
		conf.MaxLineSize = 1 << 20
	}
	if conf.Name == "" {
		if conf.Delimiter == '\t' {
			conf.Name = "tsv"
		} else {
			conf.Name = "dsv"
		}
	}
	return &Codec{conf: conf, delimiter: string(conf.Delimiter)}, nil
}

// TabDelimited returns a Codec for tab-delimited text with default settings
func TabDelimited() *Codec {
	c, _ := CreateCodec(&CodecConf{})
	return c
}

// Name returns the name of this Codec
func (c *Codec) Name() string {
	return c.conf.Name
}

// RequiresHeader returns true, since DSV columns are named by a header line
func (c *Codec) RequiresHeader() bool {
	return true
}

// NewDecoder begins decoding DSV data from r
func (c *Codec) NewDecoder(r io.Reader) rowstream.Decoder {
	scanner := bufio.NewScanner(r)
	initial := 4096
	if initial > c.conf.MaxLineSize {
		initial = c.conf.MaxLineSize
	}
	scanner.Buffer(make([]byte, 0, initial), c.conf.MaxLineSize)
	return &decoder{codec: c, scanner: scanner}
}

// NewEncoder begins encoding DSV data to w
func (c *Codec) NewEncoder(w io.Writer) rowstream.Encoder {
	return &encoder{codec: c, w: w}
}

// String returns the name of this Codec
func (c *Codec) String() string {
	return c.Name()
}

func (c *Codec) isComment(line string) bool {
	return c.conf.Comment != 0 && strings.HasPrefix(line, string(c.conf.Comment))
}
