package rowstream

import "io"

// A Codec translates between a byte stream and Schema/Row pairs
// in a particular format. Codecs are stateless; per-stream state
// lives in the Decoders and Encoders they produce.
type Codec interface {
	Name() string                   // Name is used in descriptions and metric labels
	RequiresHeader() bool           // RequiresHeader returns true iff an explicit header record must precede rows when writing
	NewDecoder(r io.Reader) Decoder // NewDecoder begins decoding a stream
	NewEncoder(w io.Writer) Encoder // NewEncoder begins encoding to a stream
}

// A Decoder reads a Schema and then Rows from a single stream
type Decoder interface {
	// DecodeSchema reads the header record and produces a Schema.
	// An empty Schema is returned if the stream is immediately exhausted. Codecs which
	// infer the Schema from the first row return an errors.MalformedRowError for an
	// unreadable first row; that record has been consumed and DecodeSchema may be called again.
	DecodeSchema() (Schema, error)
	// DecodeRow reads the next non-blank record, returning io.EOF when the stream is exhausted.
	// A record which does not fit the Schema produces an errors.MalformedRowError; the record
	// has been consumed and subsequent calls continue with the following record.
	DecodeRow(schema Schema) (Row, error)
}

// An Encoder writes a header and Rows to a single stream
type Encoder interface {
	EncodeSchema(schema Schema) error
	// EncodeRow writes a Row, ordering its cells according to header when the
	// Codec requires one
	EncodeRow(header Schema, row Row) error
}
