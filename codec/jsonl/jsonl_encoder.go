package jsonl

import (
	"github.com/go-sif/rowstream"
	jsoniter "github.com/json-iterator/go"
)

type encoder struct {
	stream *jsoniter.Stream
}

// EncodeSchema does nothing, since JSONL has no header
func (e *encoder) EncodeSchema(s rowstream.Schema) error {
	return nil
}

// EncodeRow writes the cells present in a Row as a JSON object of strings, in the
// order of the Row's own Schema. header is ignored: each object names its own columns.
func (e *encoder) EncodeRow(header rowstream.Schema, r rowstream.Row) error {
	e.stream.WriteObjectStart()
	keys := r.Schema().Keys()
	for i := 0; i < r.Len() && i < len(keys); i++ {
		if i > 0 {
			e.stream.WriteMore()
		}
		e.stream.WriteObjectField(keys[i])
		e.stream.WriteString(r.GetStringAt(i))
	}
	e.stream.WriteObjectEnd()
	e.stream.WriteRaw("\n")
	if e.stream.Error != nil {
		return e.stream.Error
	}
	return e.stream.Flush()
}
