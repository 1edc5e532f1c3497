package jsonl

import (
	"bufio"
	"bytes"
	stderrors "errors"
	"io"
	"strings"
	"testing"

	errors "github.com/go-sif/rowstream/errors"
	"github.com/go-sif/rowstream/row"
	"github.com/go-sif/rowstream/schema"
	"github.com/stretchr/testify/require"
)

func TestDecodeLateSchemaGrowth(t *testing.T) {
	input := `{"id": 1, "name": "Alice"}

{"name": "Bob", "id": 2, "tags": ["a", "b"]}
{"id": 3, "name": null, "active": true}
`
	d := CreateCodec(&CodecConf{}).NewDecoder(strings.NewReader(input))
	s, err := d.DecodeSchema()
	require.Nil(t, err)
	require.Equal(t, []string{"id", "name"}, s.Keys())

	r1, err := d.DecodeRow(s)
	require.Nil(t, err)
	require.Equal(t, []string{"1", "Alice"}, r1.Values())

	r2, err := d.DecodeRow(s)
	require.Nil(t, err)
	require.Equal(t, []string{"id", "name", "tags"}, s.Keys())
	require.Equal(t, "Bob", r2.GetString("name"))
	require.Equal(t, `["a", "b"]`, r2.GetString("tags"))
	id, err := r2.GetInt("id")
	require.Nil(t, err)
	require.Equal(t, 2, id)

	r3, err := d.DecodeRow(s)
	require.Nil(t, err)
	require.Equal(t, []string{"id", "name", "tags", "active"}, s.Keys())
	require.Equal(t, "", r3.GetString("name"))
	active, err := r3.GetBool("active")
	require.Nil(t, err)
	require.True(t, active)

	// earlier rows see the grown schema, with empty cells
	require.Equal(t, "", r1.GetString("active"))
	require.Same(t, s, r1.Schema())

	_, err = d.DecodeRow(s)
	require.Equal(t, io.EOF, err)
}

func TestDecodeMalformed(t *testing.T) {
	input := "{\"id\": \"1\"}\nnot json\n[1, 2]\n{\"id\": \"2\"}\n"
	d := CreateCodec(&CodecConf{}).NewDecoder(strings.NewReader(input))
	s, err := d.DecodeSchema()
	require.Nil(t, err)
	_, err = d.DecodeRow(s)
	require.Nil(t, err)

	var malformed errors.MalformedRowError
	_, err = d.DecodeRow(s)
	require.True(t, stderrors.As(err, &malformed))
	require.Equal(t, 2, malformed.Line)
	_, err = d.DecodeRow(s)
	require.True(t, stderrors.As(err, &malformed))
	require.Equal(t, 3, malformed.Line)

	r, err := d.DecodeRow(s)
	require.Nil(t, err)
	require.Equal(t, "2", r.GetString("id"))
}

func TestDecodeEmpty(t *testing.T) {
	d := CreateCodec(&CodecConf{}).NewDecoder(strings.NewReader("\n\n"))
	s, err := d.DecodeSchema()
	require.Nil(t, err)
	require.Equal(t, 0, s.KeyCount())
	_, err = d.DecodeRow(s)
	require.Equal(t, io.EOF, err)
}

func TestLineTooLong(t *testing.T) {
	c := CreateCodec(&CodecConf{MaxBufferSize: 16})
	d := c.NewDecoder(strings.NewReader("{\"id\":1}\n{\"note\":\"" + strings.Repeat("x", 64) + "\"}\n"))
	s, err := d.DecodeSchema()
	require.Nil(t, err)
	_, err = d.DecodeRow(s)
	require.Nil(t, err)
	_, err = d.DecodeRow(s)
	require.True(t, stderrors.Is(err, bufio.ErrTooLong))
	require.Contains(t, err.Error(), "line 2 exceeds the maximum buffer size of 16 bytes")
}

func TestEncodeRoundTrip(t *testing.T) {
	c := CreateCodec(&CodecConf{})
	require.False(t, c.RequiresHeader())

	s := schema.CreateSchema("id", "note")
	r1, err := row.CreateRow(s, []string{"1", "tab\tand \"quotes\""})
	require.Nil(t, err)
	r2, err := row.CreateRow(s, []string{"2"})
	require.Nil(t, err)

	var buf bytes.Buffer
	e := c.NewEncoder(&buf)
	require.Nil(t, e.EncodeSchema(s))
	require.Nil(t, e.EncodeRow(s, r1))
	require.Nil(t, e.EncodeRow(s, r2))
	require.Equal(t, "{\"id\":\"1\",\"note\":\"tab\\tand \\\"quotes\\\"\"}\n{\"id\":\"2\"}\n", buf.String())

	d := c.NewDecoder(&buf)
	decoded, err := d.DecodeSchema()
	require.Nil(t, err)
	require.Equal(t, []string{"id", "note"}, decoded.Keys())
	back, err := d.DecodeRow(decoded)
	require.Nil(t, err)
	require.Equal(t, r1.Values(), back.Values())
	back, err = d.DecodeRow(decoded)
	require.Nil(t, err)
	require.Equal(t, []string{"2"}, back.Values())
}
