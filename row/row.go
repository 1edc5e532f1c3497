package row

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-sif/rowstream"
	errors "github.com/go-sif/rowstream/errors"
	jsoniter "github.com/json-iterator/go"
)

const (
	// NilValue is the literal token which, like an empty cell, reads back as a zero value
	NilValue = "null"
	// DateLayout is the layout for plain dates
	DateLayout = "2006-01-02"
	// LongDateLayout is the layout for timestamps with a numeric zone offset
	LongDateLayout = "2006-01-02T15:04:05Z0700"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// rowImpl is a schema-bound sequence of string cells. values[i] corresponds
// to schema.KeyAt(i); indices beyond len(values) are logically empty.
type rowImpl struct {
	schema rowstream.Schema
	values []string
}

// CreateRow builds a new row from a shared Schema and raw cell values.
// Fewer values than columns is permitted; more is a ShapeError.
func CreateRow(schema rowstream.Schema, values []string) (rowstream.Row, error) {
	if len(values) > schema.KeyCount() {
		return nil, errors.ShapeError{Values: len(values), Columns: schema.KeyCount()}
	}
	return &rowImpl{schema: schema, values: values}, nil
}

// CreateEmptyRow builds a row with no cells, suitable for populating with setters
func CreateEmptyRow(schema rowstream.Schema) rowstream.Row {
	return &rowImpl{schema: schema, values: make([]string, 0, schema.KeyCount())}
}

// CopyRow builds a row over schema which shares other's cells. The Schemas must be equal.
func CopyRow(schema rowstream.Schema, other rowstream.Row) (rowstream.Row, error) {
	if !schema.Equals(other.Schema()) {
		return nil, errors.ShapeError{Values: other.Len(), Columns: schema.KeyCount(), Reason: "schemas are not equal"}
	}
	if o, ok := other.(*rowImpl); ok {
		return &rowImpl{schema: schema, values: o.values}, nil
	}
	return &rowImpl{schema: schema, values: other.Values()}, nil
}

// Schema returns the shared schema for this row
func (r *rowImpl) Schema() rowstream.Schema {
	return r.schema
}

// Len returns the number of cells present in this row
func (r *rowImpl) Len() int {
	return len(r.values)
}

// Values returns a copy of the cells present in this row
func (r *rowImpl) Values() []string {
	values := make([]string, len(r.values))
	copy(values, r.values)
	return values
}

func (r *rowImpl) lookupAt(idx int) (string, bool) {
	if idx < 0 || idx >= len(r.values) {
		return "", false
	}
	return r.values[idx], true
}

// Lookup returns a cell value and true iff the cell is present
func (r *rowImpl) Lookup(key string) (string, bool) {
	idx, ok := r.schema.IndexOf(key)
	if !ok {
		return "", false
	}
	return r.lookupAt(idx)
}

// GetString returns a cell value, or "" if it is absent
func (r *rowImpl) GetString(key string) string {
	v, _ := r.Lookup(key)
	return v
}

// GetStringAt returns the cell at an index, or "" if it is absent
func (r *rowImpl) GetStringAt(idx int) string {
	v, _ := r.lookupAt(idx)
	return v
}

// GetInt parses a cell as an int
func (r *rowImpl) GetInt(key string) (int, error) {
	v, _ := r.Lookup(key)
	return parseInt(key, v)
}

// GetIntAt parses the cell at an index as an int
func (r *rowImpl) GetIntAt(idx int) (int, error) {
	return parseInt(r.keyName(idx), r.GetStringAt(idx))
}

// GetInt64 parses a cell as an int64
func (r *rowImpl) GetInt64(key string) (int64, error) {
	v, _ := r.Lookup(key)
	return parseInt64(key, v)
}

// GetInt64At parses the cell at an index as an int64
func (r *rowImpl) GetInt64At(idx int) (int64, error) {
	return parseInt64(r.keyName(idx), r.GetStringAt(idx))
}

// GetFloat64 parses a cell as a float64
func (r *rowImpl) GetFloat64(key string) (float64, error) {
	v, _ := r.Lookup(key)
	return parseFloat64(key, v)
}

// GetFloat64At parses the cell at an index as a float64
func (r *rowImpl) GetFloat64At(idx int) (float64, error) {
	return parseFloat64(r.keyName(idx), r.GetStringAt(idx))
}

// GetBool parses a cell as a bool
func (r *rowImpl) GetBool(key string) (bool, error) {
	v, _ := r.Lookup(key)
	return parseBool(key, v)
}

// GetBoolAt parses the cell at an index as a bool
func (r *rowImpl) GetBoolAt(idx int) (bool, error) {
	return parseBool(r.keyName(idx), r.GetStringAt(idx))
}

// GetTime parses a cell as a Time with the given layout. Unlike the other
// getters, an empty cell is a ConversionError: there is no zero date.
func (r *rowImpl) GetTime(key string, layout string) (time.Time, error) {
	v, _ := r.Lookup(key)
	return parseTime(key, v, layout)
}

// GetTimeAt parses the cell at an index as a Time with the given layout
func (r *rowImpl) GetTimeAt(idx int, layout string) (time.Time, error) {
	return parseTime(r.keyName(idx), r.GetStringAt(idx), layout)
}

// SetString overwrites or appends a cell. The key is added to the
// Schema if necessary; existing columns are never reordered.
func (r *rowImpl) SetString(key string, value string) {
	idx := r.schema.AddOrGetIndex(key)
	if idx < len(r.values) {
		r.values[idx] = value
		return
	}
	// the shared schema may have grown past this row; pad the gap
	for len(r.values) < idx {
		r.values = append(r.values, "")
	}
	r.values = append(r.values, value)
}

// SetInt formats and stores an int
func (r *rowImpl) SetInt(key string, value int) {
	r.SetString(key, strconv.Itoa(value))
}

// SetInt64 formats and stores an int64
func (r *rowImpl) SetInt64(key string, value int64) {
	r.SetString(key, strconv.FormatInt(value, 10))
}

// SetFloat64 formats and stores a float64
func (r *rowImpl) SetFloat64(key string, value float64) {
	r.SetString(key, strconv.FormatFloat(value, 'g', -1, 64))
}

// SetBool formats and stores a bool
func (r *rowImpl) SetBool(key string, value bool) {
	r.SetString(key, strconv.FormatBool(value))
}

// SetTime formats and stores a Time using the given layout
func (r *rowImpl) SetTime(key string, value time.Time, layout string) {
	r.SetString(key, value.Format(layout))
}

// ForEach iterates over the Schema's keys in order, with the corresponding cell values
func (r *rowImpl) ForEach(fn func(key string, value string) error) error {
	return r.schema.ForEachKey(func(idx int, key string) error {
		return fn(key, r.GetStringAt(idx))
	})
}

// String returns a pretty-printed JSON object of this row's keys and values
func (r *rowImpl) String() string {
	m := make(map[string]string, r.schema.KeyCount())
	r.ForEach(func(key string, value string) error {
		m[key] = value
		return nil
	})
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return ""
	}
	return string(out)
}

func (r *rowImpl) keyName(idx int) string {
	if k, ok := r.schema.KeyAt(idx); ok {
		return k
	}
	return strconv.Itoa(idx)
}

func isNil(value string) bool {
	return len(value) == 0 || value == NilValue
}

func parseInt(key string, value string) (int, error) {
	if isNil(value) {
		return 0, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConversionError{Key: key, Value: value, Type: "int", Err: err}
	}
	return i, nil
}

func parseInt64(key string, value string) (int64, error) {
	if isNil(value) {
		return 0, nil
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.ConversionError{Key: key, Value: value, Type: "int64", Err: err}
	}
	return i, nil
}

func parseFloat64(key string, value string) (float64, error) {
	if isNil(value) {
		return 0, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.ConversionError{Key: key, Value: value, Type: "float64", Err: err}
	}
	return f, nil
}

func parseBool(key string, value string) (bool, error) {
	if isNil(value) {
		return false, nil
	}
	if strings.EqualFold(value, "true") {
		return true, nil
	} else if strings.EqualFold(value, "false") {
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.ConversionError{Key: key, Value: value, Type: "bool", Err: err}
	}
	return b, nil
}

func parseTime(key string, value string, layout string) (time.Time, error) {
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, errors.ConversionError{Key: key, Value: value, Type: "datetime with format " + layout, Err: err}
	}
	return t, nil
}
