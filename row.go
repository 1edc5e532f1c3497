package rowstream

import "time"

// Row is a representation of a single row of tabular data: an
// ordered sequence of string cells along with a reference to
// the (shared) Schema mapping column keys to cell indices.
// Cells are untyped; the typed getters are best-effort conversions
// which return the zero value for empty, missing or "null" cells.
type Row interface {
	Schema() Schema                                        // Schema returns the shared Schema for this row. It is not a copy.
	Len() int                                              // Len returns the number of cells physically present in this row
	Values() []string                                      // Values returns a copy of the cells present in this row
	Lookup(key string) (value string, ok bool)             // Lookup returns a cell value and true iff the cell is present
	GetString(key string) string                           // GetString returns a cell value, or "" if the cell is absent
	GetStringAt(idx int) string                            // GetStringAt returns the cell at an index, or "" if the cell is absent
	GetInt(key string) (int, error)                        // GetInt parses a cell as an int
	GetIntAt(idx int) (int, error)                         // GetIntAt parses the cell at an index as an int
	GetInt64(key string) (int64, error)                    // GetInt64 parses a cell as an int64
	GetInt64At(idx int) (int64, error)                     // GetInt64At parses the cell at an index as an int64
	GetFloat64(key string) (float64, error)                // GetFloat64 parses a cell as a float64
	GetFloat64At(idx int) (float64, error)                 // GetFloat64At parses the cell at an index as a float64
	GetBool(key string) (bool, error)                      // GetBool parses a cell as a bool
	GetBoolAt(idx int) (bool, error)                       // GetBoolAt parses the cell at an index as a bool
	GetTime(key string, layout string) (time.Time, error)  // GetTime parses a cell as a Time with the given layout
	GetTimeAt(idx int, layout string) (time.Time, error)   // GetTimeAt parses the cell at an index as a Time with the given layout
	SetString(key string, value string)                    // SetString overwrites or appends a cell, adding the key to the Schema if necessary
	SetInt(key string, value int)                          // SetInt formats and stores an int
	SetInt64(key string, value int64)                      // SetInt64 formats and stores an int64
	SetFloat64(key string, value float64)                  // SetFloat64 formats and stores a float64
	SetBool(key string, value bool)                        // SetBool formats and stores a bool
	SetTime(key string, value time.Time, layout string)    // SetTime formats and stores a Time using the given layout
	ForEach(fn func(key string, value string) error) error // ForEach iterates over the Schema's keys in order, with the corresponding cell values
	String() string                                        // String returns a pretty-printed key/value representation of this row, for diagnostics
}
