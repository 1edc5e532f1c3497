// Package jsonl reads and writes JSON Lines streams, one JSON object per line. Decoding uses
// https://github.com/tidwall/gjson. Columns are the keys of the first object, in document order;
// keys first seen in later objects are appended to the shared Schema as they appear.
package jsonl
