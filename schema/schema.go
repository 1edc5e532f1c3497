package schema

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/go-sif/rowstream"
)

// keySeparator cannot appear in a delimited-text key, so fingerprints of
// different key sequences do not collide trivially
const keySeparator = 0x1f

// Schema is a mapping from column keys to indices within a Row.
// It is append-only: indices never change once assigned.
type schema struct {
	lock    sync.RWMutex
	keys    []string
	indices map[string]int
}

// CreateSchema is a factory for Schemas. Keys are assigned indices in order;
// a key repeated in the initial list keeps the index of its first occurrence.
func CreateSchema(keys ...string) rowstream.Schema {
	s := &schema{
		keys:    make([]string, 0, len(keys)),
		indices: make(map[string]int, len(keys)),
	}
	for _, k := range keys {
		s.addOrGetIndex(k)
	}
	return s
}

// IndexOf returns the index of a key, if it exists
func (s *schema) IndexOf(key string) (int, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	idx, ok := s.indices[key]
	return idx, ok
}

// AddOrGetIndex returns the index of a key, appending it if necessary
func (s *schema) AddOrGetIndex(key string) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.addOrGetIndex(key)
}

func (s *schema) addOrGetIndex(key string) int {
	if idx, ok := s.indices[key]; ok {
		return idx
	}
	s.keys = append(s.keys, key)
	idx := len(s.keys) - 1
	s.indices[key] = idx
	return idx
}

// ContainsKey returns true iff this schema contains the given key
func (s *schema) ContainsKey(key string) bool {
	_, ok := s.IndexOf(key)
	return ok
}

// KeyCount returns the number of columns in this Schema
func (s *schema) KeyCount() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.keys)
}

// KeyAt returns the key at the given index
func (s *schema) KeyAt(idx int) (string, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if idx < 0 || idx >= len(s.keys) {
		return "", false
	}
	return s.keys[idx], true
}

// Keys returns the keys in the schema, in index order
func (s *schema) Keys() []string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// ForEachKey iterates over the keys in this Schema in index order.
// It works on a snapshot, so fn may safely grow the Schema.
func (s *schema) ForEachKey(fn func(idx int, key string) error) error {
	for i, k := range s.Keys() {
		if err := fn(i, k); err != nil {
			return err
		}
	}
	return nil
}

// Equals returns true iff this and another Schema contain the same keys in the same order
func (s *schema) Equals(otherSchema rowstream.Schema) bool {
	if otherSchema == nil {
		return false
	}
	if otherSchema == rowstream.Schema(s) {
		return true
	}
	mine := s.Keys()
	theirs := otherSchema.Keys()
	if len(mine) != len(theirs) {
		return false
	}
	for i := range mine {
		if mine[i] != theirs[i] {
			return false
		}
	}
	return true
}

// Fingerprint returns a hash of the keys in index order
func (s *schema) Fingerprint() uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	d := xxhash.New()
	for _, k := range s.keys {
		d.WriteString(k)
		d.Write([]byte{keySeparator})
	}
	return d.Sum64()
}
