package rowstream

// Schema is an ordered, append-only mapping from column keys
// to dense indices. Every Row produced by the same Source shares
// a single Schema, so that index lookups stay valid across Rows.
type Schema interface {
	// IndexOf returns the index of a key, if it exists
	IndexOf(key string) (idx int, ok bool)
	// AddOrGetIndex returns the index of a key, appending it to the Schema if it is not present.
	// Calling it repeatedly with the same key always returns the same index.
	AddOrGetIndex(key string) int
	ContainsKey(key string) bool
	KeyCount() int
	KeyAt(idx int) (key string, ok bool)
	// Keys returns a copy of the keys in index order. Modifying it does not modify the Schema.
	Keys() []string
	// ForEachKey iterates over the keys in index order, stopping at the first error
	ForEachKey(fn func(idx int, key string) error) error
	// Equals returns true iff both Schemas contain the same keys in the same order
	Equals(otherSchema Schema) bool
	// Fingerprint is a hash of the ordered keys. Equal Schemas have equal Fingerprints.
	Fingerprint() uint64
}
