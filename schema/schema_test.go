package schema

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchemaEqualityBasic(t *testing.T) {
	schema1 := CreateSchema("col1", "col2", "col3")
	schema2 := CreateSchema()
	schema2.AddOrGetIndex("col1")
	schema2.AddOrGetIndex("col2")
	schema2.AddOrGetIndex("col3")
	require.True(t, schema1.Equals(schema2))
	require.True(t, schema2.Equals(schema1))
	require.Equal(t, schema1.Fingerprint(), schema2.Fingerprint())
}

func TestSchemaEqualityDifferentLength(t *testing.T) {
	schema1 := CreateSchema("col1", "col2", "col3")
	schema2 := CreateSchema("col1", "col2")
	require.False(t, schema1.Equals(schema2))
	require.False(t, schema1.Equals(nil))
}

func TestSchemaEqualityOrder(t *testing.T) {
	schema1 := CreateSchema("col1", "col2", "col3")
	schema2 := CreateSchema("col1", "col3", "col2")
	require.False(t, schema1.Equals(schema2))
	require.NotEqual(t, schema1.Fingerprint(), schema2.Fingerprint())
}

func TestFingerprintSeparatesKeys(t *testing.T) {
	require.NotEqual(t, CreateSchema("ab", "c").Fingerprint(), CreateSchema("a", "bc").Fingerprint())
}

func TestAddOrGetIndexIdempotent(t *testing.T) {
	s := CreateSchema("id", "name")
	require.Equal(t, 2, s.KeyCount())
	idx := s.AddOrGetIndex("email")
	require.Equal(t, 2, idx)
	require.Equal(t, 3, s.KeyCount())
	require.Equal(t, idx, s.AddOrGetIndex("email"))
	require.Equal(t, 3, s.KeyCount())
	require.Equal(t, 0, s.AddOrGetIndex("id"))
	require.Equal(t, 3, s.KeyCount())
	require.Equal(t, []string{"id", "name", "email"}, s.Keys())
}

func TestCreateSchemaDuplicateHeader(t *testing.T) {
	s := CreateSchema("a", "b", "a")
	require.Equal(t, 2, s.KeyCount())
	idx, ok := s.IndexOf("a")
	require.True(t, ok)
	require.Equal(t, 0, idx)
}

func TestLookups(t *testing.T) {
	s := CreateSchema("id", "name")
	_, ok := s.IndexOf("missing")
	require.False(t, ok)
	require.True(t, s.ContainsKey("name"))
	require.False(t, s.ContainsKey("missing"))
	k, ok := s.KeyAt(1)
	require.True(t, ok)
	require.Equal(t, "name", k)
	_, ok = s.KeyAt(2)
	require.False(t, ok)
	_, ok = s.KeyAt(-1)
	require.False(t, ok)
}

func TestKeysIsACopy(t *testing.T) {
	s := CreateSchema("id", "name")
	keys := s.Keys()
	keys[0] = "changed"
	require.Equal(t, []string{"id", "name"}, s.Keys())
}

func TestForEachKey(t *testing.T) {
	s := CreateSchema("a", "b", "c")
	var seen []string
	err := s.ForEachKey(func(idx int, key string) error {
		seen = append(seen, fmt.Sprintf("%d:%s", idx, key))
		return nil
	})
	require.Nil(t, err)
	require.Equal(t, []string{"0:a", "1:b", "2:c"}, seen)

	err = s.ForEachKey(func(idx int, key string) error {
		if key == "b" {
			return fmt.Errorf("stop at %s", key)
		}
		return nil
	})
	require.EqualError(t, err, "stop at b")
}

func TestConcurrentAddOrGetIndex(t *testing.T) {
	s := CreateSchema()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.AddOrGetIndex(fmt.Sprintf("col%d", i))
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 100, s.KeyCount())
	for i, k := range s.Keys() {
		idx, ok := s.IndexOf(k)
		require.True(t, ok)
		require.Equal(t, i, idx)
	}
}
