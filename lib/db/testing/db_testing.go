package testing

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/ValentinKolb/slotkv/lib/db"
)

// DBFactory is a function that creates a new instance of a KVDB implementation
type DBFactory func() db.KVDB

// IndexFunc returns the bucket index a key maps to.
// It is used to find colliding and non-colliding keys for the tests.
type IndexFunc func(key string) int

// RunKVDBTests runs a comprehensive test suite for a KVDB implementation.
func RunKVDBTests(t *testing.T, name string, factory DBFactory, index IndexFunc) {
	t.Run(name, func(t *testing.T) {
		t.Run("Put&Get", func(t *testing.T) {
			testPutGet(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("UnknownKey", func(t *testing.T) {
			testUnknownKey(t, factory())
		})

		t.Run("CollisionOverwrite", func(t *testing.T) {
			testCollisionOverwrite(t, factory(), index)
		})

		t.Run("OversizeKey", func(t *testing.T) {
			testOversizeKey(t, factory(), index)
		})

		t.Run("OversizeValue", func(t *testing.T) {
			testOversizeValue(t, factory())
		})

		t.Run("SaveLoad", func(t *testing.T) {
			testSaveLoad(t, factory, index)
		})

		t.Run("LoadMalformed", func(t *testing.T) {
			testLoadMalformed(t, factory(), index)
		})

		t.Run("CrossBucketConcurrency", func(t *testing.T) {
			testCrossBucketConcurrency(t, factory(), index)
		})

		t.Run("SameBucketConcurrency", func(t *testing.T) {
			testSameBucketConcurrency(t, factory(), index)
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// distinctKeys returns n keys that all map to different buckets
func distinctKeys(t testing.TB, index IndexFunc, n int) []string {
	seen := make(map[int]bool)
	keys := make([]string, 0, n)
	for i := 0; len(keys) < n; i++ {
		if i > 100*n {
			t.Fatalf("could not find %d non-colliding keys", n)
		}
		key := fmt.Sprintf("key-%d", i)
		if idx := index(key); !seen[idx] {
			seen[idx] = true
			keys = append(keys, key)
		}
	}
	return keys
}

// collidingKeys returns two different keys that map to the same bucket
func collidingKeys(t testing.TB, index IndexFunc) (string, string) {
	first := make(map[int]string)
	for i := 0; i < 100_000; i++ {
		key := fmt.Sprintf("c-%d", i)
		idx := index(key)
		if other, ok := first[idx]; ok {
			return other, key
		}
		first[idx] = key
	}
	t.Fatalf("could not find colliding keys")
	return "", ""
}

func expectValue(t testing.TB, database db.KVDB, key, expected string) {
	t.Helper()
	value, err := database.Get(key)
	if err != nil {
		t.Errorf("Expected key %s to exist, got error: %v", key, err)
		return
	}
	if value != expected {
		t.Errorf("Expected value %q for key %s, got %q", expected, key, value)
	}
}

func expectNotFound(t testing.TB, database db.KVDB, key string) {
	t.Helper()
	if value, err := database.Get(key); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("Expected key %s to be not found, got value %q and error %v", key, value, err)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testPutGet(t *testing.T, database db.KVDB) {
	defer database.Close()

	if err := database.Put("test-key", "test-value1"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	expectValue(t, database, "test-key", "test-value1")

	if err := database.Put("test-key", "test-value2"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	expectValue(t, database, "test-key", "test-value2")

	// empty value
	if err := database.Put("empty", ""); err != nil {
		t.Fatalf("Put with empty value failed: %v", err)
	}
	expectValue(t, database, "empty", "")

	// longest valid key and value
	key := strings.Repeat("k", db.MaxKeySize-2)
	value := strings.Repeat("v", db.MaxValueSize-1)
	if err := database.Put(key, value); err != nil {
		t.Fatalf("Put with maximum sizes failed: %v", err)
	}
	expectValue(t, database, key, value)
}

func testDelete(t *testing.T, database db.KVDB) {
	defer database.Close()

	if err := database.Put("test-key", "test-value"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := database.Delete("test-key"); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	expectNotFound(t, database, "test-key")

	// second delete must report not found
	if err := database.Delete("test-key"); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for second delete, got %v", err)
	}

	// the key can be stored again after deletion
	if err := database.Put("test-key", "again"); err != nil {
		t.Fatalf("Put after delete failed: %v", err)
	}
	expectValue(t, database, "test-key", "again")
}

func testUnknownKey(t *testing.T, database db.KVDB) {
	defer database.Close()

	expectNotFound(t, database, "never-written")

	if err := database.Delete("never-written"); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("Expected ErrNotFound when deleting unknown key, got %v", err)
	}
}

func testCollisionOverwrite(t *testing.T, database db.KVDB, index IndexFunc) {
	defer database.Close()

	a, b := collidingKeys(t, index)

	if err := database.Put(a, "1"); err != nil {
		t.Fatalf("Put(%s) failed: %v", a, err)
	}
	if err := database.Put(b, "2"); err != nil {
		t.Fatalf("Put(%s) failed: %v", b, err)
	}

	expectNotFound(t, database, a)
	expectValue(t, database, b, "2")

	// deleting the evicted key must not touch the new occupant
	if err := database.Delete(a); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("Expected ErrNotFound when deleting evicted key, got %v", err)
	}
	expectValue(t, database, b, "2")
}

func testOversizeKey(t *testing.T, database db.KVDB, index IndexFunc) {
	defer database.Close()

	// find a stored key that collides with the oversized key
	oversized := strings.Repeat("x", db.MaxKeySize-1)
	var stored string
	for i := 0; stored == "" && i < 1_000_000; i++ {
		if candidate := fmt.Sprintf("o-%d", i); index(candidate) == index(oversized) {
			stored = candidate
		}
	}
	if stored == "" {
		t.Fatalf("could not find a key colliding with the oversized key")
	}

	if err := database.Put(stored, "kept"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	for _, key := range []string{oversized, strings.Repeat("y", db.MaxKeySize), strings.Repeat("z", 100)} {
		if err := database.Put(key, "value"); !errors.Is(err, db.ErrInvalidKey) {
			t.Errorf("Expected ErrInvalidKey for key of length %d, got %v", len(key), err)
		}
	}

	expectValue(t, database, stored, "kept")
	expectNotFound(t, database, oversized)
}

func testOversizeValue(t *testing.T, database db.KVDB) {
	defer database.Close()

	long := strings.Repeat("a", db.MaxValueSize+10)
	if err := database.Put("long", long); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	expectValue(t, database, "long", long[:db.MaxValueSize-1])
}

func testSaveLoad(t *testing.T, factory DBFactory, index IndexFunc) {
	database := factory()
	defer database.Close()

	keys := distinctKeys(t, index, 50)
	for i, key := range keys {
		if err := database.Put(key, fmt.Sprintf("value-%d", i)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	// deleted entries must not be saved
	if err := database.Delete(keys[0]); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var buf bytes.Buffer
	if err := database.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if lines := strings.Count(buf.String(), "\n"); lines != len(keys)-1 {
		t.Errorf("Expected %d snapshot lines, got %d", len(keys)-1, lines)
	}

	restored := factory()
	defer restored.Close()

	if err := restored.Load(&buf); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	expectNotFound(t, restored, keys[0])
	for i, key := range keys[1:] {
		expectValue(t, restored, key, fmt.Sprintf("value-%d", i+1))
	}

	if info := restored.GetInfo(); info.Occupied != len(keys)-1 {
		t.Errorf("Expected %d occupied entries after load, got %d", len(keys)-1, info.Occupied)
	}
}

func testLoadMalformed(t *testing.T, database db.KVDB, index IndexFunc) {
	defer database.Close()

	a, b := collidingKeys(t, index)

	snapshot := strings.Join([]string{
		"plain,value",
		"no separator here",
		"",
		"comma,in,value",
		"crlf,line\r",
		a + ",first",
		b + ",second",
		strings.Repeat("k", 40) + ",too long",
		"last,no newline",
	}, "\n")

	if err := database.Load(strings.NewReader(snapshot)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	expectValue(t, database, "plain", "value")
	expectValue(t, database, "comma", "in,value")
	expectValue(t, database, "crlf", "line")
	expectValue(t, database, "last", "no newline")
	expectNotFound(t, database, "no separator here")

	// last line wins for records sharing a bucket
	expectNotFound(t, database, a)
	expectValue(t, database, b, "second")

	// loading an empty reader is fine
	if err := database.Load(strings.NewReader("")); err != nil {
		t.Errorf("Load of empty snapshot failed: %v", err)
	}
}

func testCrossBucketConcurrency(t *testing.T, database db.KVDB, index IndexFunc) {
	defer database.Close()

	keys := distinctKeys(t, index, 2)
	const iterations = 1000

	var wg sync.WaitGroup
	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				if err := database.Put(key, fmt.Sprintf("%s-%d", key, i)); err != nil {
					t.Errorf("Put(%s) failed: %v", key, err)
					return
				}
			}
		}(key)
	}
	wg.Wait()

	for _, key := range keys {
		expectValue(t, database, key, fmt.Sprintf("%s-%d", key, iterations-1))
	}
}

func testSameBucketConcurrency(t *testing.T, database db.KVDB, index IndexFunc) {
	defer database.Close()

	a, b := collidingKeys(t, index)
	const iterations = 1000

	var wg sync.WaitGroup
	for _, key := range []string{a, b} {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				_ = database.Put(key, key)
				if value, err := database.Get(key); err == nil && value != key {
					t.Errorf("Get(%s) returned value of another key: %q", key, value)
					return
				}
			}
		}(key)
	}
	wg.Wait()

	// exactly one of the two keys occupies the bucket
	_, errA := database.Get(a)
	_, errB := database.Get(b)
	if (errA == nil) == (errB == nil) {
		t.Errorf("Expected exactly one of %s and %s to be stored, got errors %v and %v", a, b, errA, errB)
	}
}
