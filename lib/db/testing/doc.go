// Package testing provides a shared test suite and benchmarks for db.KVDB
// implementations.
//
// RunKVDBTests checks the observable contract of an implementation: round trips,
// tombstones, unknown keys, collision overwrite, size limits, snapshot round trips,
// tolerance for malformed snapshot lines and concurrent access to distinct and
// shared slots. Since the collision tests need to know which keys share a slot,
// the caller passes the index function of the implementation.
//
// Usage:
//
//	func Test(t *testing.T) {
//		dbtesting.RunKVDBTests(t, "SlotDB", func() db.KVDB { return slot.NewSlotDB() }, slot.Index)
//	}
package testing
