// Package db provides the interface for key-value database implementations.
// It defines the KVDB interface that allows for consistent interaction
// with the storage engine while abstracting implementation details.
//
// Key Components:
//
//   - KVDB Interface: The core interface that all database implementations must satisfy.
//     It provides methods for basic operations (Put, Get, Delete), metadata retrieval
//     (GetInfo) and persistence operations (Save, Load).
//
//   - Sentinel Errors: ErrInvalidKey, ErrNotFound and ErrNoSpace. Implementations wrap
//     or return them so callers can use errors.Is.
//
//   - Implementation Identifiers: The Implementation type provides string constants
//     for different database backends (currently "slot").
//
//   - Database Information: The DatabaseInfo structure reports the state of a
//     database, the number of slots, the occupied slots and the stored bytes.
//
// Size Limits:
//
//	Keys and values are bounded by MaxKeySize and MaxValueSize, the sizes of the
//	fixed buffers of the wire protocol including their terminating NUL byte. A key
//	must be shorter than MaxKeySize-1 bytes, longer values are truncated to
//	MaxValueSize-1 bytes.
//
// Snapshot Format:
//
//	Save writes one record per line, "<key>,<value>\n". Load splits a line at its
//	first comma, so a key must not contain one. Lines without a comma are skipped.
//
// Related Packages:
//
// The engines/slot package (github.com/ValentinKolb/slotkv/lib/db/engines/slot) provides
// the direct-addressed table with one lock per slot.
//
// The testing package (github.com/ValentinKolb/slotkv/lib/db/testing) provides
// standardized tests and benchmarks for database implementations that satisfy the db.KVDB interface.
//   - RunKVDBTests: Runs a standardized test suite to validate implementations
//   - RunKVDBBenchmarks: Provides performance benchmarks for comparing implementations
package db
