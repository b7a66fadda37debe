// Package slot provides the direct-addressed storage engine of slotkv, an
// implementation of the db.KVDB interface.
//
// Architecture:
//
//	The table is an array of TableSize (1024) slots. A key is mapped to its slot
//	with the polynomial hash h = h*31 + b over its bytes (uint32, wrapping), modulo
//	TableSize. Every slot holds at most one entry and has its own mutex.
//
// Collision Policy:
//
//	There is no chaining and no probing. A put for a key whose slot is occupied by
//	a different key evicts that key, which afterwards reports ErrNotFound. For
//	example "Aa" and "BB" share a slot. The table never resizes and never reports
//	ErrNoSpace.
//
// Deletion:
//
//	Delete only clears the occupied flag of the slot. The stale key and value stay
//	in memory until the slot is written again and are never returned.
//
// Concurrency:
//
//	Operations on different slots run in parallel. Operations on the same slot are
//	serialized by the slot mutex, in lock acquisition order. No lock spans more
//	than one slot, so Save sees every entry consistently but not the table as a
//	whole.
package slot
