package db

import (
	"errors"
	"io"
)

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplSlot Implementation = "slot"
)

// Sizes shared by every engine and by the wire protocol.
// Both sizes include the terminating NUL of the fixed-size buffers,
// so a key can hold at most MaxKeySize-2 bytes and a value MaxValueSize-1 bytes.
const (
	MaxKeySize   = 32
	MaxValueSize = 256
)

// Errors returned by KVDB implementations
var (
	// ErrInvalidKey is returned when a key is too long to be stored
	ErrInvalidKey = errors.New("invalid key")
	// ErrNotFound is returned when no entry exists for a key
	ErrNotFound = errors.New("key not found")
	// ErrNoSpace is part of the protocol but can not be produced by a
	// fixed-size direct-addressed table
	ErrNoSpace = errors.New("no space left")
)

type DatabaseInfo struct {
	DbType    Implementation `json:"db_type"`
	Slots     int            `json:"slots"`
	Occupied  int            `json:"occupied"`
	SizeBytes int            `json:"size_bytes"`
}

// --------------------------------------------------------------------------
// Database Interface
// --------------------------------------------------------------------------

// KVDB defines an interface for key-value database implementations.
// Each operation touches exactly one entry; there is no multi-key atomicity.
type KVDB interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Put stores the value for the key. An existing entry is overwritten.
	// ErrInvalidKey is returned if the key does not fit into an entry.
	Put(key, value string) (err error)

	// Delete removes the entry for the key.
	// ErrNotFound is returned if there is no entry for the key.
	Delete(key string) (err error)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get returns a copy of the value stored for the key.
	// ErrNotFound is returned if there is no entry for the key.
	Get(key string) (value string, err error)

	// --------------------------------------------------------------------------
	// Persistence Operations
	// --------------------------------------------------------------------------

	// Save writes all entries to the provided io.Writer.
	Save(w io.Writer) (err error)

	// Load reads entries from the provided io.Reader and stores them with Put.
	Load(r io.Reader) (err error)

	// GetInfo returns information about the database.
	GetInfo() (info DatabaseInfo)

	// Close closes the database.
	Close() (err error)
}
