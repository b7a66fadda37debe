package store

import (
	"errors"
	"fmt"

	"github.com/ValentinKolb/slotkv/lib/db"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// DBFactory is a function type that creates a new db used by the store.
// This is used to abstract the creation of the db from the store implementation.
type DBFactory func() db.KVDB

// IStore is the generic interface for interacting with a key–value store.
// Failed operations return a *Error carrying the RetCode of the failure.
type IStore interface {
	// Put inserts or updates a key–value pair.
	Put(key, value string) (err error)
	// Get returns the value for a key. A missing key is reported with RetCNotFound.
	Get(key string) (value string, err error)
	// Delete deletes a key–value pair. A missing key is reported with RetCNotFound.
	Delete(key string) (err error)
	// GetDBInfo returns metadata about the database underlying the store.
	GetDBInfo() (info db.DatabaseInfo, err error)
	// Close releases the store. Local stores persist their content here.
	Close() (err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("KVStoreError (code %s): %s", e.Code, e.Msg)
}

// Is reports whether target is a *Error with the same code.
// This allows errors.Is(err, store.ErrNotFound) for errors created anywhere.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewError creates a new KVStoreError with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// Sentinel errors for use with errors.Is
var (
	ErrNotFound   = NewError(RetCNotFound, "key not found")
	ErrNoSpace    = NewError(RetCNoSpace, "no space left")
	ErrInvalidKey = NewError(RetCInvalidKey, "invalid key")
	ErrNetwork    = NewError(RetCNetwork, "network error")
)

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

// RetCode classifies the outcome of an operation.
// The numeric values are part of the wire protocol.
type RetCode uint32

const (
	RetCSuccess    RetCode = iota // 0: Command executed successfully.
	RetCNotFound                  // 1: No entry for the key.
	RetCNoSpace                   // 2: Store is full (never produced by the slot engine).
	RetCInvalidKey                // 3: Key too long or request malformed.
	RetCNetwork                   // 4: Transport failure, only observed by clients.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCNotFound:
		return "NotFound"
	case RetCNoSpace:
		return "NoSpace"
	case RetCInvalidKey:
		return "InvalidKey"
	case RetCNetwork:
		return "Network"
	default:
		return "Unknown"
	}
}

// FromDBError converts an error returned by a db.KVDB into a *Error.
// nil stays nil.
func FromDBError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrNotFound):
		return NewError(RetCNotFound, err.Error())
	case errors.Is(err, db.ErrInvalidKey):
		return NewError(RetCInvalidKey, err.Error())
	case errors.Is(err, db.ErrNoSpace):
		return NewError(RetCNoSpace, err.Error())
	default:
		return err
	}
}

// CodeOf returns the RetCode for an error.
// nil maps to RetCSuccess, errors without a code map to RetCNetwork.
// Servers must not send RetCNetwork, see common.StatusFromError.
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	var e *Error
	if errors.As(FromDBError(err), &e) {
		return e.Code
	}
	return RetCNetwork
}
