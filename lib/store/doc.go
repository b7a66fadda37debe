// Package store provides a high-level interface for key-value storage operations
// with unified error handling. It serves as an abstraction layer over the
// lower-level db.KVDB implementations and over remote stores.
//
// Key Components:
//
//   - IStore Interface: The core abstraction defining operations for interacting with
//     a key-value store. The local store and the RPC client share this interface, so
//     the same code runs against either.
//
//   - Error System: Every failure is reported as *Error carrying a RetCode. The codes
//     are the status values of the wire protocol:
//
//     0 Success, 1 NotFound, 2 NoSpace, 3 InvalidKey, 4 Network
//
//     NoSpace is never produced by the slot table. Network is only produced on the
//     client side and never sent over the wire. Errors compare by code, so
//     errors.Is(err, store.ErrNotFound) works for errors created anywhere.
//
//   - DBFactory: A function type that abstracts the creation of the underlying db.KVDB.
//
// Implementations:
//
//   - Local Store (lstore): Wraps a db.KVDB and loads and saves its snapshot file.
//     Available in the "github.com/ValentinKolb/slotkv/lib/store/lstore" package.
//
//   - RPC Store: Forwards every operation to a server. Available in the
//     "github.com/ValentinKolb/slotkv/rpc/client" package.
package store
