// Package transport defines the interfaces for RPC communication in the key-value
// store. A server transport delivers raw request frames to a ServerHandleFunc and
// writes back its result. A client transport performs synchronous round trips over
// a single connection.
//
// Implementations live in the tcp and unix sub packages, both built on base.
package transport
