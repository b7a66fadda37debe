// Package rpc contains the network layer of slotkv.
//
// A client sends fixed-size request frames over a single connection and reads one
// response per request. The server runs one worker per connection, so requests on
// one connection are handled strictly in order while different connections are
// served concurrently.
//
// Subpackages:
//
//   - common: shared types, configuration and logging
//   - serializer: the binary frame codec
//   - transport: listener, connection workers and client round trips (tcp, unix)
//   - server: request dispatch to a store.IStore, metrics and the backup hook
//   - client: a store.IStore that talks to a server
package rpc
