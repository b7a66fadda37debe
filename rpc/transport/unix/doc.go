// Package unix implements a transport layer for the key-value store's RPC system
// using Unix domain sockets, for clients running on the same machine.
//
// This package extends the base transport layer with Unix socket-specific connectors
// while inheriting the listener, the connection workers and the client round trips
// from the base package.
//
// Key Components:
//
//   - clientConnector: Establishes connections using Unix domain sockets
//
//   - serverConnector: Creates Unix socket listeners. A stale socket file at the
//     endpoint path is removed before listening.
package unix
