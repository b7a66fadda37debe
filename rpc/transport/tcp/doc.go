// Package tcp implements the TCP socket transport of the key-value store's RPC
// system. It provides the TCP specific connectors for the base package, which
// contains the listener, the connection workers and the client round trips.
//
// Both connectors apply the socket options of common.TCPConf (no delay,
// keep-alive, linger) and the buffer sizes of common.SocketConf to every
// connection.
package tcp
