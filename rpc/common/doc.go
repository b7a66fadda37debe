// Package common contains the types shared by client and server of the RPC
// system: the request and response structures with their frame sizes, the message
// kinds and status codes, the client and server configuration and the logger
// setup.
//
// Logging:
//
//	All components log through dragonboat's logger package. InitLoggers installs a
//	factory that formats every line as "LEVEL | component | message" and sets the
//	level of all component loggers (store, transport/rpc, rpc, client).
package common
