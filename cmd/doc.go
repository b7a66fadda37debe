// Package cmd implements the command-line interface for the slotkv key-value
// store. It provides a hierarchical command structure with operations for
// running the server and interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value store operations (put, get, delete, test, perf)
//   - serve: Command for starting and configuring the slotkv server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See slotkv -help for a list of all commands.
package cmd
