// Package base provides a foundation for transport layers in the key-value store,
// implementing core functionality for RPC communication independent of the specific
// network protocol (TCP, Unix sockets, etc.). It serves as a base layer that can be
// extended with protocol-specific connectors.
//
// Key Components:
//
//   - IClientConnector/IServerConnector: Interfaces for protocol-specific operations
//     that allow extending the base transport with different network protocols.
//
//   - serverTransport: The listener. It accepts connections in a loop and starts one
//     worker goroutine per connection. Each worker reads one fixed-size request
//     frame, passes it to the handler, writes the response and waits for the next
//     frame. There is no concurrency within a connection.
//
//   - clientTransport: Holds a single connection and performs one round trip at a
//     time, bounded by the configured timeout.
//
// Lifecycle:
//
//	Listen returns once its context is done. Cancellation closes the listener, which
//	unblocks a pending Accept immediately, then closes every active connection and
//	waits for all workers to exit. After Listen returned no handler call is running.
//
// Admission Control:
//
//	If ServerConfig.MaxClients is positive, at most that many connections are served
//	at once. The listener stops accepting while all slots are taken, so further
//	clients wait in the accept backlog of the operating system.
//
// Metrics:
//
//	slotkv_connections_active and slotkv_connections_total are exported through the
//	default VictoriaMetrics set.
//
// Thread Safety:
//
//	All public methods are thread-safe. The client transport serializes round trips
//	with a mutex, the server creates a dedicated goroutine for each connection.
package base
