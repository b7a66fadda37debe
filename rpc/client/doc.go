// Package client implements the RPC client of the key-value store system.
// It provides an implementation of the store.IStore interface that forwards every
// operation to a remote server via the transport layer.
//
// Every operation is one synchronous round trip: the request frame is written,
// then the status is read, and for a successful Get the value buffer. Requests
// are never batched, pipelined or retried.
//
// Errors:
//
//   - A status other than success is returned as *store.Error with the same code,
//     so errors.Is(err, store.ErrNotFound) works for remote stores as well.
//
//   - Connection failures, timeouts and short reads or writes are returned as
//     store.ErrNetwork errors. The connection is closed afterwards and all further
//     operations fail with store.ErrNetwork.
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  TimeoutSecond: common.DefaultClientTimeoutSecond,
//	  Transport: common.ClientTransportConfig{
//	    Endpoint: "127.0.0.1:8080",
//	  },
//	}
//
//	s, err := client.NewRPCStore(config, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer())
//	if err != nil {
//	  // server not reachable
//	}
//	defer s.Close()
//
//	_ = s.Put("mykey", "myvalue")
//	value, err := s.Get("mykey")
package client
