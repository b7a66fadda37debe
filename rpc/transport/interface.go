package transport

import (
	"context"
	"io"
	"net"

	"github.com/ValentinKolb/slotkv/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc is a function type that handles incoming requests
// This function is called by a server transport layer for every request frame
// It takes the raw request frame and returns the raw response
// The frame buffer is reused after the call returns and must not be retained
type ServerHandleFunc func(frame []byte) (resp []byte)

// IRPCServerTransport is the interface for the RPC transport layer
// It must accept a ServerConfig as a parameter
type IRPCServerTransport interface {
	// RegisterHandler registers a handler for the transport layer
	// This handler is called once per received request frame
	RegisterHandler(handler ServerHandleFunc)
	// Listen starts the transport layer and serves connections until ctx is done
	// It returns after all connections have been closed
	Listen(ctx context.Context, config common.ServerConfig) error
	// Addr returns the address the transport listens on, or nil if it is not listening
	Addr() net.Addr
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the RPC client transport
type IRPCClientTransport interface {
	// Connect initializes the transport with the given configuration
	Connect(config common.ClientConfig) error
	// RoundTrip writes the request frame and calls read to consume the response
	// from the connection. Round trips on the same transport never overlap.
	RoundTrip(req []byte, read func(r io.Reader) error) error
	// Close closes the transport connection
	Close() error
}
