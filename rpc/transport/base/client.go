package base

import (
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/ValentinKolb/slotkv/rpc/common"
	"github.com/ValentinKolb/slotkv/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport/rpc")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint
	Connect(endpoint string, timeout time.Duration) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, etc.)
//
// The transport holds exactly one connection. Round trips are serialized by
// connMu since the protocol carries no request ids. After a failed round
// trip the stream may be out of sync, so the connection is closed and every
// later round trip fails until Connect is called again.
type clientTransport struct {
	connector IClientConnector
	config    common.ClientConfig
	conn      net.Conn
	connMu    sync.Mutex // Protects the connection itself
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{
		connector: connector,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	if config.Transport.Endpoint == "" {
		return fmt.Errorf("no endpoint provided")
	}

	t.connMu.Lock()
	defer t.connMu.Unlock()

	// Close an existing connection
	if t.conn != nil {
		_ = t.conn.Close()
		t.conn = nil
	}

	t.config = config

	conn, err := t.connector.Connect(config.Transport.Endpoint, t.timeout())
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", config.Transport.Endpoint, err)
	}

	// Upgrade the connection with protocol-specific settings
	if err := t.connector.UpgradeConnection(conn, config); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to upgrade connection to %s: %w", config.Transport.Endpoint, err)
	}

	t.conn = conn
	Logger.Infof("Connected to %s using %s transport", config.Transport.Endpoint, t.connector.GetName())
	return nil
}

func (t *clientTransport) RoundTrip(req []byte, read func(r io.Reader) error) error {
	t.connMu.Lock()
	defer t.connMu.Unlock()

	// Test if connection is still valid
	if t.conn == nil {
		return fmt.Errorf("connection is closed")
	}

	// One deadline covers the write and the read
	if err := t.conn.SetDeadline(deadline(t.timeout())); err != nil {
		t.drop()
		return fmt.Errorf("failed to set deadline: %w", err)
	}

	if err := writeFrame(t.conn, req); err != nil {
		t.drop()
		return fmt.Errorf("failed to send request: %w", err)
	}

	if err := read(t.conn); err != nil {
		t.drop()
		return fmt.Errorf("failed to receive response: %w", err)
	}

	return nil
}

func (t *clientTransport) Close() error {
	t.connMu.Lock()
	defer t.connMu.Unlock()

	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// timeout returns the configured send and receive timeout
func (t *clientTransport) timeout() time.Duration {
	return time.Duration(t.config.TimeoutSecond) * time.Second
}

// drop closes the connection after a failed round trip.
// The caller must hold connMu.
func (t *clientTransport) drop() {
	Logger.Warningf("Closing connection to %s after failed request", t.config.Transport.Endpoint)
	_ = t.conn.Close()
	t.conn = nil
}
