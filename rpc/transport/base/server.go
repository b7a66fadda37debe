package base

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/slotkv/rpc/common"
	"github.com/ValentinKolb/slotkv/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/semaphore"
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server operations
type IServerConnector interface {
	// Listen creates a listener and returns it
	Listen(config common.ServerConfig) (net.Listener, error)

	// UpgradeConnection applies protocol-specific settings to an accepted connection
	UpgradeConnection(conn net.Conn, config common.ServerConfig) error

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
}

// -----------------------------------------------------------
// Metrics
// -----------------------------------------------------------

// activeConnections is the number of connections currently served
var activeConnections atomic.Int64

var (
	connectionsTotal = metrics.GetOrCreateCounter("slotkv_connections_total")
	_                = metrics.GetOrCreateGauge("slotkv_connections_active", func() float64 {
		return float64(activeConnections.Load())
	})
)

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// serverTransport implements the core server transport functionality
type serverTransport struct {
	connector IServerConnector
	handler   transport.ServerHandleFunc
	config    common.ServerConfig

	listenerMu sync.RWMutex
	listener   net.Listener

	conns      *xsync.MapOf[uint64, net.Conn] // active connections by id
	nextConnID atomic.Uint64
	workers    sync.WaitGroup
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport that serves every
// connection with its own worker goroutine
func NewBaseServerTransport(connector IServerConnector) transport.IRPCServerTransport {
	return &serverTransport{
		connector: connector,
		conns:     xsync.NewMapOf[uint64, net.Conn](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) Listen(ctx context.Context, config common.ServerConfig) error {
	if t.handler == nil {
		return fmt.Errorf("no handler registered")
	}
	t.config = config

	// Create listener using the connector
	listener, err := t.connector.Listen(config)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	t.listenerMu.Lock()
	t.listener = listener
	t.listenerMu.Unlock()

	// Closing the listener unblocks a pending Accept
	stop := context.AfterFunc(ctx, func() {
		_ = listener.Close()
	})
	defer stop()

	// Admission control, nil = unbounded
	var admission *semaphore.Weighted
	if config.MaxClients > 0 {
		admission = semaphore.NewWeighted(int64(config.MaxClients))
	}

	Logger.Infof("Starting %s server on %s", t.connector.GetName(), listener.Addr())

	err = t.acceptLoop(ctx, listener, admission)

	// Shut down: no new connections, close the active ones and wait for their workers
	_ = listener.Close()
	t.conns.Range(func(_ uint64, conn net.Conn) bool {
		_ = conn.Close()
		return true
	})
	t.workers.Wait()

	t.listenerMu.Lock()
	t.listener = nil
	t.listenerMu.Unlock()

	Logger.Infof("Stopped %s server on %s", t.connector.GetName(), listener.Addr())
	return err
}

func (t *serverTransport) Addr() net.Addr {
	t.listenerMu.RLock()
	defer t.listenerMu.RUnlock()

	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// acceptLoop accepts connections until ctx is done or the listener fails.
// Every accepted connection is registered and handed to a new worker.
func (t *serverTransport) acceptLoop(ctx context.Context, listener net.Listener, admission *semaphore.Weighted) error {
	for {
		// Wait for a free slot before accepting the next connection
		if admission != nil {
			if err := admission.Acquire(ctx, 1); err != nil {
				return nil
			}
		}
		release := func() {
			if admission != nil {
				admission.Release(1)
			}
		}

		conn, err := listener.Accept()
		if err != nil {
			release()

			// Case shutdown: listener closed by cancellation
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}

			// Case error: log and keep accepting
			Logger.Errorf("Accept error: %v", err)
			time.Sleep(10 * time.Millisecond)
			continue
		}

		id := t.nextConnID.Add(1)
		t.conns.Store(id, conn)
		connectionsTotal.Inc()
		activeConnections.Add(1)

		t.workers.Add(1)
		go func() {
			defer func() {
				_ = conn.Close()
				t.conns.Delete(id)
				activeConnections.Add(-1)
				release()
				t.workers.Done()
			}()
			t.handleConnection(id, conn)
		}()
	}
}

// handleConnection handles incoming requests for one connection.
// Requests are processed strictly one after another: read frame, call the
// handler, write the response.
func (t *serverTransport) handleConnection(id uint64, conn net.Conn) {
	Logger.Debugf("Accepted connection %d from %s", id, conn.RemoteAddr())

	if err := t.connector.UpgradeConnection(conn, t.config); err != nil {
		Logger.Warningf("Failed to upgrade connection %d: %v", id, err)
	}

	// Idle timeout, 0 = wait forever
	timeout := time.Duration(t.config.TimeoutSecond) * time.Second

	buf := make([]byte, common.RequestFrameSize)

	for {
		if err := conn.SetReadDeadline(deadline(timeout)); err != nil {
			Logger.Errorf("Failed to set read deadline on connection %d: %v", id, err)
			return
		}

		frame, err := readFrame(conn, buf)
		if err != nil {
			t.logReadError(id, err)
			return
		}

		start := time.Now()
		resp := t.handler(frame)
		Logger.Debugf("Processed request on connection %d took %s", id, time.Since(start))

		if err := conn.SetWriteDeadline(deadline(timeout)); err != nil {
			Logger.Errorf("Failed to set write deadline on connection %d: %v", id, err)
			return
		}

		if err := writeFrame(conn, resp); err != nil {
			Logger.Warningf("Failed to write response on connection %d: %v", id, err)
			return
		}
	}
}

// logReadError logs the reason a connection stopped reading frames
func (t *serverTransport) logReadError(id uint64, err error) {
	var netErr net.Error

	switch {
	// Case EOF: connection closed by client
	case errors.Is(err, io.EOF):
		Logger.Debugf("Connection %d closed by client", id)

	// Case closed: connection closed by shutdown
	case errors.Is(err, net.ErrClosed):
		Logger.Debugf("Connection %d closed by server", id)

	// Case timeout: client idle for too long
	case errors.As(err, &netErr) && netErr.Timeout():
		Logger.Infof("Connection %d timed out after %d sec", id, t.config.TimeoutSecond)

	// Case error: partial frame or network failure
	default:
		Logger.Warningf("Error reading request on connection %d: %v", id, err)
	}
}
