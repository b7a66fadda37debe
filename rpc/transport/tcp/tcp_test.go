package tcp

import (
	"context"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/slotkv/rpc/common"
	"github.com/ValentinKolb/slotkv/rpc/transport"
)

// echoKind answers every frame with its first four bytes
func echoKind(frame []byte) []byte {
	resp := make([]byte, common.StatusSize)
	copy(resp, frame[:common.StatusSize])
	return resp
}

// listen starts the transport and waits until it accepts connections.
// The returned function stops the transport and returns the result of Listen.
func listen(t *testing.T, tr transport.IRPCServerTransport, config common.ServerConfig) (string, func() error) {
	t.Helper()

	config.Transport.Endpoint = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- tr.Listen(ctx, config)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for tr.Addr() == nil {
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("transport did not start listening")
		}
		time.Sleep(5 * time.Millisecond)
	}
	addr := tr.Addr().String()

	stopped := false
	var result error
	stop := func() error {
		if stopped {
			return result
		}
		stopped = true
		cancel()
		select {
		case result = <-done:
		case <-time.After(5 * time.Second):
			result = errors.New("listen did not return in time")
		}
		return result
	}
	t.Cleanup(func() { _ = stop() })

	return addr, stop
}

// frame builds a request frame whose first byte is b
func frame(b byte) []byte {
	f := make([]byte, common.RequestFrameSize)
	f[0] = b
	return f
}

func TestListenWithoutHandler(t *testing.T) {
	tr := NewTCPServerTransport()
	err := tr.Listen(context.Background(), common.ServerConfig{
		Transport: common.ServerTransportConfig{Endpoint: "127.0.0.1:0"},
	})
	if err == nil {
		t.Fatalf("Expected Listen without handler to fail")
	}
}

func TestListenInvalidEndpoint(t *testing.T) {
	tr := NewTCPServerTransport()
	tr.RegisterHandler(echoKind)
	err := tr.Listen(context.Background(), common.ServerConfig{
		Transport: common.ServerTransportConfig{Endpoint: "256.0.0.1:-1"},
	})
	if err == nil {
		t.Fatalf("Expected Listen on an invalid endpoint to fail")
	}
}

func TestRoundTrips(t *testing.T) {
	tr := NewTCPServerTransport()
	tr.RegisterHandler(echoKind)
	addr, _ := listen(t, tr, common.ServerConfig{})

	c := NewTCPClientTransport()
	if err := c.Connect(common.ClientConfig{
		TimeoutSecond: 5,
		Transport: common.ClientTransportConfig{
			Endpoint: addr,
			TCPConf:  common.TCPConf{TCPNoDelay: true, TCPKeepAliveSec: 30},
		},
	}); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer c.Close()

	for i := byte(0); i < 10; i++ {
		var got byte
		err := c.RoundTrip(frame(i), func(r io.Reader) error {
			buf := make([]byte, common.StatusSize)
			if _, err := io.ReadFull(r, buf); err != nil {
				return err
			}
			got = buf[0]
			return nil
		})
		if err != nil {
			t.Fatalf("RoundTrip %d failed: %v", i, err)
		}
		if got != i {
			t.Errorf("Expected response %d, got %d", i, got)
		}
	}
}

func TestClientWithoutEndpoint(t *testing.T) {
	c := NewTCPClientTransport()
	if err := c.Connect(common.ClientConfig{}); err == nil {
		t.Errorf("Expected Connect without endpoint to fail")
	}
	if err := c.RoundTrip(frame(0), func(io.Reader) error { return nil }); err == nil {
		t.Errorf("Expected RoundTrip without connection to fail")
	}
}

func TestClientTimeoutClosesConnection(t *testing.T) {
	// A handler that never answers in time
	release := make(chan struct{})
	tr := NewTCPServerTransport()
	tr.RegisterHandler(func(frame []byte) []byte {
		<-release
		return echoKind(frame)
	})
	addr, stop := listen(t, tr, common.ServerConfig{})

	c := NewTCPClientTransport()
	if err := c.Connect(common.ClientConfig{
		TimeoutSecond: 1,
		Transport:     common.ClientTransportConfig{Endpoint: addr},
	}); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer c.Close()

	read := func(r io.Reader) error {
		_, err := io.ReadFull(r, make([]byte, common.StatusSize))
		return err
	}

	start := time.Now()
	if err := c.RoundTrip(frame(1), read); err == nil {
		t.Fatalf("Expected RoundTrip to time out")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("RoundTrip returned after %s", elapsed)
	}

	// The stream may be out of sync, so the connection is not reused
	if err := c.RoundTrip(frame(2), read); err == nil {
		t.Errorf("Expected RoundTrip on a dropped connection to fail")
	}

	close(release)
	if err := stop(); err != nil {
		t.Errorf("Listen returned error: %v", err)
	}
}

func TestAdmissionLimit(t *testing.T) {
	var handled atomic.Int32
	tr := NewTCPServerTransport()
	tr.RegisterHandler(func(frame []byte) []byte {
		handled.Add(1)
		return echoKind(frame)
	})
	addr, _ := listen(t, tr, common.ServerConfig{MaxClients: 1})

	// First client is admitted
	first, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	if _, err := first.Write(frame(1)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := io.ReadFull(first, make([]byte, common.StatusSize)); err != nil {
		t.Fatalf("first client got no response: %v", err)
	}

	// Second client waits in the backlog
	second, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer second.Close()
	if _, err := second.Write(frame(2)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	_ = second.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	var netErr net.Error
	if _, err := io.ReadFull(second, make([]byte, common.StatusSize)); !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Fatalf("Expected second client to wait for admission, got %v", err)
	}
	if n := handled.Load(); n != 1 {
		t.Fatalf("Expected 1 handled request, got %d", n)
	}

	// Releasing the first connection admits the second one
	first.Close()

	_ = second.SetReadDeadline(time.Now().Add(5 * time.Second))
	buf := make([]byte, common.StatusSize)
	if _, err := io.ReadFull(second, buf); err != nil {
		t.Fatalf("second client got no response: %v", err)
	}
	if buf[0] != 2 {
		t.Errorf("Expected response 2, got %d", buf[0])
	}
}

func TestIdleTimeout(t *testing.T) {
	tr := NewTCPServerTransport()
	tr.RegisterHandler(echoKind)
	addr, _ := listen(t, tr, common.ServerConfig{TimeoutSecond: 1})

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	// The server closes the idle connection
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, err := conn.Read(make([]byte, 1)); !errors.Is(err, io.EOF) {
		t.Errorf("Expected EOF from idle connection, got %v", err)
	}
}

func TestPartialFrameClosesConnection(t *testing.T) {
	var handled atomic.Int32
	tr := NewTCPServerTransport()
	tr.RegisterHandler(func(frame []byte) []byte {
		handled.Add(1)
		return echoKind(frame)
	})
	addr, _ := listen(t, tr, common.ServerConfig{})

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	// Half a frame, then end of stream
	if _, err := conn.Write(frame(1)[:100]); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := conn.(*net.TCPConn).CloseWrite(); err != nil {
		t.Fatalf("CloseWrite failed: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, err := conn.Read(make([]byte, 1)); !errors.Is(err, io.EOF) {
		t.Errorf("Expected EOF after partial frame, got %v", err)
	}
	if n := handled.Load(); n != 0 {
		t.Errorf("Expected no handled request, got %d", n)
	}
}

func TestShutdownClosesConnections(t *testing.T) {
	tr := NewTCPServerTransport()
	tr.RegisterHandler(echoKind)
	addr, stop := listen(t, tr, common.ServerConfig{})

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	// Make sure the connection is being served
	if _, err := conn.Write(frame(1)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := io.ReadFull(conn, make([]byte, common.StatusSize)); err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if err := stop(); err != nil {
		t.Fatalf("Listen returned error: %v", err)
	}
	if tr.Addr() != nil {
		t.Errorf("Expected no address after shutdown")
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, err := conn.Read(make([]byte, 1)); err == nil {
		t.Errorf("Expected connection to be closed by shutdown")
	}
}
