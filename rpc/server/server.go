package server

import (
	"context"
	"fmt"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/ValentinKolb/slotkv/lib/store"
	"github.com/ValentinKolb/slotkv/rpc/common"
	"github.com/ValentinKolb/slotkv/rpc/serializer"
	"github.com/ValentinKolb/slotkv/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"golang.org/x/sync/errgroup"
)

var Logger = logger.GetLogger("rpc")

// RPCServer serves a single store over a transport.
// It decodes request frames, dispatches them through the adapter and encodes
// the responses.
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	store      store.IStore
	adapter    IRPCServerAdapter

	backupMu sync.Mutex
	backup   *backupConn
}

// NewRPCServer creates a new RPC server
// It takes a config, transport, serializer and the store to serve as parameters
// The store is not closed by the server, the caller saves it after Serve returned
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		tcp.NewTCPServerTransport(),
//		serializer.NewBinarySerializer(),
//		store,
//	)
//
//	if err := s.Serve(ctx); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
	store store.IStore,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof("%s", config.String())

	return &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		store:      store,
		adapter:    NewIStoreServerAdapter(),
	}
}

// Serve starts the RPC server and blocks until ctx is done or the transport fails
// On return no request is being processed anymore
func (s *RPCServer) Serve(ctx context.Context) error {
	s.registerTransportHandler()

	// Connect to the backup server, a failure is not fatal
	if s.config.BackupEndpoint != "" {
		if err := s.ConnectBackup(s.config.BackupEndpoint); err != nil {
			Logger.Warningf("failed to connect to backup server %s: %v", s.config.BackupEndpoint, err)
		}
	}
	defer s.closeBackup()

	g, ctx := errgroup.WithContext(ctx)

	// Start the metrics endpoint if configured
	if s.config.MetricsEndpoint != "" {
		g.Go(func() error {
			return serveMetrics(ctx, s.config.MetricsEndpoint)
		})
	}

	// Start the transport layer
	g.Go(func() error {
		return s.transport.Listen(ctx, s.config)
	})

	return g.Wait()
}

// Addr returns the address the server listens on, or nil if it is not listening
func (s *RPCServer) Addr() string {
	addr := s.transport.Addr()
	if addr == nil {
		return ""
	}
	return addr.String()
}

// --------------------------------------------------------------------------
// Request Handling
// --------------------------------------------------------------------------

func (s *RPCServer) registerTransportHandler() {
	s.transport.RegisterHandler(s.handle)
}

// handle processes one request frame and returns the encoded response
func (s *RPCServer) handle(frame []byte) []byte {
	start := time.Now()

	var req common.Request
	var resp *common.Response

	// Decode the request
	if err := s.serializer.DeserializeRequest(frame, &req); err != nil {
		Logger.Warningf("failed to deserialize request: %v", err)
		resp = &common.Response{Status: common.StatusInvalidKey}
	} else {
		// Let the adapter handle the request
		resp = s.adapter.Handle(&req, s.store)
	}

	observeRequest(req.Kind, resp.Status, start)

	// Return result
	data, err := s.serializer.SerializeResponse(*resp)
	if err != nil {
		Logger.Errorf("failed to serialize response: %v", err)
		data, _ = s.serializer.SerializeResponse(common.Response{Status: common.StatusInvalidKey})
	}
	return data
}

// --------------------------------------------------------------------------
// Backup Hook
// --------------------------------------------------------------------------

// ConnectBackup connects to the backup server at endpoint (host:port).
// The connection is held open until the server stops, no data is exchanged
// over it. An existing backup connection is replaced.
func (s *RPCServer) ConnectBackup(endpoint string) error {
	conn, err := dialBackup(endpoint, time.Duration(common.DefaultClientTimeoutSecond)*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to backup server: %w", err)
	}

	s.backupMu.Lock()
	old := s.backup
	s.backup = conn
	s.backupMu.Unlock()

	if old != nil {
		_ = old.Close()
	}

	Logger.Infof("connected to backup server %s", endpoint)
	return nil
}

// closeBackup closes the backup connection if there is one
func (s *RPCServer) closeBackup() {
	s.backupMu.Lock()
	defer s.backupMu.Unlock()

	if s.backup == nil {
		return
	}
	if err := s.backup.Close(); err != nil {
		Logger.Warningf("failed to close backup connection: %v", err)
	}
	s.backup = nil
}
