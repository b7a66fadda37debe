package serve

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	cmdUtil "github.com/ValentinKolb/slotkv/cmd/util"
	"github.com/ValentinKolb/slotkv/lib/db"
	"github.com/ValentinKolb/slotkv/lib/db/engines/slot"
	"github.com/ValentinKolb/slotkv/lib/store/lstore"
	"github.com/ValentinKolb/slotkv/rpc/common"
	"github.com/ValentinKolb/slotkv/rpc/serializer"
	"github.com/ValentinKolb/slotkv/rpc/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:   "serve [port] [backup-host backup-port]",
		Short: "Start the slotkv server",
		Long: `Start the slotkv server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is SLOTKV_<flag> (e.g. SLOTKV_SNAPSHOT_FILE=/data/store.dat)

The optional port overrides the port of --endpoint. If a backup host and port are given, the server connects to the backup server on start.`,
		Args:         validateArgs,
		PreRunE:      processConfig,
		RunE:         run,
		SilenceUsage: true,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the server will listen (e.g. 0.0.0.0:8080 for tcp, /tmp/slotkv.sock for unix)"))

	key = "snapshot-file"
	ServeCmd.PersistentFlags().String(key, "store.dat", cmdUtil.WrapString("The snapshot file, loaded on start and written on shutdown. An empty value disables persistence"))

	key = "atomic-snapshot"
	ServeCmd.PersistentFlags().Bool(key, false, cmdUtil.WrapString("Write the snapshot to a temporary file and rename it over the snapshot file"))

	key = "max-clients"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Maximum number of concurrently served connections, further clients wait to be admitted (0 = unbounded)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 0, cmdUtil.WrapString("Close connections that stay idle for longer than this many seconds (0 = never)"))

	key = "backup"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("The address of the backup server (host:port), overridden by the positional arguments"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("The address of the prometheus metrics endpoint (e.g. localhost:9090, empty = disabled)"))

	key = "transport-tcp-nodelay"
	ServeCmd.PersistentFlags().Bool(key, true, cmdUtil.WrapString("Whether to enable TCP_NODELAY for accepted connections (only for tcp)"))

	key = "transport-tcp-keepalive"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The keepalive interval for accepted connections (in seconds, only for tcp)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// validateArgs accepts no argument, a port, or a port plus backup host and port
func validateArgs(_ *cobra.Command, args []string) error {
	switch len(args) {
	case 0, 1, 3:
		return nil
	default:
		return fmt.Errorf("expected [port] [backup-host backup-port], got %d arguments", len(args))
	}
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, args []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.Transport.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.Transport.TCPNoDelay = viper.GetBool("transport-tcp-nodelay")
	serveCmdConfig.Transport.TCPKeepAliveSec = viper.GetInt("transport-tcp-keepalive")
	serveCmdConfig.SnapshotFile = viper.GetString("snapshot-file")
	serveCmdConfig.AtomicSnapshot = viper.GetBool("atomic-snapshot")
	serveCmdConfig.MaxClients = viper.GetInt("max-clients")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.BackupEndpoint = viper.GetString("backup")
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	if serveCmdConfig.MaxClients < 0 {
		return fmt.Errorf("max-clients must not be negative")
	}

	if _, err := common.ParseLogLevel(serveCmdConfig.LogLevel); err != nil {
		return err
	}

	return applyArgs(serveCmdConfig, args)
}

// applyArgs applies the positional arguments to the configuration
func applyArgs(config *common.ServerConfig, args []string) error {
	// port overrides the port of the endpoint
	if len(args) >= 1 {
		if err := cmdUtil.ValidatePort(args[0]); err != nil {
			return err
		}
		host, _, err := net.SplitHostPort(config.Transport.Endpoint)
		if err != nil {
			return fmt.Errorf("a port argument requires a host:port endpoint: %w", err)
		}
		config.Transport.Endpoint = net.JoinHostPort(host, args[0])
	}

	// backup host and port
	if len(args) == 3 {
		if err := cmdUtil.ValidatePort(args[2]); err != nil {
			return fmt.Errorf("invalid backup port: %w", err)
		}
		config.BackupEndpoint = net.JoinHostPort(args[1], args[2])
	}

	return nil
}

// run starts the slotkv server and blocks until SIGINT or SIGTERM
func run(cmd *cobra.Command, _ []string) error {
	if err := common.InitLoggers(serveCmdConfig.LogLevel); err != nil {
		return err
	}

	// Parse the transport
	t, err := cmdUtil.GetServerTransport()
	if err != nil {
		return err
	}

	// Create the store, this loads the snapshot
	s, err := lstore.NewLocalStore(
		func() db.KVDB { return slot.NewSlotDB() },
		lstore.Options{
			SnapshotFile: serveCmdConfig.SnapshotFile,
			AtomicSave:   serveCmdConfig.AtomicSnapshot,
		},
	)
	if err != nil {
		return err
	}

	serv := server.NewRPCServer(
		*serveCmdConfig,
		t,
		serializer.NewBinarySerializer(),
		s,
	)

	// Cancel the server on SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := serv.Serve(ctx)
	server.Logger.Infof("Shutting down server...")

	// All workers have exited, the snapshot can be written
	closeErr := s.Close()

	if err := errors.Join(serveErr, closeErr); err != nil {
		return err
	}

	server.Logger.Infof("Server shutdown complete")
	return nil
}
