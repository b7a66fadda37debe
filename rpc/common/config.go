package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Socket configuration structs (shared by client and server)
// --------------------------------------------------------------------------

// SocketConf holds the socket buffer sizes (0 = system default)
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds TCP specific socket options
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int // 0 = disabled
	TCPLingerSec    int // 0 = system default
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerTransportConfig configures the listening side of the transport
type ServerTransportConfig struct {
	// Endpoint is the address to listen on (host:port for tcp, a path for unix)
	Endpoint string
	SocketConf
	TCPConf
}

// ServerConfig holds all configuration parameters of the server.
type ServerConfig struct {
	Transport ServerTransportConfig

	// Snapshot file, loaded on start and written on shutdown
	SnapshotFile   string
	AtomicSnapshot bool

	// MaxClients bounds the number of concurrently served connections (0 = unbounded)
	MaxClients int

	// TimeoutSecond closes connections that stay idle for longer (0 = never)
	TimeoutSecond int64

	// BackupEndpoint is the address of the backup server (empty = none)
	BackupEndpoint string

	// MetricsEndpoint is the address of the prometheus metrics endpoint (empty = disabled)
	MetricsEndpoint string

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	orNone := func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	}

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Idle Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	if c.MaxClients > 0 {
		addField("Max Clients", strconv.Itoa(c.MaxClients))
	} else {
		addField("Max Clients", "unbounded")
	}
	addField("TCP No Delay", strconv.FormatBool(c.Transport.TCPNoDelay))
	addField("Metrics Endpoint", orNone(c.MetricsEndpoint))

	// Storage
	addSection("Storage")
	addField("Snapshot File", orNone(c.SnapshotFile))
	addField("Atomic Snapshot", strconv.FormatBool(c.AtomicSnapshot))

	// Backup
	addSection("Backup")
	addField("Backup Endpoint", orNone(c.BackupEndpoint))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// DefaultClientTimeoutSecond is the send and receive timeout of a client
const DefaultClientTimeoutSecond = 5

// ClientTransportConfig configures the connecting side of the transport
type ClientTransportConfig struct {
	// Endpoint is the address of the server (host:port for tcp, a path for unix)
	Endpoint string
	SocketConf
	TCPConf
}

type ClientConfig struct {
	// TimeoutSecond bounds every send and receive (0 = no timeout)
	TimeoutSecond int
	Transport     ClientTransportConfig
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("TCP No Delay", strconv.FormatBool(c.Transport.TCPNoDelay))

	return sb.String()
}
