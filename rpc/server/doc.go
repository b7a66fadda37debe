// Package server implements the RPC server of the slotkv key-value store.
//
// The server registers a handler with the transport layer. For every request frame
// the handler decodes the request, lets the adapter run it against the store and
// encodes the response. Storage errors become status codes and never close the
// connection. Kinds other than put, get and delete, including the reserved
// replicate kind, are answered with InvalidKey without touching the store.
//
// Metrics:
//
//	slotkv_requests_total{kind}         handled requests by kind
//	slotkv_request_errors_total{status} requests with a status other than success
//	slotkv_request_duration_seconds     handler latency histogram
//
// With ServerConfig.MetricsEndpoint set, the VictoriaMetrics default set is served
// in the prometheus text format at /metrics.
//
// Backup Hook:
//
//	ConnectBackup opens a TCP connection to a backup server and holds it until the
//	server stops. No data is sent over it. A failed connection is logged as a
//	warning and does not prevent the server from starting.
package server
