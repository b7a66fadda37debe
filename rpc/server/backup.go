package server

import (
	"net"
	"time"
)

// backupConn is the connection to a backup server.
// No replication protocol runs over it yet, it only reserves the peer.
type backupConn struct {
	endpoint string
	conn     net.Conn
}

// dialBackup establishes a TCP connection to the backup server
func dialBackup(endpoint string, timeout time.Duration) (*backupConn, error) {
	conn, err := net.DialTimeout("tcp", endpoint, timeout)
	if err != nil {
		return nil, err
	}
	return &backupConn{endpoint: endpoint, conn: conn}, nil
}

// Close closes the connection to the backup server
func (b *backupConn) Close() error {
	Logger.Debugf("closing backup connection to %s", b.endpoint)
	return b.conn.Close()
}
