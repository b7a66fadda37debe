package base

import (
	"io"
	"net"
	"time"

	"github.com/ValentinKolb/slotkv/rpc/common"
)

// readFrame reads one request frame from the connection into buf
// buf must hold at least common.RequestFrameSize bytes
// io.EOF is returned if the peer closed the connection between frames,
// io.ErrUnexpectedEOF if it closed the connection within a frame
func readFrame(conn net.Conn, buf []byte) ([]byte, error) {
	frame := buf[:common.RequestFrameSize]
	if _, err := io.ReadFull(conn, frame); err != nil {
		return nil, err
	}
	return frame, nil
}

// writeFrame writes data to the connection
// A short write is reported as io.ErrShortWrite
func writeFrame(conn net.Conn, data []byte) error {
	n, err := conn.Write(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return io.ErrShortWrite
	}
	return nil
}

// deadline returns the deadline for an operation started now, or the zero
// time (no deadline) if timeout is not positive
func deadline(timeout time.Duration) time.Time {
	if timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(timeout)
}
