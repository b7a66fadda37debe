package serializer

import (
	"io"

	"github.com/ValentinKolb/slotkv/rpc/common"
)

// IRPCSerializer is the interface for the frame codec used by client and server
type IRPCSerializer interface {
	// SerializeRequest encodes a request into a frame of common.RequestFrameSize bytes
	SerializeRequest(req common.Request) ([]byte, error)
	// DeserializeRequest decodes a request frame
	// It returns an error if the frame does not have the expected size
	DeserializeRequest(b []byte, req *common.Request) error
	// SerializeResponse encodes a response: the status, followed by the value
	// buffer if the response carries a value
	SerializeResponse(resp common.Response) ([]byte, error)
	// ReadResponse reads the response to a request of the given kind from r.
	// The value buffer is only read for a successful GET.
	ReadResponse(r io.Reader, kind common.MessageKind) (common.Response, error)
}
