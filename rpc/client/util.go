package client

import (
	"fmt"
	"io"

	"github.com/ValentinKolb/slotkv/lib/store"
	"github.com/ValentinKolb/slotkv/rpc/common"
	"github.com/ValentinKolb/slotkv/rpc/serializer"
	"github.com/ValentinKolb/slotkv/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("client")
)

// rpcClientAdapter is a struct that stores all data needed for an implementation of an RPC client
type rpcClientAdapter struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// invokeRPCRequest is a helper function used by the RPC client to send requests
// It takes a request, a transport layer and a serializer as parameters
// It returns the decoded response and an error if any occurs
// A transport or codec failure is returned as a store.ErrNetwork error, a
// non-success status as the *store.Error with the matching code
func invokeRPCRequest(req *common.Request, transport transport.IRPCClientTransport, serializer serializer.IRPCSerializer) (*common.Response, error) {
	// Serialize the request
	reqBytes, err := serializer.SerializeRequest(*req)
	if err != nil {
		return nil, networkError(err)
	}

	// Send the request and read the response
	var resp common.Response
	err = transport.RoundTrip(reqBytes, func(r io.Reader) error {
		var readErr error
		resp, readErr = serializer.ReadResponse(r, req.Kind)
		return readErr
	})
	if err != nil {
		Logger.Debugf("%s request for key %q failed: %v", req.Kind, req.Key, err)
		return nil, networkError(err)
	}

	// Check if the response carries an error status
	if err := resp.Status.Err(); err != nil {
		return nil, err
	}

	// Return the response
	return &resp, nil
}

// networkError wraps err into a *store.Error with code RetCNetwork
func networkError(err error) error {
	return store.NewError(store.RetCNetwork, fmt.Sprintf("network error: %v", err))
}
