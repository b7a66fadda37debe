package server

import (
	"github.com/ValentinKolb/slotkv/lib/store"
	"github.com/ValentinKolb/slotkv/rpc/common"
)

// IRPCServerAdapter is the interface for all RPC server adapters
// It is responsible for handling requests and responses
type IRPCServerAdapter interface {
	// Handle handles a request and returns a response
	// It takes a Request and a store as parameters.
	// It returns a Response carrying the status of the operation
	// Storage errors must be encoded in the response status
	Handle(req *common.Request, store store.IStore) (resp *common.Response)
}
