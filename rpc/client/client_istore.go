package client

import (
	"fmt"

	"github.com/ValentinKolb/slotkv/lib/db"
	"github.com/ValentinKolb/slotkv/lib/store"
	"github.com/ValentinKolb/slotkv/rpc/common"
	"github.com/ValentinKolb/slotkv/rpc/serializer"
	"github.com/ValentinKolb/slotkv/rpc/transport"
)

// NewRPCStore creates a new RPC store
// The function takes a config, a transport and a serializer as parameters
// It returns a store.IStore and an error
// If the server cannot be reached, the error is a store.ErrNetwork error
func NewRPCStore(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (store.IStore, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, networkError(err)
	}

	// Create a new RPC store
	s := rpcStore{
		rpcClientAdapter{
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}

	// Return the RPC store
	return &s, nil
}

type rpcStore struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcStore) Put(key, value string) (err error) {
	req := common.NewPutRequest(key, value)
	_, err = invokeRPCRequest(req, i.transport, i.serializer)
	return err
}

func (i *rpcStore) Get(key string) (value string, err error) {
	req := common.NewGetRequest(key)
	resp, err := invokeRPCRequest(req, i.transport, i.serializer)
	if err != nil {
		return "", err
	}
	return resp.Value, nil
}

func (i *rpcStore) Delete(key string) (err error) {
	req := common.NewDeleteRequest(key)
	_, err = invokeRPCRequest(req, i.transport, i.serializer)
	return err
}

// GetDBInfo is not implemented for rpc
func (i *rpcStore) GetDBInfo() (info db.DatabaseInfo, err error) {
	return db.DatabaseInfo{}, fmt.Errorf("the GetDBInfo() method is not implemented in the rpc client adapter")
}

func (i *rpcStore) Close() error {
	return i.transport.Close()
}
