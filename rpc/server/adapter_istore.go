package server

import (
	"github.com/ValentinKolb/slotkv/lib/store"
	"github.com/ValentinKolb/slotkv/rpc/common"
)

// NewIStoreServerAdapter creates the adapter that dispatches requests to a store.IStore
func NewIStoreServerAdapter() IRPCServerAdapter {
	return &iStoreServerAdapterImpl{}
}

type iStoreServerAdapterImpl struct{}

func (adapter *iStoreServerAdapterImpl) Handle(req *common.Request, s store.IStore) *common.Response {
	// Check for nil store
	if s == nil {
		Logger.Errorf("handler: store is nil")
		return &common.Response{Status: common.StatusInvalidKey}
	}

	// Handle different message kinds
	switch req.Kind {
	case common.MsgKPut:
		err := s.Put(req.Key, req.Value)
		return common.NewStatusResponse(err)
	case common.MsgKGet:
		val, err := s.Get(req.Key)
		return common.NewGetResponse(val, err)
	case common.MsgKDelete:
		err := s.Delete(req.Key)
		return common.NewStatusResponse(err)
	default:
		// Replicate and unknown kinds never touch the store
		Logger.Debugf("unsupported message kind %d (%s)", uint32(req.Kind), req.Kind)
		return &common.Response{Status: common.StatusInvalidKey}
	}
}
