package common

import (
	"fmt"

	"github.com/ValentinKolb/slotkv/lib/db"
	"github.com/ValentinKolb/slotkv/lib/store"
)

// --------------------------------------------------------------------------
// Frame Layout
// --------------------------------------------------------------------------

// Sizes of the fixed-size frames exchanged over a connection.
//
// Request:  kind (4 bytes, little endian) | key (32 bytes) | value (256 bytes)
// Response: status (4 bytes, little endian) [| value (256 bytes), successful GET only]
const (
	KindSize         = 4
	KeySize          = db.MaxKeySize
	ValueSize        = db.MaxValueSize
	RequestFrameSize = KindSize + KeySize + ValueSize
	StatusSize       = 4
)

// --------------------------------------------------------------------------
// Message Structures
// --------------------------------------------------------------------------

// Request is a single decoded request frame.
// Value is ignored for GET and DELETE.
type Request struct {
	Kind  MessageKind
	Key   string
	Value string
}

// Response is a single decoded response.
// HasValue is only set for a successful GET.
type Response struct {
	Status   Status
	Value    string
	HasValue bool
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewPutRequest creates a new Put request
func NewPutRequest(key, value string) *Request {
	return &Request{
		Kind:  MsgKPut,
		Key:   key,
		Value: value,
	}
}

// NewGetRequest creates a new Get request
func NewGetRequest(key string) *Request {
	return &Request{
		Kind: MsgKGet,
		Key:  key,
	}
}

// NewDeleteRequest creates a new Delete request
func NewDeleteRequest(key string) *Request {
	return &Request{
		Kind: MsgKDelete,
		Key:  key,
	}
}

// NewStatusResponse creates a response that only carries the status of err
func NewStatusResponse(err error) *Response {
	return &Response{
		Status: StatusFromError(err),
	}
}

// NewGetResponse creates a new Get response. The value is only attached on success.
func NewGetResponse(value string, err error) *Response {
	resp := NewStatusResponse(err)
	if resp.Status == StatusSuccess {
		resp.Value = value
		resp.HasValue = true
	}
	return resp
}

// --------------------------------------------------------------------------
// Message Kind Definition
// --------------------------------------------------------------------------

// MessageKind defines the operation requested by a frame.
type MessageKind uint32

const (
	MsgKPut       MessageKind = iota // Store a key-value pair
	MsgKGet                          // Read a value by key
	MsgKDelete                       // Delete a key-value pair
	MsgKReplicate                    // Reserved for replication, rejected by the server
)

// String returns the string representation of a MessageKind.
func (k MessageKind) String() string {
	switch k {
	case MsgKPut:
		return "put"
	case MsgKGet:
		return "get"
	case MsgKDelete:
		return "delete"
	case MsgKReplicate:
		return "replicate"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Status Definition
// --------------------------------------------------------------------------

// Status is the result code written back for every request.
// The values are identical to store.RetCode.
type Status uint32

const (
	StatusSuccess    = Status(store.RetCSuccess)
	StatusNotFound   = Status(store.RetCNotFound)
	StatusNoSpace    = Status(store.RetCNoSpace)
	StatusInvalidKey = Status(store.RetCInvalidKey)
	StatusNetwork    = Status(store.RetCNetwork) // never sent, client-local only
)

// String returns the string representation of a Status.
func (s Status) String() string {
	return store.RetCode(s).String()
}

// StatusFromError maps an error returned by a store to a Status.
// StatusNetwork is never sent, errors without a store code are reported as
// StatusInvalidKey.
func StatusFromError(err error) Status {
	code := store.CodeOf(err)
	if code == store.RetCNetwork {
		return StatusInvalidKey
	}
	return Status(code)
}

// Err converts a status received from a server into a *store.Error.
// StatusSuccess yields nil.
func (s Status) Err() error {
	if s == StatusSuccess {
		return nil
	}
	return store.NewError(store.RetCode(s), fmt.Sprintf("server responded with status %s", s))
}
