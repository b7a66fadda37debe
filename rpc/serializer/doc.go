// Package serializer provides the frame codec of the key-value store RPC system.
// It defines a common interface for encoding requests and responses and a binary
// implementation of the fixed-size wire format.
//
// Wire Format:
//
//	Request  (292 bytes): kind uint32 LE | key [32]byte | value [256]byte
//	Response (4 bytes):   status uint32 LE
//	Response (260 bytes): status uint32 LE | value [256]byte   (successful GET only)
//
// Strings are NUL-padded. Encoding truncates keys to 31 and values to 255 bytes so
// that every field keeps a terminating NUL byte. Decoding reads a field up to its
// first NUL byte, or the whole field if there is none.
//
// Since a response does not carry its own length, the reader must know which
// request it answers. ReadResponse therefore takes the kind of the request.
//
// Thread Safety:
//
//	The serializer is stateless and safe for concurrent use across multiple
//	goroutines without additional synchronization.
//
// Usage:
//
//	s := serializer.NewBinarySerializer()
//	frame, err := s.SerializeRequest(*common.NewGetRequest("key"))
//	// ... send frame ...
//	resp, err := s.ReadResponse(conn, common.MsgKGet)
package serializer
