package serializer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ValentinKolb/slotkv/rpc/common"
)

// testRequests creates a set of requests with different fields filled
func testRequests() []common.Request {
	return []common.Request{
		*common.NewPutRequest("test-key", "test-value"),
		*common.NewGetRequest("test-key"),
		*common.NewDeleteRequest("test-key"),
		*common.NewPutRequest("", ""),
		{Kind: common.MsgKReplicate, Key: "replica", Value: "payload"},
		{Kind: common.MessageKind(42), Key: "unknown"},
	}
}

// TestRequestRoundTrip tests that requests can be serialized and deserialized correctly
func TestRequestRoundTrip(t *testing.T) {
	s := NewBinarySerializer()

	for _, req := range testRequests() {
		t.Run(req.Kind.String()+"/"+req.Key, func(t *testing.T) {
			frame, err := s.SerializeRequest(req)
			if err != nil {
				t.Fatalf("SerializeRequest failed: %v", err)
			}
			if len(frame) != common.RequestFrameSize {
				t.Fatalf("Expected frame of %d bytes, got %d", common.RequestFrameSize, len(frame))
			}

			var decoded common.Request
			if err := s.DeserializeRequest(frame, &decoded); err != nil {
				t.Fatalf("DeserializeRequest failed: %v", err)
			}
			if decoded != req {
				t.Errorf("Request mismatch:\nOriginal: %+v\nDecoded:  %+v", req, decoded)
			}
		})
	}
}

// TestRequestLayout checks the byte layout of a request frame
func TestRequestLayout(t *testing.T) {
	s := NewBinarySerializer()

	frame, err := s.SerializeRequest(*common.NewPutRequest("ab", "xyz"))
	if err != nil {
		t.Fatalf("SerializeRequest failed: %v", err)
	}

	if kind := binary.LittleEndian.Uint32(frame[0:4]); kind != uint32(common.MsgKPut) {
		t.Errorf("Expected kind %d, got %d", common.MsgKPut, kind)
	}
	if !bytes.Equal(frame[4:7], []byte{'a', 'b', 0}) {
		t.Errorf("Unexpected key bytes: %v", frame[4:7])
	}
	if !bytes.Equal(frame[36:40], []byte{'x', 'y', 'z', 0}) {
		t.Errorf("Unexpected value bytes: %v", frame[36:40])
	}

	get, _ := s.SerializeRequest(*common.NewGetRequest("ab"))
	if !bytes.Equal(get[:4], []byte{1, 0, 0, 0}) {
		t.Errorf("Expected GET kind to be encoded little endian, got %v", get[:4])
	}
}

// TestRequestTruncation checks that oversize fields keep their terminating NUL
func TestRequestTruncation(t *testing.T) {
	s := NewBinarySerializer()

	key := strings.Repeat("k", 100)
	value := strings.Repeat("v", 1000)

	frame, err := s.SerializeRequest(*common.NewPutRequest(key, value))
	if err != nil {
		t.Fatalf("SerializeRequest failed: %v", err)
	}
	if frame[keyOffset+common.KeySize-1] != 0 {
		t.Errorf("Key field is not NUL-terminated")
	}
	if frame[common.RequestFrameSize-1] != 0 {
		t.Errorf("Value field is not NUL-terminated")
	}

	var decoded common.Request
	if err := s.DeserializeRequest(frame, &decoded); err != nil {
		t.Fatalf("DeserializeRequest failed: %v", err)
	}
	if decoded.Key != key[:common.KeySize-1] {
		t.Errorf("Expected key truncated to %d bytes, got %d", common.KeySize-1, len(decoded.Key))
	}
	if decoded.Value != value[:common.ValueSize-1] {
		t.Errorf("Expected value truncated to %d bytes, got %d", common.ValueSize-1, len(decoded.Value))
	}
}

// TestDeserializeUnterminated checks that a field without NUL byte is read completely
func TestDeserializeUnterminated(t *testing.T) {
	s := NewBinarySerializer()

	frame := make([]byte, common.RequestFrameSize)
	for i := keyOffset; i < valueOffset; i++ {
		frame[i] = 'x'
	}

	var decoded common.Request
	if err := s.DeserializeRequest(frame, &decoded); err != nil {
		t.Fatalf("DeserializeRequest failed: %v", err)
	}
	if len(decoded.Key) != common.KeySize {
		t.Errorf("Expected key of %d bytes, got %d", common.KeySize, len(decoded.Key))
	}
	if decoded.Value != "" {
		t.Errorf("Expected empty value, got %q", decoded.Value)
	}
}

// TestDeserializeInvalidSize tests that frames of the wrong size are rejected
func TestDeserializeInvalidSize(t *testing.T) {
	s := NewBinarySerializer()

	for _, size := range []int{0, 4, common.RequestFrameSize - 1, common.RequestFrameSize + 1} {
		var req common.Request
		if err := s.DeserializeRequest(make([]byte, size), &req); err == nil {
			t.Errorf("Expected error for frame of %d bytes", size)
		}
	}
}

// TestResponses tests the encoding and reading of responses for every request kind
func TestResponses(t *testing.T) {
	s := NewBinarySerializer()

	tests := []struct {
		name     string
		kind     common.MessageKind
		resp     *common.Response
		wireSize int
	}{
		{"put success", common.MsgKPut, common.NewStatusResponse(nil), common.StatusSize},
		{"put invalid key", common.MsgKPut, &common.Response{Status: common.StatusInvalidKey}, common.StatusSize},
		{"get success", common.MsgKGet, common.NewGetResponse("value", nil), common.StatusSize + common.ValueSize},
		{"get empty value", common.MsgKGet, common.NewGetResponse("", nil), common.StatusSize + common.ValueSize},
		{"get not found", common.MsgKGet, &common.Response{Status: common.StatusNotFound}, common.StatusSize},
		{"delete success", common.MsgKDelete, common.NewStatusResponse(nil), common.StatusSize},
		{"delete not found", common.MsgKDelete, &common.Response{Status: common.StatusNotFound}, common.StatusSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := s.SerializeResponse(*tt.resp)
			if err != nil {
				t.Fatalf("SerializeResponse failed: %v", err)
			}
			if len(data) != tt.wireSize {
				t.Fatalf("Expected %d bytes on the wire, got %d", tt.wireSize, len(data))
			}

			r := bytes.NewReader(data)
			resp, err := s.ReadResponse(r, tt.kind)
			if err != nil {
				t.Fatalf("ReadResponse failed: %v", err)
			}
			if resp != *tt.resp {
				t.Errorf("Response mismatch:\nOriginal: %+v\nRead:     %+v", *tt.resp, resp)
			}
			if r.Len() != 0 {
				t.Errorf("Expected all bytes to be consumed, %d left", r.Len())
			}
		})
	}
}

// TestReadResponseShort tests that truncated responses are reported as errors
func TestReadResponseShort(t *testing.T) {
	s := NewBinarySerializer()

	if _, err := s.ReadResponse(bytes.NewReader([]byte{0, 0}), common.MsgKPut); err == nil {
		t.Errorf("Expected error for truncated status")
	}

	// successful GET status without value buffer
	_, err := s.ReadResponse(bytes.NewReader([]byte{0, 0, 0, 0, 'x'}), common.MsgKGet)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Expected io.ErrUnexpectedEOF for truncated value, got %v", err)
	}

	if _, err := s.ReadResponse(bytes.NewReader(nil), common.MsgKGet); !errors.Is(err, io.EOF) {
		t.Errorf("Expected io.EOF for empty stream, got %v", err)
	}
}
