package serializer

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ValentinKolb/slotkv/lib/db/util"
	"github.com/ValentinKolb/slotkv/rpc/common"
)

// NewBinarySerializer creates a new serializer for the fixed-size binary frames
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer for fixed-size frames.
// Integers are little endian, strings are NUL-padded and always keep at
// least one terminating NUL byte.
type binarySerializerImpl struct {
}

// Offsets of the fields inside a request frame
const (
	keyOffset   = common.KindSize
	valueOffset = keyOffset + common.KeySize
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) SerializeRequest(req common.Request) ([]byte, error) {
	result := make([]byte, common.RequestFrameSize)

	// Write message kind
	binary.LittleEndian.PutUint32(result[:keyOffset], uint32(req.Kind))

	// Write key and value, truncated so that the terminating NUL fits
	putCString(result[keyOffset:valueOffset], req.Key)
	putCString(result[valueOffset:], req.Value)

	return result, nil
}

func (b binarySerializerImpl) DeserializeRequest(data []byte, req *common.Request) error {
	if len(data) != common.RequestFrameSize {
		return fmt.Errorf("invalid request frame size %d, expected %d", len(data), common.RequestFrameSize)
	}

	req.Kind = common.MessageKind(binary.LittleEndian.Uint32(data[:keyOffset]))
	req.Key = util.CString(data[keyOffset:valueOffset])
	req.Value = util.CString(data[valueOffset:])

	return nil
}

func (b binarySerializerImpl) SerializeResponse(resp common.Response) ([]byte, error) {
	size := common.StatusSize
	if resp.HasValue {
		size += common.ValueSize
	}
	result := make([]byte, size)

	// Write status
	binary.LittleEndian.PutUint32(result[:common.StatusSize], uint32(resp.Status))

	// Write value buffer
	if resp.HasValue {
		putCString(result[common.StatusSize:], resp.Value)
	}

	return result, nil
}

func (b binarySerializerImpl) ReadResponse(r io.Reader, kind common.MessageKind) (common.Response, error) {
	var resp common.Response

	// Read status
	var status [common.StatusSize]byte
	if _, err := io.ReadFull(r, status[:]); err != nil {
		return resp, fmt.Errorf("failed to read response status: %w", err)
	}
	resp.Status = common.Status(binary.LittleEndian.Uint32(status[:]))

	// Only a successful GET is followed by the value buffer
	if kind != common.MsgKGet || resp.Status != common.StatusSuccess {
		return resp, nil
	}

	value := make([]byte, common.ValueSize)
	if _, err := io.ReadFull(r, value); err != nil {
		return resp, fmt.Errorf("failed to read response value: %w", err)
	}
	resp.Value = util.CString(value)
	resp.HasValue = true

	return resp, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// putCString copies s into the zeroed buffer buf, truncated to len(buf)-1
// bytes so that the buffer is always NUL-terminated
func putCString(buf []byte, s string) {
	copy(buf[:len(buf)-1], s)
}
