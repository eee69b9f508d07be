// internal/codec/codec.go
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Command words. Every frame is big-endian.
const (
	CmdWriteParameter   uint32 = 3002
	CmdReadParameters   uint32 = 3003
	CmdReadCalculations uint32 = 3004
	CmdReadVisibilities uint32 = 3005
)

const (
	DefaultMaxDataLength = 10000

	RequestSize            = 8
	WriteRequestSize       = 12
	ParametersHeaderSize   = 8
	CalculationsHeaderSize = 12
	VisibilitiesHeaderSize = 8
	WriteEchoSize          = 8
)

var (
	ErrShortFrame        = errors.New("codec: short frame")
	ErrTruncated         = errors.New("codec: truncated section")
	ErrUnexpectedCommand = errors.New("codec: unexpected command echo")
)

// Write is one queued parameter write.
type Write struct {
	Index int32
	Value int32
}

// Header is a decoded response header. Status is only set for calculations.
type Header struct {
	Cmd    uint32
	Status int32
	Length int32
}

// Expect checks the echoed command word.
func (h Header) Expect(cmd uint32) error {
	if h.Cmd != cmd {
		return fmt.Errorf("%w: got %d want %d", ErrUnexpectedCommand, h.Cmd, cmd)
	}
	return nil
}

var be = binary.BigEndian

// ----------------------------------------------------------------
// Requests
// ----------------------------------------------------------------

func encodeRead(cmd uint32) []byte {
	b := make([]byte, RequestSize)
	be.PutUint32(b[0:4], cmd)
	return b
}

func EncodeReadParameters() []byte   { return encodeRead(CmdReadParameters) }
func EncodeReadCalculations() []byte { return encodeRead(CmdReadCalculations) }
func EncodeReadVisibilities() []byte { return encodeRead(CmdReadVisibilities) }

func EncodeWriteParameter(index, value int32) []byte {
	b := make([]byte, WriteRequestSize)
	be.PutUint32(b[0:4], CmdWriteParameter)
	be.PutUint32(b[4:8], uint32(index))
	be.PutUint32(b[8:12], uint32(value))
	return b
}

// Request is the server-side view of a client frame.
type Request struct {
	Cmd   uint32
	Index int32
	Value int32
}

// DecodeRequest parses an 8-byte read frame or a 12-byte write frame.
func DecodeRequest(b []byte) (Request, error) {
	if len(b) < RequestSize {
		return Request{}, fmt.Errorf("%w: request %d bytes", ErrShortFrame, len(b))
	}
	r := Request{
		Cmd:   be.Uint32(b[0:4]),
		Index: int32(be.Uint32(b[4:8])),
	}
	if r.Cmd == CmdWriteParameter {
		if len(b) < WriteRequestSize {
			return Request{}, fmt.Errorf("%w: write request %d bytes", ErrShortFrame, len(b))
		}
		r.Value = int32(be.Uint32(b[8:12]))
	}
	return r, nil
}

// ----------------------------------------------------------------
// Response headers
// ----------------------------------------------------------------

func DecodeParametersHeader(b []byte) (Header, error) {
	if len(b) < ParametersHeaderSize {
		return Header{}, fmt.Errorf("%w: parameters header %d bytes", ErrShortFrame, len(b))
	}
	return Header{
		Cmd:    be.Uint32(b[0:4]),
		Length: int32(be.Uint32(b[4:8])),
	}, nil
}

func DecodeCalculationsHeader(b []byte) (Header, error) {
	if len(b) < CalculationsHeaderSize {
		return Header{}, fmt.Errorf("%w: calculations header %d bytes", ErrShortFrame, len(b))
	}
	return Header{
		Cmd:    be.Uint32(b[0:4]),
		Status: int32(be.Uint32(b[4:8])),
		Length: int32(be.Uint32(b[8:12])),
	}, nil
}

func DecodeVisibilitiesHeader(b []byte) (Header, error) {
	if len(b) < VisibilitiesHeaderSize {
		return Header{}, fmt.Errorf("%w: visibilities header %d bytes", ErrShortFrame, len(b))
	}
	return Header{
		Cmd:    be.Uint32(b[0:4]),
		Length: int32(be.Uint32(b[4:8])),
	}, nil
}

// DecodeWriteEcho parses the 8-byte answer to a write frame.
func DecodeWriteEcho(b []byte) (uint32, int32, error) {
	if len(b) < WriteEchoSize {
		return 0, 0, fmt.Errorf("%w: write echo %d bytes", ErrShortFrame, len(b))
	}
	return be.Uint32(b[0:4]), int32(be.Uint32(b[4:8])), nil
}

// ----------------------------------------------------------------
// Values
// ----------------------------------------------------------------

// DecodeValuesI32 decodes up to length values. If b holds fewer, every
// complete value is returned together with ErrTruncated.
func DecodeValuesI32(length int32, b []byte) ([]int32, error) {
	if length <= 0 {
		return []int32{}, nil
	}
	n := int(length)
	if avail := len(b) / 4; avail < n {
		n = avail
	}

	out := make([]int32, n)
	for i := 0; i < n; i++ {
		out[i] = int32(be.Uint32(b[i*4:]))
	}

	if n < int(length) {
		return out, fmt.Errorf("%w: %d of %d values", ErrTruncated, n, length)
	}
	return out, nil
}

// DecodeValuesI8 is DecodeValuesI32 for single-byte slots.
func DecodeValuesI8(length int32, b []byte) ([]int8, error) {
	if length <= 0 {
		return []int8{}, nil
	}
	n := int(length)
	if len(b) < n {
		n = len(b)
	}

	out := make([]int8, n)
	for i := 0; i < n; i++ {
		out[i] = int8(b[i])
	}

	if n < int(length) {
		return out, fmt.Errorf("%w: %d of %d values", ErrTruncated, n, length)
	}
	return out, nil
}

// ----------------------------------------------------------------
// Responses (controller side)
// ----------------------------------------------------------------

func EncodeParametersResponse(values []int32) []byte {
	b := make([]byte, ParametersHeaderSize+4*len(values))
	be.PutUint32(b[0:4], CmdReadParameters)
	be.PutUint32(b[4:8], uint32(len(values)))
	putI32s(b[ParametersHeaderSize:], values)
	return b
}

func EncodeCalculationsResponse(status int32, values []int32) []byte {
	b := make([]byte, CalculationsHeaderSize+4*len(values))
	be.PutUint32(b[0:4], CmdReadCalculations)
	be.PutUint32(b[4:8], uint32(status))
	be.PutUint32(b[8:12], uint32(len(values)))
	putI32s(b[CalculationsHeaderSize:], values)
	return b
}

func EncodeVisibilitiesResponse(values []int8) []byte {
	b := make([]byte, VisibilitiesHeaderSize+len(values))
	be.PutUint32(b[0:4], CmdReadVisibilities)
	be.PutUint32(b[4:8], uint32(len(values)))
	for i, v := range values {
		b[VisibilitiesHeaderSize+i] = byte(v)
	}
	return b
}

func EncodeWriteEcho(value int32) []byte {
	b := make([]byte, WriteEchoSize)
	be.PutUint32(b[0:4], CmdWriteParameter)
	be.PutUint32(b[4:8], uint32(value))
	return b
}

func putI32s(dst []byte, values []int32) {
	for i, v := range values {
		be.PutUint32(dst[i*4:], uint32(v))
	}
}
