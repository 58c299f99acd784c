// Package h3 implements the HTTP/3 framing layer (varints, typed frames,
// SETTINGS, and stream-type headers) that sits between the raw QUIC stream
// API and the WebTransport session state machine.
package h3

import "errors"

// Frame types recognized by this core. Types not in this list are treated
// as reserved: tolerated (skipped) on the control stream, faulted on a
// request stream.
const (
	FrameData              = 0x00
	FrameHeaders            = 0x01
	FrameCancelPush         = 0x03
	FrameSettings           = 0x04
	FramePushPromise        = 0x05
	FrameGoaway             = 0x07
	FrameMaxPushID          = 0x0D
	FrameWebTransportStream = 0x41
)

// ErrIncomplete is returned by ParseFrame when buf holds a valid-looking
// header but not enough payload bytes yet; the caller should buffer more
// input and retry rather than treat this as malformed.
var ErrIncomplete = errors.New("h3: incomplete frame")

// Frame is a parsed (or to-be-encoded) HTTP/3 frame: a type and an opaque
// payload. The payload is interpreted by higher layers (SETTINGS entries,
// a QPACK header block, raw DATA bytes, ...).
type Frame struct {
	Type    uint64
	Payload []byte
}

// EncodeFrame returns the wire encoding of a frame: varint(type) ·
// varint(len(payload)) · payload.
func EncodeFrame(typ uint64, payload []byte) ([]byte, error) {
	buf, err := EncodeVarint(typ)
	if err != nil {
		return nil, err
	}
	lenBuf, err := EncodeVarint(uint64(len(payload)))
	if err != nil {
		return nil, err
	}
	buf = append(buf, lenBuf...)
	return append(buf, payload...), nil
}

// ParseFrame parses a single frame starting at the beginning of buf. It
// returns the frame, the number of bytes consumed, and an error. A buffer
// too short to contain the type/length varints, or whose declared length
// exceeds the bytes actually present, yields ErrIncomplete so the caller
// can buffer more and retry; ParseFrame never reads or writes beyond buf.
func ParseFrame(buf []byte) (Frame, int, error) {
	typ, n1, err := DecodeVarint(buf, 0)
	if err != nil {
		return Frame{}, 0, ErrIncomplete
	}
	length, n2, err := DecodeVarint(buf, n1)
	if err != nil {
		return Frame{}, 0, ErrIncomplete
	}
	start := n1 + n2
	end := start + int(length)
	if end > len(buf) || end < start {
		return Frame{}, 0, ErrIncomplete
	}
	return Frame{Type: typ, Payload: buf[start:end]}, end, nil
}
