package h3

import (
	"errors"
	"io"
)

// Unidirectional stream types. The leading byte on a peer-initiated
// unidirectional stream selects how the dispatcher (C9) routes it;
// StreamControl and StreamWebTransportUniStream are acted on, the others are
// drained and ignored, and anything not in this list is a reserved type the
// dispatcher resets.
const (
	StreamControl               = 0x00
	StreamPush                  = 0x01
	StreamQPACKEncoder          = 0x02
	StreamQPACKDecoder          = 0x03
	StreamWebTransportUniStream = 0x54
)

// ErrUnknownStreamType names a stream header whose type byte this core does
// not recognize at all (not even as a reserved, tolerate-and-drain type).
// DecodeStreamHeader does not return it: unknown types decode successfully
// and the caller decides what to do with them.
var ErrUnknownStreamType = errors.New("h3: unknown unidirectional stream type")

// StreamHeader is the leading varint(s) on a unidirectional stream: a type,
// and for types that carry one (Push, WebTransportUniStream) an associated
// ID (the push ID, or the WebTransport session ID).
type StreamHeader struct {
	Type uint64
	ID   uint64
}

func hasStreamID(typ uint64) bool {
	return typ == StreamPush || typ == StreamWebTransportUniStream
}

// EncodeStreamHeader returns the wire bytes for h.
func EncodeStreamHeader(h StreamHeader) []byte {
	buf := AppendVarint(nil, h.Type)
	if hasStreamID(h.Type) {
		buf = AppendVarint(buf, h.ID)
	}
	return buf
}

// DecodeStreamHeader decodes a stream header from the front of buf. It
// returns the header and bytes consumed, or ErrShortVarint if buf doesn't
// yet hold the whole header (the caller should buffer more and retry).
// Reserved/unknown types are returned successfully with ID left at 0 — the
// caller decides whether to drain or reset based on Type.
func DecodeStreamHeader(buf []byte) (StreamHeader, int, error) {
	typ, n, err := DecodeVarint(buf, 0)
	if err != nil {
		return StreamHeader{}, 0, err
	}
	if !hasStreamID(typ) {
		return StreamHeader{Type: typ}, n, nil
	}
	id, n2, err := DecodeVarint(buf, n)
	if err != nil {
		return StreamHeader{}, 0, err
	}
	return StreamHeader{Type: typ, ID: id}, n + n2, nil
}

// WriteTo writes the stream header to w. Used when opening a locally
// initiated unidirectional stream (control, or a WebTransport uni stream).
func (h StreamHeader) WriteTo(w io.Writer) (int64, error) {
	buf := EncodeStreamHeader(h)
	n, err := w.Write(buf)
	return int64(n), err
}

// ReadStreamHeaderFrom blocks reading a stream header from r one byte at a
// time (the header is at most a handful of bytes, and r is expected to be a
// QUIC receive stream dedicated to this purpose).
func ReadStreamHeaderFrom(r io.Reader) (StreamHeader, error) {
	var acc BytesAccumulator
	one := make([]byte, 1)
	for {
		if h, n, err := DecodeStreamHeader(acc.buf); err == nil {
			acc.buf = acc.buf[n:]
			return h, nil
		} else if !errors.Is(err, ErrShortVarint) {
			return StreamHeader{}, err
		}
		if _, err := io.ReadFull(r, one); err != nil {
			return StreamHeader{}, err
		}
		acc.Feed(one)
	}
}
