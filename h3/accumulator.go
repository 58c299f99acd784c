package h3

import "errors"

// BytesAccumulator buffers bytes delivered across multiple QUIC receive
// events and recovers frame boundaries from them. A stream's frames may be
// split arbitrarily across receive callbacks; the accumulator lets C6/C7
// parse as if the whole frame had arrived in one piece, resuming from
// wherever the last attempt left off.
type BytesAccumulator struct {
	buf []byte
}

// Feed appends newly received bytes to the accumulator.
func (a *BytesAccumulator) Feed(p []byte) {
	a.buf = append(a.buf, p...)
}

// Len returns the number of unconsumed bytes currently buffered.
func (a *BytesAccumulator) Len() int { return len(a.buf) }

// TryFrame attempts to parse one frame from the buffered bytes. If the
// buffer doesn't yet hold a complete frame it returns (Frame{}, false, nil)
// and leaves the buffer untouched so more bytes can be fed in. On success
// the consumed bytes are dropped from the buffer.
func (a *BytesAccumulator) TryFrame() (Frame, bool, error) {
	f, n, err := ParseFrame(a.buf)
	if errors.Is(err, ErrIncomplete) {
		return Frame{}, false, nil
	}
	if err != nil {
		return Frame{}, false, err
	}
	a.buf = a.buf[n:]
	return f, true, nil
}

// TryVarint attempts to decode one varint from the front of the buffer,
// as used for stream-type bytes and WebTransport stream-header IDs.
func (a *BytesAccumulator) TryVarint() (uint64, bool, error) {
	v, n, err := DecodeVarint(a.buf, 0)
	if errors.Is(err, ErrShortVarint) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	a.buf = a.buf[n:]
	return v, true, nil
}
