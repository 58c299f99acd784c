// Copyright 2025 Kirill Scherba <kirill@scherba.ru>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Stream dispatcher (C9): classifies QUIC stream IDs by initiator and
// directionality, and drains unidirectional streams of a reserved but
// unhandled type.

package webtransport

import "github.com/quic-go/quic-go"

// StreamClass is the (initiator, directionality) pair encoded in the low
// two bits of a QUIC stream ID, per spec §3.
type StreamClass int

const (
	ClassClientBidi StreamClass = iota
	ClassServerBidi
	ClassClientUnidi
	ClassServerUnidi
)

// ClassifyStreamID returns the StreamClass of a QUIC stream ID.
func ClassifyStreamID(id quic.StreamID) StreamClass {
	return StreamClass(int64(id) % 4)
}

// drainStream reads and discards a stream until it errors or is closed;
// used for known-reserved unidirectional stream types this core doesn't
// act on.
func drainStream(stream quic.ReceiveStream) {
	buf := make([]byte, 4096)
	for {
		_, err := stream.Read(buf)
		if err != nil {
			return
		}
	}
}

// h3Err_StreamCreationError is the HTTP/3 application error code
// H3_STREAM_CREATION_ERROR (draft-ietf-quic-http §8.1), used to reset
// unidirectional streams of an unrecognized type.
const h3Err_StreamCreationError = 0x103
