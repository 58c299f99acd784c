// Copyright 2025 Kirill Scherba <kirill@scherba.ru>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// WebTransport streams post-Establishment (C17): bidirectional and
// unidirectional streams opened after a session reaches Established.

package webtransport

import (
	"github.com/quic-go/quic-go"
	"github.com/wt3go/webtransport/h3"
)

// Stream wraps a quic.Stream, providing a bidirectional client/server
// stream tagged with the WEBTRANSPORT_STREAM frame header on the wire.
type Stream quic.Stream

// ReceiveStream wraps a quic.ReceiveStream providing a unidirectional
// WebTransport stream, prepending a check for the WEBTRANSPORT_UNI_STREAM
// stream-type byte before the first Read returns application data.
type ReceiveStream struct {
	quic.ReceiveStream
	readHeaderBeforeData bool
	headerRead           bool
	requestSessionID     uint64
}

// SendStream wraps a quic.SendStream providing a unidirectional WebTransport
// stream, prepending the WEBTRANSPORT_UNI_STREAM stream header before the
// first Write.
type SendStream struct {
	quic.SendStream
	writeHeaderBeforeData bool
	headerWritten         bool
	requestSessionID      uint64
}

// SessionID returns the WebTransport session ID this stream is tagged with,
// valid only once the header has been consumed (after the first successful
// Read).
func (s *ReceiveStream) SessionID() uint64 { return s.requestSessionID }

// Read reads up to len(p) bytes from a WebTransport unidirectional stream.
// Before the first read it consumes the stream header and checks that the
// stream type is StreamWebTransportUniStream, returning ErrWrongStreamType
// otherwise.
func (s *ReceiveStream) Read(p []byte) (int, error) {
	if s.readHeaderBeforeData && !s.headerRead {
		hdr, err := h3.ReadStreamHeaderFrom(s.ReceiveStream)
		if err != nil {
			return 0, NewCoreError(KindTransportError, err)
		}
		if hdr.Type != h3.StreamWebTransportUniStream {
			return 0, ErrWrongStreamType
		}
		s.requestSessionID = hdr.ID
		s.headerRead = true
	}

	n, err := s.ReceiveStream.Read(p)
	if n > 0 {
		recordBytesReceived("webtransport_uni", n)
	}
	return n, err
}

// Write writes up to len(p) bytes to a WebTransport unidirectional stream.
// Before the first write it writes the StreamWebTransportUniStream header
// followed by the session ID this stream belongs to.
func (s *SendStream) Write(p []byte) (int, error) {
	if s.writeHeaderBeforeData && !s.headerWritten {
		hdr := h3.StreamHeader{Type: h3.StreamWebTransportUniStream, ID: s.requestSessionID}
		if _, err := hdr.WriteTo(s.SendStream); err != nil {
			s.Close()
			return 0, NewCoreError(KindTransportError, err)
		}
		s.headerWritten = true
	}

	n, err := s.SendStream.Write(p)
	if n > 0 {
		recordBytesSent("webtransport_uni", n)
	}
	return n, err
}
