// Copyright 2025 Kirill Scherba <kirill@scherba.ru>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// WebTransport datagrams (C16): unreliable send/receive on an Established
// session, framed with the quarter stream ID of the CONNECT request stream
// per draft-ietf-masque-h3-datagram.

package webtransport

import (
	"bytes"
	"context"

	"github.com/wt3go/webtransport/h3"
)

// datagramMessage is a helper struct for ReceiveDatagram.
type datagramMessage struct {
	msg []byte
	err error
}

// SendDatagram sends a datagram over a WebTransport session. Returns
// ErrSessionClosed if the session hasn't reached Established.
//
// Datagrams are unreliable: depending on network conditions, a datagram may
// never be received by the peer. Each one is prefixed with the "quarter
// stream ID" of the associated CONNECT request stream, as required by
// draft-ietf-masque-h3-datagram.
func (s *Session) SendDatagram(msg []byte) error {
	if s.State() != StateEstablished {
		return ErrSessionClosed
	}

	buf := h3.AppendVarint(nil, uint64(s.StreamID())/4)
	buf = append(buf, msg...)

	if err := s.Session.SendDatagram(buf); err != nil {
		return NewCoreError(KindTransportError, err)
	}
	recordBytesSent("datagram", len(buf))
	return nil
}

// ReceiveDatagram returns a datagram received on a WebTransport session,
// blocking until one arrives or ctx is cancelled. Returns
// ErrDatagramSessionMismatch if the quarter stream ID carried in the
// datagram does not match this session.
func (s *Session) ReceiveDatagram(ctx context.Context) ([]byte, error) {
	if s.State() != StateEstablished {
		return nil, ErrSessionClosed
	}

	resultChannel := make(chan datagramMessage, 1)
	go func() {
		msg, err := s.Session.ReceiveDatagram(ctx)
		resultChannel <- datagramMessage{msg: msg, err: err}
	}()

	select {
	case result := <-resultChannel:
		if result.err != nil {
			return nil, NewCoreError(KindTransportError, result.err)
		}

		quarterStreamID, n, err := h3.DecodeVarint(result.msg, 0)
		if err != nil {
			return nil, NewCoreError(KindMalformed, err)
		}
		if quarterStreamID != uint64(s.StreamID())/4 {
			return nil, ErrDatagramSessionMismatch
		}

		recordBytesReceived("datagram", len(result.msg))
		return bytes.Clone(result.msg[n:]), nil

	case <-ctx.Done():
		return nil, ErrSessionClosed
	}
}
