// Copyright 2025 Kirill Scherba <kirill@scherba.ru>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Client drives the WebTransport-over-HTTP/3 handshake from the initiating
// side: dial QUIC, exchange control-stream SETTINGS, send the Extended
// CONNECT request, and wait for the :status=200 response.

package webtransport

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/google/uuid"
	"github.com/wt3go/webtransport/h3"
)

// Client dials a WebTransport server and negotiates a session.
type Client struct {
	Config ClientConfig
}

// Connect dials the server configured in c.Config, runs the handshake
// described in spec §4.6/§4.7/§4.8, and returns the resulting session once
// it reaches Established. On any handshake failure the session is left
// Closed and the classifying error is returned.
func (c *Client) Connect(ctx context.Context) (*Session, error) {
	logger := orDefaultLogger(c.Config.Logger)
	sessionID := uuid.New()
	log := logger.With().Str("session", sessionID.String()).Str("role", "client").Logger()

	addr := fmt.Sprintf("%s:%d", c.Config.serverAddr(), c.Config.serverPort())
	tlsConfig := &tls.Config{InsecureSkipVerify: c.Config.InsecureSkipVerify}

	conn, err := dial(ctx, addr, tlsConfig, c.Config.QuicConfig)
	if err != nil {
		return nil, NewCoreError(KindTransportError, err)
	}

	sessCtx, cancel := context.WithCancel(ctx)
	sess := &Session{
		id:        sessionID,
		logger:    &log,
		Session:   conn,
		Authority: addr,
		Path:      c.Config.path(),
		context:   sessCtx,
		cancel:    cancel,
	}

	// Open the local control stream and write SETTINGS first: spec §3
	// forbids opening the CONNECT stream before this completes.
	settings := h3.Settings{
		h3.SettingEnableWebTransport: 1,
		h3.SettingH3Datagram:         1,
	}
	clientControlStream, err := localControlStream(conn, settings)
	if err != nil {
		sess.fail(err)
		conn.CloseWithError(0, "control stream setup failed")
		return nil, err
	}
	sess.LocalControlStream = clientControlStream
	sess.recordLocalSettingsSent()

	peerControlRecv, err := conn.AcceptUniStream(ctx)
	if err != nil {
		werr := NewCoreError(KindTransportError, err)
		sess.fail(werr)
		return nil, werr
	}
	peerSettings, err := peerControlStream(peerControlRecv)
	if err != nil {
		sess.fail(err)
		conn.CloseWithError(1, "peer control stream invalid")
		return nil, err
	}
	sess.PeerControlStream = peerControlRecv
	sess.recordPeerSettings(peerSettings)
	go drainControlStream(peerControlRecv, func(err error) {
		sess.fail(err)
		conn.CloseWithError(1, "control stream violation")
	})

	requestFrame, err := encodeConnectRequestFrame(sess.Authority, sess.Path, nil)
	if err != nil {
		sess.fail(err)
		return nil, err
	}

	requestStream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		werr := NewCoreError(KindTransportError, err)
		sess.fail(werr)
		return nil, werr
	}
	sess.Stream = requestStream

	if _, err := requestStream.Write(requestFrame); err != nil {
		werr := NewCoreError(KindTransportError, err)
		sess.fail(werr)
		return nil, werr
	}
	recordBytesSent("connect", len(requestFrame))
	sess.recordConnectSent()
	if sess.State() == StateClosed {
		return nil, sess.closeErr
	}

	var acc h3.BytesAccumulator
	buf := make([]byte, 4096)
	var frame h3.Frame
	for {
		f, ok, ferr := acc.TryFrame()
		if ferr != nil {
			werr := NewCoreError(KindMalformed, ferr)
			sess.fail(werr)
			return nil, werr
		}
		if ok {
			frame = f
			break
		}
		n, rerr := requestStream.Read(buf)
		if n > 0 {
			acc.Feed(buf[:n])
		}
		if rerr != nil {
			werr := NewCoreError(KindTransportError, rerr)
			sess.fail(werr)
			return nil, werr
		}
	}
	if frame.Type != h3.FrameHeaders {
		werr := NewCoreError(KindMalformed, errUnexpectedFrameType(frame.Type))
		sess.fail(werr)
		return nil, werr
	}
	recordFrameReceived("headers")

	status, err := decodeConnectResponse(frame.Payload)
	if err != nil {
		sess.fail(err)
		return nil, err
	}
	if status != 200 {
		werr := NewCoreError(KindCONNECTRejected, fmt.Errorf("server returned :status=%d", status))
		sess.fail(werr)
		return nil, werr
	}

	sess.recordEstablished()
	if sess.State() != StateEstablished {
		return nil, sess.closeErr
	}
	return sess, nil
}
