// Copyright 2025 Kirill Scherba <kirill@scherba.ru>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package webtransport provides a WebTransport-over-HTTP/3 server and
// client, implementing the HTTP/3 framing, QPACK header compression, and
// Extended CONNECT handshake that bootstrap a WebTransport session on top
// of a QUIC connection.
//
// This package depends on [quic-go](https://github.com/quic-go/quic-go) for
// the QUIC transport itself; everything above the raw stream API (varints,
// QPACK, frames, the handshake state machine) is implemented here.
package webtransport

import (
	"context"
	"net/url"
	"slices"

	"github.com/google/uuid"
	"github.com/quic-go/quic-go"
	"github.com/rs/zerolog"
	"github.com/wt3go/webtransport/h3"
	"github.com/wt3go/webtransport/qpack"
)

// A Server defines parameters for running a WebTransport server and
// accepting sessions from it.
type Server struct {
	// ListenAddr sets an address to bind server to, e.g. ":4433".
	ListenAddr string
	// TLSCert defines a path to, or byte array containing, a certificate
	// (CRT file).
	TLSCert CertFile
	// TLSKey defines a path to, or byte array containing, the certificate's
	// private key (KEY file).
	TLSKey CertFile
	// CertHashResolver, if set together with CertHash, resolves the
	// serving certificate by SHA-1 thumbprint instead of TLSCert/TLSKey.
	CertHashResolver CertificateHashResolver
	// CertHash is the hex SHA-1 thumbprint passed to CertHashResolver.
	CertHash string
	// AllowedOrigins represents list of allowed origins to connect from.
	// A nil slice allows all origins.
	AllowedOrigins []string
	// QuicConfig carries additional configuration parameters for the QUIC
	// listener.
	QuicConfig *QuicConfig
	// Logger receives structured logs for every accepted connection and
	// session; NewDefaultLogger() is used if nil.
	Logger *zerolog.Logger
	// Handler is invoked once per Established session, in its own
	// goroutine. It owns the session for its lifetime.
	Handler func(*Session)
}

// Run starts a WebTransport server and blocks while it's running. Cancel
// the supplied Context to stop the server.
func (s *Server) Run(ctx context.Context) error {
	tlsConfig, err := s.makeTLSConfig()
	if err != nil {
		return err
	}

	listener, err := listen(s.ListenAddr, tlsConfig, s.QuicConfig)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	logger := orDefaultLogger(s.Logger)
	for {
		conn, err := listener.Accept(ctx)
		if err != nil {
			return err
		}
		go s.handleConnection(ctx, conn, logger)
	}
}

// handleConnection drives the handshake for one QUIC connection: the local
// and peer control streams (C6), then the Extended CONNECT request (C7),
// then hands the resulting session to Handler once Established.
func (s *Server) handleConnection(ctx context.Context, conn quic.Connection, logger *zerolog.Logger) {
	sessionID := uuid.New()
	log := logger.With().Str("session", sessionID.String()).Str("role", "server").Logger()

	sessCtx, cancel := context.WithCancel(ctx)
	sess := &Session{
		id:      sessionID,
		logger:  &log,
		Session: conn,
		context: sessCtx,
		cancel:  cancel,
	}

	settings := h3.Settings{
		h3.SettingEnableWebTransport: 1,
		h3.SettingH3Datagram:         1,
	}
	serverControlStream, err := localControlStream(conn, settings)
	if err != nil {
		sess.fail(err)
		conn.CloseWithError(0, "control stream setup failed")
		return
	}
	sess.LocalControlStream = serverControlStream
	sess.recordLocalSettingsSent()

	clientControlStream, err := conn.AcceptUniStream(ctx)
	if err != nil {
		sess.fail(NewCoreError(KindTransportError, err))
		return
	}
	peerSettings, err := peerControlStream(clientControlStream)
	if err != nil {
		sess.fail(err)
		conn.CloseWithError(1, "peer control stream invalid")
		return
	}
	sess.PeerControlStream = clientControlStream
	sess.recordPeerSettings(peerSettings)
	go drainControlStream(clientControlStream, func(err error) {
		sess.fail(err)
		conn.CloseWithError(1, "control stream violation")
	})

	requestStream, err := conn.AcceptStream(ctx)
	if err != nil {
		sess.fail(NewCoreError(KindTransportError, err))
		return
	}
	sess.Stream = requestStream

	var acc h3.BytesAccumulator
	buf := make([]byte, 4096)
	var frame h3.Frame
	for {
		f, ok, ferr := acc.TryFrame()
		if ferr != nil {
			sess.fail(NewCoreError(KindMalformed, ferr))
			requestStream.Close()
			return
		}
		if ok {
			frame = f
			break
		}
		n, err := requestStream.Read(buf)
		if n > 0 {
			acc.Feed(buf[:n])
		}
		if err != nil {
			sess.fail(NewCoreError(KindTransportError, err))
			requestStream.Close()
			return
		}
	}
	if frame.Type != h3.FrameHeaders {
		sess.fail(NewCoreError(KindMalformed, errUnexpectedFrameType(frame.Type)))
		requestStream.Close()
		return
	}
	recordFrameReceived("headers")

	req, status, err := decodeConnectRequest(frame.Payload)
	if err == nil && !s.validateOrigin(originHeader(req.Headers)) {
		status, err = 400, NewCoreError(KindMalformed, errOriginNotAllowed)
	}

	sess.Authority = req.Authority
	sess.Path = req.Path

	if err != nil {
		log.Debug().Err(err).Int("status", status).Msg("rejecting CONNECT")
		sess.RejectSession(status)
		return
	}

	if err := sess.AcceptSession(); err != nil {
		return
	}

	go func() {
		buf := make([]byte, 1024)
		for {
			if _, err := requestStream.Read(buf); err != nil {
				sess.CloseSession()
				return
			}
		}
	}()

	if s.Handler != nil {
		s.Handler(sess)
	}
}

// validateOrigin checks if the given origin is allowed to access the
// WebTransport server. A nil AllowedOrigins allows all origins.
func (s *Server) validateOrigin(origin string) bool {
	if s.AllowedOrigins == nil {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return slices.Contains(s.AllowedOrigins, u.Host)
}

func originHeader(headers []qpack.HeaderField) string {
	for _, h := range headers {
		if h.Name == "origin" {
			return h.Value
		}
	}
	return ""
}
