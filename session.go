// Copyright 2025 Kirill Scherba <kirill@scherba.ru>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Session state machine (C8): sequences the handshake described in spec
// §4.8 and exposes the WebTransport session handle used for streams and
// datagrams once Established.

package webtransport

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/quic-go/quic-go"
	"github.com/rs/zerolog"
	"github.com/wt3go/webtransport/h3"
)

// SessionState is one state of the handshake state machine described in
// spec §4.8.
type SessionState int

const (
	StateIdle SessionState = iota
	StateSettingsSent
	StateSettingsExchanged
	StateConnectSent
	StateEstablished
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateSettingsSent:
		return "SettingsSent"
	case StateSettingsExchanged:
		return "SettingsExchanged"
	case StateConnectSent:
		return "ConnectSent"
	case StateEstablished:
		return "Established"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Session is a WebTransport session wrapping the CONNECT request stream (a
// quic.Stream), the two control streams, and the underlying quic.Connection.
// It also tracks the handshake state machine.
type Session struct {
	quic.Stream

	id     uuid.UUID
	logger *zerolog.Logger

	Session            quic.Connection
	PeerControlStream  quic.ReceiveStream
	LocalControlStream quic.SendStream

	Authority string
	Path      string

	mu              sync.Mutex
	state           SessionState
	peerSupportsWT  bool
	localSupportsWT bool
	closeErr        error

	context context.Context
	cancel  context.CancelFunc
}

// ID returns the correlation ID assigned to this session, used in logging
// and metrics.
func (s *Session) ID() uuid.UUID { return s.id }

// State returns the current handshake state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Context returns the context for the WebTransport session; cancelled when
// the session reaches Closed.
func (s *Session) Context() context.Context {
	return s.context
}

// setState performs a transition and logs it. A no-op once Closed, since
// Closed is terminal-from-any per spec §4.8.
func (s *Session) setState(next SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	prev := s.state
	s.state = next
	s.logger.Debug().
		Str("session", s.id.String()).
		Str("from", prev.String()).
		Str("to", next.String()).
		Msg("session state transition")
}

// fail transitions to Closed, records the classifying error, and logs at
// Error level. Safe to call more than once; only the first error sticks.
func (s *Session) fail(err error) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	s.closeErr = err
	s.mu.Unlock()

	kind := KindTransportError
	if ce, ok := asCoreError(err); ok {
		kind = ce.Kind
	}
	recordSessionClosed(kind)
	s.logger.Error().Str("session", s.id.String()).Err(err).Msg("session closed")
	if s.cancel != nil {
		s.cancel()
	}
}

func asCoreError(err error) (*CoreError, bool) {
	for err != nil {
		if ce, ok := err.(*CoreError); ok {
			return ce, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// recordLocalSettingsSent advances Idle → SettingsSent once this endpoint
// has written its own SETTINGS frame.
func (s *Session) recordLocalSettingsSent() {
	s.mu.Lock()
	s.localSupportsWT = true
	s.mu.Unlock()
	s.setState(StateSettingsSent)
}

// recordPeerSettings applies the peer's SETTINGS to the handshake, advancing
// to SettingsExchanged if ENABLE_WEBTRANSPORT=1 was advertised, or failing
// the session with KindProtocolNotSupported if the client has already sent
// CONNECT without it (the fatal condition from spec §4.8).
func (s *Session) recordPeerSettings(settings h3.Settings) {
	s.mu.Lock()
	s.peerSupportsWT = settings.EnablesWebTransport()
	supports := s.peerSupportsWT
	state := s.state
	s.mu.Unlock()

	if !supports {
		if state == StateConnectSent || state == StateEstablished {
			s.fail(NewCoreError(KindProtocolNotSupported,
				fmt.Errorf("peer never advertised ENABLE_WEBTRANSPORT=1")))
		}
		return
	}
	s.setState(StateSettingsExchanged)
}

// recordConnectSent advances SettingsExchanged → ConnectSent once the
// client has written its CONNECT HEADERS frame. spec §4.8 only allows this
// transition once the peer has already advertised ENABLE_WEBTRANSPORT=1;
// any other current state fails the session instead of silently sending
// CONNECT to a peer that can't speak WebTransport.
func (s *Session) recordConnectSent() {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	if state != StateSettingsExchanged {
		s.fail(NewCoreError(KindProtocolNotSupported,
			fmt.Errorf("cannot send CONNECT from state %s: peer has not advertised ENABLE_WEBTRANSPORT=1", state)))
		return
	}
	s.setState(StateConnectSent)
}

// recordEstablished advances to Established, the terminal success state of
// the handshake, and bumps the established-session counter. Per spec §4.8
// and §4.6, Established is only reachable once the peer has advertised
// ENABLE_WEBTRANSPORT=1 (peerSupportsWT): the client reaches it from
// ConnectSent (after writing its own CONNECT), the server reaches it
// straight from SettingsExchanged (it never sends CONNECT itself, it only
// answers one). Any other current state, or a peer that never advertised
// support, fails the session instead of establishing it.
func (s *Session) recordEstablished() {
	s.mu.Lock()
	state := s.state
	supports := s.peerSupportsWT
	s.mu.Unlock()

	if (state != StateConnectSent && state != StateSettingsExchanged) || !supports {
		s.fail(NewCoreError(KindProtocolNotSupported,
			fmt.Errorf("cannot establish session from state %s (peer WebTransport support=%t)", state, supports)))
		return
	}
	s.setState(StateEstablished)
	recordSessionEstablished()
}

// AcceptSession accepts an incoming WebTransport session, writing
// :status=200 on the request stream and advancing to Established. Call it
// from server-side request handling once the CONNECT envelope validates.
func (s *Session) AcceptSession() error {
	frame, err := encodeConnectResponseFrame(200)
	if err != nil {
		return err
	}
	if _, err := s.Stream.Write(frame); err != nil {
		werr := NewCoreError(KindTransportError, err)
		s.fail(werr)
		return werr
	}
	recordBytesSent("connect", len(frame))
	s.recordEstablished()
	if s.State() != StateEstablished {
		return s.closeErr
	}
	return nil
}

// RejectSession rejects an incoming WebTransport session, writing the
// supplied HTTP status code and then closing the stream.
func (s *Session) RejectSession(status int) error {
	frame, err := encodeConnectResponseFrame(status)
	if err != nil {
		return err
	}
	if _, werr := s.Stream.Write(frame); werr != nil {
		s.fail(NewCoreError(KindTransportError, werr))
	}
	s.fail(NewCoreError(KindCONNECTRejected, fmt.Errorf("rejected with status %d", status)))
	s.Stream.Close()
	return nil
}

// AcceptStream accepts an incoming (client-initiated) bidirectional stream,
// blocking until one is available or the session's context is cancelled.
func (s *Session) AcceptStream() (Stream, error) {
	stream, err := s.Session.AcceptStream(s.context)
	if err != nil {
		return nil, err
	}
	if class := ClassifyStreamID(stream.StreamID()); class != ClassClientBidi && class != ClassServerBidi {
		stream.CancelRead(0)
		return nil, NewCoreError(KindMalformed, fmt.Errorf("accepted stream %d has non-bidi class %d", stream.StreamID(), class))
	}
	hdr, _, ok, err := readWebTransportStreamFrame(stream)
	if err != nil {
		stream.CancelRead(0)
		return nil, err
	}
	if !ok || hdr != uint64(s.StreamID()) {
		stream.CancelRead(0)
		return nil, NewCoreError(KindMalformed, fmt.Errorf("peer bidi stream not tagged for this session"))
	}
	return stream, nil
}

// AcceptUniStream accepts an incoming (client-initiated) unidirectional
// stream tagged for this session, blocking until one is available. Streams
// of a reserved type (C9) are drained in the background; streams of an
// unrecognized type, or a WEBTRANSPORT_UNI_STREAM tagged for a different
// session, are reset and skipped rather than returned.
func (s *Session) AcceptUniStream(ctx context.Context) (ReceiveStream, error) {
	for {
		stream, err := s.Session.AcceptUniStream(ctx)
		if err != nil {
			return ReceiveStream{}, NewCoreError(KindTransportError, err)
		}

		hdr, err := h3.ReadStreamHeaderFrom(stream)
		if err != nil {
			stream.CancelRead(quic.StreamErrorCode(h3Err_StreamCreationError))
			continue
		}

		switch hdr.Type {
		case h3.StreamWebTransportUniStream:
			if hdr.ID != uint64(s.StreamID()) {
				stream.CancelRead(quic.StreamErrorCode(h3Err_StreamCreationError))
				continue
			}
			return ReceiveStream{
				ReceiveStream:    stream,
				headerRead:       true,
				requestSessionID: hdr.ID,
			}, nil
		case h3.StreamQPACKEncoder, h3.StreamQPACKDecoder, h3.StreamPush:
			go drainStream(stream)
		default:
			stream.CancelRead(quic.StreamErrorCode(h3Err_StreamCreationError))
		}
	}
}

// OpenStream creates an outgoing (server- or client-initiated, whichever
// side didn't receive the CONNECT) bidirectional stream. It returns
// immediately.
func (s *Session) OpenStream() (Stream, error) {
	return s.openStream(nil, false)
}

// OpenStreamSync is like OpenStream but blocks until a stream slot is
// available if the connection's stream limit has been reached.
func (s *Session) OpenStreamSync(ctx context.Context) (Stream, error) {
	return s.openStream(&ctx, true)
}

// OpenUniStream creates an outgoing unidirectional stream. It returns
// immediately.
func (s *Session) OpenUniStream() (SendStream, error) {
	return s.openUniStream(nil, false)
}

// OpenUniStreamSync is like OpenUniStream but blocks until a stream slot is
// available.
func (s *Session) OpenUniStreamSync(ctx context.Context) (SendStream, error) {
	return s.openUniStream(&ctx, true)
}

// CloseSession cleanly closes a WebTransport session.
func (s *Session) CloseSession() {
	s.fail(ErrSessionClosed)
	s.Stream.Close()
}

// CloseWithError closes a WebTransport session with a supplied application
// error code and reason string.
func (s *Session) CloseWithError(code quic.ApplicationErrorCode, str string) {
	s.fail(fmt.Errorf("%s", str))
	s.Session.CloseWithError(code, str)
}

// openStream opens a bidirectional stream and writes the WEBTRANSPORT_STREAM
// frame header (type 0x41, then this session's stream ID) required by
// spec §4.17 before any application data.
func (s *Session) openStream(ctx *context.Context, sync bool) (Stream, error) {
	if s.State() == StateClosed {
		return nil, ErrSessionClosed
	}

	var stream quic.Stream
	var err error
	if sync {
		stream, err = s.Session.OpenStreamSync(*ctx)
	} else {
		stream, err = s.Session.OpenStream()
	}
	if err != nil {
		return nil, NewCoreError(KindTransportError, err)
	}

	// WEBTRANSPORT_STREAM carries the session ID directly after the
	// varint-encoded frame type, not a length-prefixed payload like a
	// normal frame.
	buf := h3.AppendVarint(nil, h3.FrameWebTransportStream)
	buf = append(buf, h3.AppendVarint(nil, uint64(s.StreamID()))...)
	if _, err := stream.Write(buf); err != nil {
		stream.Close()
		return nil, NewCoreError(KindTransportError, err)
	}
	recordBytesSent("webtransport_stream", len(buf))
	return stream, nil
}

// openUniStream opens a unidirectional stream and arranges for its first
// Write to prepend the WEBTRANSPORT_UNI_STREAM header.
func (s *Session) openUniStream(ctx *context.Context, sync bool) (SendStream, error) {
	if s.State() == StateClosed {
		return SendStream{}, ErrSessionClosed
	}

	var stream quic.SendStream
	var err error
	if sync {
		stream, err = s.Session.OpenUniStreamSync(*ctx)
	} else {
		stream, err = s.Session.OpenUniStream()
	}
	return SendStream{
		SendStream:            stream,
		writeHeaderBeforeData: true,
		requestSessionID:      uint64(s.StreamID()),
	}, err
}

// readWebTransportStreamFrame reads the WEBTRANSPORT_STREAM frame header
// (varint type, then varint session ID — not a length-prefixed payload)
// from the front of a freshly accepted bidirectional stream.
func readWebTransportStreamFrame(r interface{ Read([]byte) (int, error) }) (uint64, int, bool, error) {
	var acc h3.BytesAccumulator
	buf := make([]byte, 1)

	readVarint := func() (uint64, error) {
		for {
			if v, ok, err := acc.TryVarint(); err != nil {
				return 0, err
			} else if ok {
				return v, nil
			}
			n, rerr := r.Read(buf)
			if n > 0 {
				acc.Feed(buf[:n])
			}
			if rerr != nil {
				return 0, NewCoreError(KindTransportError, rerr)
			}
		}
	}

	typ, err := readVarint()
	if err != nil {
		return 0, 0, false, err
	}
	if typ != h3.FrameWebTransportStream {
		return 0, 0, false, nil
	}
	id, err := readVarint()
	if err != nil {
		return 0, 0, false, err
	}
	return id, 0, true, nil
}
