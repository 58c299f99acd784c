// Copyright 2025 Kirill Scherba <kirill@scherba.ru>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Minimal in-memory stand-ins for the quic.Connection/Stream interfaces,
// used by this package's tests instead of a real QUIC connection.

package webtransport

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/quic-go/quic-go"
)

var errFakeUnimplemented = errors.New("fake: method not implemented by this test double")

// fakeReceiveStream adapts an io.Reader into a quic.ReceiveStream.
type fakeReceiveStream struct {
	io.Reader
	id        quic.StreamID
	cancelled bool
}

func (f *fakeReceiveStream) StreamID() quic.StreamID           { return f.id }
func (f *fakeReceiveStream) CancelRead(quic.StreamErrorCode)   { f.cancelled = true }
func (f *fakeReceiveStream) SetReadDeadline(time.Time) error   { return nil }

// fakeSendStream adapts an io.WriteCloser into a quic.SendStream.
type fakeSendStream struct {
	io.Writer
	closer  io.Closer
	id      quic.StreamID
	ctx     context.Context
	written bool
}

func (f *fakeSendStream) StreamID() quic.StreamID { return f.id }
func (f *fakeSendStream) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}
func (f *fakeSendStream) CancelWrite(quic.StreamErrorCode) {}
func (f *fakeSendStream) Context() context.Context {
	if f.ctx == nil {
		return context.Background()
	}
	return f.ctx
}
func (f *fakeSendStream) SetWriteDeadline(time.Time) error { return nil }

// newStreamPipe returns a connected (send, receive) pair backed by an
// io.Pipe, as if one side had opened a unidirectional stream to the other.
func newStreamPipe(id quic.StreamID) (*fakeSendStream, *fakeReceiveStream) {
	r, w := io.Pipe()
	return &fakeSendStream{Writer: w, closer: w, id: id}, &fakeReceiveStream{Reader: r, id: id}
}

// fakeStream combines a fakeSendStream and fakeReceiveStream into a
// quic.Stream, for tests of the bidirectional CONNECT request stream.
type fakeStream struct {
	*fakeReceiveStream
	*fakeSendStream
}

func (f *fakeStream) SetDeadline(time.Time) error { return nil }

// StreamID disambiguates the method both embedded fakeReceiveStream and
// fakeSendStream provide; quic.Stream only has one stream ID.
func (f *fakeStream) StreamID() quic.StreamID { return f.fakeReceiveStream.StreamID() }

// fakeConn is a quic.Connection test double that only implements the
// methods this package's tests actually exercise; anything else returns
// errFakeUnimplemented.
type fakeConn struct {
	openUniStream   func() (quic.SendStream, error)
	acceptUniStream func(context.Context) (quic.ReceiveStream, error)
	acceptStream    func(context.Context) (quic.Stream, error)
	openStreamSync  func(context.Context) (quic.Stream, error)
	sendDatagram    func([]byte) error
	receiveDatagram func(context.Context) ([]byte, error)
}

func (c *fakeConn) AcceptStream(ctx context.Context) (quic.Stream, error) {
	if c.acceptStream != nil {
		return c.acceptStream(ctx)
	}
	return nil, errFakeUnimplemented
}

func (c *fakeConn) AcceptUniStream(ctx context.Context) (quic.ReceiveStream, error) {
	if c.acceptUniStream != nil {
		return c.acceptUniStream(ctx)
	}
	return nil, errFakeUnimplemented
}

func (c *fakeConn) OpenStream() (quic.Stream, error) { return nil, errFakeUnimplemented }

func (c *fakeConn) OpenStreamSync(ctx context.Context) (quic.Stream, error) {
	if c.openStreamSync != nil {
		return c.openStreamSync(ctx)
	}
	return nil, errFakeUnimplemented
}

func (c *fakeConn) OpenUniStream() (quic.SendStream, error) {
	if c.openUniStream != nil {
		return c.openUniStream()
	}
	return nil, errFakeUnimplemented
}

func (c *fakeConn) OpenUniStreamSync(context.Context) (quic.SendStream, error) {
	return nil, errFakeUnimplemented
}

func (c *fakeConn) LocalAddr() net.Addr  { return &net.UDPAddr{} }
func (c *fakeConn) RemoteAddr() net.Addr { return &net.UDPAddr{} }

func (c *fakeConn) CloseWithError(quic.ApplicationErrorCode, string) error { return nil }
func (c *fakeConn) Context() context.Context                              { return context.Background() }
func (c *fakeConn) ConnectionState() quic.ConnectionState                 { return quic.ConnectionState{} }

func (c *fakeConn) SendDatagram(msg []byte) error {
	if c.sendDatagram != nil {
		return c.sendDatagram(msg)
	}
	return errFakeUnimplemented
}

func (c *fakeConn) ReceiveDatagram(ctx context.Context) ([]byte, error) {
	if c.receiveDatagram != nil {
		return c.receiveDatagram(ctx)
	}
	return nil, errFakeUnimplemented
}
