// Copyright 2025 Kirill Scherba <kirill@scherba.ru>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webtransport

import (
	"bytes"
	"testing"

	"github.com/quic-go/quic-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wt3go/webtransport/h3"
)

func TestLocalControlStreamWritesHeaderAndSettings(t *testing.T) {
	send, recv := newStreamPipe(2)
	conn := &fakeConn{openUniStream: func() (quic.SendStream, error) { return send, nil }}

	settings := h3.Settings{h3.SettingEnableWebTransport: 1, h3.SettingH3Datagram: 1}

	errCh := make(chan error, 1)
	go func() {
		_, err := localControlStream(conn, settings)
		errCh <- err
	}()

	got, err := peerControlStream(recv)
	require.NoError(t, err)
	require.NoError(t, <-errCh)
	assert.True(t, got.EnablesWebTransport())
}

func TestPeerControlStreamParsesSettings(t *testing.T) {
	settings := h3.Settings{h3.SettingEnableWebTransport: 1, h3.SettingH3Datagram: 1}
	frame := settings.ToFrame()
	payload, err := h3.EncodeFrame(frame.Type, frame.Payload)
	require.NoError(t, err)

	wire := append(h3.EncodeStreamHeader(h3.StreamHeader{Type: h3.StreamControl}), payload...)
	recv := &fakeReceiveStream{Reader: bytes.NewReader(wire), id: 3}

	got, err := peerControlStream(recv)
	require.NoError(t, err)
	assert.True(t, got.EnablesWebTransport())
}

func TestPeerControlStreamRejectsWrongLeadingType(t *testing.T) {
	wire := h3.EncodeStreamHeader(h3.StreamHeader{Type: h3.StreamQPACKEncoder})
	recv := &fakeReceiveStream{Reader: bytes.NewReader(wire), id: 3}

	_, err := peerControlStream(recv)
	require.Error(t, err)
	ce, ok := asCoreError(err)
	require.True(t, ok)
	assert.Equal(t, KindStreamTypeViolation, ce.Kind)
}

func TestDrainControlStreamFailsOnUnexpectedDataFrame(t *testing.T) {
	frame, err := h3.EncodeFrame(h3.FrameData, []byte("oops"))
	require.NoError(t, err)
	recv := &fakeReceiveStream{Reader: bytes.NewReader(frame), id: 3}

	var fatal error
	done := make(chan struct{})
	go func() {
		drainControlStream(recv, func(e error) { fatal = e; close(done) })
	}()
	<-done

	ce, ok := asCoreError(fatal)
	require.True(t, ok)
	assert.Equal(t, KindStreamTypeViolation, ce.Kind)
}

func TestDrainControlStreamFailsOnDuplicateSettingsFrame(t *testing.T) {
	frame, err := h3.EncodeFrame(h3.FrameSettings, h3.Settings{h3.SettingEnableWebTransport: 1}.Encode())
	require.NoError(t, err)
	recv := &fakeReceiveStream{Reader: bytes.NewReader(frame), id: 3}

	var fatal error
	done := make(chan struct{})
	go func() {
		drainControlStream(recv, func(e error) { fatal = e; close(done) })
	}()
	<-done

	ce, ok := asCoreError(fatal)
	require.True(t, ok)
	assert.Equal(t, KindSettingsViolation, ce.Kind)
}
