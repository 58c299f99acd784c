// Copyright 2025 Kirill Scherba <kirill@scherba.ru>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webtransport

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wt3go/webtransport/h3"
)

func newTestSession() *Session {
	logger := NewDefaultLogger()
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:      uuid.New(),
		logger:  &logger,
		context: ctx,
		cancel:  cancel,
	}
}

func TestSessionHandshakeHappyPath(t *testing.T) {
	s := newTestSession()
	assert.Equal(t, StateIdle, s.State())

	s.recordLocalSettingsSent()
	assert.Equal(t, StateSettingsSent, s.State())

	s.recordPeerSettings(h3.Settings{h3.SettingEnableWebTransport: 1})
	assert.Equal(t, StateSettingsExchanged, s.State())

	s.recordConnectSent()
	assert.Equal(t, StateConnectSent, s.State())

	s.recordEstablished()
	assert.Equal(t, StateEstablished, s.State())
}

func TestSessionFailIsIdempotentAndCancelsContext(t *testing.T) {
	s := newTestSession()
	s.fail(NewCoreError(KindTransportError, errors.New("boom")))
	assert.Equal(t, StateClosed, s.State())
	assert.Error(t, s.Context().Err())

	// A second call must not overwrite closeErr or panic.
	s.fail(NewCoreError(KindMalformed, errors.New("ignored")))
	ce, ok := asCoreError(s.closeErr)
	require.True(t, ok)
	assert.Equal(t, KindTransportError, ce.Kind)
}

func TestRecordPeerSettingsFailsSessionIfConnectAlreadySentWithoutWebTransport(t *testing.T) {
	s := newTestSession()
	s.state = StateConnectSent

	s.recordPeerSettings(h3.Settings{})
	assert.Equal(t, StateClosed, s.State())
	ce, ok := asCoreError(s.closeErr)
	require.True(t, ok)
	assert.Equal(t, KindProtocolNotSupported, ce.Kind)
}

func TestHandshakeFailsWhenPeerNeverAdvertisesWebTransport(t *testing.T) {
	s := newTestSession()

	s.recordLocalSettingsSent()
	assert.Equal(t, StateSettingsSent, s.State())

	// Peer's SETTINGS omit ENABLE_WEBTRANSPORT=1: the handshake must not
	// reach SettingsExchanged, and every later transition must refuse to
	// proceed rather than silently reaching Established.
	s.recordPeerSettings(h3.Settings{})
	assert.Equal(t, StateSettingsSent, s.State())

	s.recordConnectSent()
	assert.Equal(t, StateClosed, s.State())

	s.recordEstablished()
	assert.Equal(t, StateClosed, s.State())

	ce, ok := asCoreError(s.closeErr)
	require.True(t, ok)
	assert.Equal(t, KindProtocolNotSupported, ce.Kind)
}

func TestSetStateNoopOnceClosed(t *testing.T) {
	s := newTestSession()
	s.state = StateClosed
	s.setState(StateEstablished)
	assert.Equal(t, StateClosed, s.State())
}
