// Copyright 2025 Kirill Scherba <kirill@scherba.ru>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webtransport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wt3go/webtransport/h3"
)

func TestEncodeDecodeConnectRequestRoundTrip(t *testing.T) {
	frame, err := encodeConnectRequestFrame("example.com", "/webtransport", nil)
	require.NoError(t, err)

	f, n, err := h3.ParseFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, len(frame), n)
	assert.Equal(t, uint64(h3.FrameHeaders), f.Type)

	req, status, err := decodeConnectRequest(f.Payload)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Equal(t, "CONNECT", req.Method)
	assert.Equal(t, "webtransport", req.Protocol)
	assert.Equal(t, "https", req.Scheme)
	assert.Equal(t, "example.com", req.Authority)
	assert.Equal(t, "/webtransport", req.Path)
}

func TestDecodeConnectRequestRejectsWrongMethod(t *testing.T) {
	frame, err := h3.EncodeFrame(h3.FrameHeaders, nil)
	require.NoError(t, err)
	f, _, err := h3.ParseFrame(frame)
	require.NoError(t, err)

	_, status, err := decodeConnectRequest(f.Payload)
	require.Error(t, err)
	assert.Equal(t, 400, status)
}

func TestDecodeConnectRequestRejectsEmptyPath(t *testing.T) {
	frame, err := encodeConnectRequestFrame("example.com", "", nil)
	require.NoError(t, err)
	f, _, err := h3.ParseFrame(frame)
	require.NoError(t, err)

	_, status, err := decodeConnectRequest(f.Payload)
	require.Error(t, err)
	assert.Equal(t, 404, status)
}

func TestEncodeDecodeConnectResponseRoundTrip(t *testing.T) {
	frame, err := encodeConnectResponseFrame(200)
	require.NoError(t, err)
	f, _, err := h3.ParseFrame(frame)
	require.NoError(t, err)

	status, err := decodeConnectResponse(f.Payload)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
}

func TestDecodeConnectResponseMissingStatus(t *testing.T) {
	frame, err := h3.EncodeFrame(h3.FrameHeaders, nil)
	require.NoError(t, err)
	f, _, err := h3.ParseFrame(frame)
	require.NoError(t, err)

	_, err = decodeConnectResponse(f.Payload)
	assert.Error(t, err)
}
