// Copyright 2025 Kirill Scherba <kirill@scherba.ru>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// CONNECT driver: builds and parses the Extended CONNECT request/response
// that bootstraps a WebTransport session on a bidirectional stream.

package webtransport

import (
	"errors"
	"fmt"

	"github.com/wt3go/webtransport/h3"
	"github.com/wt3go/webtransport/qpack"
)

// errOriginNotAllowed is classified KindMalformed and causes the server to
// reject a CONNECT request with :status=400 when the request's origin
// header isn't in Server.AllowedOrigins.
var errOriginNotAllowed = errors.New("origin not in AllowedOrigins")

// errUnexpectedFrameType classifies a frame other than HEADERS arriving as
// the first frame on a CONNECT request stream.
func errUnexpectedFrameType(typ uint64) error {
	return fmt.Errorf("unexpected frame type %#x as first frame on request stream, want HEADERS (0x01)", typ)
}

// connectRequest holds the decoded pseudo-headers and regular headers of an
// Extended CONNECT request.
type connectRequest struct {
	Method    string
	Scheme    string
	Authority string
	Path      string
	Protocol  string
	Headers   []qpack.HeaderField
}

// buildConnectHeaders constructs the pseudo-header-first field list for a
// client's Extended CONNECT request, per spec §4.7.
func buildConnectHeaders(authority, path string, extra []qpack.HeaderField) []qpack.HeaderField {
	fields := []qpack.HeaderField{
		{Name: ":method", Value: "CONNECT"},
		{Name: ":scheme", Value: "https"},
		{Name: ":authority", Value: authority},
		{Name: ":path", Value: path},
		{Name: ":protocol", Value: "webtransport"},
	}
	return append(fields, extra...)
}

// encodeConnectRequestFrame QPACK-encodes the header list and wraps it in a
// HEADERS frame ready to write to the request stream.
func encodeConnectRequestFrame(authority, path string, extra []qpack.HeaderField) ([]byte, error) {
	fields := buildConnectHeaders(authority, path, extra)
	payload := qpack.Encode(fields)
	recordQPACKOp("encode")
	frame, err := h3.EncodeFrame(h3.FrameHeaders, payload)
	if err != nil {
		return nil, NewCoreError(KindMalformed, err)
	}
	recordFrameSent("headers")
	return frame, nil
}

// decodeConnectRequest parses a HEADERS frame payload into a connectRequest
// and validates it per spec §4.7. On validation failure it returns a
// *CoreError with KindMalformed and the HTTP status the server should send
// back (400 or 404).
func decodeConnectRequest(payload []byte) (connectRequest, int, error) {
	fields, err := qpack.Decode(payload)
	recordQPACKOp("decode")
	if err != nil {
		return connectRequest{}, 400, NewCoreError(KindMalformed, err)
	}

	var req connectRequest
	for _, f := range fields {
		switch f.Name {
		case ":method":
			req.Method = f.Value
		case ":scheme":
			req.Scheme = f.Value
		case ":authority":
			req.Authority = f.Value
		case ":path":
			req.Path = f.Value
		case ":protocol":
			req.Protocol = f.Value
		default:
			req.Headers = append(req.Headers, f)
		}
	}

	if req.Method != "CONNECT" {
		return req, 400, NewCoreError(KindMalformed, fmt.Errorf("unsupported :method %q", req.Method))
	}
	if req.Protocol != "webtransport" {
		return req, 400, NewCoreError(KindMalformed, fmt.Errorf("unsupported :protocol %q", req.Protocol))
	}
	if req.Scheme != "https" {
		return req, 400, NewCoreError(KindMalformed, fmt.Errorf("unsupported :scheme %q", req.Scheme))
	}
	if req.Authority == "" {
		return req, 400, NewCoreError(KindMalformed, fmt.Errorf(":authority is empty"))
	}
	if req.Path == "" {
		return req, 404, NewCoreError(KindMalformed, fmt.Errorf(":path is empty"))
	}
	return req, 200, nil
}

// encodeConnectResponseFrame builds the HEADERS frame for a CONNECT
// response carrying only :status.
func encodeConnectResponseFrame(status int) ([]byte, error) {
	fields := []qpack.HeaderField{{Name: ":status", Value: fmt.Sprintf("%d", status)}}
	payload := qpack.Encode(fields)
	recordQPACKOp("encode")
	frame, err := h3.EncodeFrame(h3.FrameHeaders, payload)
	if err != nil {
		return nil, NewCoreError(KindMalformed, err)
	}
	recordFrameSent("headers")
	return frame, nil
}

// decodeConnectResponse parses a HEADERS frame payload from the server and
// returns the :status value.
func decodeConnectResponse(payload []byte) (int, error) {
	fields, err := qpack.Decode(payload)
	recordQPACKOp("decode")
	if err != nil {
		return 0, NewCoreError(KindMalformed, err)
	}
	for _, f := range fields {
		if f.Name == ":status" {
			var status int
			if _, err := fmt.Sscanf(f.Value, "%d", &status); err != nil {
				return 0, NewCoreError(KindMalformed, fmt.Errorf("invalid :status %q", f.Value))
			}
			return status, nil
		}
	}
	return 0, NewCoreError(KindMalformed, fmt.Errorf("response headers missing :status"))
}
