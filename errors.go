// Copyright 2025 Kirill Scherba <kirill@scherba.ru>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Error taxonomy for webtransport package.

package webtransport

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a session or stream failed, independent of the
// Go error value that carries it. Logging and metrics key off Kind rather
// than the wrapped error's message.
type ErrorKind int

const (
	// KindShortRead means a buffer ended mid-structure; the caller should
	// buffer more bytes and retry.
	KindShortRead ErrorKind = iota
	// KindMalformed means a varint or QPACK pattern was invalid.
	KindMalformed
	// KindLimitExceeded means a header block exceeded MAX_FIELD_SECTION_SIZE.
	KindLimitExceeded
	// KindStreamTypeViolation means a unidirectional stream carried a
	// forbidden or second-of-kind type byte, or a DATA or HEADERS frame
	// arrived on the peer control stream.
	KindStreamTypeViolation
	// KindSettingsViolation means SETTINGS was missing, duplicated, or
	// out of order.
	KindSettingsViolation
	// KindProtocolNotSupported means the peer never advertised
	// ENABLE_WEBTRANSPORT=1.
	KindProtocolNotSupported
	// KindCONNECTRejected means the server returned a non-200 status on
	// the CONNECT stream.
	KindCONNECTRejected
	// KindTransportError means the underlying QUIC connection failed.
	KindTransportError
)

func (k ErrorKind) String() string {
	switch k {
	case KindShortRead:
		return "short_read"
	case KindMalformed:
		return "malformed"
	case KindLimitExceeded:
		return "limit_exceeded"
	case KindStreamTypeViolation:
		return "stream_type_violation"
	case KindSettingsViolation:
		return "settings_violation"
	case KindProtocolNotSupported:
		return "protocol_not_supported"
	case KindCONNECTRejected:
		return "connect_rejected"
	case KindTransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// CoreError wraps an underlying error with the ErrorKind that classifies it,
// so callers can branch on Kind while errors.Is/errors.As still reach the
// wrapped cause.
type CoreError struct {
	Kind ErrorKind
	Err  error
}

func (e *CoreError) Error() string {
	return fmt.Sprintf("webtransport: %s: %v", e.Kind, e.Err)
}

func (e *CoreError) Unwrap() error { return e.Err }

// NewCoreError wraps err with kind. A nil err returns nil.
func NewCoreError(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &CoreError{Kind: kind, Err: err}
}

// ErrSessionClosed is returned by any session operation attempted after the
// session has reached the Closed state. SendDatagram and ReceiveDatagram
// also return it for a session that has not reached Established.
var ErrSessionClosed = errors.New("webtransport: session closed")

// ErrWrongStreamType is returned when a unidirectional stream's leading type
// byte does not match what the reader expected.
var ErrWrongStreamType = errors.New("webtransport: unidirectional stream received with the wrong stream type")

// ErrDatagramSessionMismatch is returned by ReceiveDatagram when the quarter
// stream ID carried in a datagram does not match the session it arrived on.
var ErrDatagramSessionMismatch = errors.New("webtransport: datagram quarter stream ID does not match session")
