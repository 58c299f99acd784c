// Copyright 2025 Kirill Scherba <kirill@scherba.ru>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Transport adapter (C10): the narrow seam this core consumes from
// github.com/quic-go/quic-go. The core only ever calls through this file to
// open a listener or dial a connection; everything else (stream accept,
// stream open, datagram send/receive) is called directly against the
// quic.Connection/quic.Stream values quic-go already hands back, since
// quic-go's interfaces already match the per-connection-serial,
// explicit-consume contract spec §4.10/§6 requires.
package webtransport

import (
	"context"
	"crypto/tls"

	"github.com/quic-go/quic-go"
)

// ALPN is the application-layer protocol negotiated for HTTP/3.
const ALPN = "h3"

// QuicConfig is a wrapper for quic.Config so callers don't need to import
// quic-go directly just to configure timeouts and stream limits.
type QuicConfig quic.Config

// listen opens a QUIC listener on addr with datagrams enabled (required for
// WebTransport datagram support) and ALPN fixed to "h3".
func listen(addr string, tlsConfig *tls.Config, qc *QuicConfig) (*quic.Listener, error) {
	if qc == nil {
		qc = &QuicConfig{}
	}
	qc.EnableDatagrams = true
	tlsConfig.NextProtos = []string{ALPN}
	return quic.ListenAddr(addr, tlsConfig, (*quic.Config)(qc))
}

// dial opens a QUIC connection to addr with datagrams enabled and ALPN
// fixed to "h3".
func dial(ctx context.Context, addr string, tlsConfig *tls.Config, qc *QuicConfig) (quic.Connection, error) {
	if qc == nil {
		qc = &QuicConfig{}
	}
	qc.EnableDatagrams = true
	tlsConfig.NextProtos = []string{ALPN}
	return quic.DialAddr(ctx, addr, tlsConfig, (*quic.Config)(qc))
}
