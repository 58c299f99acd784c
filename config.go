// Copyright 2025 Kirill Scherba <kirill@scherba.ru>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Client-side configuration (C12). Server-side configuration lives directly
// on the Server struct in webtransport.go, following the teacher's
// convention of the exported handle type doubling as its own config.

package webtransport

import "github.com/rs/zerolog"

// ClientConfig configures a Client's connection to a WebTransport server.
type ClientConfig struct {
	// ServerAddr is the server's host or IP, e.g. "127.0.0.1". Defaults to
	// 127.0.0.1 per spec §6 if left empty.
	ServerAddr string
	// ServerPort is the server's UDP port. Defaults to 4443 if zero.
	ServerPort uint16
	// Path is the CONNECT :path pseudo-header. Defaults to "/webtransport"
	// if empty.
	Path string
	// InsecureSkipVerify disables TLS certificate verification; only
	// meaningful for local testing against a self-signed server cert.
	InsecureSkipVerify bool
	// QuicConfig carries additional quic.Config knobs.
	QuicConfig *QuicConfig
	// Logger receives structured logs for the handshake and session
	// lifetime; NewDefaultLogger() is used if nil.
	Logger *zerolog.Logger
}

func (c ClientConfig) serverAddr() string {
	if c.ServerAddr != "" {
		return c.ServerAddr
	}
	return "127.0.0.1"
}

func (c ClientConfig) serverPort() uint16 {
	if c.ServerPort != 0 {
		return c.ServerPort
	}
	return 4443
}

func (c ClientConfig) path() string {
	if c.Path != "" {
		return c.Path
	}
	return "/webtransport"
}
