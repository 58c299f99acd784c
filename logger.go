// Copyright 2025 Kirill Scherba <kirill@scherba.ru>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Logging for webtransport package, following cloudflared's pattern of
// threading a *zerolog.Logger through the QUIC connection handling path
// rather than using a package-level global.

package webtransport

import (
	"os"

	"github.com/rs/zerolog"
)

// NewDefaultLogger returns a console-writer zerolog.Logger at info level,
// suitable for cmd/wtclient and cmd/wtserver when the caller hasn't wired
// their own. Library code calls it only through orDefaultLogger, when the
// caller supplied a nil *zerolog.Logger.
func NewDefaultLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

func orDefaultLogger(l *zerolog.Logger) *zerolog.Logger {
	if l != nil {
		return l
	}
	d := NewDefaultLogger()
	return &d
}
