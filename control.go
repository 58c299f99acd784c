// Copyright 2025 Kirill Scherba <kirill@scherba.ru>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Control-stream driver: owns the local unidirectional control stream and
// validates the peer's.

package webtransport

import (
	"fmt"
	"io"

	"github.com/quic-go/quic-go"
	"github.com/wt3go/webtransport/h3"
)

// localControlStream opens this endpoint's control stream and writes the
// stream-type byte followed by a SETTINGS frame advertising WebTransport
// support. The stream is never closed; it stays open for the connection's
// lifetime (GOAWAY/MAX_PUSH_ID may be written to it later, but this core
// never emits either).
func localControlStream(sess quic.Connection, settings h3.Settings) (quic.SendStream, error) {
	stream, err := sess.OpenUniStream()
	if err != nil {
		return nil, NewCoreError(KindTransportError, err)
	}

	hdr := h3.StreamHeader{Type: h3.StreamControl}
	if _, err := hdr.WriteTo(stream); err != nil {
		return nil, NewCoreError(KindTransportError, err)
	}
	recordFrameSent("control_header")

	frame := settings.ToFrame()
	payload, err := h3.EncodeFrame(frame.Type, frame.Payload)
	if err != nil {
		return nil, NewCoreError(KindMalformed, err)
	}
	if _, err := stream.Write(payload); err != nil {
		return nil, NewCoreError(KindTransportError, err)
	}
	recordFrameSent("settings")
	recordBytesSent("control", len(payload))

	return stream, nil
}

// peerControlStream accepts the peer's control stream, validates its leading
// type byte, and parses its first (and mandatory) SETTINGS frame. Any
// violation of spec §4.6 is returned as a *CoreError with a kind the caller
// should treat as connection-fatal.
func peerControlStream(stream quic.ReceiveStream) (h3.Settings, error) {
	hdr, err := h3.ReadStreamHeaderFrom(stream)
	if err != nil {
		return nil, NewCoreError(KindTransportError, err)
	}
	if hdr.Type != h3.StreamControl {
		return nil, NewCoreError(KindStreamTypeViolation,
			fmt.Errorf("first peer unidi stream had type %#x, want control (0x00)", hdr.Type))
	}

	var acc h3.BytesAccumulator
	buf := make([]byte, 4096)
	var frame h3.Frame
	for {
		f, ok, ferr := acc.TryFrame()
		if ferr != nil {
			return nil, NewCoreError(KindMalformed, ferr)
		}
		if ok {
			frame = f
			break
		}
		n, err := stream.Read(buf)
		if n > 0 {
			acc.Feed(buf[:n])
		}
		if err != nil {
			return nil, NewCoreError(KindTransportError, err)
		}
	}

	if frame.Type != h3.FrameSettings {
		return nil, NewCoreError(KindSettingsViolation,
			fmt.Errorf("first frame on peer control stream was type %#x, want SETTINGS (0x04)", frame.Type))
	}
	recordFrameReceived("settings")

	settings, err := h3.ParseSettings(frame.Payload)
	if err != nil {
		return nil, NewCoreError(KindSettingsViolation, err)
	}
	return settings, nil
}

// drainControlStream reads and validates every subsequent frame on an
// already-established peer control stream, forever. DATA or HEADERS is
// connection-fatal per spec §4.6; everything else (GOAWAY, MAX_PUSH_ID,
// greased types) is tolerated.
func drainControlStream(stream quic.ReceiveStream, onFatal func(error)) {
	var acc h3.BytesAccumulator
	buf := make([]byte, 4096)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			acc.Feed(buf[:n])
			for {
				f, ok, ferr := acc.TryFrame()
				if ferr != nil {
					onFatal(NewCoreError(KindMalformed, ferr))
					return
				}
				if !ok {
					break
				}
				recordFrameReceived(fmt.Sprintf("%#x", f.Type))
				switch f.Type {
				case h3.FrameData, h3.FrameHeaders:
					onFatal(NewCoreError(KindStreamTypeViolation,
						fmt.Errorf("unexpected frame type %#x on control stream", f.Type)))
					return
				case h3.FrameSettings:
					onFatal(NewCoreError(KindSettingsViolation, fmt.Errorf("duplicate SETTINGS frame")))
					return
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				return
			}
			onFatal(NewCoreError(KindTransportError, err))
			return
		}
	}
}
