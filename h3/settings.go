package h3

import (
	"fmt"
	"sort"
)

// SettingID identifies one SETTINGS entry.
type SettingID uint64

// Recognized SETTINGS identifiers.
const (
	// SettingQPACKMaxTableCapacity (draft-ietf-quic-qpack). This core
	// never sends it (it has no dynamic table); a non-zero value received
	// from the peer is accepted but never acted on.
	SettingQPACKMaxTableCapacity = SettingID(0x01)
	// SettingMaxFieldSectionSize (draft-ietf-quic-http) is an advisory
	// limit on the header block size this endpoint is willing to accept.
	SettingMaxFieldSectionSize = SettingID(0x06)
	// SettingH3Datagram (draft-ietf-masque-h3-datagram) announces support
	// for HTTP/3 datagrams, a prerequisite for WebTransport datagrams.
	SettingH3Datagram = SettingID(0xffd277)
	// SettingEnableWebTransport (draft-ietf-webtrans-http3) must be sent
	// with value 1 by both peers for a session to reach Established.
	SettingEnableWebTransport = SettingID(0x2b603742)
)

func (id SettingID) String() string {
	switch id {
	case SettingQPACKMaxTableCapacity:
		return "QPACK_MAX_TABLE_CAPACITY"
	case SettingMaxFieldSectionSize:
		return "MAX_FIELD_SECTION_SIZE"
	case SettingH3Datagram:
		return "H3_DATAGRAM"
	case SettingEnableWebTransport:
		return "ENABLE_WEBTRANSPORT"
	default:
		return fmt.Sprintf("%#x", uint64(id))
	}
}

// ErrDuplicateSetting is returned by ParseSettings when an identifier
// appears more than once in the same frame.
var ErrDuplicateSetting = fmt.Errorf("h3: duplicate SETTINGS identifier")

// Settings is a concatenation of (id, value) varint pairs, as carried in a
// SETTINGS frame payload. Every value is a single varint (see DESIGN.md for
// why this core rejects the reference implementation's alternative value
// framing).
type Settings map[SettingID]uint64

// ParseSettings decodes a SETTINGS frame payload.
func ParseSettings(payload []byte) (Settings, error) {
	s := make(Settings)
	off := 0
	for off < len(payload) {
		id, n1, err := DecodeVarint(payload, off)
		if err != nil {
			return nil, err
		}
		val, n2, err := DecodeVarint(payload, off+n1)
		if err != nil {
			return nil, err
		}
		sid := SettingID(id)
		if _, dup := s[sid]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSetting, sid)
		}
		s[sid] = val
		off += n1 + n2
	}
	return s, nil
}

// Encode serializes the settings map to a SETTINGS frame payload. Entries
// are emitted in ascending identifier order so that encoding is
// deterministic (useful for tests and for byte-identical retransmission),
// even though the wire format itself does not require any particular order.
func (s Settings) Encode() []byte {
	ids := make([]SettingID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var payload []byte
	for _, id := range ids {
		payload = append(payload, AppendVarint(nil, uint64(id))...)
		payload = append(payload, AppendVarint(nil, s[id])...)
	}
	return payload
}

// ToFrame wraps Encode's payload in a SETTINGS frame.
func (s Settings) ToFrame() Frame {
	return Frame{Type: FrameSettings, Payload: s.Encode()}
}

// EnablesWebTransport reports whether the settings advertise
// SETTINGS_ENABLE_WEBTRANSPORT with value 1, the condition spec.md
// requires of both peers for a session to become Established.
func (s Settings) EnablesWebTransport() bool {
	v, ok := s[SettingEnableWebTransport]
	return ok && v == 1
}
